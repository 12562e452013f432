package types

// MetricsCollector defines methods for recording operational metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// All methods are called from internal goroutines and must be thread-safe.
//
// This interface composes smaller, domain-focused interfaces for better modularity.
type MetricsCollector interface {
	SchedulerMetrics
	CoordinatorMetrics
	WorkerMetrics
}

// SchedulerMetrics defines metrics for a single recompute.
type SchedulerMetrics interface {
	// RecordRecomputeDuration records the time taken by one recompute.
	//
	// Parameters:
	//   - duration: Time taken in seconds
	RecordRecomputeDuration(duration float64)

	// RecordChurn records how worker placements changed in one recompute.
	//
	// Parameters:
	//   - kept: Workers that stayed in the same group
	//   - moved: Workers that changed group
	//   - added: Workers newly assigned
	//   - removed: Workers no longer assigned
	RecordChurn(kept, moved, added, removed int)

	// RecordAssignmentCounts sets the assignment gauges after a recompute.
	//
	// Parameters:
	//   - pool: Workers in the high-priority pool
	//   - partitions: Workers assigned to ordinary partitions
	//   - unassigned: Eligible workers left without a slot
	RecordAssignmentCounts(pool, partitions, unassigned int)

	// RecordPartitionCount sets the current active partition count (gauge metric).
	RecordPartitionCount(count int)
}

// CoordinatorMetrics defines metrics for epoch coordination.
type CoordinatorMetrics interface {
	// RecordEpochAttempt records an epoch attempt (success or failure).
	RecordEpochAttempt(success bool)

	// SetCurrentEpoch sets the last persisted epoch number.
	SetCurrentEpoch(epoch uint64)

	// RecordEpochDuration records the end-to-end epoch latency in seconds.
	RecordEpochDuration(duration float64)

	// RecordLeadershipChange records a leadership change for this node.
	RecordLeadershipChange(nodeID string, isLeader bool)

	// RecordKVOperationDuration records NATS KV operation latency.
	//
	// Parameters:
	//   - operation: Operation type ("get", "put", "delete", "keys")
	//   - duration: Time taken in seconds
	RecordKVOperationDuration(operation string, duration float64)

	// RecordEpochDropped records when an epoch notification is dropped due to a slow subscriber.
	RecordEpochDropped()
}

// WorkerMetrics defines metrics for individual worker heartbeat operations.
//
// These metrics are recorded by workers publishing their eligibility heartbeat,
// not by the coordinator.
type WorkerMetrics interface {
	// RecordHeartbeat records a heartbeat event from an individual worker.
	//
	// Parameters:
	//   - workerID: The ID of the worker publishing the heartbeat
	//   - success: true if heartbeat was successfully published, false otherwise
	RecordHeartbeat(workerID string, success bool)
}
