package metrics

import "github.com/arloliu/roster/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Used as the default when no collector is configured.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A new no-op metrics collector instance
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// SchedulerMetrics implementation

// RecordRecomputeDuration discards the recompute duration metric.
func (n *NopMetrics) RecordRecomputeDuration(_ /* duration */ float64) {}

// RecordChurn discards the churn metric.
func (n *NopMetrics) RecordChurn(_ /* kept */, _ /* moved */, _ /* added */, _ /* removed */ int) {}

// RecordAssignmentCounts discards the assignment gauges.
func (n *NopMetrics) RecordAssignmentCounts(_ /* pool */, _ /* partitions */, _ /* unassigned */ int) {}

// RecordPartitionCount discards the partition count metric.
func (n *NopMetrics) RecordPartitionCount(_ /* count */ int) {}

// CoordinatorMetrics implementation

// RecordEpochAttempt discards the epoch attempt metric.
func (n *NopMetrics) RecordEpochAttempt(_ /* success */ bool) {}

// SetCurrentEpoch discards the current epoch gauge.
func (n *NopMetrics) SetCurrentEpoch(_ /* epoch */ uint64) {}

// RecordEpochDuration discards the epoch duration metric.
func (n *NopMetrics) RecordEpochDuration(_ /* duration */ float64) {}

// RecordLeadershipChange discards the leadership change metric.
func (n *NopMetrics) RecordLeadershipChange(_ /* nodeID */ string, _ /* isLeader */ bool) {}

// RecordKVOperationDuration discards the KV operation duration metric.
func (n *NopMetrics) RecordKVOperationDuration(_ /* operation */ string, _ /* duration */ float64) {}

// RecordEpochDropped discards the dropped notification metric.
func (n *NopMetrics) RecordEpochDropped() {}

// WorkerMetrics implementation

// RecordHeartbeat discards the heartbeat metric.
func (n *NopMetrics) RecordHeartbeat(_ /* workerID */ string, _ /* success */ bool) {}
