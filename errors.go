package roster

import "github.com/arloliu/roster/types"

// Sentinel errors re-exported from the types package.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = types.ErrInvalidConfig

	// ErrNATSConnectionRequired is returned when NATS connection is nil.
	ErrNATSConnectionRequired = types.ErrNATSConnectionRequired

	// ErrWorkerSourceRequired is returned when the worker source is nil.
	ErrWorkerSourceRequired = types.ErrWorkerSourceRequired

	// ErrPartitionSourceRequired is returned when the partition source is nil.
	ErrPartitionSourceRequired = types.ErrPartitionSourceRequired

	// ErrAlreadyStarted is returned when Start is called on a running coordinator.
	ErrAlreadyStarted = types.ErrAlreadyStarted

	// ErrNotStarted is returned when the coordinator has not been started.
	ErrNotStarted = types.ErrNotStarted

	// ErrNotLeader is returned by AdvanceEpoch on a follower.
	ErrNotLeader = types.ErrNotLeader

	// ErrElectionFailed is returned when leader election fails.
	ErrElectionFailed = types.ErrElectionFailed

	// ErrEpochFailed wraps failures of a single epoch.
	ErrEpochFailed = types.ErrEpochFailed

	// ErrTooManyWorkers is returned when more workers are eligible than allowed.
	ErrTooManyWorkers = types.ErrTooManyWorkers

	// ErrInvalidCapacity is returned when a capacity configuration is unusable.
	ErrInvalidCapacity = types.ErrInvalidCapacity

	// ErrPoolPartitionConflict is returned when an active partition uses the pool partition id.
	ErrPoolPartitionConflict = types.ErrPoolPartitionConflict

	// ErrCorruptSnapshot is returned when a stored snapshot cannot be decoded.
	ErrCorruptSnapshot = types.ErrCorruptSnapshot

	// ErrConcurrentUpdate is returned when another writer stored a snapshot first.
	ErrConcurrentUpdate = types.ErrConcurrentUpdate

	// ErrInvalidWorkerID is returned when a worker id is not a valid key token.
	ErrInvalidWorkerID = types.ErrInvalidWorkerID

	// ErrConnectivity marks NATS connectivity failures.
	ErrConnectivity = types.ErrConnectivity
)
