package types

import (
	"errors"
	"strings"
)

// Sentinel errors for the Roster library.
//
// These errors provide type-safe error checking using errors.Is() and errors.As().
// External errors are wrapped with context using fmt.Errorf("%s: %w", msg, err).
//
// Error Naming Convention:
//   - Use descriptive names with Err prefix
//   - Group by component (Coordinator, Scheduler, Store)

// Coordinator errors - Public API errors returned by the Coordinator.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNATSConnectionRequired is returned when NATS connection is nil.
	ErrNATSConnectionRequired = errors.New("NATS connection is required")

	// ErrWorkerSourceRequired is returned when worker source is nil.
	ErrWorkerSourceRequired = errors.New("worker source is required")

	// ErrPartitionSourceRequired is returned when partition source is nil.
	ErrPartitionSourceRequired = errors.New("partition source is required")

	// ErrAlreadyStarted is returned when Start is called on an already running coordinator.
	ErrAlreadyStarted = errors.New("coordinator already started")

	// ErrNotStarted is returned when operations require a started coordinator.
	ErrNotStarted = errors.New("coordinator not started")

	// ErrNotLeader is returned when an epoch is requested on a non-leader node.
	ErrNotLeader = errors.New("not the leader")

	// ErrElectionFailed is returned when leader election fails.
	ErrElectionFailed = errors.New("leader election failed")

	// ErrConnectivity indicates a NATS/KV connectivity issue.
	// This is used to distinguish network failures from application errors.
	ErrConnectivity = errors.New("connectivity issue")

	// ErrEpochFailed is returned when an epoch could not be computed or persisted.
	ErrEpochFailed = errors.New("epoch failed")
)

// Scheduler errors.
var (
	// ErrTooManyWorkers is returned when the eligible list exceeds MaxTotalWorkers.
	// This is a caller contract breach, not a capacity shortage.
	ErrTooManyWorkers = errors.New("eligible workers exceed max total workers")

	// ErrInvalidCapacity is returned when a capacity configuration is unusable.
	ErrInvalidCapacity = errors.New("invalid capacity configuration")
)

// Store errors.
var (
	// ErrConcurrentUpdate is returned when the persisted state changed since it was loaded.
	ErrConcurrentUpdate = errors.New("assignment state modified concurrently")

	// ErrInvalidWorkerID is returned when a worker ID cannot be used as a storage key.
	ErrInvalidWorkerID = errors.New("invalid worker ID")

	// ErrPoolPartitionConflict is returned when a real partition uses the pool partition id.
	ErrPoolPartitionConflict = errors.New("partition id collides with pool partition")

	// ErrCorruptSnapshot is returned when a persisted snapshot cannot be decoded.
	ErrCorruptSnapshot = errors.New("corrupt assignment snapshot")
)

// Common errors - Shared errors used across multiple components.
var (
	// ErrNoKeysFound is returned when NATS KV returns no keys (expected condition).
	ErrNoKeysFound = errors.New("no keys found")
)

// IsNoKeysFoundError checks if an error indicates that no keys were found in NATS KV.
//
// This function handles NATS-specific "no keys found" errors which may come as:
//   - Direct error: "nats: no keys found"
//   - Wrapped error: "failed to list KV keys: nats: no keys found"
//
// Parameters:
//   - err: The error to check
//
// Returns:
//   - bool: true if the error indicates no keys were found, false otherwise
func IsNoKeysFoundError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrNoKeysFound) {
		return true
	}

	return strings.Contains(err.Error(), "no keys found")
}
