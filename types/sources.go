package types

import "context"

// WorkerSource supplies the eligible workers for an epoch.
//
// Deciding eligibility is the source's job. The returned order is a contract:
// it must be deterministic for identical inputs (e.g. sorted by worker id),
// because it defines the tie-break among newly unassigned workers.
type WorkerSource interface {
	// ListWorkers returns the eligible workers in a deterministic order.
	ListWorkers(ctx context.Context) ([]Worker, error)
}

// PartitionSource supplies the active partitions for an epoch.
type PartitionSource interface {
	// ListPartitions returns the active partition ids.
	//
	// The order is irrelevant to the scheduler; partitions are always filled in
	// ascending id order.
	ListPartitions(ctx context.Context) ([]PartitionID, error)
}

// CapacitySource supplies the capacity limits for an epoch.
type CapacitySource interface {
	// Capacity returns the capacity configuration to apply.
	Capacity(ctx context.Context) (CapacityConfig, error)
}

// StateStore persists the assignment state between epochs.
//
// The lifecycle is "read once at epoch start, replace wholesale at epoch end".
// Implementations must make Store all-or-nothing from the caller's point of view.
type StateStore interface {
	// Load returns the last persisted snapshot.
	//
	// Returns:
	//   - *Snapshot: The stored snapshot; an epoch-0 snapshot with an empty state
	//     if nothing has been persisted yet
	//   - error: Read error
	Load(ctx context.Context) (*Snapshot, error)

	// Store replaces the persisted state with snap.
	//
	// snap.Revision must equal the revision returned by the preceding Load.
	// On success snap.Revision is updated to the new revision.
	//
	// Returns:
	//   - error: ErrConcurrentUpdate if another writer stored in between
	Store(ctx context.Context, snap *Snapshot) error
}
