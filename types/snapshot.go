package types

import "time"

// Snapshot is a persisted assignment state plus its epoch metadata.
type Snapshot struct {
	// Epoch is the epoch number that produced State. Zero means never scheduled.
	Epoch uint64

	// RunID uniquely identifies the recompute run that produced State.
	RunID string

	// State is the assignment valid for Epoch.
	State *AssignmentState

	// Fingerprint is State.Fingerprint() at the time of writing.
	Fingerprint uint64

	// UpdatedAt is the time the snapshot was written.
	UpdatedAt time.Time

	// Revision is the store revision of this snapshot, used for optimistic writes.
	Revision uint64
}

// EmptySnapshot returns the snapshot used before any epoch has been persisted.
func EmptySnapshot() *Snapshot {
	state := NewAssignmentState()

	return &Snapshot{
		State:       state,
		Fingerprint: state.Fingerprint(),
	}
}

// EpochResult describes one completed epoch boundary.
type EpochResult struct {
	// Epoch is the new epoch number.
	Epoch uint64

	// RunID identifies the recompute run.
	RunID string

	// State is the new assignment.
	State *AssignmentState

	// Diff compares State against the previous epoch.
	Diff StateDiff

	// Unassigned lists eligible workers left without a slot, in eligible order.
	Unassigned []Worker

	// Duration is the end-to-end epoch latency.
	Duration time.Duration
}
