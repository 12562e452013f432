package types

import (
	"cmp"
	"fmt"
	"slices"
)

// Entry is one persisted (Worker -> Partition) association.
//
// Pool members are tagged with the designated pool partition id. Position keeps
// the in-sequence seniority so that the order survives a round trip through
// storage that does not preserve insertion order.
type Entry struct {
	Worker    Worker      `json:"worker"`
	Partition PartitionID `json:"partition"`
	Position  int         `json:"position"`
}

// Entries flattens the state into persisted associations.
//
// The pool is emitted under poolID; partitions follow in ascending id order.
// Empty partitions produce no entries.
//
// Parameters:
//   - poolID: Partition id that tags pool members
//
// Returns:
//   - []Entry: Associations in canonical order
//   - error: ErrPoolPartitionConflict if a real partition uses poolID
func (s *AssignmentState) Entries(poolID PartitionID) ([]Entry, error) {
	if _, ok := s.Partitions[poolID]; ok {
		return nil, fmt.Errorf("%w: partition %d", ErrPoolPartitionConflict, poolID)
	}

	entries := make([]Entry, 0, s.Len())
	for i, w := range s.Pool {
		entries = append(entries, Entry{Worker: w, Partition: poolID, Position: i})
	}

	for _, id := range s.PartitionIDs() {
		for i, w := range s.Partitions[id] {
			entries = append(entries, Entry{Worker: w, Partition: id, Position: i})
		}
	}

	return entries, nil
}

// StateFromEntries rebuilds an AssignmentState from persisted associations.
//
// Entries tagged with poolID form the pool. Within each sequence workers are
// ordered by Position, ties broken by worker id, so the result does not depend
// on the order in which storage returned the entries.
//
// Parameters:
//   - entries: Persisted associations in any order
//   - poolID: Partition id that tags pool members
//
// Returns:
//   - *AssignmentState: Reconstructed state
//   - error: ErrCorruptSnapshot if a worker appears more than once
func StateFromEntries(entries []Entry, poolID PartitionID) (*AssignmentState, error) {
	sorted := slices.Clone(entries)
	slices.SortFunc(sorted, func(a, b Entry) int {
		if c := cmp.Compare(a.Position, b.Position); c != 0 {
			return c
		}

		return a.Worker.Compare(b.Worker)
	})

	state := NewAssignmentState()
	seen := make(map[Worker]struct{}, len(sorted))
	for _, e := range sorted {
		if _, dup := seen[e.Worker]; dup {
			return nil, fmt.Errorf("%w: worker %q assigned twice", ErrCorruptSnapshot, e.Worker)
		}
		seen[e.Worker] = struct{}{}

		if e.Partition == poolID {
			state.Pool = append(state.Pool, e.Worker)
			continue
		}

		state.Partitions[e.Partition] = append(state.Partitions[e.Partition], e.Worker)
	}

	return state, nil
}
