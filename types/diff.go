package types

import (
	"maps"
	"slices"
)

// StateDiff classifies workers by how their placement changed between two states.
//
// All lists are sorted by worker id.
type StateDiff struct {
	// Kept workers hold the same pool/partition slot group in both states.
	Kept []Worker `json:"kept"`

	// Moved workers were assigned in both states but to a different group.
	Moved []Worker `json:"moved"`

	// Added workers are assigned only in the next state.
	Added []Worker `json:"added"`

	// Removed workers are assigned only in the previous state.
	Removed []Worker `json:"removed"`
}

// Churn returns the number of workers whose placement changed.
func (d StateDiff) Churn() int {
	return len(d.Moved) + len(d.Added) + len(d.Removed)
}

// Diff compares two states. Position changes inside the same group count as kept.
//
// Either argument may be nil, which is treated as an empty state.
func Diff(prev, next *AssignmentState) StateDiff {
	before := groupIndex(prev)
	after := groupIndex(next)

	d := StateDiff{
		Kept:    []Worker{},
		Moved:   []Worker{},
		Added:   []Worker{},
		Removed: []Worker{},
	}

	for _, w := range slices.Sorted(maps.Keys(after)) {
		old, ok := before[w]
		switch {
		case !ok:
			d.Added = append(d.Added, w)
		case old == after[w]:
			d.Kept = append(d.Kept, w)
		default:
			d.Moved = append(d.Moved, w)
		}
	}

	for _, w := range slices.Sorted(maps.Keys(before)) {
		if _, ok := after[w]; !ok {
			d.Removed = append(d.Removed, w)
		}
	}

	return d
}

type group struct {
	pool      bool
	partition PartitionID
}

func groupIndex(s *AssignmentState) map[Worker]group {
	idx := make(map[Worker]group, s.Len())
	if s == nil {
		return idx
	}

	for _, w := range s.Pool {
		idx[w] = group{pool: true}
	}

	for id, workers := range s.Partitions {
		for _, w := range workers {
			idx[w] = group{partition: id}
		}
	}

	return idx
}
