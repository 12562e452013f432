package types

import (
	"encoding/binary"
	"maps"
	"slices"

	"github.com/zeebo/xxh3"
)

// AssignmentState is the complete pool + per-partition worker snapshot for one epoch.
//
// Order inside every sequence is significant: the first entry is the most senior
// worker and survives truncation first. A worker appears at most once across the
// pool and all partitions.
//
// AssignmentState is not safe for concurrent mutation. The scheduler works on a
// private clone; share read-only copies between goroutines.
type AssignmentState struct {
	// Pool holds the workers of the high-priority pool, most senior first.
	Pool []Worker `json:"pool"`

	// Partitions maps every partition id to its ordered worker sequence.
	Partitions map[PartitionID][]Worker `json:"partitions"`
}

// Placement describes where a single worker is assigned.
type Placement struct {
	// InPool is true when the worker belongs to the high-priority pool.
	InPool bool `json:"inPool"`

	// Partition is the assigned partition id. Zero when InPool is true.
	Partition PartitionID `json:"partition"`

	// Position is the zero-based seniority index inside the sequence.
	Position int `json:"position"`
}

// NewAssignmentState creates an empty assignment state.
func NewAssignmentState() *AssignmentState {
	return &AssignmentState{
		Pool:       []Worker{},
		Partitions: make(map[PartitionID][]Worker),
	}
}

// Clone returns a deep copy of the state.
//
// A nil receiver yields an empty state, so callers may treat "no previous
// assignment" uniformly.
func (s *AssignmentState) Clone() *AssignmentState {
	out := NewAssignmentState()
	if s == nil {
		return out
	}

	out.Pool = append(out.Pool, s.Pool...)
	for id, workers := range s.Partitions {
		out.Partitions[id] = append(make([]Worker, 0, len(workers)), workers...)
	}

	return out
}

// FindWorker reports whether w occurs in the pool or in any partition sequence.
//
// This is a linear scan; use AssignedSet when many lookups are needed.
func (s *AssignmentState) FindWorker(w Worker) bool {
	if slices.Contains(s.Pool, w) {
		return true
	}

	for _, workers := range s.Partitions {
		if slices.Contains(workers, w) {
			return true
		}
	}

	return false
}

// RemovePartitionsNotIn drops every partition whose id is not in active.
//
// Workers of dropped partitions become unassigned. The pool is untouched.
func (s *AssignmentState) RemovePartitionsNotIn(active []PartitionID) {
	keep := make(map[PartitionID]struct{}, len(active))
	for _, id := range active {
		keep[id] = struct{}{}
	}

	maps.DeleteFunc(s.Partitions, func(id PartitionID, _ []Worker) bool {
		_, ok := keep[id]
		return !ok
	})
}

// RemoveWorkersNotIn removes every worker not in eligible from the pool and all
// partitions. Relative order of the remaining workers is preserved.
func (s *AssignmentState) RemoveWorkersNotIn(eligible []Worker) {
	keep := make(map[Worker]struct{}, len(eligible))
	for _, w := range eligible {
		keep[w] = struct{}{}
	}

	stale := func(w Worker) bool {
		_, ok := keep[w]
		return !ok
	}

	s.Pool = slices.DeleteFunc(s.Pool, stale)
	for id, workers := range s.Partitions {
		s.Partitions[id] = slices.DeleteFunc(workers, stale)
	}
}

// RemoveDuplicates keeps only the first slot of every worker. The pool is
// scanned first, then partitions in ascending id order.
func (s *AssignmentState) RemoveDuplicates() {
	seen := make(map[Worker]struct{}, s.Len())
	dup := func(w Worker) bool {
		if _, ok := seen[w]; ok {
			return true
		}
		seen[w] = struct{}{}

		return false
	}

	s.Pool = slices.DeleteFunc(s.Pool, dup)
	for _, id := range s.PartitionIDs() {
		s.Partitions[id] = slices.DeleteFunc(s.Partitions[id], dup)
	}
}

// TruncatePool keeps only the first capacity workers of the pool.
func (s *AssignmentState) TruncatePool(capacity int) {
	if capacity < 0 {
		capacity = 0
	}

	if len(s.Pool) > capacity {
		s.Pool = s.Pool[:capacity]
	}
}

// TruncatePartitions keeps only the first capacity workers of every partition.
func (s *AssignmentState) TruncatePartitions(capacity int) {
	if capacity < 0 {
		capacity = 0
	}

	for id, workers := range s.Partitions {
		if len(workers) > capacity {
			s.Partitions[id] = workers[:capacity]
		}
	}
}

// AddMissingPartitions creates an empty sequence for every active id that has no
// entry yet. Existing sequences are left as they are.
func (s *AssignmentState) AddMissingPartitions(active []PartitionID) {
	if s.Partitions == nil {
		s.Partitions = make(map[PartitionID][]Worker, len(active))
	}

	for _, id := range active {
		if _, ok := s.Partitions[id]; !ok {
			s.Partitions[id] = []Worker{}
		}
	}
}

// FillPool appends workers from next until the pool holds capacity workers or
// the queue is exhausted.
func (s *AssignmentState) FillPool(capacity int, next *WorkerQueue) {
	for len(s.Pool) < capacity {
		w, ok := next.Next()
		if !ok {
			return
		}

		s.Pool = append(s.Pool, w)
	}
}

// FillPartitions tops up every partition, in ascending id order, with workers
// from next until it holds capacity workers or the queue is exhausted.
func (s *AssignmentState) FillPartitions(capacity int, next *WorkerQueue) {
	for _, id := range s.PartitionIDs() {
		workers := s.Partitions[id]
		for len(workers) < capacity {
			w, ok := next.Next()
			if !ok {
				break
			}

			workers = append(workers, w)
		}
		s.Partitions[id] = workers
	}
}

// PartitionIDs returns all partition ids in ascending order.
func (s *AssignmentState) PartitionIDs() []PartitionID {
	return slices.Sorted(maps.Keys(s.Partitions))
}

// AssignedSet returns the set of every assigned worker (pool and partitions).
func (s *AssignmentState) AssignedSet() map[Worker]struct{} {
	set := make(map[Worker]struct{}, s.Len())
	for _, w := range s.Pool {
		set[w] = struct{}{}
	}

	for _, workers := range s.Partitions {
		for _, w := range workers {
			set[w] = struct{}{}
		}
	}

	return set
}

// Lookup returns the placement of w.
//
// Returns:
//   - Placement: Where the worker is assigned
//   - bool: false if the worker is unassigned
func (s *AssignmentState) Lookup(w Worker) (Placement, bool) {
	if s == nil {
		return Placement{}, false
	}

	if i := slices.Index(s.Pool, w); i >= 0 {
		return Placement{InPool: true, Position: i}, true
	}

	for id, workers := range s.Partitions {
		if i := slices.Index(workers, w); i >= 0 {
			return Placement{Partition: id, Position: i}, true
		}
	}

	return Placement{}, false
}

// Len returns the number of assigned workers.
func (s *AssignmentState) Len() int {
	if s == nil {
		return 0
	}

	n := len(s.Pool)
	for _, workers := range s.Partitions {
		n += len(workers)
	}

	return n
}

// Equal reports whether both states hold the same pool and partitions, with
// identical ordering. An empty partition is distinct from a missing one.
func (s *AssignmentState) Equal(o *AssignmentState) bool {
	if s == nil || o == nil {
		return s.Len() == 0 && o.Len() == 0 && len(s.partitions()) == len(o.partitions())
	}

	return slices.Equal(s.Pool, o.Pool) && maps.EqualFunc(s.Partitions, o.Partitions, slices.Equal[[]Worker])
}

// Fingerprint returns a 64-bit hash of the canonical state encoding.
//
// Equal states always produce the same fingerprint. Empty partitions are not
// hashed, so the value survives a round trip through Entries. It is stored next
// to each persisted snapshot so consumers can detect changes without decoding.
func (s *AssignmentState) Fingerprint() uint64 {
	h := xxh3.New()

	var buf [8]byte
	writeWorkers := func(workers []Worker) {
		binary.BigEndian.PutUint32(buf[:4], uint32(len(workers)))
		_, _ = h.Write(buf[:4])
		for _, w := range workers {
			binary.BigEndian.PutUint32(buf[:4], uint32(len(w)))
			_, _ = h.Write(buf[:4])
			_, _ = h.WriteString(string(w))
		}
	}

	if s == nil {
		s = NewAssignmentState()
	}

	writeWorkers(s.Pool)
	for _, id := range s.PartitionIDs() {
		if len(s.Partitions[id]) == 0 {
			continue
		}
		binary.BigEndian.PutUint32(buf[:4], uint32(id))
		_, _ = h.Write(buf[:4])
		writeWorkers(s.Partitions[id])
	}

	return h.Sum64()
}

func (s *AssignmentState) partitions() map[PartitionID][]Worker {
	if s == nil {
		return nil
	}

	return s.Partitions
}
