package testutil

import (
	"slices"
	"testing"

	"github.com/arloliu/roster/types"
)

// AssertNoDoubleAssignment fails if a worker holds more than one slot.
func AssertNoDoubleAssignment(t testing.TB, state *types.AssignmentState) {
	t.Helper()

	seen := make(map[types.Worker]string, state.Len())
	check := func(w types.Worker, where string) {
		if prev, ok := seen[w]; ok {
			t.Fatalf("worker %q assigned twice: %s and %s", w, prev, where)
		}
		seen[w] = where
	}

	for _, w := range state.Pool {
		check(w, "pool")
	}
	for _, id := range state.PartitionIDs() {
		for _, w := range state.Partitions[id] {
			check(w, "partition "+id.String())
		}
	}
}

// AssertCapacityRespected fails if the pool or any partition exceeds its capacity.
func AssertCapacityRespected(t testing.TB, state *types.AssignmentState, poolCapacity, perPartitionCapacity uint32) {
	t.Helper()

	if len(state.Pool) > int(poolCapacity) {
		t.Fatalf("pool holds %d workers, capacity %d", len(state.Pool), poolCapacity)
	}
	for id, workers := range state.Partitions {
		if len(workers) > int(perPartitionCapacity) {
			t.Fatalf("partition %d holds %d workers, capacity %d", id, len(workers), perPartitionCapacity)
		}
	}
}

// AssertOnlyEligible fails if an assigned worker is not in eligible.
func AssertOnlyEligible(t testing.TB, state *types.AssignmentState, eligible []types.Worker) {
	t.Helper()

	for w := range state.AssignedSet() {
		if !slices.Contains(eligible, w) {
			t.Fatalf("worker %q assigned but not eligible", w)
		}
	}
}

// AssertPartitionsMatch fails unless the state's partition keys are exactly active.
func AssertPartitionsMatch(t testing.TB, state *types.AssignmentState, active []types.PartitionID) {
	t.Helper()

	want := slices.Clone(active)
	slices.Sort(want)
	want = slices.Compact(want)

	if got := state.PartitionIDs(); !slices.Equal(got, want) {
		t.Fatalf("partition keys %v, want %v", got, want)
	}
}

// AssertSticky fails if a worker that could have kept its slot lost it.
//
// A worker keeps its group when it is still eligible, its partition is still
// active and its previous position is below the (possibly shrunk) capacity.
// The same holds for pool members against the pool capacity.
func AssertSticky(
	t testing.TB,
	prev, next *types.AssignmentState,
	eligible []types.Worker,
	active []types.PartitionID,
	poolCapacity, perPartitionCapacity uint32,
) {
	t.Helper()

	if prev == nil {
		return
	}

	isEligible := func(w types.Worker) bool { return slices.Contains(eligible, w) }

	// Position counts only surviving (still eligible) workers ahead of w.
	survivingIndex := func(seq []types.Worker, w types.Worker) int {
		idx := 0
		for _, x := range seq {
			if x == w {
				return idx
			}
			if isEligible(x) {
				idx++
			}
		}

		return -1
	}

	for _, w := range prev.Pool {
		if !isEligible(w) || survivingIndex(prev.Pool, w) >= int(poolCapacity) {
			continue
		}
		if !slices.Contains(next.Pool, w) {
			t.Fatalf("pool worker %q lost its slot", w)
		}
	}

	for id, seq := range prev.Partitions {
		if !slices.Contains(active, id) {
			continue
		}
		for _, w := range seq {
			if !isEligible(w) || survivingIndex(seq, w) >= int(perPartitionCapacity) {
				continue
			}
			if !slices.Contains(next.Partitions[id], w) {
				t.Fatalf("worker %q lost its slot in partition %d", w, id)
			}
		}
	}
}

// AssertMaximal fails if an eligible worker is unassigned while a slot is free.
func AssertMaximal(
	t testing.TB,
	state *types.AssignmentState,
	eligible []types.Worker,
	poolCapacity, perPartitionCapacity uint32,
) {
	t.Helper()

	assigned := state.AssignedSet()
	unassigned := 0
	for _, w := range slices.Compact(slices.Sorted(slices.Values(eligible))) {
		if _, ok := assigned[w]; !ok {
			unassigned++
		}
	}
	if unassigned == 0 {
		return
	}

	if len(state.Pool) < int(poolCapacity) {
		t.Fatalf("%d workers unassigned while pool has free slots", unassigned)
	}
	for id, workers := range state.Partitions {
		if len(workers) < int(perPartitionCapacity) {
			t.Fatalf("%d workers unassigned while partition %d has free slots", unassigned, id)
		}
	}
}

// AssertSchedulingInvariants runs every single-state invariant at once.
func AssertSchedulingInvariants(
	t testing.TB,
	state *types.AssignmentState,
	eligible []types.Worker,
	active []types.PartitionID,
	poolCapacity, perPartitionCapacity uint32,
) {
	t.Helper()

	AssertNoDoubleAssignment(t, state)
	AssertCapacityRespected(t, state, poolCapacity, perPartitionCapacity)
	AssertOnlyEligible(t, state, eligible)
	AssertPartitionsMatch(t, state, active)
	AssertMaximal(t, state, eligible, poolCapacity, perPartitionCapacity)
}
