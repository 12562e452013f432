package scheduler

import "github.com/arloliu/roster/types"

// Recompute derives the next assignment from previous.
//
// previous is never modified; a nil previous is treated as an empty state.
// Running out of workers is not an error: slots stay empty. A worker listed
// twice in eligible is queued once, and a worker holding more than one slot in
// previous keeps only its first one (pool first, then ascending partition id).
//
// Parameters:
//   - eligible: Eligible workers in the caller's deterministic order
//   - active: Active partition ids (any order)
//   - poolCapacity: Size of the high-priority pool
//   - perPartitionCapacity: Worker slots per partition
//   - previous: The state persisted by the previous epoch
//
// Returns:
//   - *types.AssignmentState: The next state
//
// Example:
//
//	prev := &types.AssignmentState{
//	    Pool:       []types.Worker{"A"},
//	    Partitions: map[types.PartitionID][]types.Worker{10: {"B", "C"}, 20: {}},
//	}
//	next := scheduler.Recompute([]types.Worker{"A", "B", "C", "D"}, []types.PartitionID{10, 20}, 1, 2, prev)
//	// next.Pool == [A], next.Partitions == {10: [B C], 20: [D]}
func Recompute(
	eligible []types.Worker,
	active []types.PartitionID,
	poolCapacity uint32,
	perPartitionCapacity uint32,
	previous *types.AssignmentState,
) *types.AssignmentState {
	state := previous.Clone()
	state.RemoveDuplicates()

	state.RemoveWorkersNotIn(eligible)
	state.RemovePartitionsNotIn(active)
	state.TruncatePool(int(poolCapacity))
	state.TruncatePartitions(int(perPartitionCapacity))

	queue := types.NewWorkerQueue(newlyEligible(eligible, state))

	state.FillPool(int(poolCapacity), queue)
	state.AddMissingPartitions(active)
	state.FillPartitions(int(perPartitionCapacity), queue)

	return state
}

// newlyEligible returns the eligible workers that hold no slot in state,
// preserving eligible order and dropping duplicates.
func newlyEligible(eligible []types.Worker, state *types.AssignmentState) []types.Worker {
	taken := state.AssignedSet()
	out := make([]types.Worker, 0, len(eligible))
	for _, w := range eligible {
		if _, ok := taken[w]; ok {
			continue
		}
		taken[w] = struct{}{}
		out = append(out, w)
	}

	return out
}

// Unassigned returns the eligible workers that hold no slot in state, in
// eligible order.
func Unassigned(eligible []types.Worker, state *types.AssignmentState) []types.Worker {
	return newlyEligible(eligible, state)
}
