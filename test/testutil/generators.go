package testutil

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/arloliu/roster/types"
)

// Scenario is one randomly generated recompute input.
type Scenario struct {
	Eligible             []types.Worker
	Active               []types.PartitionID
	PoolCapacity         uint32
	PerPartitionCapacity uint32
	Previous             *types.AssignmentState
}

// Workers returns n workers named w000, w001, ... in ascending order.
func Workers(n int) []types.Worker {
	out := make([]types.Worker, n)
	for i := range n {
		out[i] = types.Worker(fmt.Sprintf("w%03d", i))
	}

	return out
}

// RandomScenario builds a scenario whose previous state is itself valid
// (no worker twice) but may violate the new capacities and reference
// workers or partitions that are no longer active.
func RandomScenario(rng *rand.Rand) Scenario {
	universe := Workers(5 + rng.IntN(40))

	eligible := make([]types.Worker, 0, len(universe))
	for _, w := range universe {
		if rng.IntN(4) != 0 {
			eligible = append(eligible, w)
		}
	}

	partitionUniverse := make([]types.PartitionID, 1+rng.IntN(8))
	for i := range partitionUniverse {
		partitionUniverse[i] = types.PartitionID(2000 + i)
	}

	active := make([]types.PartitionID, 0, len(partitionUniverse))
	for _, id := range partitionUniverse {
		if rng.IntN(3) != 0 {
			active = append(active, id)
		}
	}
	rng.Shuffle(len(active), func(i, j int) { active[i], active[j] = active[j], active[i] })

	prev := types.NewAssignmentState()
	shuffled := slices.Clone(universe)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	for _, w := range shuffled {
		switch slot := rng.IntN(len(partitionUniverse) + 2); {
		case slot == 0:
			prev.Pool = append(prev.Pool, w)
		case slot <= len(partitionUniverse):
			id := partitionUniverse[slot-1]
			prev.Partitions[id] = append(prev.Partitions[id], w)
		default:
			// unassigned
		}
	}

	return Scenario{
		Eligible:             eligible,
		Active:               active,
		PoolCapacity:         uint32(rng.IntN(6)),
		PerPartitionCapacity: uint32(rng.IntN(5)),
		Previous:             prev,
	}
}
