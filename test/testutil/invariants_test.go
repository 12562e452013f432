package testutil

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/roster/types"
)

func TestAssertions_AcceptValidState(t *testing.T) {
	state := &types.AssignmentState{
		Pool: []types.Worker{"a"},
		Partitions: map[types.PartitionID][]types.Worker{
			1: {"b", "c"},
			2: {"d"},
		},
	}

	AssertSchedulingInvariants(t, state, []types.Worker{"a", "b", "c", "d"}, []types.PartitionID{2, 1}, 1, 2)
	AssertSticky(t, state, state, []types.Worker{"a", "b", "c", "d"}, []types.PartitionID{1, 2}, 1, 2)
	AssertSticky(t, nil, state, nil, nil, 0, 0)
}

func TestWorkers(t *testing.T) {
	ws := Workers(3)
	require.Equal(t, []types.Worker{"w000", "w001", "w002"}, ws)
}

func TestRandomScenario(t *testing.T) {
	a := RandomScenario(rand.New(rand.NewPCG(3, 4)))
	b := RandomScenario(rand.New(rand.NewPCG(3, 4)))

	require.Equal(t, a.Eligible, b.Eligible, "same seed, same scenario")
	require.Equal(t, a.Active, b.Active)
	require.True(t, a.Previous.Equal(b.Previous))

	AssertNoDoubleAssignment(t, a.Previous)
}
