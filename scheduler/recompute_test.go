package scheduler_test

import (
	"math/rand/v2"
	"testing"

	"github.com/arloliu/roster/scheduler"
	"github.com/arloliu/roster/test/testutil"
	"github.com/arloliu/roster/types"
	"github.com/stretchr/testify/require"
)

func ws(names ...string) []types.Worker {
	out := make([]types.Worker, len(names))
	for i, n := range names {
		out[i] = types.Worker(n)
	}

	return out
}

func TestRecompute_FillsOnlyOpenSlot(t *testing.T) {
	prev := &types.AssignmentState{
		Pool: ws("A"),
		Partitions: map[types.PartitionID][]types.Worker{
			10: ws("B", "C"),
			20: {},
		},
	}
	before := prev.Clone()

	next := scheduler.Recompute(ws("A", "B", "C", "D"), []types.PartitionID{10, 20}, 1, 2, prev)

	require.Equal(t, ws("A"), next.Pool)
	require.Equal(t, ws("B", "C"), next.Partitions[10])
	require.Equal(t, ws("D"), next.Partitions[20])
	require.True(t, before.Equal(prev), "previous state must not be modified")
}

func TestRecompute_PartitionRemoved(t *testing.T) {
	eligible := ws("A", "B", "C", "D")

	t.Run("survivor keeps its seat", func(t *testing.T) {
		prev := &types.AssignmentState{
			Pool: ws("A"),
			Partitions: map[types.PartitionID][]types.Worker{
				10: ws("B", "C"),
				20: ws("D"),
			},
		}

		next := scheduler.Recompute(eligible, []types.PartitionID{20}, 1, 2, prev)

		require.Equal(t, ws("A"), next.Pool)
		require.Equal(t, map[types.PartitionID][]types.Worker{20: ws("D", "B")}, next.Partitions)
		require.Equal(t, ws("C"), scheduler.Unassigned(eligible, next))
	})

	t.Run("released workers fill in eligible order", func(t *testing.T) {
		prev := &types.AssignmentState{
			Pool: ws("A"),
			Partitions: map[types.PartitionID][]types.Worker{
				10: ws("C", "B"),
				20: {},
			},
		}

		next := scheduler.Recompute(eligible, []types.PartitionID{20}, 1, 2, prev)

		require.Equal(t, ws("B", "C"), next.Partitions[20])
		require.Equal(t, ws("D"), scheduler.Unassigned(eligible, next))
	})
}

func TestRecompute_PoolShrink(t *testing.T) {
	prev := &types.AssignmentState{
		Pool:       ws("A", "B", "C"),
		Partitions: map[types.PartitionID][]types.Worker{},
	}

	next := scheduler.Recompute(ws("A", "B", "C"), []types.PartitionID{10}, 1, 2, prev)

	require.Equal(t, ws("A"), next.Pool)
	require.Equal(t, ws("B", "C"), next.Partitions[10], "truncated pool members are placed in the same pass")
}

func TestRecompute_PartitionShrinkKeepsSeniority(t *testing.T) {
	prev := &types.AssignmentState{
		Partitions: map[types.PartitionID][]types.Worker{
			10: ws("C", "A", "B"),
			20: {},
		},
	}

	next := scheduler.Recompute(ws("A", "B", "C"), []types.PartitionID{10, 20}, 0, 1, prev)

	require.Empty(t, next.Pool)
	require.Equal(t, ws("C"), next.Partitions[10])
	require.Equal(t, ws("A"), next.Partitions[20])
	require.Equal(t, ws("B"), scheduler.Unassigned(ws("A", "B", "C"), next))
}

func TestRecompute_DoubleAssignedPreviousKeepsFirstSlot(t *testing.T) {
	prev := &types.AssignmentState{
		Pool: ws("A"),
		Partitions: map[types.PartitionID][]types.Worker{
			1: ws("A", "B"),
			2: ws("B"),
		},
	}
	before := prev.Clone()

	next := scheduler.Recompute(ws("A", "B", "C"), []types.PartitionID{1, 2}, 1, 2, prev)

	require.Equal(t, ws("A"), next.Pool)
	require.Equal(t, ws("B", "C"), next.Partitions[1])
	require.Empty(t, next.Partitions[2])
	require.True(t, before.Equal(prev), "previous must not be mutated")
	testutil.AssertNoDoubleAssignment(t, next)
}

func TestRecompute_IneligibleWorkerCompacts(t *testing.T) {
	prev := &types.AssignmentState{
		Pool: ws("P1", "P2"),
		Partitions: map[types.PartitionID][]types.Worker{
			10: ws("A", "B", "C"),
		},
	}

	next := scheduler.Recompute(ws("P2", "A", "C", "N"), []types.PartitionID{10}, 2, 3, prev)

	require.Equal(t, ws("P2", "N"), next.Pool)
	require.Equal(t, ws("A", "C"), next.Partitions[10])
}

func TestRecompute_PartitionsFillInAscendingOrder(t *testing.T) {
	next := scheduler.Recompute(ws("A", "B", "C"), []types.PartitionID{30, 10, 20}, 0, 1, nil)

	require.Equal(t, ws("A"), next.Partitions[10])
	require.Equal(t, ws("B"), next.Partitions[20])
	require.Equal(t, ws("C"), next.Partitions[30])
}

func TestRecompute_EdgeCases(t *testing.T) {
	t.Run("nil previous", func(t *testing.T) {
		next := scheduler.Recompute(ws("A", "B"), []types.PartitionID{1}, 1, 1, nil)
		require.Equal(t, ws("A"), next.Pool)
		require.Equal(t, ws("B"), next.Partitions[1])
	})

	t.Run("no eligible workers", func(t *testing.T) {
		prev := &types.AssignmentState{Pool: ws("A"), Partitions: map[types.PartitionID][]types.Worker{1: ws("B")}}
		next := scheduler.Recompute(nil, []types.PartitionID{1, 2}, 1, 1, prev)
		require.Empty(t, next.Pool)
		require.Equal(t, []types.PartitionID{1, 2}, next.PartitionIDs())
		require.Empty(t, next.Partitions[1])
		require.Empty(t, next.Partitions[2])
	})

	t.Run("no active partitions", func(t *testing.T) {
		next := scheduler.Recompute(ws("A", "B"), nil, 1, 2, nil)
		require.Equal(t, ws("A"), next.Pool)
		require.Empty(t, next.Partitions)
	})

	t.Run("zero capacities", func(t *testing.T) {
		prev := &types.AssignmentState{Pool: ws("A"), Partitions: map[types.PartitionID][]types.Worker{1: ws("B")}}
		next := scheduler.Recompute(ws("A", "B"), []types.PartitionID{1}, 0, 0, prev)
		require.Empty(t, next.Pool)
		require.Empty(t, next.Partitions[1])
		require.Contains(t, next.Partitions, types.PartitionID(1))
	})

	t.Run("duplicate eligible worker queued once", func(t *testing.T) {
		next := scheduler.Recompute(ws("A", "A", "B"), []types.PartitionID{1}, 0, 3, nil)
		require.Equal(t, ws("A", "B"), next.Partitions[1])
	})

	t.Run("duplicate active partition", func(t *testing.T) {
		next := scheduler.Recompute(ws("A", "B"), []types.PartitionID{1, 1}, 0, 1, nil)
		require.Len(t, next.Partitions, 1)
		require.Equal(t, ws("A"), next.Partitions[1])
	})
}

func TestRecompute_Properties(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for i := range 300 {
		sc := testutil.RandomScenario(rng)
		before := sc.Previous.Clone()

		next := scheduler.Recompute(sc.Eligible, sc.Active, sc.PoolCapacity, sc.PerPartitionCapacity, sc.Previous)

		testutil.AssertSchedulingInvariants(t, next, sc.Eligible, sc.Active, sc.PoolCapacity, sc.PerPartitionCapacity)
		testutil.AssertSticky(t, sc.Previous, next, sc.Eligible, sc.Active, sc.PoolCapacity, sc.PerPartitionCapacity)
		require.True(t, before.Equal(sc.Previous), "scenario %d: previous modified", i)

		again := scheduler.Recompute(sc.Eligible, sc.Active, sc.PoolCapacity, sc.PerPartitionCapacity, sc.Previous)
		require.True(t, next.Equal(again), "scenario %d: not deterministic", i)
		require.Equal(t, next.Fingerprint(), again.Fingerprint())

		fixed := scheduler.Recompute(sc.Eligible, sc.Active, sc.PoolCapacity, sc.PerPartitionCapacity, next)
		require.True(t, next.Equal(fixed), "scenario %d: not idempotent", i)
	}
}

func TestRecompute_ActiveOrderDoesNotMatter(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for range 50 {
		sc := testutil.RandomScenario(rng)
		shuffled := append([]types.PartitionID(nil), sc.Active...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		a := scheduler.Recompute(sc.Eligible, sc.Active, sc.PoolCapacity, sc.PerPartitionCapacity, sc.Previous)
		b := scheduler.Recompute(sc.Eligible, shuffled, sc.PoolCapacity, sc.PerPartitionCapacity, sc.Previous)
		require.True(t, a.Equal(b))
	}
}

func BenchmarkRecompute(b *testing.B) {
	workers := testutil.Workers(1000)
	active := make([]types.PartitionID, 200)
	for i := range active {
		active[i] = types.PartitionID(i)
	}
	prev := scheduler.Recompute(workers, active, 50, 4, nil)
	eligible := workers[10:]

	b.ReportAllocs()
	for b.Loop() {
		_ = scheduler.Recompute(eligible, active, 50, 4, prev)
	}
}
