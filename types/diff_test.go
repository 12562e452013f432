package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	prev := &AssignmentState{
		Pool: ws("A"),
		Partitions: map[PartitionID][]Worker{
			10: ws("B", "C"),
			20: ws("D"),
		},
	}
	next := &AssignmentState{
		Pool: ws("A"),
		Partitions: map[PartitionID][]Worker{
			10: ws("C", "B"),
			20: ws("E"),
			30: ws("D"),
		},
	}

	d := Diff(prev, next)
	require.Equal(t, ws("A", "B", "C"), d.Kept, "reordering inside a group is not churn")
	require.Equal(t, ws("D"), d.Moved)
	require.Equal(t, ws("E"), d.Added)
	require.Empty(t, d.Removed)
	require.Equal(t, 2, d.Churn())

	t.Run("pool to partition counts as moved", func(t *testing.T) {
		d := Diff(
			&AssignmentState{Pool: ws("A"), Partitions: map[PartitionID][]Worker{}},
			&AssignmentState{Partitions: map[PartitionID][]Worker{10: ws("A")}},
		)
		require.Equal(t, ws("A"), d.Moved)
	})

	t.Run("nil states", func(t *testing.T) {
		d := Diff(nil, prev)
		require.Equal(t, ws("A", "B", "C", "D"), d.Added)

		d = Diff(prev, nil)
		require.Equal(t, ws("A", "B", "C", "D"), d.Removed)

		d = Diff(nil, nil)
		require.Zero(t, d.Churn())
	})
}

func TestCapacityConfig(t *testing.T) {
	require.ErrorIs(t, CapacityConfig{}.Validate(), ErrInvalidCapacity)
	require.NoError(t, CapacityConfig{MaxTotalWorkers: 1}.Validate(), "zero pool and partition capacity is legal")
	require.Equal(t, 7, CapacityConfig{PoolCapacity: 1, PerPartitionCapacity: 2}.Slots(3))
}

func TestParsePartitionID(t *testing.T) {
	id, err := ParsePartitionID("2000")
	require.NoError(t, err)
	require.Equal(t, PartitionID(2000), id)
	require.Equal(t, "2000", id.String())

	_, err = ParsePartitionID("-1")
	require.Error(t, err)

	_, err = ParsePartitionID("4294967296")
	require.Error(t, err)
}
