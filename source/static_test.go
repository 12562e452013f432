package source

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/roster/types"
)

func TestStaticWorkers_ListWorkers(t *testing.T) {
	t.Run("returns sorted unique workers", func(t *testing.T) {
		src := NewStaticWorkers([]types.Worker{"carol", "alice", "bob", "alice"})

		result, err := src.ListWorkers(t.Context())

		require.NoError(t, err)
		require.Equal(t, []types.Worker{"alice", "bob", "carol"}, result)
	})

	t.Run("returns empty list when no workers", func(t *testing.T) {
		src := NewStaticWorkers(nil)

		result, err := src.ListWorkers(t.Context())

		require.NoError(t, err)
		require.Empty(t, result)
	})

	t.Run("does not expose internal slice", func(t *testing.T) {
		input := []types.Worker{"b", "a"}
		src := NewStaticWorkers(input)
		require.Equal(t, []types.Worker{"b", "a"}, input, "input is not sorted in place")

		result, err := src.ListWorkers(t.Context())
		require.NoError(t, err)
		result[0] = "z"

		again, _ := src.ListWorkers(t.Context())
		require.Equal(t, types.Worker("a"), again[0])
	})
}

func TestStaticWorkers_Update(t *testing.T) {
	src := NewStaticWorkers([]types.Worker{"a"})
	src.Update([]types.Worker{"c", "b"})

	result, err := src.ListWorkers(t.Context())
	require.NoError(t, err)
	require.Equal(t, []types.Worker{"b", "c"}, result)
}

func TestStaticPartitions(t *testing.T) {
	src := NewStaticPartitions([]types.PartitionID{20, 10})

	result, err := src.ListPartitions(t.Context())
	require.NoError(t, err)
	require.Equal(t, []types.PartitionID{20, 10}, result)

	result[0] = 99
	src.Update([]types.PartitionID{30})

	result, err = src.ListPartitions(t.Context())
	require.NoError(t, err)
	require.Equal(t, []types.PartitionID{30}, result)
}

func TestStaticCapacity(t *testing.T) {
	cfg := types.CapacityConfig{MaxTotalWorkers: 10, PoolCapacity: 2, PerPartitionCapacity: 3}
	src := NewStaticCapacity(cfg)

	got, err := src.Capacity(t.Context())
	require.NoError(t, err)
	require.Equal(t, cfg, got)

	cfg.PoolCapacity = 0
	src.Update(cfg)
	got, err = src.Capacity(t.Context())
	require.NoError(t, err)
	require.Zero(t, got.PoolCapacity)
}
