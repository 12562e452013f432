package roster

import (
	"context"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/roster/source"
)

func testSources() (*source.StaticWorkers, *source.StaticPartitions) {
	return source.NewStaticWorkers([]Worker{"alice", "bob"}), source.NewStaticPartitions([]PartitionID{2000})
}

func TestNewCoordinator_NilSafety(t *testing.T) {
	cfg := TestConfig()
	conn := &nats.Conn{} // never dialed; Start is not called
	workers, partitions := testSources()

	t.Run("without optional dependencies", func(t *testing.T) {
		coord, err := NewCoordinator(&cfg, conn, workers, partitions)
		require.NoError(t, err)
		require.NotNil(t, coord)

		require.NotNil(t, coord.hooks.OnEpochCompleted)
		require.NotNil(t, coord.hooks.OnStateChanged)
		require.NotNil(t, coord.hooks.OnError)
		require.NotNil(t, coord.metrics)
		require.NotNil(t, coord.logger)
		require.NotNil(t, coord.capacity)
		require.Nil(t, coord.store, "store is created on Start")
		require.Nil(t, coord.electionAgent, "election is created on Start")
		require.NotEmpty(t, coord.NodeID())

		require.NotPanics(t, func() {
			coord.transitionState(StateInit, StateFollower)
		})
		require.Equal(t, StateFollower, coord.State())
	})

	t.Run("keeps configured node id", func(t *testing.T) {
		named := cfg
		named.NodeID = "node-a"
		coord, err := NewCoordinator(&named, conn, workers, partitions, WithHooks(&Hooks{}))
		require.NoError(t, err)
		require.Equal(t, "node-a", coord.NodeID())
	})

	t.Run("nil options fall back to defaults", func(t *testing.T) {
		coord, err := NewCoordinator(&cfg, conn, workers, partitions,
			WithLogger(nil), WithMetrics(nil), WithHooks(nil), WithCapacitySource(nil))
		require.NoError(t, err)
		require.NotNil(t, coord.logger)
		require.NotNil(t, coord.capacity)
	})
}

func TestNewCoordinator_RequiredParameters(t *testing.T) {
	cfg := TestConfig()
	conn := &nats.Conn{}
	workers, partitions := testSources()

	t.Run("nil config", func(t *testing.T) {
		coord, err := NewCoordinator(nil, conn, workers, partitions)
		require.ErrorIs(t, err, ErrInvalidConfig)
		require.Nil(t, coord)
	})

	t.Run("nil connection", func(t *testing.T) {
		coord, err := NewCoordinator(&cfg, nil, workers, partitions)
		require.ErrorIs(t, err, ErrNATSConnectionRequired)
		require.Nil(t, coord)
	})

	t.Run("nil worker source", func(t *testing.T) {
		coord, err := NewCoordinator(&cfg, conn, nil, partitions)
		require.ErrorIs(t, err, ErrWorkerSourceRequired)
		require.Nil(t, coord)
	})

	t.Run("nil partition source", func(t *testing.T) {
		coord, err := NewCoordinator(&cfg, conn, workers, nil)
		require.ErrorIs(t, err, ErrPartitionSourceRequired)
		require.Nil(t, coord)
	})

	t.Run("invalid config", func(t *testing.T) {
		bad := cfg
		bad.HeartbeatTTL = bad.HeartbeatInterval
		coord, err := NewCoordinator(&bad, conn, workers, partitions)
		require.ErrorIs(t, err, ErrInvalidConfig)
		require.Nil(t, coord)
	})
}

func TestCoordinator_NotStarted(t *testing.T) {
	cfg := TestConfig()
	workers, partitions := testSources()
	coord, err := NewCoordinator(&cfg, &nats.Conn{}, workers, partitions)
	require.NoError(t, err)

	_, err = coord.AdvanceEpoch(t.Context())
	require.ErrorIs(t, err, ErrNotStarted)

	require.ErrorIs(t, coord.Stop(t.Context()), ErrNotStarted)
	require.Zero(t, coord.CurrentEpoch())
	require.Zero(t, coord.CurrentState().Len())
	require.False(t, coord.IsLeader())
}

func TestCoordinator_WaitState(t *testing.T) {
	cfg := TestConfig()
	workers, partitions := testSources()
	coord, err := NewCoordinator(&cfg, &nats.Conn{}, workers, partitions)
	require.NoError(t, err)

	t.Run("already in state", func(t *testing.T) {
		require.NoError(t, <-coord.WaitState(StateInit, time.Second))
	})

	t.Run("transition", func(t *testing.T) {
		ch := coord.WaitState(StateLeader, time.Second)
		go func() {
			time.Sleep(30 * time.Millisecond)
			coord.transitionState(StateInit, StateLeader)
		}()
		require.NoError(t, <-ch)
	})

	t.Run("timeout", func(t *testing.T) {
		err := <-coord.WaitState(StateShutdown, 50*time.Millisecond)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("channel closed after result", func(t *testing.T) {
		ch := coord.WaitState(StateLeader, time.Second)
		<-ch
		_, ok := <-ch
		require.False(t, ok)
	})
}

func TestIsValidTransition(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{StateInit, StateFollower, true},
		{StateInit, StateLeader, true},
		{StateFollower, StateLeader, true},
		{StateLeader, StateFollower, true},
		{StateLeader, StateShutdown, true},
		{StateShutdown, StateLeader, false},
		{StateFollower, StateInit, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			require.Equal(t, tt.want, isValidTransition(tt.from, tt.to))
		})
	}
}

func TestEpochSubscriber(t *testing.T) {
	sub := &epochSubscriber{ch: make(chan EpochResult, 1)}

	require.True(t, sub.trySend(EpochResult{Epoch: 1}))
	require.False(t, sub.trySend(EpochResult{Epoch: 2}), "buffer full")

	sub.close()
	sub.close()
	require.True(t, sub.trySend(EpochResult{Epoch: 3}), "closed subscribers do not count as drops")

	res, ok := <-sub.ch
	require.True(t, ok)
	require.Equal(t, uint64(1), res.Epoch)
	_, ok = <-sub.ch
	require.False(t, ok)
}
