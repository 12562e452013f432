package testutil

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/roster/types"
)

// fakeCoordinator implements StateWaiter for testing.
type fakeCoordinator struct {
	state atomic.Int32
}

func newFakeCoordinator(initial types.State) *fakeCoordinator {
	f := &fakeCoordinator{}
	f.state.Store(int32(initial))

	return f
}

func (f *fakeCoordinator) transitionAfter(delay time.Duration, to types.State) {
	go func() {
		time.Sleep(delay)
		f.state.Store(int32(to))
	}()
}

func (f *fakeCoordinator) WaitState(expected types.State, timeout time.Duration) <-chan error {
	ch := make(chan error, 1)
	go func() {
		defer close(ch)

		deadline := time.Now().Add(timeout)
		for time.Now().Before(deadline) {
			if types.State(f.state.Load()) == expected {
				ch <- nil
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
		ch <- context.DeadlineExceeded
	}()

	return ch
}

func TestWaitAllState(t *testing.T) {
	t.Run("all succeed", func(t *testing.T) {
		a := newFakeCoordinator(types.StateInit)
		b := newFakeCoordinator(types.StateInit)
		a.transitionAfter(20*time.Millisecond, types.StateFollower)
		b.transitionAfter(40*time.Millisecond, types.StateFollower)

		err := WaitAllState(t.Context(), []StateWaiter{a, b}, types.StateFollower, time.Second)
		require.NoError(t, err)
	})

	t.Run("one times out", func(t *testing.T) {
		a := newFakeCoordinator(types.StateFollower)
		b := newFakeCoordinator(types.StateInit)

		err := WaitAllState(t.Context(), []StateWaiter{a, b}, types.StateFollower, 50*time.Millisecond)
		require.ErrorIs(t, err, context.DeadlineExceeded)
		require.Contains(t, err.Error(), "coordinator[1]")
	})

	t.Run("context cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		err := WaitAllState(ctx, []StateWaiter{newFakeCoordinator(types.StateInit)}, types.StateLeader, time.Second)
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("empty", func(t *testing.T) {
		require.NoError(t, WaitAllState(t.Context(), nil, types.StateLeader, time.Second))
	})
}

func TestWaitAnyState(t *testing.T) {
	t.Run("first leader wins", func(t *testing.T) {
		a := newFakeCoordinator(types.StateFollower)
		b := newFakeCoordinator(types.StateFollower)
		b.transitionAfter(20*time.Millisecond, types.StateLeader)

		idx, err := WaitAnyState([]StateWaiter{a, b}, types.StateLeader, time.Second)
		require.NoError(t, err)
		require.Equal(t, 1, idx)
	})

	t.Run("all time out", func(t *testing.T) {
		idx, err := WaitAnyState([]StateWaiter{newFakeCoordinator(types.StateFollower)}, types.StateLeader, 30*time.Millisecond)
		require.Error(t, err)
		require.Equal(t, -1, idx)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := WaitAnyState(nil, types.StateLeader, time.Second)
		require.Error(t, err)
	})
}

func TestWaitStates(t *testing.T) {
	f := newFakeCoordinator(types.StateInit)
	f.transitionAfter(20*time.Millisecond, types.StateFollower)

	err := WaitStates(t.Context(), f, []types.State{types.StateInit, types.StateFollower}, time.Second)
	require.NoError(t, err)

	err = WaitStates(t.Context(), f, []types.State{types.StateLeader}, 30*time.Millisecond)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
