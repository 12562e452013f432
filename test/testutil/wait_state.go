package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/arloliu/roster/types"
)

// StateWaiter is the subset of Coordinator methods needed for waiting.
// Test doubles can implement it as well.
type StateWaiter interface {
	// WaitState waits for the expected state within the timeout.
	WaitState(expectedState types.State, timeout time.Duration) <-chan error
}

// WaitAllState waits for every coordinator to reach expectedState.
//
// The first failure cancels the remaining waits and is returned.
//
// Example:
//
//	err := testutil.WaitAllState(ctx, []testutil.StateWaiter{a, b}, types.StateFollower, 5*time.Second)
func WaitAllState(
	ctx context.Context,
	waiters []StateWaiter,
	expectedState types.State,
	timeout time.Duration,
) error {
	if len(waiters) == 0 {
		return nil
	}

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)

	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	wg.Add(len(waiters))
	for i, w := range waiters {
		go func(index int, w StateWaiter) {
			defer wg.Done()

			select {
			case err := <-w.WaitState(expectedState, timeout):
				if err != nil {
					errOnce.Do(func() {
						firstErr = fmt.Errorf("coordinator[%d] failed to reach state %s: %w", index, expectedState, err)
						cancel()
					})
				}
			case <-waitCtx.Done():
			}
		}(i, w)
	}

	wg.Wait()

	if firstErr != nil {
		return firstErr
	}

	return ctx.Err()
}

// WaitAnyState waits until any coordinator reaches expectedState and returns
// its index. Typical use is waiting for a leader.
//
// Example:
//
//	idx, err := testutil.WaitAnyState(waiters, types.StateLeader, 5*time.Second)
//	require.NoError(t, err)
func WaitAnyState(
	waiters []StateWaiter,
	expectedState types.State,
	timeout time.Duration,
) (int, error) {
	if len(waiters) == 0 {
		return -1, errors.New("no coordinators provided")
	}

	type result struct {
		index int
		err   error
	}

	resultCh := make(chan result, len(waiters))
	for i, w := range waiters {
		go func(index int, w StateWaiter) {
			resultCh <- result{index: index, err: <-w.WaitState(expectedState, timeout)}
		}(i, w)
	}

	errs := make([]error, 0, len(waiters))
	for range waiters {
		r := <-resultCh
		if r.err == nil {
			return r.index, nil
		}
		errs = append(errs, fmt.Errorf("coordinator[%d]: %w", r.index, r.err))
	}

	return -1, fmt.Errorf("no coordinator reached state %s: %w", expectedState, errors.Join(errs...))
}

// WaitStates waits for w to pass through states in order.
func WaitStates(ctx context.Context, w StateWaiter, states []types.State, timeout time.Duration) error {
	for i, state := range states {
		select {
		case err := <-w.WaitState(state, timeout):
			if err != nil {
				return fmt.Errorf("failed to reach state[%d] %s: %w", i, state, err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}
