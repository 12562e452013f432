package types

import "context"

// Hooks defines callbacks for Coordinator lifecycle events.
//
// All hooks are optional and called asynchronously in background goroutines
// so that a slow hook never delays the next epoch. Hooks receive the
// coordinator's lifecycle context which is cancelled during shutdown.
//
// Hook execution behavior:
//   - Hooks run concurrently and may not complete before Stop() returns
//   - Hook errors are logged but don't fail coordinator operations
//
// Example:
//
//	hooks := &roster.Hooks{
//	    OnEpochCompleted: func(ctx context.Context, res roster.EpochResult) error {
//	        log.Printf("epoch %d: churn=%d", res.Epoch, res.Diff.Churn())
//	        return nil
//	    },
//	}
type Hooks struct {
	// OnEpochCompleted is called after a new assignment has been persisted.
	OnEpochCompleted func(ctx context.Context, result EpochResult) error

	// OnStateChanged is called when the coordinator state transitions.
	OnStateChanged func(ctx context.Context, from, to State) error

	// OnError is called when a recoverable error occurs.
	OnError func(ctx context.Context, err error) error
}
