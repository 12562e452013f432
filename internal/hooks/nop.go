package hooks

import (
	"context"

	"github.com/arloliu/roster/types"
)

// NopHooks implements Hooks with no-op callbacks.
//
// This is the default implementation used when no custom hooks are provided,
// eliminating the need for nil checks throughout the codebase.
type NopHooks struct{}

// Compile-time assertions that NopHooks implements hook callbacks.
var (
	_ func(context.Context, types.EpochResult) error        = (*NopHooks)(nil).OnEpochCompleted
	_ func(context.Context, types.State, types.State) error = (*NopHooks)(nil).OnStateChanged
	_ func(context.Context, error) error                    = (*NopHooks)(nil).OnError
)

// NewNop creates a new no-op hooks implementation.
//
// Returns:
//   - types.Hooks: Hooks with no-op implementations
func NewNop() types.Hooks {
	h := &NopHooks{}
	return types.Hooks{
		OnEpochCompleted: h.OnEpochCompleted,
		OnStateChanged:   h.OnStateChanged,
		OnError:          h.OnError,
	}
}

// Merge returns custom with every nil callback replaced by a no-op.
//
// Parameters:
//   - custom: User supplied hooks (may be nil)
//
// Returns:
//   - types.Hooks: Hooks whose callbacks are all non-nil
func Merge(custom *types.Hooks) types.Hooks {
	out := NewNop()
	if custom == nil {
		return out
	}

	if custom.OnEpochCompleted != nil {
		out.OnEpochCompleted = custom.OnEpochCompleted
	}
	if custom.OnStateChanged != nil {
		out.OnStateChanged = custom.OnStateChanged
	}
	if custom.OnError != nil {
		out.OnError = custom.OnError
	}

	return out
}

// OnEpochCompleted is a no-op implementation.
func (h *NopHooks) OnEpochCompleted(_ context.Context, _ types.EpochResult) error {
	return nil
}

// OnStateChanged is a no-op implementation.
func (h *NopHooks) OnStateChanged(_ context.Context, _, _ types.State) error {
	return nil
}

// OnError is a no-op implementation.
func (h *NopHooks) OnError(_ context.Context, _ error) error {
	return nil
}
