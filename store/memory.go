package store

import (
	"context"
	"sync"

	"github.com/arloliu/roster/types"
)

// Memory is an in-process StateStore with optimistic revision checks.
type Memory struct {
	mu       sync.Mutex
	snap     *types.Snapshot
	revision uint64
}

var _ types.StateStore = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Load returns a copy of the stored snapshot, or an epoch-0 snapshot if
// nothing has been stored.
func (m *Memory) Load(_ context.Context) (*types.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.snap == nil {
		return types.EmptySnapshot(), nil
	}

	out := cloneSnapshot(m.snap)
	out.Revision = m.revision

	return out, nil
}

// Store replaces the stored snapshot if snap.Revision is current.
func (m *Memory) Store(_ context.Context, snap *types.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if snap.Revision != m.revision {
		return types.ErrConcurrentUpdate
	}

	m.revision++
	m.snap = cloneSnapshot(snap)
	snap.Revision = m.revision

	return nil
}

func cloneSnapshot(s *types.Snapshot) *types.Snapshot {
	out := *s
	out.State = s.State.Clone()

	return &out
}
