package roster

import (
	"sync"

	"github.com/arloliu/roster/types"
)

// epochSubscriber is one Subscribe channel.
type epochSubscriber struct {
	ch     chan types.EpochResult
	mu     sync.Mutex
	closed bool
}

// trySend delivers res without blocking. It reports false when the
// subscriber's buffer is full and the result was dropped.
func (s *epochSubscriber) trySend(res types.EpochResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return true
	}

	select {
	case s.ch <- res:
		return true
	default:
		return false
	}
}

// close safely closes the subscriber's channel.
func (s *epochSubscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
