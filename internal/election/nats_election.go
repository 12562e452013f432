package election

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/roster/types"
)

// Common errors for election operations.
var (
	ErrLeadershipLost  = errors.New("leadership was lost")
	ErrInvalidDuration = errors.New("invalid lease duration")
)

// LeaderInfo is the value stored under the leader key.
type LeaderInfo struct {
	NodeID     string    `json:"nodeId"`
	AcquiredAt time.Time `json:"acquiredAt"`
	RenewedAt  time.Time `json:"renewedAt"`
}

// NATSElection implements types.ElectionAgent on a NATS KV bucket.
//
// The bucket TTL is the lease; RequestLeadership's leaseDuration only has to be
// positive.
type NATSElection struct {
	kv  jetstream.KeyValue
	key string

	mu         sync.RWMutex
	nodeID     string
	acquiredAt time.Time
	revision   uint64
	isLeader   bool
}

var _ types.ElectionAgent = (*NATSElection)(nil)

// NewNATSElection creates a new NATS KV-based election agent.
//
// Parameters:
//   - kv: JetStream KV bucket with a short TTL (e.g. 10-30s)
//   - key: Key name for the leadership claim (e.g. "leader")
//
// Returns:
//   - *NATSElection: New election agent instance
func NewNATSElection(kv jetstream.KeyValue, key string) *NATSElection {
	return &NATSElection{kv: kv, key: key}
}

// RequestLeadership acquires leadership, or renews it if this agent already
// holds it for nodeID.
//
// Returns:
//   - bool: true if leadership is held after the call
//   - error: KV failure; losing the race is not an error
func (e *NATSElection) RequestLeadership(ctx context.Context, nodeID string, leaseDuration int64) (bool, error) {
	if leaseDuration <= 0 {
		return false, ErrInvalidDuration
	}

	isLeader, current, _ := e.state()
	if isLeader && current == nodeID {
		if err := e.RenewLeadership(ctx); err == nil {
			return true, nil
		}
	}

	now := time.Now()
	value, err := json.Marshal(LeaderInfo{NodeID: nodeID, AcquiredAt: now, RenewedAt: now})
	if err != nil {
		return false, err
	}

	revision, err := e.kv.Create(ctx, e.key, value)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyExists) {
			return false, nil
		}

		return false, fmt.Errorf("failed to create leader key: %w", err)
	}

	e.mu.Lock()
	e.isLeader = true
	e.nodeID = nodeID
	e.acquiredAt = now
	e.revision = revision
	e.mu.Unlock()

	return true, nil
}

// RenewLeadership extends the lease with a revision-checked update.
//
// Returns:
//   - error: types.ErrNotLeader if not leader, ErrLeadershipLost if the key was
//     taken over or expired
func (e *NATSElection) RenewLeadership(ctx context.Context) error {
	e.mu.RLock()
	isLeader, info, revision := e.isLeader, LeaderInfo{NodeID: e.nodeID, AcquiredAt: e.acquiredAt}, e.revision
	e.mu.RUnlock()

	if !isLeader {
		return types.ErrNotLeader
	}

	info.RenewedAt = time.Now()
	value, err := json.Marshal(info)
	if err != nil {
		return err
	}

	newRevision, err := e.kv.Update(ctx, e.key, value, revision)
	if err != nil {
		e.clear()

		return fmt.Errorf("%w: %w", ErrLeadershipLost, err)
	}

	e.mu.Lock()
	e.revision = newRevision
	e.mu.Unlock()

	return nil
}

// ReleaseLeadership deletes the leader key so another node can take over at once.
func (e *NATSElection) ReleaseLeadership(ctx context.Context) error {
	if isLeader, _, _ := e.state(); !isLeader {
		return types.ErrNotLeader
	}

	err := e.kv.Delete(ctx, e.key)
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("failed to delete leader key: %w", err)
	}

	e.mu.Lock()
	e.isLeader = false
	e.nodeID = ""
	e.revision = 0
	e.mu.Unlock()

	return nil
}

// IsLeader verifies against the KV bucket that this agent still holds the key.
func (e *NATSElection) IsLeader(ctx context.Context) (bool, error) {
	isLeader, _, revision := e.state()
	if !isLeader {
		return false, nil
	}

	entry, err := e.kv.Get(ctx, e.key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			e.clear()

			return false, nil
		}

		return false, fmt.Errorf("failed to get leader key: %w", err)
	}

	if entry.Revision() != revision {
		e.clear()

		return false, nil
	}

	return true, nil
}

// NodeID returns the node ID this agent holds leadership for, or "".
func (e *NATSElection) NodeID() string {
	if isLeader, nodeID, _ := e.state(); isLeader {
		return nodeID
	}

	return ""
}

// Leader reads the current leader from the bucket.
//
// Returns:
//   - LeaderInfo: The current holder
//   - bool: false if nobody holds leadership
//   - error: KV or decode failure
func Leader(ctx context.Context, kv jetstream.KeyValue, key string) (LeaderInfo, bool, error) {
	entry, err := kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return LeaderInfo{}, false, nil
		}

		return LeaderInfo{}, false, fmt.Errorf("failed to get leader key: %w", err)
	}

	var info LeaderInfo
	if err := json.Unmarshal(entry.Value(), &info); err != nil {
		return LeaderInfo{}, false, fmt.Errorf("failed to decode leader key: %w", err)
	}

	return info, true, nil
}

func (e *NATSElection) state() (isLeader bool, nodeID string, revision uint64) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.isLeader, e.nodeID, e.revision
}

func (e *NATSElection) clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.isLeader = false
}
