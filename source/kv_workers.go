package source

import (
	"context"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/roster/internal/kvutil"
	"github.com/arloliu/roster/internal/natsutil"
	"github.com/arloliu/roster/types"
)

// KVWorkers lists eligible workers from heartbeat keys.
//
// A worker is eligible while its "<prefix>.<worker>" key exists. Keys are
// refreshed by heartbeat publishers and expire through the bucket TTL.
type KVWorkers struct {
	kv     jetstream.KeyValue
	prefix string
}

var _ types.WorkerSource = (*KVWorkers)(nil)

// NewKVWorkers creates a worker source over the heartbeat bucket.
//
// Parameters:
//   - kv: Heartbeat bucket, configured with a TTL
//   - prefix: Heartbeat key prefix (e.g. "hb")
func NewKVWorkers(kv jetstream.KeyValue, prefix string) *KVWorkers {
	return &KVWorkers{kv: kv, prefix: prefix}
}

// ListWorkers returns the workers with a live heartbeat, sorted by id.
//
// Keys outside the prefix are ignored. An empty bucket yields an empty list.
func (s *KVWorkers) ListWorkers(ctx context.Context) ([]types.Worker, error) {
	keys, err := kvutil.ListKeys(ctx, s.kv)
	if err != nil {
		return nil, natsutil.Wrap("list heartbeats", err)
	}

	workers := make([]types.Worker, 0, len(keys))
	for _, k := range keys {
		if token, ok := natsutil.TrimKey(s.prefix, k); ok {
			workers = append(workers, types.Worker(token))
		}
	}

	return workers, nil
}
