package roster

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/roster/internal/heartbeat"
	"github.com/arloliu/roster/internal/kvutil"
	"github.com/arloliu/roster/source"
)

// Heartbeat announces one worker as eligible by refreshing a TTL key in the
// heartbeat bucket. Workers without a live heartbeat are not listed by the
// source returned from NewKVWorkerSource.
type Heartbeat struct {
	pub *heartbeat.Publisher
}

// NewHeartbeat creates a heartbeat for worker.
//
// Only the logger and metrics options apply.
//
// Example:
//
//	hb, err := roster.NewHeartbeat(ctx, nc, &cfg, "alice")
//	if err != nil {
//	    return err
//	}
//	if err := hb.Start(ctx); err != nil {
//	    return err
//	}
//	defer hb.Stop(context.Background())
func NewHeartbeat(ctx context.Context, conn *nats.Conn, cfg *Config, worker Worker, opts ...Option) (*Heartbeat, error) {
	kv, err := openHeartbeatBucket(ctx, conn, cfg)
	if err != nil {
		return nil, err
	}

	options := &coordinatorOptions{}
	for _, opt := range opts {
		opt(options)
	}

	var hbOpts []heartbeat.Option
	if options.logger != nil {
		hbOpts = append(hbOpts, heartbeat.WithLogger(options.logger))
	}
	if options.metrics != nil {
		hbOpts = append(hbOpts, heartbeat.WithMetrics(options.metrics))
	}

	pub, err := heartbeat.New(kv, cfg.HeartbeatPrefix, worker, cfg.HeartbeatInterval, hbOpts...)
	if err != nil {
		return nil, err
	}

	return &Heartbeat{pub: pub}, nil
}

// Start publishes the first heartbeat and keeps refreshing it.
func (h *Heartbeat) Start(ctx context.Context) error {
	return h.pub.Start(ctx)
}

// Stop stops refreshing and deletes the heartbeat key.
func (h *Heartbeat) Stop(ctx context.Context) error {
	return h.pub.Stop(ctx)
}

// Worker returns the announced worker.
func (h *Heartbeat) Worker() Worker {
	return h.pub.Worker()
}

// NewKVWorkerSource returns a WorkerSource listing the workers with a live
// heartbeat, sorted by id.
func NewKVWorkerSource(ctx context.Context, conn *nats.Conn, cfg *Config) (*source.KVWorkers, error) {
	kv, err := openHeartbeatBucket(ctx, conn, cfg)
	if err != nil {
		return nil, err
	}

	return source.NewKVWorkers(kv, cfg.HeartbeatPrefix), nil
}

func openHeartbeatBucket(ctx context.Context, conn *nats.Conn, cfg *Config) (jetstream.KeyValue, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if conn == nil {
		return nil, ErrNATSConnectionRequired
	}

	SetDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to create jetstream context: %w", err)
	}

	return kvutil.EnsureKVBucketWithRetry(ctx, js, jetstream.KeyValueConfig{
		Bucket:  cfg.KVBuckets.HeartbeatBucket,
		History: 1,
		TTL:     cfg.HeartbeatTTL,
	}, cfg.KVBuckets.CreateRetries)
}
