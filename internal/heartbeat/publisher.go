package heartbeat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/roster/internal/logger"
	"github.com/arloliu/roster/internal/metrics"
	"github.com/arloliu/roster/internal/natsutil"
	"github.com/arloliu/roster/types"
)

// Common errors for heartbeat operations.
var (
	ErrNotStarted     = errors.New("publisher not started")
	ErrAlreadyStarted = errors.New("publisher already started")
)

// Beat is the value written under a worker's heartbeat key.
type Beat struct {
	Worker      types.Worker `json:"worker"`
	PublishedAt time.Time    `json:"publishedAt"`
}

// Publisher announces a worker as eligible by refreshing a TTL key.
//
// While the key exists the worker is listed by source.KVWorkers. A crashed
// worker drops out once the bucket TTL expires; Stop removes the key at once.
type Publisher struct {
	kv       jetstream.KeyValue
	key      string
	worker   types.Worker
	interval time.Duration
	logger   types.Logger
	metrics  types.WorkerMetrics

	mu      sync.Mutex
	started bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger sets the logger used for failed publications.
func WithLogger(l types.Logger) Option {
	return func(p *Publisher) {
		p.logger = l
	}
}

// WithMetrics sets the heartbeat metrics sink.
func WithMetrics(m types.WorkerMetrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// New creates a heartbeat publisher for worker.
//
// The KV bucket should be configured with a TTL of ~3x the interval so that a
// worker is dropped after three missed heartbeats.
//
// Parameters:
//   - kv: JetStream KV bucket for heartbeat storage
//   - prefix: Key prefix (e.g. "hb"); the key is "<prefix>.<worker>"
//   - worker: Worker identity; must be a valid KV key token
//   - interval: Heartbeat interval (typically 2s)
//
// Returns:
//   - *Publisher: New heartbeat publisher instance
//   - error: types.ErrInvalidWorkerID if worker cannot be used as a key token
//
// Example:
//
//	pub, err := heartbeat.New(kv, "hb", "alice", 2*time.Second)
//	if err != nil {
//	    return err
//	}
//	if err := pub.Start(ctx); err != nil {
//	    return err
//	}
//	defer pub.Stop(context.Background())
func New(kv jetstream.KeyValue, prefix string, worker types.Worker, interval time.Duration, opts ...Option) (*Publisher, error) {
	if err := natsutil.ValidateKeyToken(string(worker)); err != nil {
		return nil, err
	}
	if interval <= 0 {
		return nil, fmt.Errorf("heartbeat interval must be > 0, got %v", interval)
	}

	p := &Publisher{
		kv:       kv,
		key:      natsutil.Key(prefix, string(worker)),
		worker:   worker,
		interval: interval,
		logger:   logger.NewNop(),
		metrics:  metrics.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Start publishes the first heartbeat synchronously, then keeps publishing
// every interval until Stop is called.
//
// Returns:
//   - error: ErrAlreadyStarted if running, or the error of the first publication
func (p *Publisher) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return ErrAlreadyStarted
	}

	if err := p.publish(ctx); err != nil {
		p.metrics.RecordHeartbeat(string(p.worker), false)
		return fmt.Errorf("failed to publish initial heartbeat: %w", err)
	}
	p.metrics.RecordHeartbeat(string(p.worker), true)

	p.started = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	go p.loop(p.stopCh, p.doneCh)

	return nil
}

// Stop stops publishing and deletes the heartbeat key so the worker becomes
// ineligible immediately instead of after the TTL.
//
// Returns:
//   - error: ErrNotStarted if not running, or the delete error
func (p *Publisher) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return ErrNotStarted
	}
	p.started = false
	close(p.stopCh)
	done := p.doneCh
	p.mu.Unlock()

	<-done

	if err := p.kv.Delete(ctx, p.key); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("stopped but failed to delete heartbeat: %w", err)
	}

	return nil
}

func (p *Publisher) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), p.interval)
			err := p.publish(ctx)
			cancel()

			if err != nil {
				p.logger.Warn("heartbeat publish failed", "worker", p.worker, "error", err)
			}
			p.metrics.RecordHeartbeat(string(p.worker), err == nil)
		}
	}
}

func (p *Publisher) publish(ctx context.Context) error {
	value, err := json.Marshal(Beat{Worker: p.worker, PublishedAt: time.Now()})
	if err != nil {
		return err
	}

	if _, err := p.kv.Put(ctx, p.key, value); err != nil {
		return natsutil.Wrap("publish heartbeat for "+string(p.worker), err)
	}

	return nil
}

// Worker returns the announced worker identity.
func (p *Publisher) Worker() types.Worker {
	return p.worker
}

// Key returns the KV key this publisher refreshes.
func (p *Publisher) Key() string {
	return p.key
}

// IsStarted returns whether the publisher is currently running.
func (p *Publisher) IsStarted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.started
}
