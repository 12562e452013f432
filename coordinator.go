package roster

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/arloliu/roster/internal/election"
	"github.com/arloliu/roster/internal/hooks"
	"github.com/arloliu/roster/internal/kvutil"
	"github.com/arloliu/roster/internal/logger"
	"github.com/arloliu/roster/internal/metrics"
	"github.com/arloliu/roster/scheduler"
	"github.com/arloliu/roster/source"
	"github.com/arloliu/roster/store"
	"github.com/arloliu/roster/types"
)

// LeaderKey is the election key inside the election bucket.
const LeaderKey = "leader"

// subscriberBuffer is the channel capacity of each Subscribe channel.
const subscriberBuffer = 8

// Coordinator drives epoch boundaries for a fleet of workers.
//
// Any number of coordinators may run; a NATS KV election picks one leader and
// only the leader recomputes. Each epoch reads the eligible workers, the active
// partitions and the capacity, loads the previous snapshot, runs the scheduler
// and stores the new snapshot with an optimistic revision check.
//
// Thread Safety:
//   - All public methods are safe for concurrent use
//   - Epochs are serialized; at most one recompute runs per process
//
// Lifecycle:
//   - Create with NewCoordinator()
//   - Call Start() to open buckets and join the election
//   - Epochs run on EpochInterval, or on demand via AdvanceEpoch()
//   - Call Stop() to release leadership
type Coordinator struct {
	cfg        Config
	conn       *nats.Conn
	workers    types.WorkerSource
	partitions types.PartitionSource
	capacity   types.CapacitySource

	store         types.StateStore
	electionAgent types.ElectionAgent
	hooks         types.Hooks
	metrics       types.MetricsCollector
	logger        types.Logger
	scheduler     *scheduler.Scheduler

	nodeID string

	// State management
	state    atomic.Int32 // State
	isLeader atomic.Bool
	epoch    atomic.Uint64
	current  atomic.Pointer[types.AssignmentState]

	// epochMu serializes AdvanceEpoch.
	epochMu sync.Mutex

	subscribers      *xsync.Map[uint64, *epochSubscriber]
	nextSubscriberID atomic.Uint64

	// Lifecycle management
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewCoordinator creates a new Coordinator.
//
// Parameters:
//   - cfg: Configuration; missing values are filled with defaults
//   - conn: NATS connection for buckets and election
//   - workers: Eligible worker source; its order is the tie-break among new workers
//   - partitions: Active partition source
//   - opts: Optional configuration (capacity source, store, election, hooks, metrics, logger)
//
// Returns:
//   - *Coordinator: Initialized coordinator
//   - error: Validation error if configuration is invalid
//
// Example:
//
//	cfg := roster.DefaultConfig()
//	workers := source.NewStaticWorkers([]roster.Worker{"alice", "bob", "carol"})
//	partitions := source.NewStaticPartitions([]roster.PartitionID{2000, 2001})
//	coord, err := roster.NewCoordinator(&cfg, nc, workers, partitions)
func NewCoordinator(
	cfg *Config,
	conn *nats.Conn,
	workers WorkerSource,
	partitions PartitionSource,
	opts ...Option,
) (*Coordinator, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if conn == nil {
		return nil, ErrNATSConnectionRequired
	}
	if workers == nil {
		return nil, ErrWorkerSourceRequired
	}
	if partitions == nil {
		return nil, ErrPartitionSourceRequired
	}

	SetDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	options := &coordinatorOptions{}
	for _, opt := range opts {
		opt(options)
	}

	metricsCollector := options.metrics
	if metricsCollector == nil {
		metricsCollector = metrics.NewNop()
	}

	loggerInstance := options.logger
	if loggerInstance == nil {
		loggerInstance = logger.NewNop()
	}

	cfg.ValidateWithWarnings(loggerInstance)

	capacitySource := options.capacity
	if capacitySource == nil {
		capacitySource = source.NewStaticCapacity(cfg.Capacity)
	}

	nodeID := cfg.NodeID
	if nodeID == "" {
		nodeID = uuid.NewString()
	}

	c := &Coordinator{
		cfg:           *cfg,
		conn:          conn,
		workers:       workers,
		partitions:    partitions,
		capacity:      capacitySource,
		store:         options.store,
		electionAgent: options.electionAgent,
		hooks:         hooks.Merge(options.hooks),
		metrics:       metricsCollector,
		logger:        loggerInstance,
		scheduler: scheduler.New(
			scheduler.WithLogger(loggerInstance),
			scheduler.WithMetrics(metricsCollector),
		),
		nodeID:      nodeID,
		subscribers: xsync.NewMap[uint64, *epochSubscriber](),
	}
	c.state.Store(int32(StateInit))
	c.current.Store(types.NewAssignmentState())

	return c, nil
}

// Start opens the KV buckets, joins the election and starts the background
// loops. It returns once this node knows whether it is leader.
//
// Parameters:
//   - ctx: Context for cancellation; StartupTimeout also applies
//
// A failed Start leaves the coordinator unstarted and may be retried.
//
// Returns:
//   - error: ErrAlreadyStarted, bucket errors, or ErrElectionFailed
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.ctx != nil {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.mu.Unlock()

	startupCtx, cancel := context.WithTimeout(ctx, c.cfg.StartupTimeout)
	defer cancel()

	js, err := jetstream.New(c.conn)
	if err != nil {
		c.abortStart()
		return fmt.Errorf("failed to create jetstream context: %w", err)
	}

	buckets, err := kvutil.EnsureBuckets(startupCtx, js, c.cfg.KVBuckets.CreateRetries,
		jetstream.KeyValueConfig{Bucket: c.cfg.KVBuckets.AssignmentBucket, History: 1},
		jetstream.KeyValueConfig{Bucket: c.cfg.KVBuckets.ElectionBucket, History: 1, TTL: c.cfg.ElectionTTL},
		jetstream.KeyValueConfig{Bucket: c.cfg.KVBuckets.HeartbeatBucket, History: 1, TTL: c.cfg.HeartbeatTTL},
	)
	if err != nil {
		c.abortStart()
		return fmt.Errorf("failed to ensure KV buckets: %w", err)
	}

	if c.store == nil {
		c.store = store.NewKV(buckets[c.cfg.KVBuckets.AssignmentBucket],
			store.WithPrefix(c.cfg.AssignmentPrefix),
			store.WithPoolPartition(c.cfg.PoolPartition),
			store.WithLogger(c.logger),
			store.WithMetrics(c.metrics),
		)
	}
	if c.electionAgent == nil {
		c.electionAgent = election.NewNATSElection(buckets[c.cfg.KVBuckets.ElectionBucket], LeaderKey)
	}

	c.refreshFromStore(startupCtx)

	isLeader, err := c.electionAgent.RequestLeadership(startupCtx, c.nodeID, c.leaseSeconds())
	if err != nil {
		c.abortStart()
		return fmt.Errorf("%w: %w", ErrElectionFailed, err)
	}
	c.setLeader(isLeader)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.monitorLeadership()
	}()

	if c.cfg.EpochInterval > 0 {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.epochLoop()
		}()
	}

	c.logger.Info("coordinator started",
		"node_id", c.nodeID,
		"leader", isLeader,
		"epoch", c.CurrentEpoch(),
	)

	return nil
}

// abortStart undoes a failed Start so it can be retried.
func (c *Coordinator) abortStart() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	c.ctx, c.cancel = nil, nil
}

// Stop releases leadership and waits for background loops to exit.
//
// Subscriber channels are closed. Calling Stop twice returns ErrNotStarted.
func (c *Coordinator) Stop(ctx context.Context) error {
	c.mu.Lock()
	if c.ctx == nil || c.State() == StateShutdown {
		c.mu.Unlock()
		return ErrNotStarted
	}
	c.transitionState(c.State(), StateShutdown)
	c.cancel()
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		c.logger.Error("shutdown timeout exceeded, some goroutines may still be running")
		return ctx.Err()
	}

	var shutdownErr error
	if c.isLeader.Swap(false) {
		c.metrics.RecordLeadershipChange(c.nodeID, false)
		if err := c.electionAgent.ReleaseLeadership(ctx); err != nil {
			c.logger.Error("failed to release leadership", "error", err)
			shutdownErr = fmt.Errorf("leadership release failed: %w", err)
		}
	}

	// Wait for an in-flight epoch before closing subscriber channels.
	c.epochMu.Lock()
	c.subscribers.Range(func(id uint64, sub *epochSubscriber) bool {
		c.subscribers.Delete(id)
		sub.close()
		return true
	})
	c.epochMu.Unlock()

	c.logger.Info("coordinator stopped", "node_id", c.nodeID)

	return shutdownErr
}

// AdvanceEpoch runs one epoch boundary and returns its result.
//
// Steps: read workers, partitions and capacity; load the previous snapshot;
// recompute; store the new snapshot; notify subscribers and hooks.
// Concurrent calls are serialized. The epoch is bounded by OperationTimeout.
//
// Returns:
//   - *EpochResult: The new epoch
//   - error: ErrNotStarted, ErrNotLeader, or ErrEpochFailed wrapping the cause
//     (ErrTooManyWorkers, ErrConcurrentUpdate, source and store errors)
func (c *Coordinator) AdvanceEpoch(ctx context.Context) (*EpochResult, error) {
	switch c.State() {
	case StateInit, StateShutdown:
		return nil, ErrNotStarted
	case StateFollower, StateLeader:
	}
	if !c.IsLeader() {
		return nil, ErrNotLeader
	}

	c.epochMu.Lock()
	defer c.epochMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.OperationTimeout)
	defer cancel()

	start := time.Now()
	res, err := c.runEpoch(ctx)
	c.metrics.RecordEpochAttempt(err == nil)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrEpochFailed, err)
		c.logger.Error("epoch failed", "epoch", c.CurrentEpoch()+1, "error", err)
		if hookErr := c.hooks.OnError(ctx, err); hookErr != nil {
			c.logger.Error("error hook failed", "error", hookErr)
		}

		return nil, err
	}
	res.Duration = time.Since(start)
	c.metrics.RecordEpochDuration(res.Duration.Seconds())

	c.logger.Info("epoch completed",
		"epoch", res.Epoch,
		"run_id", res.RunID,
		"assigned", res.State.Len(),
		"unassigned", len(res.Unassigned),
		"churn", res.Diff.Churn(),
		"duration", res.Duration,
	)

	c.publish(*res)
	if err := c.hooks.OnEpochCompleted(ctx, *res); err != nil {
		c.logger.Error("epoch hook failed", "epoch", res.Epoch, "error", err)
	}

	return res, nil
}

func (c *Coordinator) runEpoch(ctx context.Context) (*EpochResult, error) {
	eligible, err := c.workers.ListWorkers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}

	active, err := c.partitions.ListPartitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list partitions: %w", err)
	}
	if slices.Contains(active, c.cfg.PoolPartition) {
		return nil, fmt.Errorf("%w: partition %d", types.ErrPoolPartitionConflict, c.cfg.PoolPartition)
	}

	capacity, err := c.capacity.Capacity(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read capacity: %w", err)
	}

	prev, err := c.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load previous snapshot: %w", err)
	}

	out, err := c.scheduler.Schedule(scheduler.Input{
		Eligible: eligible,
		Active:   active,
		Capacity: capacity,
		Previous: prev.State,
	})
	if err != nil {
		return nil, err
	}

	next := &types.Snapshot{
		Epoch:       prev.Epoch + 1,
		RunID:       uuid.NewString(),
		State:       out.State,
		Fingerprint: out.State.Fingerprint(),
		UpdatedAt:   time.Now().UTC(),
		Revision:    prev.Revision,
	}
	if err := c.store.Store(ctx, next); err != nil {
		if errors.Is(err, types.ErrConcurrentUpdate) {
			c.logger.Warn("snapshot was written by another leader", "epoch", next.Epoch)
		}

		return nil, fmt.Errorf("failed to store snapshot: %w", err)
	}

	c.epoch.Store(next.Epoch)
	c.current.Store(next.State.Clone())
	c.metrics.SetCurrentEpoch(next.Epoch)

	return &EpochResult{
		Epoch:      next.Epoch,
		RunID:      next.RunID,
		State:      next.State,
		Diff:       out.Diff,
		Unassigned: out.Unassigned,
	}, nil
}

// Subscribe returns a channel receiving every completed epoch and a function
// that cancels the subscription.
//
// Delivery never blocks the epoch: when the channel buffer is full the
// result is dropped for that subscriber. The channel is closed on cancel or
// Stop.
func (c *Coordinator) Subscribe() (<-chan EpochResult, func()) {
	id := c.nextSubscriberID.Add(1)
	sub := &epochSubscriber{ch: make(chan types.EpochResult, subscriberBuffer)}
	c.subscribers.Store(id, sub)

	return sub.ch, func() {
		if s, ok := c.subscribers.LoadAndDelete(id); ok {
			s.close()
		}
	}
}

func (c *Coordinator) publish(res EpochResult) {
	c.subscribers.Range(func(id uint64, sub *epochSubscriber) bool {
		if !sub.trySend(res) {
			c.metrics.RecordEpochDropped()
			c.logger.Warn("subscriber too slow, epoch dropped", "subscriber", id, "epoch", res.Epoch)
		}

		return true
	})
}

// NodeID returns the election identity of this coordinator.
func (c *Coordinator) NodeID() string {
	return c.nodeID
}

// IsLeader returns true if this coordinator holds leadership.
func (c *Coordinator) IsLeader() bool {
	return c.isLeader.Load()
}

// State returns the lifecycle state.
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

// CurrentEpoch returns the last epoch this node stored or observed.
func (c *Coordinator) CurrentEpoch() uint64 {
	return c.epoch.Load()
}

// CurrentState returns a copy of the assignment of CurrentEpoch.
func (c *Coordinator) CurrentState() *AssignmentState {
	return c.current.Load().Clone()
}

// WaitState waits for the coordinator to reach expectedState.
//
// The returned channel receives exactly one value, nil on success or
// context.DeadlineExceeded after timeout, and is then closed.
//
// Example:
//
//	if err := <-coord.WaitState(roster.StateLeader, 5*time.Second); err != nil {
//	    return fmt.Errorf("not elected: %w", err)
//	}
func (c *Coordinator) WaitState(expectedState State, timeout time.Duration) <-chan error {
	ch := make(chan error, 1)

	go func() {
		defer close(ch)

		if c.State() == expectedState {
			ch <- nil
			return
		}

		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()

		timeoutTimer := time.NewTimer(timeout)
		defer timeoutTimer.Stop()

		for {
			select {
			case <-ticker.C:
				if c.State() == expectedState {
					ch <- nil
					return
				}
			case <-timeoutTimer.C:
				ch <- context.DeadlineExceeded
				return
			}
		}
	}()

	return ch
}

// epochLoop advances the epoch on every tick while leader.
func (c *Coordinator) epochLoop() {
	ticker := time.NewTicker(c.cfg.EpochInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			if !c.IsLeader() {
				continue
			}
			// Errors are logged and reported to OnError inside AdvanceEpoch.
			_, _ = c.AdvanceEpoch(c.ctx)
		}
	}
}

// monitorLeadership renews the lease while leader and tries to acquire it
// while follower. Followers also refresh the observed epoch from the store.
func (c *Coordinator) monitorLeadership() {
	ticker := time.NewTicker(c.cfg.ElectionTTL / 3)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			opCtx, cancel := context.WithTimeout(c.ctx, c.cfg.OperationTimeout)
			c.leadershipTick(opCtx)
			cancel()
		}
	}
}

func (c *Coordinator) leadershipTick(ctx context.Context) {
	if c.IsLeader() {
		if err := c.electionAgent.RenewLeadership(ctx); err != nil {
			if c.ctx.Err() != nil {
				return
			}
			c.logger.Error("failed to renew leadership", "error", err)
			c.setLeader(false)
		}

		return
	}

	isLeader, err := c.electionAgent.RequestLeadership(ctx, c.nodeID, c.leaseSeconds())
	if err != nil {
		c.logger.Error("failed to request leadership", "error", err)
		return
	}
	if isLeader {
		c.setLeader(true)
		return
	}

	c.refreshFromStore(ctx)
}

// refreshFromStore updates CurrentEpoch and CurrentState from the store.
func (c *Coordinator) refreshFromStore(ctx context.Context) {
	snap, err := c.store.Load(ctx)
	if err != nil {
		c.logger.Warn("failed to load snapshot", "error", err)
		return
	}
	if snap.Epoch <= c.epoch.Load() {
		return
	}

	c.epoch.Store(snap.Epoch)
	c.current.Store(snap.State)
	c.metrics.SetCurrentEpoch(snap.Epoch)
}

func (c *Coordinator) setLeader(isLeader bool) {
	was := c.isLeader.Swap(isLeader)
	if was != isLeader {
		c.metrics.RecordLeadershipChange(c.nodeID, isLeader)
		if isLeader {
			c.logger.Info("became leader", "node_id", c.nodeID)
		} else {
			c.logger.Info("lost leadership", "node_id", c.nodeID)
		}
	}

	to := StateFollower
	if isLeader {
		to = StateLeader
	}
	c.transitionState(c.State(), to)
}

func (c *Coordinator) leaseSeconds() int64 {
	return int64(c.cfg.ElectionTTL / time.Second)
}

// transitionState transitions to a new state and triggers hooks.
func (c *Coordinator) transitionState(from, to State) {
	if from == to || !isValidTransition(from, to) {
		return
	}
	if !c.state.CompareAndSwap(int32(from), int32(to)) { //nolint:gosec // State values are controlled enum
		return
	}

	c.logger.Info("state transition", "from", from.String(), "to", to.String(), "node_id", c.nodeID)

	// Run hook in background to avoid blocking the election loop
	go func() {
		if err := c.hooks.OnStateChanged(c.ctx, from, to); err != nil {
			c.logger.Error("state change hook error", "from", from, "to", to, "error", err)
		}
	}()
}

func isValidTransition(from, to State) bool {
	validTransitions := map[State][]State{
		StateInit:     {StateFollower, StateLeader, StateShutdown},
		StateFollower: {StateLeader, StateShutdown},
		StateLeader:   {StateFollower, StateShutdown},
		StateShutdown: {},
	}

	return slices.Contains(validTransitions[from], to)
}
