package scheduler

import (
	"fmt"
	"time"

	"github.com/arloliu/roster/internal/logger"
	"github.com/arloliu/roster/internal/metrics"
	"github.com/arloliu/roster/types"
)

// Input is everything one epoch's recompute reads.
type Input struct {
	// Eligible workers in a deterministic order.
	Eligible []types.Worker

	// Active partition ids.
	Active []types.PartitionID

	// Capacity limits for this epoch.
	Capacity types.CapacityConfig

	// Previous is the state persisted by the last epoch; nil means none.
	Previous *types.AssignmentState
}

// Result is the outcome of one Schedule call.
type Result struct {
	// State is the next assignment.
	State *types.AssignmentState

	// Diff compares State with Input.Previous.
	Diff types.StateDiff

	// Unassigned lists eligible workers left without a slot, in eligible order.
	Unassigned []types.Worker

	// Duration is the time spent in Recompute.
	Duration time.Duration
}

// Scheduler validates inputs, runs Recompute and reports on the outcome.
//
// Scheduler holds no per-epoch state and is safe for concurrent use, but callers
// must still serialize epochs against one persisted state.
type Scheduler struct {
	logger  types.Logger
	metrics types.SchedulerMetrics
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l types.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics sink. Defaults to a no-op collector.
func WithMetrics(m types.SchedulerMetrics) Option {
	return func(s *Scheduler) {
		if m != nil {
			s.metrics = m
		}
	}
}

// New creates a Scheduler.
//
// Example:
//
//	sched := scheduler.New(scheduler.WithLogger(logger))
//	res, err := sched.Schedule(scheduler.Input{
//	    Eligible: workers,
//	    Active:   partitions,
//	    Capacity: types.CapacityConfig{MaxTotalWorkers: 100, PoolCapacity: 5, PerPartitionCapacity: 2},
//	    Previous: snapshot.State,
//	})
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		logger:  logger.NewNop(),
		metrics: metrics.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Schedule computes the next assignment.
//
// Returns:
//   - *Result: The next state with its diff and unassigned workers
//   - error: types.ErrInvalidCapacity for an unusable capacity,
//     types.ErrTooManyWorkers if more workers are eligible than MaxTotalWorkers
func (s *Scheduler) Schedule(in Input) (*Result, error) {
	if err := in.Capacity.Validate(); err != nil {
		return nil, err
	}

	if len(in.Eligible) > int(in.Capacity.MaxTotalWorkers) {
		return nil, fmt.Errorf("%w: %d eligible, max %d",
			types.ErrTooManyWorkers, len(in.Eligible), in.Capacity.MaxTotalWorkers)
	}

	start := time.Now()
	next := Recompute(in.Eligible, in.Active, in.Capacity.PoolCapacity, in.Capacity.PerPartitionCapacity, in.Previous)
	elapsed := time.Since(start)

	res := &Result{
		State:      next,
		Diff:       types.Diff(in.Previous, next),
		Unassigned: Unassigned(in.Eligible, next),
		Duration:   elapsed,
	}

	s.record(in, res)

	return res, nil
}

func (s *Scheduler) record(in Input, res *Result) {
	pool := len(res.State.Pool)
	assigned := res.State.Len() - pool

	s.metrics.RecordRecomputeDuration(res.Duration.Seconds())
	s.metrics.RecordChurn(len(res.Diff.Kept), len(res.Diff.Moved), len(res.Diff.Added), len(res.Diff.Removed))
	s.metrics.RecordAssignmentCounts(pool, assigned, len(res.Unassigned))
	s.metrics.RecordPartitionCount(len(res.State.Partitions))

	s.logger.Debug("recompute finished",
		"eligible", len(in.Eligible),
		"partitions", len(res.State.Partitions),
		"pool_capacity", in.Capacity.PoolCapacity,
		"per_partition_capacity", in.Capacity.PerPartitionCapacity,
		"duration", res.Duration,
	)

	if len(res.Unassigned) > 0 {
		s.logger.Info("eligible workers left unassigned",
			"unassigned", len(res.Unassigned),
			"slots", in.Capacity.Slots(len(res.State.Partitions)),
		)
	}

	if churn := res.Diff.Churn(); churn > 0 {
		s.logger.Info("assignment changed",
			"kept", len(res.Diff.Kept),
			"moved", len(res.Diff.Moved),
			"added", len(res.Diff.Added),
			"removed", len(res.Diff.Removed),
		)
	}
}
