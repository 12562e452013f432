package roster

import "github.com/arloliu/roster/types"

// Option configures a Coordinator with optional dependencies.
type Option func(*coordinatorOptions)

// coordinatorOptions holds optional Coordinator configuration.
type coordinatorOptions struct {
	capacity      types.CapacitySource
	store         types.StateStore
	electionAgent types.ElectionAgent
	hooks         *types.Hooks
	metrics       types.MetricsCollector
	logger        types.Logger
}

// WithCapacitySource reads capacity from src at every epoch instead of using
// Config.Capacity.
//
// Example:
//
//	capSrc := source.NewStaticCapacity(cfg.Capacity)
//	coord, _ := roster.NewCoordinator(&cfg, nc, workers, partitions, roster.WithCapacitySource(capSrc))
//	// Later: shrink the pool; applies from the next epoch
//	capSrc.Update(types.CapacityConfig{MaxTotalWorkers: 100, PoolCapacity: 1, PerPartitionCapacity: 2})
func WithCapacitySource(src CapacitySource) Option {
	return func(o *coordinatorOptions) {
		o.capacity = src
	}
}

// WithStateStore replaces the default NATS KV state store.
//
// Example:
//
//	coord, _ := roster.NewCoordinator(&cfg, nc, workers, partitions, roster.WithStateStore(store.NewMemory()))
func WithStateStore(st StateStore) Option {
	return func(o *coordinatorOptions) {
		o.store = st
	}
}

// WithElectionAgent sets a custom election agent.
//
// The default is a NATS KV election on Config.KVBuckets.ElectionBucket.
func WithElectionAgent(agent ElectionAgent) Option {
	return func(o *coordinatorOptions) {
		o.electionAgent = agent
	}
}

// WithHooks sets lifecycle event hooks.
//
// Example:
//
//	hooks := &roster.Hooks{
//	    OnEpochCompleted: func(ctx context.Context, res roster.EpochResult) error {
//	        return publish(res.State)
//	    },
//	}
//	coord, _ := roster.NewCoordinator(&cfg, nc, workers, partitions, roster.WithHooks(hooks))
func WithHooks(hooks *Hooks) Option {
	return func(o *coordinatorOptions) {
		o.hooks = hooks
	}
}

// WithMetrics sets a metrics collector.
//
// Example:
//
//	coord, _ := roster.NewCoordinator(&cfg, nc, workers, partitions,
//	    roster.WithMetrics(roster.NewPrometheusMetrics(prometheus.DefaultRegisterer, "")))
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *coordinatorOptions) {
		o.metrics = metrics
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (compatible with zap.SugaredLogger)
func WithLogger(logger Logger) Option {
	return func(o *coordinatorOptions) {
		o.logger = logger
	}
}
