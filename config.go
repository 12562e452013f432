package roster

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/roster/internal/natsutil"
	"github.com/arloliu/roster/types"
)

// KVBucketConfig configures NATS JetStream KV bucket names.
type KVBucketConfig struct {
	// AssignmentBucket holds the snapshot and the per-worker index. It has no
	// TTL so state survives leader changes.
	AssignmentBucket string `yaml:"assignmentBucket"`

	// ElectionBucket holds the leader key. Its TTL is ElectionTTL.
	ElectionBucket string `yaml:"electionBucket"`

	// HeartbeatBucket holds worker heartbeat keys. Its TTL is HeartbeatTTL.
	HeartbeatBucket string `yaml:"heartbeatBucket"`

	// CreateRetries is the number of attempts when creating a bucket races
	// with another process.
	CreateRetries int `yaml:"createRetries"`
}

// Config is the configuration for the Coordinator.
//
// All duration fields accept standard Go duration strings like "30s", "5m", "1h".
type Config struct {
	// NodeID identifies this coordinator in the election. Generated when empty.
	NodeID string `yaml:"nodeId"`

	// PoolPartition is the partition id that tags pool members in persisted
	// entries. It must not be used by any active partition.
	PoolPartition types.PartitionID `yaml:"poolPartition"`

	// Capacity is the default capacity, used unless a CapacitySource is given.
	Capacity types.CapacityConfig `yaml:"capacity"`

	// EpochInterval is how often the leader advances the epoch.
	// Zero disables the loop; epochs are then driven by AdvanceEpoch.
	EpochInterval time.Duration `yaml:"epochInterval"`

	// OperationTimeout bounds one epoch (source reads, recompute and store).
	// Recommended: 10 seconds.
	OperationTimeout time.Duration `yaml:"operationTimeout"`

	// ElectionTTL is the leader lease. The lease is renewed every ElectionTTL/3.
	// NATS KV expires keys with second granularity, so at least 1s.
	ElectionTTL time.Duration `yaml:"electionTtl"`

	// HeartbeatInterval is how often workers refresh their heartbeat key.
	// Recommended: 2-5 seconds.
	HeartbeatInterval time.Duration `yaml:"heartbeatInterval"`

	// HeartbeatTTL is how long a heartbeat keeps a worker eligible.
	// Must be at least 2x HeartbeatInterval. Recommended: 3x.
	HeartbeatTTL time.Duration `yaml:"heartbeatTtl"`

	// StartupTimeout bounds bucket creation and the first election round.
	StartupTimeout time.Duration `yaml:"startupTimeout"`

	// ShutdownTimeout bounds leadership release and goroutine shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`

	// KVBuckets controls NATS JetStream KV bucket configuration.
	KVBuckets KVBucketConfig `yaml:"kvBuckets"`

	// AssignmentPrefix is the key prefix inside the assignment bucket.
	AssignmentPrefix string `yaml:"assignmentPrefix"`

	// HeartbeatPrefix is the key prefix inside the heartbeat bucket.
	HeartbeatPrefix string `yaml:"heartbeatPrefix"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		PoolPartition: types.DefaultPoolPartition,
		Capacity: types.CapacityConfig{
			MaxTotalWorkers:      1000,
			PoolCapacity:         5,
			PerPartitionCapacity: 2,
		},
		EpochInterval:     30 * time.Second,
		OperationTimeout:  10 * time.Second,
		ElectionTTL:       6 * time.Second,
		HeartbeatInterval: 2 * time.Second,
		HeartbeatTTL:      6 * time.Second,
		StartupTimeout:    30 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		KVBuckets: KVBucketConfig{
			AssignmentBucket: "roster-assignment",
			ElectionBucket:   "roster-election",
			HeartbeatBucket:  "roster-heartbeat",
			CreateRetries:    5,
		},
		AssignmentPrefix: "assignment",
		HeartbeatPrefix:  "hb",
	}
}

// SetDefaults fills in missing configuration values with production defaults.
//
// PoolPartition, EpochInterval, PoolCapacity and PerPartitionCapacity are
// left alone because zero is a meaningful value for each of them.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.Capacity.MaxTotalWorkers == 0 {
		cfg.Capacity.MaxTotalWorkers = defaults.Capacity.MaxTotalWorkers
	}
	if cfg.OperationTimeout == 0 {
		cfg.OperationTimeout = defaults.OperationTimeout
	}
	if cfg.ElectionTTL == 0 {
		cfg.ElectionTTL = defaults.ElectionTTL
	}
	if cfg.HeartbeatInterval == 0 {
		cfg.HeartbeatInterval = defaults.HeartbeatInterval
	}
	if cfg.HeartbeatTTL == 0 {
		cfg.HeartbeatTTL = 3 * cfg.HeartbeatInterval
	}
	if cfg.StartupTimeout == 0 {
		cfg.StartupTimeout = defaults.StartupTimeout
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if cfg.KVBuckets.AssignmentBucket == "" {
		cfg.KVBuckets.AssignmentBucket = defaults.KVBuckets.AssignmentBucket
	}
	if cfg.KVBuckets.ElectionBucket == "" {
		cfg.KVBuckets.ElectionBucket = defaults.KVBuckets.ElectionBucket
	}
	if cfg.KVBuckets.HeartbeatBucket == "" {
		cfg.KVBuckets.HeartbeatBucket = defaults.KVBuckets.HeartbeatBucket
	}
	if cfg.KVBuckets.CreateRetries == 0 {
		cfg.KVBuckets.CreateRetries = defaults.KVBuckets.CreateRetries
	}
	if cfg.AssignmentPrefix == "" {
		cfg.AssignmentPrefix = defaults.AssignmentPrefix
	}
	if cfg.HeartbeatPrefix == "" {
		cfg.HeartbeatPrefix = defaults.HeartbeatPrefix
	}
}

// Validate checks configuration constraints and returns error for invalid values.
//
// Hard Validation Rules:
//   - Capacity.MaxTotalWorkers > 0
//   - HeartbeatTTL >= 2 * HeartbeatInterval (allow 1 missed heartbeat)
//   - ElectionTTL >= 1s (KV TTL granularity)
//   - OperationTimeout > 0, EpochInterval >= 0
//   - Bucket names set, prefixes valid KV key tokens
//
// Returns:
//   - error: Wraps types.ErrInvalidConfig, nil if valid
func (cfg *Config) Validate() error {
	if err := cfg.Capacity.Validate(); err != nil {
		return fmt.Errorf("%w: %w", types.ErrInvalidConfig, err)
	}

	if cfg.HeartbeatInterval <= 0 {
		return fmt.Errorf("%w: HeartbeatInterval must be > 0, got %v", types.ErrInvalidConfig, cfg.HeartbeatInterval)
	}

	if cfg.HeartbeatTTL < 2*cfg.HeartbeatInterval {
		return fmt.Errorf(
			"%w: HeartbeatTTL (%v) must be >= 2*HeartbeatInterval (%v) to allow one missed heartbeat",
			types.ErrInvalidConfig, cfg.HeartbeatTTL, cfg.HeartbeatInterval,
		)
	}

	if cfg.ElectionTTL < time.Second {
		return fmt.Errorf("%w: ElectionTTL (%v) must be >= 1s", types.ErrInvalidConfig, cfg.ElectionTTL)
	}

	if cfg.OperationTimeout <= 0 {
		return fmt.Errorf("%w: OperationTimeout must be > 0, got %v", types.ErrInvalidConfig, cfg.OperationTimeout)
	}

	if cfg.EpochInterval < 0 {
		return fmt.Errorf("%w: EpochInterval must be >= 0, got %v", types.ErrInvalidConfig, cfg.EpochInterval)
	}

	if cfg.KVBuckets.AssignmentBucket == "" || cfg.KVBuckets.ElectionBucket == "" || cfg.KVBuckets.HeartbeatBucket == "" {
		return fmt.Errorf("%w: KV bucket names must be set", types.ErrInvalidConfig)
	}

	for name, prefix := range map[string]string{
		"AssignmentPrefix": cfg.AssignmentPrefix,
		"HeartbeatPrefix":  cfg.HeartbeatPrefix,
	} {
		if err := natsutil.ValidateKeyToken(prefix); err != nil {
			return fmt.Errorf("%w: %s: %w", types.ErrInvalidConfig, name, err)
		}
	}

	return nil
}

// ValidateWithWarnings checks configuration and logs warnings for non-recommended values.
//
// This is called after Validate() in NewCoordinator() to provide operator guidance.
//
// Parameters:
//   - logger: Logger instance for warning output
func (cfg *Config) ValidateWithWarnings(logger Logger) {
	if cfg.HeartbeatTTL < 3*cfg.HeartbeatInterval {
		logger.Warn(
			"HeartbeatTTL is below recommended minimum",
			"heartbeat_ttl", cfg.HeartbeatTTL,
			"heartbeat_interval", cfg.HeartbeatInterval,
			"recommended", 3*cfg.HeartbeatInterval,
		)
	}

	if cfg.EpochInterval > 0 && cfg.EpochInterval < cfg.OperationTimeout {
		logger.Warn(
			"EpochInterval is shorter than OperationTimeout, slow epochs will be skipped",
			"epoch_interval", cfg.EpochInterval,
			"operation_timeout", cfg.OperationTimeout,
		)
	}

	if cfg.Capacity.PoolCapacity == 0 {
		logger.Warn("PoolCapacity is zero, the pool will stay empty")
	}

	if cfg.Capacity.PerPartitionCapacity == 0 {
		logger.Warn("PerPartitionCapacity is zero, partitions will stay empty")
	}
}

// TestConfig returns a configuration optimized for fast test execution.
//
// The epoch loop is disabled so tests drive epochs with AdvanceEpoch. Use
// DefaultConfig() for production deployments.
//
// Example:
//
//	cfg := roster.TestConfig()
//	cfg.Capacity.PoolCapacity = 1
//	coord, err := roster.NewCoordinator(&cfg, nc, workers, partitions)
func TestConfig() Config {
	cfg := DefaultConfig()

	cfg.EpochInterval = 0
	cfg.OperationTimeout = 5 * time.Second
	cfg.ElectionTTL = time.Second
	cfg.HeartbeatInterval = 200 * time.Millisecond
	cfg.HeartbeatTTL = time.Second
	cfg.StartupTimeout = 5 * time.Second
	cfg.ShutdownTimeout = 2 * time.Second

	return cfg
}

// ParseConfig decodes a YAML document on top of DefaultConfig and validates it.
//
// Example:
//
//	cfg, err := roster.ParseConfig([]byte(`
//	capacity:
//	  maxTotalWorkers: 100
//	  poolCapacity: 1
//	  perPartitionCapacity: 2
//	epochInterval: 1m
//	`))
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", types.ErrInvalidConfig, err)
	}

	SetDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadConfig reads and parses a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	return ParseConfig(data)
}
