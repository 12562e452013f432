package source

import (
	"context"
	"slices"
	"sync"

	"github.com/arloliu/roster/types"
)

// StaticWorkers implements a worker source with a fixed list of workers.
type StaticWorkers struct {
	mu      sync.RWMutex
	workers []types.Worker
}

var _ types.WorkerSource = (*StaticWorkers)(nil)

// NewStaticWorkers creates a worker source that returns workers sorted by id.
//
// Sorting gives the deterministic order the scheduler uses as tie-break among
// newly unassigned workers. Duplicates are dropped.
//
// Example:
//
//	workers := source.NewStaticWorkers([]types.Worker{"carol", "alice", "bob"})
//	// ListWorkers returns [alice bob carol]
func NewStaticWorkers(workers []types.Worker) *StaticWorkers {
	s := &StaticWorkers{}
	s.Update(workers)

	return s
}

// ListWorkers returns a copy of the worker list.
func (s *StaticWorkers) ListWorkers(_ context.Context) ([]types.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.workers), nil
}

// Update replaces the worker list.
//
// This allows the static source to simulate workers joining and leaving,
// which is useful for testing epoch transitions.
func (s *StaticWorkers) Update(workers []types.Worker) {
	sorted := slices.Clone(workers)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.workers = sorted
}

// StaticPartitions implements a partition source with a fixed list of ids.
type StaticPartitions struct {
	mu         sync.RWMutex
	partitions []types.PartitionID
}

var _ types.PartitionSource = (*StaticPartitions)(nil)

// NewStaticPartitions creates a partition source returning partitions.
//
// Example:
//
//	src := source.NewStaticPartitions([]types.PartitionID{2000, 2001})
//	// Later: retire 2001
//	src.Update([]types.PartitionID{2000})
func NewStaticPartitions(partitions []types.PartitionID) *StaticPartitions {
	return &StaticPartitions{partitions: slices.Clone(partitions)}
}

// ListPartitions returns a copy of the partition list.
func (s *StaticPartitions) ListPartitions(_ context.Context) ([]types.PartitionID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.partitions), nil
}

// Update replaces the partition list.
func (s *StaticPartitions) Update(partitions []types.PartitionID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.partitions = slices.Clone(partitions)
}

// StaticCapacity implements a capacity source with a fixed configuration.
type StaticCapacity struct {
	mu  sync.RWMutex
	cfg types.CapacityConfig
}

var _ types.CapacitySource = (*StaticCapacity)(nil)

// NewStaticCapacity creates a capacity source returning cfg.
func NewStaticCapacity(cfg types.CapacityConfig) *StaticCapacity {
	return &StaticCapacity{cfg: cfg}
}

// Capacity returns the current configuration.
func (s *StaticCapacity) Capacity(_ context.Context) (types.CapacityConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.cfg, nil
}

// Update replaces the configuration, taking effect at the next epoch.
func (s *StaticCapacity) Update(cfg types.CapacityConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg = cfg
}
