package types

import (
	"fmt"
	"math"
	"strconv"
)

// Worker is an opaque worker identity (e.g. an account or node key).
//
// The scheduler only relies on equality and on string ordering; it never
// interprets the content.
type Worker string

// String returns the worker identity as a plain string.
func (w Worker) String() string {
	return string(w)
}

// Compare orders workers by their string value.
//
// Returns:
//   - int: -1 if w < o, 0 if equal, +1 if w > o
func (w Worker) Compare(o Worker) int {
	switch {
	case w < o:
		return -1
	case w > o:
		return 1
	default:
		return 0
	}
}

// PartitionID identifies one unit of work capacity (a "chain").
//
// One id is designated as the high-priority pool at the call site. Inside the
// scheduler it is never special-cased by value; the pool is held separately in
// AssignmentState.Pool.
type PartitionID uint32

// DefaultPoolPartition is the id that tags pool members in persisted entries
// when no other id is configured.
const DefaultPoolPartition PartitionID = math.MaxUint32

// String returns the decimal representation of the partition id.
func (p PartitionID) String() string {
	return strconv.FormatUint(uint64(p), 10)
}

// ParsePartitionID parses a decimal partition id.
//
// Parameters:
//   - s: Decimal string (e.g. "2000")
//
// Returns:
//   - PartitionID: Parsed id
//   - error: Parse error if s is not a valid uint32
func ParsePartitionID(s string) (PartitionID, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid partition id %q: %w", s, err)
	}

	return PartitionID(v), nil
}

// CapacityConfig holds the capacity limits applied to one scheduling epoch.
//
// It is supplied externally per epoch (see CapacitySource).
type CapacityConfig struct {
	// MaxTotalWorkers is the upper bound on the number of eligible workers the
	// caller may pass in. Exceeding it is a caller contract breach.
	MaxTotalWorkers uint32 `json:"maxTotalWorkers" yaml:"maxTotalWorkers"`

	// PoolCapacity is the number of workers in the high-priority pool.
	PoolCapacity uint32 `json:"poolCapacity" yaml:"poolCapacity"`

	// PerPartitionCapacity is the number of workers assigned to each partition.
	PerPartitionCapacity uint32 `json:"perPartitionCapacity" yaml:"perPartitionCapacity"`
}

// Validate checks that the capacity configuration is usable.
//
// Zero pool or partition capacity is legal (every worker stays unassigned);
// only a zero MaxTotalWorkers is rejected.
//
// Returns:
//   - error: ErrInvalidCapacity wrapped with details, nil if valid
func (c CapacityConfig) Validate() error {
	if c.MaxTotalWorkers == 0 {
		return fmt.Errorf("%w: MaxTotalWorkers must be > 0", ErrInvalidCapacity)
	}

	return nil
}

// Slots returns the number of worker slots offered for the given partition count.
func (c CapacityConfig) Slots(partitions int) int {
	return int(c.PoolCapacity) + partitions*int(c.PerPartitionCapacity)
}
