package roster

import "github.com/arloliu/roster/types"

// Re-export types from the internal types package.
//
// This file provides a stable public API for the library's core types and
// interfaces. Internal packages depend on `types` without depending on the
// root `roster` package, while users still get `roster.Worker`,
// `roster.Logger`, etc.
type (
	State           = types.State
	Worker          = types.Worker
	PartitionID     = types.PartitionID
	CapacityConfig  = types.CapacityConfig
	AssignmentState = types.AssignmentState
	Placement       = types.Placement
	StateDiff       = types.StateDiff
	Snapshot        = types.Snapshot
	EpochResult     = types.EpochResult
)

// Re-export interfaces from the internal types package for convenience.
type (
	WorkerSource     = types.WorkerSource
	PartitionSource  = types.PartitionSource
	CapacitySource   = types.CapacitySource
	StateStore       = types.StateStore
	ElectionAgent    = types.ElectionAgent
	MetricsCollector = types.MetricsCollector
	Logger           = types.Logger
	Hooks            = types.Hooks
)

// Re-export State constants from the internal types package.
const (
	StateInit     = types.StateInit
	StateFollower = types.StateFollower
	StateLeader   = types.StateLeader
	StateShutdown = types.StateShutdown
)
