// Package types provides core type definitions and interfaces for the Roster library.
//
// This package contains shared types that are used across multiple packages in the
// Roster library. By keeping these types in a separate package, we avoid import cycles
// between the main roster package, the scheduler and the store implementations.
//
// Key types:
//   - Worker, PartitionID: Opaque identities handled by the scheduler
//   - AssignmentState: Pool + per-partition worker sequences and their mutation primitives
//   - CapacityConfig: Per-epoch capacity limits
//   - Snapshot: Persisted assignment state with epoch metadata
//   - WorkerSource, PartitionSource, CapacitySource, StateStore: Collaborator contracts
//   - Logger, MetricsCollector, Hooks: Observability
package types
