// Package scheduler computes the next epoch's worker assignment.
//
// Recompute is a pure, deterministic function: given the eligible workers, the
// active partitions, the two capacities and the previous AssignmentState, it
// returns the next state. Existing placements are kept wherever they are still
// valid ("sticky" scheduling) so that workers move as little as possible between
// epochs. The pipeline runs in a fixed order:
//
//  1. drop workers that are no longer eligible
//  2. drop partitions that are no longer active
//  3. truncate the pool to its capacity
//  4. truncate every partition to its capacity
//  5. queue the eligible workers that hold no slot, in eligible order
//  6. fill the pool from the queue
//  7. create the newly active partitions
//  8. fill the partitions from the same queue, in ascending partition id order
//
// Truncation keeps the most senior workers, so a shrinking capacity evicts the
// most recently assigned ones first. The pool is filled before any partition.
//
// Determinism depends on the order of the eligible list; callers must supply a
// stable order (the sources in this module sort by worker id).
//
// Scheduler wraps Recompute with the caller-side checks, diffing, logging and
// metrics needed by the Coordinator.
package scheduler
