// Package store provides types.StateStore implementations.
//
// Memory keeps the snapshot in process and is meant for tests and dry runs.
// KV persists it in a NATS JetStream KeyValue bucket:
//
//	<prefix>.snapshot       full snapshot (epoch, run id, entries)
//	<prefix>.worker.<id>    per-worker placement index
//
// The snapshot is written with a single Create/Update so a reader never sees a
// partially written assignment. The index is derived data and is rewritten
// after every successful snapshot write.
package store
