// Package roster provides a deterministic, sticky scheduler that assigns
// workers to a high-priority pool and to fixed-capacity partitions at every
// epoch boundary, with NATS-based coordination.
//
// A worker that already holds a slot keeps it as long as it stays eligible, its
// partition stays active and its seniority fits the current capacity. Only the
// gaps are filled, with newly eligible workers in the worker source's order.
// The same inputs always produce the same assignment.
//
// # Quick Start
//
//	cfg := roster.DefaultConfig()
//	cfg.Capacity = roster.CapacityConfig{MaxTotalWorkers: 100, PoolCapacity: 1, PerPartitionCapacity: 2}
//
//	workers, _ := roster.NewKVWorkerSource(ctx, nc, &cfg)
//	partitions := source.NewStaticPartitions([]roster.PartitionID{2000, 2001})
//
//	coord, err := roster.NewCoordinator(&cfg, nc, workers, partitions)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := coord.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer coord.Stop(context.Background())
//
// Workers announce themselves with a heartbeat:
//
//	hb, _ := roster.NewHeartbeat(ctx, nc, &cfg, "alice")
//	_ = hb.Start(ctx)
//
// # Architecture
//
// Coordinators run a NATS KV election; the leader advances the epoch every
// EpochInterval (or on AdvanceEpoch). One epoch:
//
//	list workers → list partitions → read capacity → load snapshot →
//	scheduler.Recompute → store snapshot (optimistic) → notify
//
// The scheduler package holds the pure recompute and can be used without NATS.
// The store package persists snapshots; store.KV also keeps a per-worker index
// so each worker can look up or watch its own placement.
//
// See the examples/ directory for complete working examples.
package roster
