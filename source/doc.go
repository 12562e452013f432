// Package source provides built-in worker, partition and capacity sources.
//
// The package includes:
//
//   - StaticWorkers, StaticPartitions, StaticCapacity: fixed values that can
//     be replaced with Update
//   - KVWorkers: workers discovered from heartbeat keys in a NATS KV bucket
//
// Custom sources can be implemented by satisfying the types.WorkerSource,
// types.PartitionSource and types.CapacitySource interfaces.
package source
