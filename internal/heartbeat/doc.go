// Package heartbeat lets a worker announce its eligibility through NATS KV.
//
// Each worker refreshes "{prefix}.{worker}" at a fixed interval in a bucket
// whose TTL is about three intervals. The coordinator's worker source lists the
// live keys at every epoch boundary, so a worker that stops publishing drops out
// of the eligible set after the TTL and loses its slot in the next epoch.
//
// Lifecycle:
//
//  1. Create with New(kv, prefix, worker, interval)
//  2. Start(ctx) publishes the first heartbeat synchronously
//  3. Stop(ctx) stops the loop and deletes the key
//
// Publisher is safe for concurrent use.
package heartbeat
