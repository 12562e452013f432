// Package election provides the NATS KV leader election used by the roster
// Coordinator.
//
// Exactly one coordinator node may recompute the assignment at an epoch
// boundary. The leader holds a single key in a TTL bucket:
//
//  1. Request: Create the key (atomic, fails if another node holds it)
//  2. Renew: Update the key with the last seen revision
//  3. Release: Delete the key on shutdown for fast failover
//  4. Failover: A crashed leader's key expires after the bucket TTL
//
// Renew at roughly TTL/3. The key value records the holder's node ID and
// acquisition time so operators can see who leads (see Leader).
//
// NATSElection is safe for concurrent use.
package election
