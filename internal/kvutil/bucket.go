// Package kvutil provides utilities for working with NATS JetStream KeyValue stores.
package kvutil

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/arloliu/roster/types"
	"github.com/nats-io/nats.go/jetstream"
)

// DefaultMaxRetries is used when a non-positive retry count is given.
const DefaultMaxRetries = 3

// EnsureKVBucketWithRetry creates or opens a KV bucket with retry logic.
//
// Several coordinators and workers may race to create the same bucket on
// startup. Losing the race (ErrBucketExists) opens the existing bucket; other
// failures are retried with exponential backoff (10ms, 20ms, 40ms...).
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - js: JetStream context
//   - config: KV bucket configuration
//   - maxRetries: Maximum number of attempts (DefaultMaxRetries if <= 0)
//
// Returns:
//   - jetstream.KeyValue: The KV bucket instance
//   - error: The last error once all attempts failed
//
// Example:
//
//	kv, err := kvutil.EnsureKVBucketWithRetry(ctx, js, jetstream.KeyValueConfig{
//	    Bucket:  "roster-heartbeat",
//	    TTL:     6 * time.Second,
//	}, 3)
func EnsureKVBucketWithRetry(
	ctx context.Context,
	js jetstream.JetStream,
	config jetstream.KeyValueConfig,
	maxRetries int,
) (jetstream.KeyValue, error) {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	var lastErr error
	for attempt := range maxRetries {
		kv, err := js.CreateKeyValue(ctx, config)
		if err == nil {
			return kv, nil
		}

		if errors.Is(err, jetstream.ErrBucketExists) {
			kv, err = js.KeyValue(ctx, config.Bucket)
			if err == nil {
				return kv, nil
			}
			lastErr = fmt.Errorf("bucket exists but failed to open: %w", err)
		} else {
			lastErr = err
		}

		if ctx.Err() != nil {
			return nil, fmt.Errorf("context cancelled during KV bucket creation: %w", ctx.Err())
		}

		if attempt < maxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * 10 * time.Millisecond //nolint:gosec // attempt is bounded by maxRetries
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("context cancelled during KV bucket creation: %w", ctx.Err())
			case <-time.After(backoff):
			}
		}
	}

	return nil, fmt.Errorf("failed to create/open KV bucket %s after %d attempts: %w",
		config.Bucket, maxRetries, lastErr)
}

// EnsureBuckets ensures every bucket in configs exists, keyed by bucket name.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - js: JetStream context
//   - maxRetries: Attempts per bucket
//   - configs: Bucket configurations; duplicate names are opened once
//
// Returns:
//   - map[string]jetstream.KeyValue: Opened buckets by name
//   - error: First bucket that could not be created or opened
func EnsureBuckets(
	ctx context.Context,
	js jetstream.JetStream,
	maxRetries int,
	configs ...jetstream.KeyValueConfig,
) (map[string]jetstream.KeyValue, error) {
	out := make(map[string]jetstream.KeyValue, len(configs))
	for _, cfg := range configs {
		if _, ok := out[cfg.Bucket]; ok {
			continue
		}

		kv, err := EnsureKVBucketWithRetry(ctx, js, cfg, maxRetries)
		if err != nil {
			return nil, err
		}
		out[cfg.Bucket] = kv
	}

	return out, nil
}

// ListKeys returns the sorted keys of kv. An empty bucket yields an empty slice.
func ListKeys(ctx context.Context, kv jetstream.KeyValue) ([]string, error) {
	keys, err := kv.Keys(ctx)
	if err != nil {
		if types.IsNoKeysFoundError(err) {
			return []string{}, nil
		}

		return nil, fmt.Errorf("failed to list KV keys: %w", err)
	}

	slices.Sort(keys)

	return keys, nil
}
