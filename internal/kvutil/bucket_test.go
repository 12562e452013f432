package kvutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"

	rostertest "github.com/arloliu/roster/testing"
)

func TestEnsureKVBucketWithRetry(t *testing.T) {
	_, nc := rostertest.StartEmbeddedNATS(t)

	ctx := t.Context()
	js, err := jetstream.New(nc)
	require.NoError(t, err)

	t.Run("successful creation on first try", func(t *testing.T) {
		kv, err := EnsureKVBucketWithRetry(ctx, js, jetstream.KeyValueConfig{
			Bucket:  "test-retry-bucket-1",
			History: 1,
			TTL:     5 * time.Second,
		}, 3)
		require.NoError(t, err)
		require.NotNil(t, kv)
	})

	t.Run("bucket exists - should open it", func(t *testing.T) {
		cfg := jetstream.KeyValueConfig{Bucket: "test-retry-bucket-2", History: 1}

		_, err := js.CreateKeyValue(ctx, cfg)
		require.NoError(t, err)

		kv, err := EnsureKVBucketWithRetry(ctx, js, cfg, 0)
		require.NoError(t, err)
		require.Equal(t, "test-retry-bucket-2", kv.Bucket())
	})

	t.Run("concurrent creates with retry", func(t *testing.T) {
		const numWorkers = 10
		cfg := jetstream.KeyValueConfig{Bucket: "test-retry-bucket-3", History: 1}

		var wg sync.WaitGroup
		errs := make(chan error, numWorkers)
		for range numWorkers {
			wg.Add(1) //nolint:revive // Standard pattern for concurrent operations
			go func() {
				defer wg.Done()
				if _, err := EnsureKVBucketWithRetry(ctx, js, cfg, 5); err != nil {
					errs <- err
				}
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}
	})

	t.Run("context timeout - should fail gracefully", func(t *testing.T) {
		shortCtx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
		defer cancel()
		time.Sleep(time.Millisecond)

		_, err := EnsureKVBucketWithRetry(shortCtx, js, jetstream.KeyValueConfig{Bucket: "test-retry-bucket-4"}, 3)
		require.Error(t, err)
		require.Contains(t, err.Error(), "context")
	})
}

func TestEnsureBuckets(t *testing.T) {
	_, nc := rostertest.StartEmbeddedNATS(t)

	js, err := jetstream.New(nc)
	require.NoError(t, err)

	kvs, err := EnsureBuckets(t.Context(), js, 3,
		jetstream.KeyValueConfig{Bucket: "a"},
		jetstream.KeyValueConfig{Bucket: "b", TTL: time.Second},
		jetstream.KeyValueConfig{Bucket: "a"},
	)
	require.NoError(t, err)
	require.Len(t, kvs, 2)
	require.Equal(t, "a", kvs["a"].Bucket())
	require.Equal(t, "b", kvs["b"].Bucket())
}

func TestListKeys(t *testing.T) {
	_, nc := rostertest.StartEmbeddedNATS(t)
	kv := rostertest.CreateJetStreamKV(t, nc, "list-keys")
	ctx := t.Context()

	keys, err := ListKeys(ctx, kv)
	require.NoError(t, err)
	require.Empty(t, keys)

	for _, k := range []string{"hb.c", "hb.a", "hb.b"} {
		_, err := kv.Put(ctx, k, []byte("x"))
		require.NoError(t, err)
	}

	keys, err = ListKeys(ctx, kv)
	require.NoError(t, err)
	require.Equal(t, []string{"hb.a", "hb.b", "hb.c"}, keys)
}
