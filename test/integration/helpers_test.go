//go:build integration
// +build integration

package integration_test

import (
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"
)

func openAssignmentBucket(t *testing.T, nc *nats.Conn, bucket string) jetstream.KeyValue {
	t.Helper()

	js, err := jetstream.New(nc)
	require.NoError(t, err)

	kv, err := js.KeyValue(t.Context(), bucket)
	require.NoError(t, err)

	return kv
}
