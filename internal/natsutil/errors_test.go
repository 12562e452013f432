package natsutil

import (
	"errors"
	"testing"

	"github.com/arloliu/roster/types"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/require"
)

func TestIsConnectivityError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"timeout", nats.ErrTimeout, true},
		{"no servers", nats.ErrNoServers, true},
		{"closed", nats.ErrConnectionClosed, true},
		{"no stream response", jetstream.ErrNoStreamResponse, true},
		{"sentinel", types.ErrConnectivity, true},
		{"refused text", errors.New("dial tcp: connection refused"), true},
		{"key not found", jetstream.ErrKeyNotFound, false},
		{"other", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsConnectivityError(tt.err))
		})
	}
}

func TestWrap(t *testing.T) {
	require.NoError(t, Wrap("get", nil))

	err := Wrap("get snapshot", nats.ErrTimeout)
	require.ErrorIs(t, err, types.ErrConnectivity)
	require.ErrorIs(t, err, nats.ErrTimeout)
	require.Contains(t, err.Error(), "get snapshot")

	err = Wrap("get snapshot", jetstream.ErrKeyNotFound)
	require.NotErrorIs(t, err, types.ErrConnectivity)
	require.ErrorIs(t, err, jetstream.ErrKeyNotFound)
}
