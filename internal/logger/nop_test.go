package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNopLogger(t *testing.T) {
	logger := NewNop()

	require.NotPanics(t, func() {
		logger.Debug("recompute done", "epoch", 1)
		logger.Info("", nil)
		logger.Warn("message")
		logger.Error("message", "single")
		logger.Fatal("message", "k1", "v1", "k2", "v2") // must not exit
	})
}

func TestTestLogger(t *testing.T) {
	logger := NewTest(t)

	require.NotPanics(t, func() {
		logger.Debug("debug", "worker", "alice")
		logger.Info("info")
		logger.Warn("warn", "dangling")
		logger.Error("error", "epoch", 3)
	})
}

func TestFormatKeyValues(t *testing.T) {
	require.Empty(t, formatKeyValues(nil))
	require.Equal(t, " epoch=3 worker=alice", formatKeyValues([]any{"epoch", 3, "worker", "alice"}))
	require.Equal(t, " epoch=3 odd=<missing>", formatKeyValues([]any{"epoch", 3, "odd"}))
}

func BenchmarkNopLogger(b *testing.B) {
	logger := NewNop()

	for b.Loop() {
		logger.Debug("benchmark message", "key1", "value1", "key2", 42)
	}
}
