// Package logger provides the no-op and test loggers used by roster.
package logger

import "github.com/arloliu/roster/types"

// NopLogger discards every log message. It is the default logger of every
// roster component.
type NopLogger struct{}

var _ types.Logger = (*NopLogger)(nil)

// NewNop creates a new no-op logger.
//
// Example:
//
//	sched := scheduler.New(scheduler.WithLogger(logger.NewNop()))
func NewNop() *NopLogger {
	return &NopLogger{}
}

// Debug discards the message.
func (n *NopLogger) Debug(_ string, _ ...any) {}

// Info discards the message.
func (n *NopLogger) Info(_ string, _ ...any) {}

// Warn discards the message.
func (n *NopLogger) Warn(_ string, _ ...any) {}

// Error discards the message.
func (n *NopLogger) Error(_ string, _ ...any) {}

// Fatal discards the message. Unlike production loggers it does not exit.
func (n *NopLogger) Fatal(_ string, _ ...any) {}
