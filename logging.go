package roster

import (
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/roster/internal/logger"
	"github.com/arloliu/roster/internal/logging"
	"github.com/arloliu/roster/internal/metrics"
)

// NewSlogLogger adapts a *slog.Logger to the Logger interface.
// A nil logger uses slog.Default().
func NewSlogLogger(l *slog.Logger) Logger {
	if l == nil {
		return logging.NewSlogDefault()
	}

	return logging.NewSlog(l)
}

// NewSlogWriterLogger builds a Logger writing to w.
//
// Parameters:
//   - level: "debug", "info", "warn" or "error"
//   - format: "text" or "json"
func NewSlogWriterLogger(w io.Writer, level, format string) (Logger, error) {
	return logging.NewSlogWriter(w, level, format)
}

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() Logger {
	return logger.NewNop()
}

// NewPrometheusMetrics returns a MetricsCollector backed by Prometheus.
//
// Parameters:
//   - reg: Registerer (prometheus.DefaultRegisterer if nil)
//   - namespace: Metric namespace ("roster" if empty)
func NewPrometheusMetrics(reg prometheus.Registerer, namespace string) MetricsCollector {
	return metrics.NewPrometheus(reg, namespace)
}

// NewNopMetrics returns a MetricsCollector that discards everything.
func NewNopMetrics() MetricsCollector {
	return metrics.NewNop()
}
