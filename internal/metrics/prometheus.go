package metrics

import (
	"sync"

	"github.com/arloliu/roster/types"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Vectors are created and registered lazily on first use, so constructing a
// collector never touches the registry.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	// Scheduler metrics
	recomputeDuration prometheus.Histogram
	churn             *prometheus.CounterVec
	assigned          *prometheus.GaugeVec
	partitions        prometheus.Gauge

	// Coordinator metrics
	epochAttempts *prometheus.CounterVec
	currentEpoch  prometheus.Gauge
	epochDuration prometheus.Histogram
	leadership    *prometheus.GaugeVec
	leaderChanges prometheus.Counter
	kvOperation   *prometheus.HistogramVec
	epochsDropped prometheus.Counter

	// Worker metrics
	heartbeats *prometheus.CounterVec
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "roster" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "roster"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.recomputeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "scheduler",
			Name:      "recompute_duration_seconds",
			Help:      "Duration of a single assignment recompute in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14), // 100µs .. ~1.6s
		})

		p.churn = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "scheduler",
			Name:      "worker_placements_total",
			Help:      "Worker placement outcomes per recompute (kept, moved, added, removed).",
		}, []string{"kind"})

		p.assigned = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "scheduler",
			Name:      "workers",
			Help:      "Workers by placement after the last recompute (pool, partition, unassigned).",
		}, []string{"placement"})

		p.partitions = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "scheduler",
			Name:      "active_partitions",
			Help:      "Number of active partitions in the last recompute.",
		})

		p.epochAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "coordinator",
			Name:      "epoch_attempts_total",
			Help:      "Epoch attempts by result (success, failure).",
		}, []string{"result"})

		p.currentEpoch = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "coordinator",
			Name:      "current_epoch",
			Help:      "Last persisted epoch number.",
		})

		p.epochDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "coordinator",
			Name:      "epoch_duration_seconds",
			Help:      "End-to-end epoch latency in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		})

		p.leadership = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "coordinator",
			Name:      "is_leader",
			Help:      "Whether this node holds leadership (1=leader,0=follower).",
		}, []string{"node_id"})

		p.leaderChanges = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "coordinator",
			Name:      "leadership_changes_total",
			Help:      "Total leadership transitions observed by this node.",
		})

		p.kvOperation = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "store",
			Name:      "kv_operation_duration_seconds",
			Help:      "NATS KV operation latency in seconds by operation.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10), // 1ms .. ~0.5s
		}, []string{"op"})

		p.epochsDropped = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "coordinator",
			Name:      "epoch_notifications_dropped_total",
			Help:      "Epoch notifications dropped because a subscriber was slow.",
		})

		p.heartbeats = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "worker",
			Name:      "heartbeats_total",
			Help:      "Worker heartbeat publications by result.",
		}, []string{"worker_id", "result"})

		p.reg.MustRegister(p.recomputeDuration)
		p.reg.MustRegister(p.churn)
		p.reg.MustRegister(p.assigned)
		p.reg.MustRegister(p.partitions)
		p.reg.MustRegister(p.epochAttempts)
		p.reg.MustRegister(p.currentEpoch)
		p.reg.MustRegister(p.epochDuration)
		p.reg.MustRegister(p.leadership)
		p.reg.MustRegister(p.leaderChanges)
		p.reg.MustRegister(p.kvOperation)
		p.reg.MustRegister(p.epochsDropped)
		p.reg.MustRegister(p.heartbeats)
	})
}

// SchedulerMetrics implementation

// RecordRecomputeDuration observes a recompute duration in seconds.
func (p *PrometheusCollector) RecordRecomputeDuration(duration float64) {
	p.ensureRegistered()
	p.recomputeDuration.Observe(duration)
}

// RecordChurn adds the placement outcomes of one recompute.
func (p *PrometheusCollector) RecordChurn(kept, moved, added, removed int) {
	p.ensureRegistered()
	p.churn.WithLabelValues("kept").Add(float64(kept))
	p.churn.WithLabelValues("moved").Add(float64(moved))
	p.churn.WithLabelValues("added").Add(float64(added))
	p.churn.WithLabelValues("removed").Add(float64(removed))
}

// RecordAssignmentCounts sets the placement gauges.
func (p *PrometheusCollector) RecordAssignmentCounts(pool, partitions, unassigned int) {
	p.ensureRegistered()
	p.assigned.WithLabelValues("pool").Set(float64(pool))
	p.assigned.WithLabelValues("partition").Set(float64(partitions))
	p.assigned.WithLabelValues("unassigned").Set(float64(unassigned))
}

// RecordPartitionCount sets the active partition gauge.
func (p *PrometheusCollector) RecordPartitionCount(count int) {
	p.ensureRegistered()
	p.partitions.Set(float64(count))
}

// CoordinatorMetrics implementation

// RecordEpochAttempt counts an epoch attempt by result.
func (p *PrometheusCollector) RecordEpochAttempt(success bool) {
	p.ensureRegistered()
	p.epochAttempts.WithLabelValues(resultLabel(success)).Inc()
}

// SetCurrentEpoch sets the current epoch gauge.
func (p *PrometheusCollector) SetCurrentEpoch(epoch uint64) {
	p.ensureRegistered()
	p.currentEpoch.Set(float64(epoch))
}

// RecordEpochDuration observes an epoch duration in seconds.
func (p *PrometheusCollector) RecordEpochDuration(duration float64) {
	p.ensureRegistered()
	p.epochDuration.Observe(duration)
}

// RecordLeadershipChange sets the leadership gauge for nodeID.
func (p *PrometheusCollector) RecordLeadershipChange(nodeID string, isLeader bool) {
	p.ensureRegistered()
	p.leaderChanges.Inc()
	if isLeader {
		p.leadership.WithLabelValues(nodeID).Set(1)
	} else {
		p.leadership.WithLabelValues(nodeID).Set(0)
	}
}

// RecordKVOperationDuration observes a KV operation latency.
func (p *PrometheusCollector) RecordKVOperationDuration(operation string, duration float64) {
	p.ensureRegistered()
	p.kvOperation.WithLabelValues(operation).Observe(duration)
}

// RecordEpochDropped counts a dropped subscriber notification.
func (p *PrometheusCollector) RecordEpochDropped() {
	p.ensureRegistered()
	p.epochsDropped.Inc()
}

// WorkerMetrics implementation

// RecordHeartbeat counts a heartbeat publication by result.
func (p *PrometheusCollector) RecordHeartbeat(workerID string, success bool) {
	p.ensureRegistered()
	p.heartbeats.WithLabelValues(workerID, resultLabel(success)).Inc()
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}

	return "failure"
}
