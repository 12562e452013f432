package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusCollector_LazyRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg, "")

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Empty(t, families, "nothing registered before first use")

	p.RecordPartitionCount(3)
	require.Equal(t, 3.0, testutil.ToFloat64(p.partitions))

	// Second call must not re-register.
	require.NotPanics(t, func() { p.RecordPartitionCount(4) })
}

func TestPrometheusCollector_SchedulerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg, "test")

	p.RecordChurn(4, 1, 2, 3)
	p.RecordChurn(1, 0, 0, 0)
	require.Equal(t, 5.0, testutil.ToFloat64(p.churn.WithLabelValues("kept")))
	require.Equal(t, 1.0, testutil.ToFloat64(p.churn.WithLabelValues("moved")))
	require.Equal(t, 2.0, testutil.ToFloat64(p.churn.WithLabelValues("added")))
	require.Equal(t, 3.0, testutil.ToFloat64(p.churn.WithLabelValues("removed")))

	p.RecordAssignmentCounts(1, 6, 2)
	require.Equal(t, 1.0, testutil.ToFloat64(p.assigned.WithLabelValues("pool")))
	require.Equal(t, 6.0, testutil.ToFloat64(p.assigned.WithLabelValues("partition")))
	require.Equal(t, 2.0, testutil.ToFloat64(p.assigned.WithLabelValues("unassigned")))

	p.RecordRecomputeDuration(0.01)
	require.Equal(t, 1, testutil.CollectAndCount(p.recomputeDuration))
}

func TestPrometheusCollector_CoordinatorMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg, "test")

	p.RecordEpochAttempt(true)
	p.RecordEpochAttempt(true)
	p.RecordEpochAttempt(false)
	require.Equal(t, 2.0, testutil.ToFloat64(p.epochAttempts.WithLabelValues("success")))
	require.Equal(t, 1.0, testutil.ToFloat64(p.epochAttempts.WithLabelValues("failure")))

	p.SetCurrentEpoch(9)
	require.Equal(t, 9.0, testutil.ToFloat64(p.currentEpoch))

	p.RecordLeadershipChange("node-a", true)
	require.Equal(t, 1.0, testutil.ToFloat64(p.leadership.WithLabelValues("node-a")))
	p.RecordLeadershipChange("node-a", false)
	require.Equal(t, 0.0, testutil.ToFloat64(p.leadership.WithLabelValues("node-a")))
	require.Equal(t, 2.0, testutil.ToFloat64(p.leaderChanges))

	p.RecordEpochDropped()
	require.Equal(t, 1.0, testutil.ToFloat64(p.epochsDropped))

	p.RecordHeartbeat("w1", true)
	p.RecordHeartbeat("w1", false)
	require.Equal(t, 1.0, testutil.ToFloat64(p.heartbeats.WithLabelValues("w1", "failure")))

	p.RecordKVOperationDuration("put", 0.002)
	p.RecordEpochDuration(0.2)
}
