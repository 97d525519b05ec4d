package monitoring

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNoOpMetricsCollector(t *testing.T) {
	collector := NoOpMetricsCollector{}
	tags := map[string]string{"test": "value"}

	// Should not panic
	collector.IncrementCounter("test_counter", tags)
	collector.IncrementCounterBy("test_counter", 5, tags)
	collector.SetGauge("test_gauge", 42.5, tags)
	collector.RecordTiming("test_timing", time.Millisecond, tags)

	assert.NoError(t, collector.Flush())
}

func TestInMemoryMetricsCollector_Counters(t *testing.T) {
	collector := NewInMemoryMetricsCollector()
	tags := map[string]string{TagBackend: "sqlite", TagOutcome: "ok"}

	collector.IncrementCounter(MetricVaultSave, tags)
	collector.IncrementCounterBy(MetricVaultSave, 2, tags)

	assert.Equal(t, int64(3), collector.GetCounter(MetricVaultSave, tags))
	assert.Equal(t, int64(0), collector.GetCounter(MetricVaultSave, map[string]string{TagBackend: "mirror"}))

	reordered := map[string]string{TagOutcome: "ok", TagBackend: "sqlite"}
	assert.Equal(t, int64(3), collector.GetCounter(MetricVaultSave, reordered), "tag order must not matter")
}

func TestInMemoryMetricsCollector_GaugesAndTimings(t *testing.T) {
	collector := NewInMemoryMetricsCollector()

	collector.SetGauge(MetricBreakerState, 1, nil)
	collector.SetGauge(MetricBreakerState, 2, nil)
	assert.Equal(t, 2.0, collector.GetGauge(MetricBreakerState, nil))

	collector.RecordTiming(MetricVaultOperation, time.Millisecond, nil)
	collector.RecordTiming(MetricVaultOperation, 2*time.Millisecond, nil)
	timings := collector.GetTimings(MetricVaultOperation, nil)
	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond}, timings)

	timings[0] = time.Hour
	assert.Equal(t, time.Millisecond, collector.GetTimings(MetricVaultOperation, nil)[0])

	collector.Reset()
	assert.Empty(t, collector.GetTimings(MetricVaultOperation, nil))
	assert.Equal(t, 0.0, collector.GetGauge(MetricBreakerState, nil))
}

func TestPrometheusCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := NewPrometheusCollector(reg)

	collector.IncrementCounter(MetricVaultSave, map[string]string{TagRecord: "wizard", TagBackend: "mirror", TagOutcome: "ok"})
	collector.IncrementCounter(MetricVaultSave, map[string]string{TagRecord: "wizard", TagBackend: "mirror", TagOutcome: "ok"})
	collector.IncrementCounter(MetricVaultLoad, map[string]string{TagRecord: "wizard"})
	collector.SetGauge(MetricBreakerState, 1, map[string]string{TagBackend: "sqlite"})
	collector.RecordTiming(MetricVaultOperation, 5*time.Millisecond, map[string]string{TagRecord: "wizard", TagOperation: "save"})
	collector.IncrementCounter("not_a_vault_metric", nil)

	save := collector.counters[MetricVaultSave].vec.WithLabelValues("wizard", "mirror", "ok")
	assert.Equal(t, 2.0, testutil.ToFloat64(save))

	load := collector.counters[MetricVaultLoad].vec.WithLabelValues("wizard", "unknown", "unknown")
	assert.Equal(t, 1.0, testutil.ToFloat64(load))

	breaker := collector.gauges[MetricBreakerState].vec.WithLabelValues("sqlite")
	assert.Equal(t, 1.0, testutil.ToFloat64(breaker))

	count, err := testutil.GatherAndCount(reg, "vaultx_vault_operation_seconds")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.NoError(t, collector.Flush())
}
