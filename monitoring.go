package vaultx

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hengadev/vaultx/internal/monitoring"
)

// MetricsCollector receives vault, autosave and breaker metrics.
type MetricsCollector = monitoring.MetricsCollector

// NewPrometheusMetrics registers the vaultx metrics on reg.
func NewPrometheusMetrics(reg prometheus.Registerer) MetricsCollector {
	return monitoring.NewPrometheusCollector(reg)
}

// NewInMemoryMetrics returns a collector that keeps every value for inspection.
func NewInMemoryMetrics() *monitoring.InMemoryMetricsCollector {
	return monitoring.NewInMemoryMetricsCollector()
}
