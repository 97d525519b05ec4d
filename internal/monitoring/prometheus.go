package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "vaultx"

var operationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

type counterMetric struct {
	vec    *prometheus.CounterVec
	labels []string
}

type gaugeMetric struct {
	vec    *prometheus.GaugeVec
	labels []string
}

type histogramMetric struct {
	vec    *prometheus.HistogramVec
	labels []string
}

// PrometheusCollector exports the vault metrics through client_golang. Names it does not
// know are dropped.
type PrometheusCollector struct {
	counters   map[string]counterMetric
	gauges     map[string]gaugeMetric
	histograms map[string]histogramMetric
}

// NewPrometheusCollector registers the vault metrics with reg. A nil reg uses the
// default registerer.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	counter := func(name, help string, labels ...string) counterMetric {
		return counterMetric{
			vec: factory.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      name,
				Help:      help,
			}, labels),
			labels: labels,
		}
	}

	return &PrometheusCollector{
		counters: map[string]counterMetric{
			MetricVaultSave:     counter(MetricVaultSave, "Vault writes per backend and outcome", TagRecord, TagBackend, TagOutcome),
			MetricVaultLoad:     counter(MetricVaultLoad, "Vault reads by serving backend and outcome", TagRecord, TagSource, TagOutcome),
			MetricVaultReset:    counter(MetricVaultReset, "Vault resets", TagRecord),
			MetricDeviceKey:     counter(MetricDeviceKey, "Device key lifecycle events", TagEvent),
			MetricAutosaveWrite: counter(MetricAutosaveWrite, "Autosave writes by trigger and outcome", TagTrigger, TagOutcome),
		},
		gauges: map[string]gaugeMetric{
			MetricBreakerState: {
				vec: factory.NewGaugeVec(prometheus.GaugeOpts{
					Namespace: namespace,
					Name:      MetricBreakerState,
					Help:      "Durable backend circuit state (0 closed, 1 open, 2 half-open)",
				}, []string{TagBackend}),
				labels: []string{TagBackend},
			},
		},
		histograms: map[string]histogramMetric{
			MetricVaultOperation: {
				vec: factory.NewHistogramVec(prometheus.HistogramOpts{
					Namespace: namespace,
					Name:      MetricVaultOperation,
					Help:      "Duration of vault operations",
					Buckets:   operationBuckets,
				}, []string{TagRecord, TagOperation}),
				labels: []string{TagRecord, TagOperation},
			},
		},
	}
}

func (p *PrometheusCollector) IncrementCounter(name string, tags map[string]string) {
	p.IncrementCounterBy(name, 1, tags)
}

func (p *PrometheusCollector) IncrementCounterBy(name string, value int64, tags map[string]string) {
	if m, ok := p.counters[name]; ok {
		m.vec.With(labelsFor(m.labels, tags)).Add(float64(value))
	}
}

func (p *PrometheusCollector) SetGauge(name string, value float64, tags map[string]string) {
	if m, ok := p.gauges[name]; ok {
		m.vec.With(labelsFor(m.labels, tags)).Set(value)
	}
}

func (p *PrometheusCollector) RecordTiming(name string, duration time.Duration, tags map[string]string) {
	if m, ok := p.histograms[name]; ok {
		m.vec.With(labelsFor(m.labels, tags)).Observe(duration.Seconds())
	}
}

func (p *PrometheusCollector) Flush() error { return nil }

// labelsFor keeps the declared label names only and fills missing ones with "unknown",
// so With never panics on a partial tag map.
func labelsFor(names []string, tags map[string]string) prometheus.Labels {
	out := make(prometheus.Labels, len(names))
	for _, n := range names {
		if v := tags[n]; v != "" {
			out[n] = v
		} else {
			out[n] = "unknown"
		}
	}
	return out
}
