package infra

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors of the benchmark service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	providerCalls   *prometheus.CounterVec
	providerLatency *prometheus.HistogramVec
	storeOps        *prometheus.CounterVec
	lockWait        prometheus.Histogram
	skippedDocs     prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		providerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "llm_benchmark",
			Name:      "provider_calls_total",
			Help:      "Provider calls by provider and outcome.",
		}, []string{"provider", "outcome"}),
		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "llm_benchmark",
			Name:      "provider_latency_seconds",
			Help:      "End-to-end provider call latency.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}, []string{"provider"}),
		storeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "llm_benchmark",
			Name:      "store_operations_total",
			Help:      "Result store operations by operation and outcome.",
		}, []string{"op", "outcome"}),
		lockWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "llm_benchmark",
			Name:      "document_lock_wait_seconds",
			Help:      "Time spent waiting for a per-document lock.",
			Buckets:   prometheus.DefBuckets,
		}),
		skippedDocs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "llm_benchmark",
			Name:      "aggregation_skipped_documents_total",
			Help:      "Documents skipped during aggregation because they could not be read or parsed.",
		}),
	}
	reg.MustRegister(m.providerCalls, m.providerLatency, m.storeOps, m.lockWait, m.skippedDocs)
	return m
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) ObserveProviderCall(provider string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.providerCalls.WithLabelValues(provider, outcome(err)).Inc()
	if err == nil {
		m.providerLatency.WithLabelValues(provider).Observe(d.Seconds())
	}
}

func (m *Metrics) ObserveStoreOp(op string, err error) {
	if m == nil {
		return
	}
	m.storeOps.WithLabelValues(op, outcome(err)).Inc()
}

func (m *Metrics) ObserveLockWait(d time.Duration) {
	if m == nil {
		return
	}
	m.lockWait.Observe(d.Seconds())
}

func (m *Metrics) SkippedDocument() {
	if m == nil {
		return
	}
	m.skippedDocs.Inc()
}
