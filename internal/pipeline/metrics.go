package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the ingestion pipeline.
type Metrics struct {
	Registry           *prometheus.Registry
	AttemptsTotal      *prometheus.CounterVec
	FailuresTotal      *prometheus.CounterVec
	AttemptDuration    prometheus.Histogram
	RecordsStoredTotal prometheus.Counter
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	attempts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_attempts_total",
			Help: "Total (target, source) extraction attempts by result.",
		},
		[]string{"source", "result"},
	)
	failures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_failures_total",
			Help: "Total failed attempts by failure kind.",
		},
		[]string{"source", "kind"},
	)
	attemptDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingest_attempt_duration_seconds",
			Help:    "Wall time of one (target, source) attempt.",
			Buckets: prometheus.DefBuckets,
		},
	)
	recordsStored := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ingest_records_stored_total",
			Help: "Total normalized records handed to the store.",
		},
	)

	registry.MustRegister(attempts, failures, attemptDuration, recordsStored)

	return &Metrics{
		Registry:           registry,
		AttemptsTotal:      attempts,
		FailuresTotal:      failures,
		AttemptDuration:    attemptDuration,
		RecordsStoredTotal: recordsStored,
	}
}

// IncAttempt increments the attempts counter.
func (m *Metrics) IncAttempt(source, result string) {
	if m == nil {
		return
	}
	m.AttemptsTotal.WithLabelValues(source, result).Inc()
}

// IncFailure increments the failures counter for a taxonomy label.
func (m *Metrics) IncFailure(source, kind string) {
	if m == nil {
		return
	}
	m.FailuresTotal.WithLabelValues(source, kind).Inc()
}

// ObserveDuration records one attempt's duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.AttemptDuration.Observe(d.Seconds())
}

// IncStored increments the stored records counter.
func (m *Metrics) IncStored() {
	if m == nil {
		return
	}
	m.RecordsStoredTotal.Inc()
}
