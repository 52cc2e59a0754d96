// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Projection metrics
	ProjectionRuns     *prometheus.CounterVec // by scenario_type, outcome (ok|fallback)
	Fallbacks          *prometheus.CounterVec // by reason
	ProjectionDuration prometheus.Histogram

	// Storage metrics
	PointsStored         prometheus.Counter
	SamplesStored        prometheus.Counter
	StorageQueryDuration *prometheus.HistogramVec // by backend, operation
	StorageQueryErrors   *prometheus.CounterVec   // by backend, operation
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "prospectiva"
	}

	return &Metrics{
		ProjectionRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "projection",
			Name:      "runs_total",
			Help:      "Total number of projection runs by scenario type and outcome",
		}, []string{"scenario_type", "outcome"}),
		Fallbacks: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "projection",
			Name:      "fallbacks_total",
			Help:      "Total number of synthetic fallback substitutions by reason",
		}, []string{"reason"}),
		ProjectionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "projection",
			Name:      "duration_seconds",
			Help:      "Duration of single projection runs",
			Buckets:   prometheus.DefBuckets,
		}),
		PointsStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "points_stored_total",
			Help:      "Total number of projection points persisted",
		}),
		SamplesStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "samples_stored_total",
			Help:      "Total number of projection samples persisted",
		}),
		StorageQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "query_duration_seconds",
			Help:      "Duration of storage queries by backend and operation",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend", "operation"}),
		StorageQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "query_errors_total",
			Help:      "Total number of storage query errors by backend and operation",
		}, []string{"backend", "operation"}),
	}
}

// RecordProjectionRun records one completed run.
func (m *Metrics) RecordProjectionRun(scenarioType string, fallback bool, duration time.Duration) {
	outcome := "ok"
	if fallback {
		outcome = "fallback"
	}
	m.ProjectionRuns.WithLabelValues(scenarioType, outcome).Inc()
	m.ProjectionDuration.Observe(duration.Seconds())
}

// RecordFallback records one synthetic substitution.
func (m *Metrics) RecordFallback(reason string) {
	m.Fallbacks.WithLabelValues(reason).Inc()
}

// RecordPointsStored adds to the persisted point counter.
func (m *Metrics) RecordPointsStored(n int) {
	m.PointsStored.Add(float64(n))
}

// RecordSamplesStored adds to the persisted sample counter.
func (m *Metrics) RecordSamplesStored(n int) {
	m.SamplesStored.Add(float64(n))
}

// ObserveStorageQuery records one storage call.
func (m *Metrics) ObserveStorageQuery(backend, operation string, duration time.Duration, err error) {
	m.StorageQueryDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
	if err != nil {
		m.StorageQueryErrors.WithLabelValues(backend, operation).Inc()
	}
}

// Handler returns an HTTP handler serving the default registry at /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

var (
	defaultMetrics *Metrics
	defaultOnce    sync.Once
)

// Default returns the lazily initialized process-wide Metrics instance.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = NewMetrics("")
	})
	return defaultMetrics
}
