package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the review engine.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	externalErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	reviewsTotal    *prometheus.CounterVec
	findingsTotal   *prometheus.CounterVec
	usageCount      prometheus.Gauge
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "auditlens_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auditlens_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auditlens_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auditlens_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		reviewsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auditlens_reviews_total",
				Help: "Total review runs by outcome.",
			},
			[]string{"status"},
		),
		findingsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auditlens_findings_total",
				Help: "Total findings emitted by severity.",
			},
			[]string{"severity"},
		),
		usageCount: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "auditlens_usage_count",
				Help: "Finalized-report usage counter (capped at 99).",
			},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrReview increments the review counter with a status label.
func (m *Metrics) IncrReview(status string) {
	m.reviewsTotal.WithLabelValues(status).Inc()
}

// RecordFindings adds per-severity finding counts from one review run.
func (m *Metrics) RecordFindings(normal, clarification, highRisk int) {
	m.findingsTotal.WithLabelValues("normal").Add(float64(normal))
	m.findingsTotal.WithLabelValues("requires_clarification").Add(float64(clarification))
	m.findingsTotal.WithLabelValues("high_risk").Add(float64(highRisk))
}

// SetUsage mirrors the persisted usage counter into the gauge.
func (m *Metrics) SetUsage(count int) {
	m.usageCount.Set(float64(count))
}

// ReviewCount returns the cumulative review count for a status label.
// Used by the operational snapshot endpoint.
func (m *Metrics) ReviewCount(status string) float64 {
	return getCounterValue(m.reviewsTotal, status)
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
