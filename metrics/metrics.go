// Package metrics defines the Prometheus metrics exported by polyglot.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and
// records nothing, so libraries can update metrics unconditionally.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Provider metrics
	ProviderRequestsTotal *prometheus.CounterVec
	ProviderErrorsTotal   *prometheus.CounterVec
	ProviderLatency       *prometheus.HistogramVec

	// Cache metrics
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	// Business metrics
	TranslationsTotal   *prometheus.CounterVec
	HistoryOperations   *prometheus.CounterVec
	HistoryStorageError prometheus.Counter
}

// New creates the metrics and registers them with registry.
func New(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "polyglot_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "polyglot_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		ProviderRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "polyglot_provider_requests_total",
				Help: "Total number of AI provider calls",
			},
			[]string{"operation"},
		),
		ProviderErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "polyglot_provider_errors_total",
				Help: "Total number of failed AI provider calls",
			},
			[]string{"operation"},
		),
		ProviderLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "polyglot_provider_latency_seconds",
				Help:    "AI provider call latency in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
			},
			[]string{"operation"},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "polyglot_translation_cache_hits_total",
				Help: "Total number of translation cache hits",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "polyglot_translation_cache_misses_total",
				Help: "Total number of translation cache misses",
			},
		),
		TranslationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "polyglot_translations_total",
				Help: "Total number of successful translations by language pair",
			},
			[]string{"source", "target"},
		),
		HistoryOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "polyglot_history_operations_total",
				Help: "Total number of history mutations by operation",
			},
			[]string{"operation"},
		),
		HistoryStorageError: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "polyglot_history_storage_errors_total",
				Help: "Total number of failed history persists",
			},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ProviderRequestsTotal,
		m.ProviderErrorsTotal,
		m.ProviderLatency,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.TranslationsTotal,
		m.HistoryOperations,
		m.HistoryStorageError,
	)

	return m
}

// ObserveProvider records one provider call.
func (m *Metrics) ObserveProvider(operation string, latency time.Duration, err error) {
	if m == nil {
		return
	}
	m.ProviderRequestsTotal.WithLabelValues(operation).Inc()
	m.ProviderLatency.WithLabelValues(operation).Observe(latency.Seconds())
	if err != nil {
		m.ProviderErrorsTotal.WithLabelValues(operation).Inc()
	}
}

// CacheHit records a translation cache hit.
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.Inc()
}

// CacheMiss records a translation cache miss.
func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.CacheMissesTotal.Inc()
}

// Translation records a successful translation.
func (m *Metrics) Translation(source, target string) {
	if m == nil {
		return
	}
	m.TranslationsTotal.WithLabelValues(source, target).Inc()
}

// HistoryOperation records a history mutation; failed marks a persist failure.
func (m *Metrics) HistoryOperation(operation string, failed bool) {
	if m == nil {
		return
	}
	m.HistoryOperations.WithLabelValues(operation).Inc()
	if failed {
		m.HistoryStorageError.Inc()
	}
}
