// Package metrics defines the Prometheus collectors for index builds, searches
// and the HTTP API. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultEmpty   = "empty"
)

// Metrics holds all Prometheus collectors.
type Metrics struct {
	IndexBuildsTotal      *prometheus.CounterVec
	IndexBuildDuration    prometheus.Histogram
	DocumentsIndexedTotal prometheus.Counter
	DocumentsSkippedTotal prometheus.Counter
	SearchQueriesTotal    *prometheus.CounterVec
	SearchLatency         prometheus.Histogram
	SearchCandidates      prometheus.Histogram
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPRequestsInFlight  prometheus.Gauge
	gatherer              prometheus.Gatherer
}

// New creates the collectors and registers them with reg. A nil reg uses a
// fresh private registry, which keeps tests independent of each other.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		IndexBuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lsh_index_builds_total",
				Help: "Total index builds by result.",
			},
			[]string{"result"},
		),
		IndexBuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "lsh_index_build_duration_seconds",
				Help:    "Index build latency in seconds.",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
			},
		),
		DocumentsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "lsh_documents_indexed_total",
				Help: "Total documents placed into bucket tables.",
			},
		),
		DocumentsSkippedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "lsh_documents_skipped_total",
				Help: "Total documents skipped for being too short.",
			},
		),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lsh_search_queries_total",
				Help: "Total search queries by result (success, empty, error).",
			},
			[]string{"result"},
		),
		SearchLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "lsh_search_latency_seconds",
				Help:    "Search query latency in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
		),
		SearchCandidates: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "lsh_search_candidates",
				Help:    "Number of LSH candidates reranked per query.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 1000},
			},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		gatherer: reg,
	}

	reg.MustRegister(
		m.IndexBuildsTotal,
		m.IndexBuildDuration,
		m.DocumentsIndexedTotal,
		m.DocumentsSkippedTotal,
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.SearchCandidates,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
	)

	return m
}

// ObserveBuild records one finished index build.
func (m *Metrics) ObserveBuild(took time.Duration, indexed, skipped int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.IndexBuildsTotal.WithLabelValues(ResultError).Inc()
		return
	}
	m.IndexBuildsTotal.WithLabelValues(ResultSuccess).Inc()
	m.IndexBuildDuration.Observe(took.Seconds())
	m.DocumentsIndexedTotal.Add(float64(indexed))
	m.DocumentsSkippedTotal.Add(float64(skipped))
}

// ObserveSearch records one finished query.
func (m *Metrics) ObserveSearch(took time.Duration, candidates, hits int, err error) {
	if m == nil {
		return
	}
	switch {
	case err != nil:
		m.SearchQueriesTotal.WithLabelValues(ResultError).Inc()
		return
	case hits == 0:
		m.SearchQueriesTotal.WithLabelValues(ResultEmpty).Inc()
	default:
		m.SearchQueriesTotal.WithLabelValues(ResultSuccess).Inc()
	}
	m.SearchLatency.Observe(took.Seconds())
	m.SearchCandidates.Observe(float64(candidates))
}

// ObserveHTTP records one served request. path is the route template, not the raw URL.
func (m *Metrics) ObserveHTTP(method, path string, status int, took time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(took.Seconds())
}

// TrackInFlight increments the in-flight gauge and returns the matching decrement.
func (m *Metrics) TrackInFlight() func() {
	if m == nil {
		return func() {}
	}
	m.HTTPRequestsInFlight.Inc()
	return m.HTTPRequestsInFlight.Dec
}

// Handler returns the Prometheus scrape HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
