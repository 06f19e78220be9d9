// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "timetabler"

// Metrics groups the collectors used by the service and HTTP layers.
type Metrics struct {
	gatherer prometheus.Gatherer

	extractions        *prometheus.CounterVec
	extractionDuration *prometheus.HistogramVec
	extractedBlocks    prometheus.Histogram
	warnings           *prometheus.CounterVec
	exports            *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

// New registers all collectors on reg. Pass prometheus.NewRegistry() in
// tests to get an isolated set.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		gatherer: reg,
		extractions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Timetable extractions by outcome and model.",
		}, []string{"status", "model", "file_type"}),
		extractionDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Time spent in the extraction backend.",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 40, 60, 120},
		}, []string{"model"}),
		extractedBlocks: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extracted_blocks",
			Help:      "Blocks per normalized timetable.",
			Buckets:   prometheus.ExponentialBuckets(5, 2, 7),
		}),
		warnings: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_issues_total",
			Help:      "Advisory issues found in normalized timetables.",
		}, []string{"rule"}),
		exports: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Timetable exports by format.",
		}, []string{"format"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// RecordExtraction counts one extraction attempt.
func (m *Metrics) RecordExtraction(status, model, fileType string, elapsed time.Duration) {
	if model == "" {
		model = "unknown"
	}
	m.extractions.WithLabelValues(status, model, fileType).Inc()
	m.extractionDuration.WithLabelValues(model).Observe(elapsed.Seconds())
}

// RecordBlocks observes the block count of a normalized timetable.
func (m *Metrics) RecordBlocks(n int) {
	m.extractedBlocks.Observe(float64(n))
}

// RecordIssue counts an advisory validation finding.
func (m *Metrics) RecordIssue(rule string) {
	m.warnings.WithLabelValues(rule).Inc()
}

// RecordExport counts one export.
func (m *Metrics) RecordExport(format string) {
	m.exports.WithLabelValues(format).Inc()
}

// RecordHTTP records a finished HTTP request. route is the matched pattern,
// not the raw path, to keep label cardinality bounded.
func (m *Metrics) RecordHTTP(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
