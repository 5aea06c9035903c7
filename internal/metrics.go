package internal

import (
	"net/http"
	"strconv"
	"time"

	"campus-assets-api/pkg/ingest"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides Prometheus metrics for HTTP traffic and ingestion runs
type Metrics struct {
	reqTotal   *prometheus.CounterVec
	reqLatency *prometheus.HistogramVec
	ingestRows *prometheus.CounterVec
	ingestRuns *prometheus.CounterVec
	registry   *prometheus.Registry
}

// NewMetrics creates a new Metrics instance with a private Prometheus registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	reqTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	reqLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	ingestRows := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_rows_total",
			Help: "Rows processed by spreadsheet uploads",
		},
		[]string{"format", "outcome"},
	)

	ingestRuns := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_runs_total",
			Help: "Completed spreadsheet upload runs",
		},
		[]string{"format"},
	)

	registry.MustRegister(reqTotal, reqLatency, ingestRows, ingestRuns)

	return &Metrics{
		reqTotal:   reqTotal,
		reqLatency: reqLatency,
		ingestRows: ingestRows,
		ingestRuns: ingestRuns,
		registry:   registry,
	}
}

// RecordIngest tallies the outcome of one upload run
func (m *Metrics) RecordIngest(result *ingest.Result) {
	if m == nil || result == nil {
		return
	}
	m.ingestRuns.WithLabelValues(result.FormatType).Inc()
	m.ingestRows.WithLabelValues(result.FormatType, "stored").Add(float64(result.SuccessCount))
	m.ingestRows.WithLabelValues(result.FormatType, "error").Add(float64(result.ErrorCount))
	m.ingestRows.WithLabelValues(result.FormatType, "skipped").Add(float64(result.SkippedRows))
}

// Middleware returns a Chi middleware that collects metrics
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &statusRecorder{ResponseWriter: w, code: http.StatusOK}

			next.ServeHTTP(rw, r)

			// Use Chi's route pattern when available so metrics are not
			// fragmented per resource id.
			path := r.URL.Path
			if chiCtx := chi.RouteContext(r.Context()); chiCtx != nil && len(chiCtx.RoutePatterns) > 0 {
				path = chiCtx.RoutePatterns[len(chiCtx.RoutePatterns)-1]
			}

			status := strconv.Itoa(rw.code)
			m.reqTotal.WithLabelValues(r.Method, path, status).Inc()
			m.reqLatency.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
		})
	}
}

// Handler returns an http.Handler that serves Prometheus metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// statusRecorder captures the HTTP status code for metrics
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.code = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	return sr.ResponseWriter.Write(b)
}
