// Package metrics exports Prometheus metrics for job routing, extraction,
// storage and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
	"github.com/KKogaa/extracto-storage-service/internal/core/ports/driven"
)

const namespace = "extracto"

var _ driven.Metrics = (*Recorder)(nil)

// Recorder holds the collectors registered on one registry.
type Recorder struct {
	gatherer prometheus.Gatherer

	jobsTotal          *prometheus.CounterVec
	extractionsTotal   *prometheus.CounterVec
	entitiesTotal      *prometheus.CounterVec
	extractionDuration *prometheus.HistogramVec
	upsertsTotal       *prometheus.CounterVec
	httpRequestsTotal  *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		gatherer: reg,
		jobsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_total",
			Help:      "Job events received, by final state.",
		}, []string{"state"}),
		extractionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Extraction runs, by kind, strategy and outcome.",
		}, []string{"kind", "strategy", "outcome"}),
		entitiesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entities_extracted_total",
			Help:      "Entities produced by extraction, by kind and strategy.",
		}, []string{"kind", "strategy"}),
		extractionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Histogram of extraction durations.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"kind"}),
		upsertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upserts_total",
			Help:      "Upserted entities, by kind and result.",
		}, []string{"kind", "result"}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Histogram of HTTP request durations.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(
		r.jobsTotal,
		r.extractionsTotal,
		r.entitiesTotal,
		r.extractionDuration,
		r.upsertsTotal,
		r.httpRequestsTotal,
		r.httpDuration,
		prometheus.NewGoCollector(),
	)
	return r
}

// JobReceived counts one job event.
func (r *Recorder) JobReceived(state domain.JobState) {
	r.jobsTotal.WithLabelValues(string(state)).Inc()
}

// Extracted records one extraction run.
func (r *Recorder) Extracted(kind domain.Kind, strategy string, entities int, failed bool, took time.Duration) {
	outcome := "ok"
	if failed {
		outcome = "error"
	}
	r.extractionsTotal.WithLabelValues(string(kind), strategy, outcome).Inc()
	r.entitiesTotal.WithLabelValues(string(kind), strategy).Add(float64(entities))
	r.extractionDuration.WithLabelValues(string(kind)).Observe(took.Seconds())
}

// Upserted records a bulk upsert summary.
func (r *Recorder) Upserted(kind domain.Kind, s domain.UpsertSummary) {
	r.upsertsTotal.WithLabelValues(string(kind), "inserted").Add(float64(s.Inserted))
	r.upsertsTotal.WithLabelValues(string(kind), "updated").Add(float64(s.Updated))
	r.upsertsTotal.WithLabelValues(string(kind), "error").Add(float64(s.Errors))
}

// RecordRequest records metrics for one HTTP request.
func (r *Recorder) RecordRequest(method, route string, statusCode int, took time.Duration) {
	status := classifyStatus(statusCode)
	r.httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	r.httpDuration.WithLabelValues(method, route, status).Observe(took.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

func classifyStatus(code int) string {
	if code < 100 || code >= 600 {
		return "unknown"
	}
	return strconv.Itoa(code/100) + "xx"
}
