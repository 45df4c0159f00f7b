package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the HTTP and pipeline instruments.
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	reportsCreated       *prometheus.CounterVec
	geocodeFallbacks     prometheus.Counter
	stationAssignments   *prometheus.CounterVec
	notificationsEmitted *prometheus.CounterVec
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Default returns the process-wide metrics instance.
func Default() *Metrics {
	once.Do(func() {
		defaultMetrics = newMetrics()
	})
	return defaultMetrics
}

func newMetrics() *Metrics {
	return &Metrics{
		httpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		reportsCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reports_created_total",
				Help: "Reports accepted by the intake pipeline",
			},
			[]string{"type"},
		),
		geocodeFallbacks: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "geocode_fallback_total",
				Help: "Reports whose address fell back to raw coordinates",
			},
		),
		stationAssignments: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "station_assignments_total",
				Help: "Nearest-station assignment outcomes",
			},
			[]string{"outcome"}, // assigned | none
		),
		notificationsEmitted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifications_emitted_total",
				Help: "Real-time events emitted to recipient rooms",
			},
			[]string{"event"},
		),
	}
}

// RecordHTTPRequest records one handled HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ReportCreated counts one persisted report.
func (m *Metrics) ReportCreated(reportType string) {
	m.reportsCreated.WithLabelValues(reportType).Inc()
}

// GeocodeFallback counts one coordinate-string address fallback.
func (m *Metrics) GeocodeFallback() {
	m.geocodeFallbacks.Inc()
}

// StationAssignment counts an assignment outcome ("assigned" or "none").
func (m *Metrics) StationAssignment(outcome string) {
	m.stationAssignments.WithLabelValues(outcome).Inc()
}

// NotificationEmitted counts one emitted room event.
func (m *Metrics) NotificationEmitted(event string) {
	m.notificationsEmitted.WithLabelValues(event).Inc()
}
