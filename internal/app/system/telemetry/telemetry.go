// Package telemetry holds the Prometheus collectors for the portal.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors. All methods are safe on a nil *Metrics so
// handlers built without telemetry (tests, the CLI) need no guards.
type Metrics struct {
	reg prometheus.Gatherer

	Refreshes       *prometheus.CounterVec
	RefreshDuration *prometheus.HistogramVec
	DegradedQueries *prometheus.CounterVec
	Exports         *prometheus.CounterVec
	ExportRows      prometheus.Histogram
	FormSubmissions *prometheus.CounterVec
	RealtimeEvents  *prometheus.CounterVec
	RealtimeClients prometheus.Gauge
	ExpiredAssigns  prometheus.Counter
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		Refreshes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "estatehub_refreshes_total",
			Help: "Dashboard and table refreshes by scope and outcome",
		}, []string{"scope", "outcome"}),
		RefreshDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "estatehub_refresh_duration_seconds",
			Help:    "Time spent loading a refresh snapshot",
			Buckets: prometheus.DefBuckets,
		}, []string{"scope"}),
		DegradedQueries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "estatehub_degraded_queries_total",
			Help: "Dashboard sub-queries that failed and were reported as zero",
		}, []string{"query"}),
		Exports: f.NewCounterVec(prometheus.CounterOpts{
			Name: "estatehub_exports_total",
			Help: "Table exports by format and outcome",
		}, []string{"format", "outcome"}),
		ExportRows: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "estatehub_export_rows",
			Help:    "Rows written per export",
			Buckets: []float64{1, 10, 100, 1000, 10000, 50000},
		}),
		FormSubmissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "estatehub_form_submissions_total",
			Help: "Entity form submissions by entity and outcome",
		}, []string{"entity", "outcome"}),
		RealtimeEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "estatehub_realtime_events_total",
			Help: "Row change events published by table and event",
		}, []string{"table", "event"}),
		RealtimeClients: f.NewGauge(prometheus.GaugeOpts{
			Name: "estatehub_realtime_clients",
			Help: "Connected realtime subscribers",
		}),
		ExpiredAssigns: f.NewCounter(prometheus.CounterOpts{
			Name: "estatehub_assignments_expired_total",
			Help: "Pending assignments moved to expired by the worker",
		}),
	}
}

// Handler serves the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Refresh records one refresh of scope. outcome is "ok", "error" or "shared".
func (m *Metrics) Refresh(scope, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.Refreshes.WithLabelValues(scope, outcome).Inc()
	if outcome != "shared" {
		m.RefreshDuration.WithLabelValues(scope).Observe(took.Seconds())
	}
}

// Degraded counts a failed dashboard sub-query.
func (m *Metrics) Degraded(query string) {
	if m == nil {
		return
	}
	m.DegradedQueries.WithLabelValues(query).Inc()
}

// Export records an export attempt. rows is ignored on failure.
func (m *Metrics) Export(format string, rows int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.Exports.WithLabelValues(format, "error").Inc()
		return
	}
	m.Exports.WithLabelValues(format, "ok").Inc()
	m.ExportRows.Observe(float64(rows))
}

// Form records a form submission. outcome is "ok", "invalid" or "error".
func (m *Metrics) Form(entity, outcome string) {
	if m == nil {
		return
	}
	m.FormSubmissions.WithLabelValues(entity, outcome).Inc()
}

// Event counts a published realtime event.
func (m *Metrics) Event(table, event string) {
	if m == nil {
		return
	}
	m.RealtimeEvents.WithLabelValues(table, event).Inc()
}

// Clients sets the realtime subscriber gauge.
func (m *Metrics) Clients(n int) {
	if m == nil {
		return
	}
	m.RealtimeClients.Set(float64(n))
}

// Expired adds n to the expired-assignment counter.
func (m *Metrics) Expired(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.ExpiredAssigns.Add(float64(n))
}
