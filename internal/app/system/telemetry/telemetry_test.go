package telemetry

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.Refresh("admin", "ok", time.Second)
	m.Degraded("users_total")
	m.Export("csv", 3, nil)
	m.Form("users", "ok")
	m.Event("bookings", "INSERT")
	m.Clients(2)
	m.Expired(1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, rec.Code)
}

func TestCounters(t *testing.T) {
	m := New()

	m.Refresh("admin", "ok", 10*time.Millisecond)
	m.Refresh("admin", "shared", 0)
	m.Degraded("users_total")
	m.Degraded("users_total")
	m.Export("csv", 12, nil)
	m.Export("xlsx", 0, errors.New("export: no data"))
	m.Form("properties", "invalid")
	m.Expired(3)
	m.Expired(0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Refreshes.WithLabelValues("admin", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Refreshes.WithLabelValues("admin", "shared")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DegradedQueries.WithLabelValues("users_total")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Exports.WithLabelValues("csv", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Exports.WithLabelValues("xlsx", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FormSubmissions.WithLabelValues("properties", "invalid")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ExpiredAssigns))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.Event("inquiries", "UPDATE")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `estatehub_realtime_events_total{event="UPDATE",table="inquiries"} 1`))
}

func TestNewTwiceDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		New()
		New()
	})
}
