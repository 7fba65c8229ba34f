package dashboard_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/homeandown/estatehub/internal/app/features/dashboard"
	uierrors "github.com/homeandown/estatehub/internal/app/features/errors"
	"github.com/homeandown/estatehub/internal/app/store/gateway"
	"github.com/homeandown/estatehub/internal/app/store/gateway/gatewaytest"
	metricsstore "github.com/homeandown/estatehub/internal/app/store/metrics"
	"github.com/homeandown/estatehub/internal/app/system/refresh"
	"github.com/homeandown/estatehub/internal/domain/models"
	"github.com/homeandown/estatehub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newHandler(gw gateway.Gateway, mock bool) *dashboard.Handler {
	log := zap.NewNop()
	admin := refresh.New("admin", dashboard.AdminLoader(gw, metricsstore.Options{MockFallback: mock}, log), log, nil)
	agent := refresh.New("agent", dashboard.AgentLoader(gw, metricsstore.AgentOptions{}, log), log, nil)
	return dashboard.NewHandler(admin, agent, time.Minute, uierrors.NewErrorLogger(log), log)
}

func TestServeAdmin_Counts(t *testing.T) {
	gw := gatewaytest.New().
		SetCount(gateway.Users, 4).
		SetCount(gateway.Properties, 3)
	h := newHandler(gw, true)

	rec := testutil.NewRecorder()
	h.ServeAdmin(rec, testutil.NewAuthenticatedRequest("GET", "/dashboard/admin", testutil.AdminUser()))
	rec.AssertStatus(t, http.StatusOK)

	var body struct {
		Stats struct {
			TotalUsers      int64 `json:"total_users"`
			TotalProperties int64 `json:"total_properties"`
		} `json:"stats"`
		Mock       bool   `json:"mock"`
		Generation uint64 `json:"generation"`
	}
	rec.DecodeJSON(t, &body)
	assert.False(t, body.Mock)
	assert.Equal(t, int64(4), body.Stats.TotalUsers)
	assert.Equal(t, int64(3), body.Stats.TotalProperties)
	assert.Equal(t, uint64(1), body.Generation)
}

func TestServeAdmin_MockFallback(t *testing.T) {
	gw := gatewaytest.New().Fail(gateway.Users, gateway.Properties, gateway.Bookings, gateway.Inquiries, gateway.Sellers)
	h := newHandler(gw, true)

	rec := testutil.NewRecorder()
	h.ServeAdmin(rec, testutil.NewAuthenticatedRequest("GET", "/dashboard/admin", testutil.AdminUser()))
	rec.AssertStatus(t, http.StatusOK)

	var body struct {
		Mock     bool     `json:"mock"`
		Warnings []string `json:"warnings"`
	}
	rec.DecodeJSON(t, &body)
	assert.True(t, body.Mock)
	assert.Contains(t, body.Warnings, metricsstore.WarnMock)
}

func TestServeAdmin_SnapshotReused(t *testing.T) {
	gw := gatewaytest.New()
	h := newHandler(gw, false)

	for i := 0; i < 3; i++ {
		rec := testutil.NewRecorder()
		h.ServeAdmin(rec, testutil.NewAuthenticatedRequest("GET", "/dashboard/admin", testutil.AdminUser()))
		rec.AssertStatus(t, http.StatusOK)
	}
	snap, ok := h.Admin.Current(dashboard.AdminScope)
	require.True(t, ok)
	assert.Equal(t, uint64(1), snap.Gen, "fresh snapshot should be served without reloading")
}

func TestServeAgent_OwnDashboard(t *testing.T) {
	agentID := primitive.NewObjectID()
	now := time.Now().UTC()
	gw := gatewaytest.New().
		Add(gateway.Assignments,
			models.Assignment{ID: primitive.NewObjectID(), AgentID: agentID, Status: models.AssignmentAccepted, AssignedAt: now},
			models.Assignment{ID: primitive.NewObjectID(), AgentID: agentID, Status: models.AssignmentPending, AssignedAt: now})
	h := newHandler(gw, false)

	rec := testutil.NewRecorder()
	h.ServeDashboard(rec, testutil.NewAuthenticatedRequest("GET", "/dashboard", testutil.AgentUser(agentID)))
	rec.AssertStatus(t, http.StatusOK)

	var body struct {
		AgentID          string `json:"agent_id"`
		TotalAssignments int64  `json:"total_assignments"`
		Performance      struct {
			ConversionRate int `json:"conversion_rate"`
		} `json:"performance"`
	}
	rec.DecodeJSON(t, &body)
	assert.Equal(t, agentID.Hex(), body.AgentID)
	assert.Equal(t, int64(2), body.TotalAssignments)
	assert.Equal(t, 50, body.Performance.ConversionRate)
}

func TestServeAgent_AdminNeedsAgentID(t *testing.T) {
	h := newHandler(gatewaytest.New(), false)

	rec := testutil.NewRecorder()
	h.ServeAgent(rec, testutil.NewAuthenticatedRequest("GET", "/dashboard/agent", testutil.AdminUser()))
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = testutil.NewRecorder()
	target := "/dashboard/agent?agent_id=" + primitive.NewObjectID().Hex()
	h.ServeAgent(rec, testutil.NewAuthenticatedRequest("GET", target, testutil.AdminUser()))
	rec.AssertStatus(t, http.StatusOK)
}

func TestServeDashboard_BuyerForbidden(t *testing.T) {
	h := newHandler(gatewaytest.New(), false)

	rec := testutil.NewRecorder()
	h.ServeDashboard(rec, testutil.NewAuthenticatedRequest("GET", "/dashboard", testutil.BuyerUser()))
	rec.AssertStatus(t, http.StatusForbidden)
}

func TestServeRefresh_BumpsGeneration(t *testing.T) {
	h := newHandler(gatewaytest.New(), false)

	rec := testutil.NewRecorder()
	h.ServeAdmin(rec, testutil.NewAuthenticatedRequest("GET", "/dashboard/admin", testutil.AdminUser()))
	rec.AssertStatus(t, http.StatusOK)

	rec = testutil.NewRecorder()
	h.ServeRefresh(rec, testutil.NewAuthenticatedRequest("POST", "/dashboard/refresh", testutil.AdminUser()))
	rec.AssertStatus(t, http.StatusOK)

	var body struct {
		Scope      string `json:"scope"`
		Generation uint64 `json:"generation"`
	}
	rec.DecodeJSON(t, &body)
	assert.Equal(t, dashboard.AdminScope, body.Scope)
	assert.Equal(t, uint64(2), body.Generation)
}

func TestParseAgentScope(t *testing.T) {
	id := primitive.NewObjectID()
	got, err := dashboard.ParseAgentScope(dashboard.AgentScope(id))
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = dashboard.ParseAgentScope("admin")
	assert.Error(t, err)
}
