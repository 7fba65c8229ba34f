// internal/app/features/dashboard/handler.go
package dashboard

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/homeandown/estatehub/internal/app/features/errors"
	metricsstore "github.com/homeandown/estatehub/internal/app/store/metrics"
	"github.com/homeandown/estatehub/internal/app/system/authz"
	"github.com/homeandown/estatehub/internal/app/system/refresh"
	"github.com/homeandown/estatehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// AdminScope is the refresh scope of the admin dashboard.
const AdminScope = "admin"

const agentPrefix = "agent:"

// AgentScope is the refresh scope of one agent's dashboard.
func AgentScope(id primitive.ObjectID) string {
	return agentPrefix + id.Hex()
}

// AgentScopeHex is AgentScope for an id already in hex form.
func AgentScopeHex(hex string) string {
	return agentPrefix + hex
}

// ParseAgentScope extracts the agent id from an AgentScope string.
func ParseAgentScope(scope string) (primitive.ObjectID, error) {
	hex, ok := strings.CutPrefix(scope, agentPrefix)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("not an agent scope: %q", scope)
	}
	return primitive.ObjectIDFromHex(hex)
}

type Handler struct {
	Admin  *refresh.Coordinator[metricsstore.AdminDashboard]
	Agent  *refresh.Coordinator[metricsstore.AgentDashboard]
	MaxAge time.Duration
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

// NewHandler builds the dashboard handler. Snapshots younger than maxAge
// are served without a reload.
func NewHandler(admin *refresh.Coordinator[metricsstore.AdminDashboard], agent *refresh.Coordinator[metricsstore.AgentDashboard], maxAge time.Duration, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Admin:  admin,
		Agent:  agent,
		MaxAge: maxAge,
		ErrLog: errLog,
		Log:    logger,
	}
}

// ServeDashboard dispatches GET /dashboard by role.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	role, _, _, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r)
		return
	}

	switch role {
	case models.UserTypeAdmin:
		h.ServeAdmin(w, r)
	case models.UserTypeAgent:
		h.ServeAgent(w, r)
	default:
		uierrors.RenderForbidden(w, r, "There is no dashboard for your account type.")
	}
}

type refreshResponse struct {
	Scope       string    `json:"scope"`
	Generation  uint64    `json:"generation"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

// ServeRefresh handles POST /dashboard/refresh, the manual refresh
// button. It forces a reload even when one is already running.
func (h *Handler) ServeRefresh(w http.ResponseWriter, r *http.Request) {
	var (
		scope string
		gen   uint64
		at    time.Time
		err   error
	)
	if authz.IsAdmin(r) && r.URL.Query().Get("agent_id") == "" {
		scope = AdminScope
		s, e := h.Admin.Invalidate(r.Context(), scope)
		gen, at, err = s.Gen, s.LoadedAt, e
	} else {
		agentID, ok := authz.AgentScope(r)
		if !ok {
			uierrors.RenderBadRequest(w, r, "Invalid agent ID.")
			return
		}
		scope = AgentScope(agentID)
		s, e := h.Agent.Invalidate(r.Context(), scope)
		gen, at, err = s.Gen, s.LoadedAt, e
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "dashboard refresh failed", err, "Dashboard could not be refreshed.")
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, refreshResponse{Scope: scope, Generation: gen, RefreshedAt: at})
}
