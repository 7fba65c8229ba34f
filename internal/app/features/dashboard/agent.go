package dashboard

import (
	"context"
	"net/http"

	uierrors "github.com/homeandown/estatehub/internal/app/features/errors"
	"github.com/homeandown/estatehub/internal/app/store/gateway"
	metricsstore "github.com/homeandown/estatehub/internal/app/store/metrics"
	"github.com/homeandown/estatehub/internal/app/system/authz"
	"github.com/homeandown/estatehub/internal/app/system/refresh"
	"go.uber.org/zap"
)

// AgentLoader loads the dashboard of the agent named by an AgentScope.
func AgentLoader(gw gateway.Gateway, opts metricsstore.AgentOptions, log *zap.Logger) refresh.Loader[metricsstore.AgentDashboard] {
	return func(ctx context.Context, scope string) (metricsstore.AgentDashboard, error) {
		id, err := ParseAgentScope(scope)
		if err != nil {
			return metricsstore.AgentDashboard{}, err
		}
		return metricsstore.FetchAgentDashboard(ctx, gw, id, opts, log), nil
	}
}

type agentData struct {
	metricsstore.AgentDashboard
	AgentID    string `json:"agent_id"`
	Generation uint64 `json:"generation"`
}

// ServeAgent handles GET /dashboard/agent. Admins pass ?agent_id=.
func (h *Handler) ServeAgent(w http.ResponseWriter, r *http.Request) {
	agentID, ok := authz.AgentScope(r)
	if !ok {
		uierrors.RenderBadRequest(w, r, "Invalid agent ID.")
		return
	}

	snap, err := h.Agent.Get(r.Context(), AgentScope(agentID), h.MaxAge)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "agent dashboard load failed", err, "Dashboard could not be loaded.")
		return
	}

	uierrors.WriteJSON(w, http.StatusOK, agentData{
		AgentDashboard: snap.Value,
		AgentID:        agentID.Hex(),
		Generation:     snap.Gen,
	})
}
