// internal/app/features/dashboard/admin.go
package dashboard

import (
	"context"
	"net/http"

	uierrors "github.com/homeandown/estatehub/internal/app/features/errors"
	"github.com/homeandown/estatehub/internal/app/store/gateway"
	metricsstore "github.com/homeandown/estatehub/internal/app/store/metrics"
	"github.com/homeandown/estatehub/internal/app/system/refresh"
	"go.uber.org/zap"
)

// AdminLoader loads the admin dashboard. The scope is ignored.
func AdminLoader(gw gateway.Gateway, opts metricsstore.Options, log *zap.Logger) refresh.Loader[metricsstore.AdminDashboard] {
	return func(ctx context.Context, _ string) (metricsstore.AdminDashboard, error) {
		return metricsstore.FetchAdminDashboard(ctx, gw, opts, log), nil
	}
}

type adminData struct {
	metricsstore.AdminDashboard
	Generation uint64 `json:"generation"`
}

// ServeAdmin handles GET /dashboard/admin.
func (h *Handler) ServeAdmin(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Admin.Get(r.Context(), AdminScope, h.MaxAge)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "admin dashboard load failed", err, "Dashboard could not be loaded.")
		return
	}

	h.Log.Debug("admin dashboard served", zap.Uint64("gen", snap.Gen), zap.Bool("mock", snap.Value.Mock))

	uierrors.WriteJSON(w, http.StatusOK, adminData{AdminDashboard: snap.Value, Generation: snap.Gen})
}
