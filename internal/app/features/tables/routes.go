package tables

import (
	"github.com/go-chi/chi/v5"
	"github.com/homeandown/estatehub/internal/app/system/auth"
	"github.com/homeandown/estatehub/internal/domain/models"
)

// Routes mounts the table views (e.g., under "/tables"). Admin only.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(models.UserTypeAdmin))

	r.Get("/{kind}", h.ServeList)
	r.Get("/{kind}/export", h.ServeExport)
	r.Delete("/{kind}/{id}", h.ServeDelete)

	return r
}
