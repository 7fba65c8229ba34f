package auditlog

import (
	"github.com/go-chi/chi/v5"
	"github.com/homeandown/estatehub/internal/app/system/auth"
	"github.com/homeandown/estatehub/internal/domain/models"
)

// Routes mounts the audit trail, typically at /audit. Admins only.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(models.UserTypeAdmin))
	r.Get("/", h.ServeList)
	return r
}
