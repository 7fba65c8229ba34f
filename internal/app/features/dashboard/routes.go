// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/go-chi/chi/v5"
	"github.com/homeandown/estatehub/internal/app/system/auth"
	"github.com/homeandown/estatehub/internal/domain/models"
)

// Routes wires the dashboard feature under whatever mount point the
// top-level router chooses (e.g., "/dashboard").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeDashboard)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(models.UserTypeAdmin))
		pr.Get("/admin", h.ServeAdmin)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(models.UserTypeAgent, models.UserTypeAdmin))
		pr.Get("/agent", h.ServeAgent)
		pr.Post("/refresh", h.ServeRefresh)
	})

	return r
}
