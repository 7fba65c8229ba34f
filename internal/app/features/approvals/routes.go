package approvals

import (
	"github.com/go-chi/chi/v5"
	"github.com/homeandown/estatehub/internal/app/system/auth"
	"github.com/homeandown/estatehub/internal/domain/models"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(models.UserTypeAdmin))
	r.Get("/", h.ServeList)
	r.Post("/{id}", h.ServeDecide)
	return r
}
