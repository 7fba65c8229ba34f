package assignments

import (
	"github.com/go-chi/chi/v5"
	"github.com/homeandown/estatehub/internal/app/system/auth"
	"github.com/homeandown/estatehub/internal/domain/models"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(models.UserTypeAgent, models.UserTypeAdmin))
	r.Get("/", h.ServeList)
	r.Patch("/{id}", h.ServeRespond)
	return r
}
