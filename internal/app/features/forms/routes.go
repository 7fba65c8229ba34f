package forms

import (
	"github.com/go-chi/chi/v5"
	"github.com/homeandown/estatehub/internal/app/system/auth"
	"github.com/homeandown/estatehub/internal/domain/models"
)

// Routes mounts the admin write endpoints.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(models.UserTypeAdmin))

	r.Post("/users", h.ServeCreateUser)
	r.Put("/users/{id}", h.ServeUpdateUser)
	r.Post("/properties", h.ServeCreateProperty)
	r.Put("/properties/{id}", h.ServeUpdateProperty)
	r.Post("/bookings", h.ServeCreateBooking)
	r.Put("/bookings/{id}", h.ServeUpdateBooking)
	r.Get("/agents", h.ServeAgents)
	r.Post("/inquiries/{id}/assign", h.ServeAssign)
	r.Post("/earnings", h.ServeRecordEarning)
	return r
}
