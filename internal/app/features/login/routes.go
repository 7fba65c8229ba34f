package login

import "github.com/go-chi/chi/v5"

// MountRoutes registers /login, /logout and /me on r.
func MountRoutes(r chi.Router, h *Handler) {
	r.Post("/login", h.ServeLogin)
	r.Post("/logout", h.ServeLogout)
	r.Get("/me", h.ServeMe)
}
