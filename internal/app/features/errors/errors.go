// internal/app/features/errors/errors.go
package errors

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/homeandown/estatehub/internal/app/system/authz"
)

// Body is the JSON shape of every error response.
type Body struct {
	Error string `json:"error"`
	// Form echoes submitted values so the client can keep them.
	Form any `json:"form,omitempty"`
	// Fields carries per-field validation messages.
	Fields map[string]string `json:"fields,omitempty"`
}

// WriteJSON writes v with status code.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// Write writes an error body with status code.
func Write(w http.ResponseWriter, code int, msg string) {
	WriteJSON(w, code, Body{Error: msg})
}

func RenderBadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	Write(w, http.StatusBadRequest, msg)
}

func RenderNotFound(w http.ResponseWriter, r *http.Request, msg string) {
	Write(w, http.StatusNotFound, msg)
}

func RenderForbidden(w http.ResponseWriter, r *http.Request, msg string) {
	if msg == "" {
		msg = "You don't have permission to view this page."
	}
	Write(w, http.StatusForbidden, msg)
}

func RenderUnauthorized(w http.ResponseWriter, r *http.Request) {
	Write(w, http.StatusUnauthorized, "Please sign in to continue.")
}

// Handler serves the standalone error endpoints.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// Forbidden handles GET /forbidden.
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	_, name, _, signedIn := authz.UserCtx(r)
	WriteJSON(w, http.StatusForbidden, map[string]any{
		"error":        "You don't have permission to view this page.",
		"is_logged_in": signedIn,
		"user_name":    name,
	})
}

// Unauthorized handles GET /unauthorized.
func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	RenderUnauthorized(w, r)
}

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/forbidden", h.Forbidden)
	r.Get("/unauthorized", h.Unauthorized)
	return r
}
