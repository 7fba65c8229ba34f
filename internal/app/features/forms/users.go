package forms

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	userstore "github.com/homeandown/estatehub/internal/app/store/users"
	"github.com/homeandown/estatehub/internal/app/system/authz"
	"github.com/homeandown/estatehub/internal/app/system/normalize"
	"github.com/homeandown/estatehub/internal/app/system/realtime"
	"github.com/homeandown/estatehub/internal/app/system/timeouts"
	"github.com/homeandown/estatehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type userForm struct {
	FirstName          string `form:"first_name" json:"first_name" validate:"notblank,max=100"`
	LastName           string `form:"last_name" json:"last_name" validate:"max=100"`
	Email              string `form:"email" json:"email" validate:"required,email"`
	PhoneNumber        string `form:"phone_number" json:"phone_number" validate:"omitempty,max=20"`
	UserType           string `form:"user_type" json:"user_type" validate:"required,oneof=admin agent seller buyer"`
	Status             string `form:"status" json:"status" validate:"omitempty,oneof=active inactive pending"`
	VerificationStatus string `form:"verification_status" json:"verification_status" validate:"omitempty,oneof=pending verified rejected"`
	AgentLicenseNumber string `form:"agent_license_number" json:"agent_license_number" validate:"max=50"`
	Password           string `form:"password" json:"password,omitempty" validate:"omitempty,min=8"`
}

func (f *userForm) bind(w http.ResponseWriter, r *http.Request, h *Handler) bool {
	if !h.read(w, r, "user", f) {
		return false
	}
	f.normalize()
	return h.validate(w, r, "user", f, f.echo())
}

func (f *userForm) normalize() {
	f.Email = normalize.Email(f.Email)
	f.UserType = normalize.Lower(f.UserType)
	f.Status = normalize.Lower(f.Status)
	f.VerificationStatus = normalize.Lower(f.VerificationStatus)
}

// echo is the form as sent back to the client; the password never is.
func (f userForm) echo() userForm {
	f.Password = ""
	return f
}

// ServeCreateUser handles POST /forms/users.
func (h *Handler) ServeCreateUser(w http.ResponseWriter, r *http.Request) {
	var f userForm
	if !f.bind(w, r, h) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		FirstName:          f.FirstName,
		LastName:           f.LastName,
		Email:              f.Email,
		PhoneNumber:        f.PhoneNumber,
		UserType:           f.UserType,
		Status:             f.Status,
		VerificationStatus: f.VerificationStatus,
		AgentLicenseNumber: f.AgentLicenseNumber,
	}, f.Password)
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		h.invalid(w, r, "user", err, f.echo(), map[string]string{"email": err.Error()})
		return
	}
	if err != nil {
		h.failed(w, r, "user", err, f.echo())
		return
	}

	_, _, actor, _ := authz.UserCtx(r)
	h.Audit.RecordCreated(r.Context(), r, actor.Hex(), "users", u.ID.Hex())
	h.saved(w, r, "user", http.StatusCreated, realtime.Event{Table: "users", Event: realtime.Insert, ID: u.ID.Hex()}, u)
}

// ServeUpdateUser handles PUT /forms/users/{id}.
func (h *Handler) ServeUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.notFound(w, r, "user")
		return
	}
	var f userForm
	if !f.bind(w, r, h) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.Update(ctx, id, userstore.Update{
		FirstName:          f.FirstName,
		LastName:           f.LastName,
		Email:              f.Email,
		PhoneNumber:        f.PhoneNumber,
		UserType:           f.UserType,
		Status:             f.Status,
		VerificationStatus: f.VerificationStatus,
		AgentLicenseNumber: f.AgentLicenseNumber,
	})
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		h.notFound(w, r, "user")
		return
	case errors.Is(err, userstore.ErrDuplicateEmail):
		h.invalid(w, r, "user", err, f.echo(), map[string]string{"email": err.Error()})
		return
	case err != nil:
		h.failed(w, r, "user", err, f.echo())
		return
	}

	_, _, actor, _ := authz.UserCtx(r)
	h.Audit.RecordUpdated(r.Context(), r, actor.Hex(), "users", id.Hex())
	h.saved(w, r, "user", http.StatusOK, realtime.Event{Table: "users", Event: realtime.Update, ID: id.Hex()}, u)
}
