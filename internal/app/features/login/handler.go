// Package login signs users in with email and password and reports the
// signed-in user.
package login

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/gorilla/csrf"
	uierrors "github.com/homeandown/estatehub/internal/app/features/errors"
	userstore "github.com/homeandown/estatehub/internal/app/store/users"
	"github.com/homeandown/estatehub/internal/app/system/auditlog"
	"github.com/homeandown/estatehub/internal/app/system/auth"
	"github.com/homeandown/estatehub/internal/app/system/formutil"
	"github.com/homeandown/estatehub/internal/app/system/inputval"
	"github.com/homeandown/estatehub/internal/app/system/normalize"
	"github.com/homeandown/estatehub/internal/app/system/ratelimit"
	"github.com/homeandown/estatehub/internal/app/system/timeouts"
	"github.com/homeandown/estatehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const msgBadCredentials = "Invalid email or password."

type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	Audit      *auditlog.Logger
	Limiter    *ratelimit.LoginLimiter
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(db *mongo.Database, sm *auth.SessionManager, audit *auditlog.Logger, limiter *ratelimit.LoginLimiter, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      userstore.New(db),
		SessionMgr: sm,
		Audit:      audit,
		Limiter:    limiter,
		ErrLog:     errLog,
		Log:        logger,
	}
}

type loginForm struct {
	Email    string `form:"email" json:"email" validate:"required,email"`
	Password string `form:"password" json:"password,omitempty" validate:"required"`
	Return   string `form:"return" json:"return"`
}

// DefaultRoute is where a user lands after signing in.
func DefaultRoute(role string) string {
	switch role {
	case models.UserTypeAdmin:
		return "/dashboard/admin"
	case models.UserTypeAgent:
		return "/dashboard/agent"
	}
	return "/"
}

// ServeLogin handles POST /login.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	var f loginForm
	if err := formutil.Decode(r, &f); err != nil {
		uierrors.RenderBadRequest(w, r, "The form could not be read.")
		return
	}
	f.Email = normalize.Email(f.Email)
	if err := inputval.Validate(&f); err != nil {
		var fields inputval.Errors
		errors.As(err, &fields)
		h.ErrLog.LogFormError(w, r, http.StatusUnprocessableEntity, "login form rejected", err,
			"Enter your email and password.", loginForm{Email: f.Email}, fields)
		return
	}

	if h.Limiter != nil {
		if ok, msg := h.Limiter.Check(r, f.Email); !ok {
			h.Log.Warn("login rate limited", zap.String("ip", ratelimit.ClientIP(r)))
			uierrors.Write(w, http.StatusTooManyRequests, msg)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Authenticate(ctx, f.Email, f.Password)
	if errors.Is(err, userstore.ErrInvalidCredentials) {
		h.auditFailure(ctx, r, f.Email)
		uierrors.Write(w, http.StatusUnauthorized, msgBadCredentials)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "login lookup failed", err, "A database error occurred.")
		return
	}

	sess, err := h.SessionMgr.Apply(w, r, auth.Action{Type: auth.SetUser, User: &auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName(),
		Email: u.Email,
		Role:  u.UserType,
	}})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "session save failed", err, "Could not sign you in.")
		return
	}
	if h.Limiter != nil {
		h.Limiter.ResetEmail(f.Email)
	}
	h.Audit.LoginSuccess(r.Context(), r, u.ID, u.Email)

	uierrors.WriteJSON(w, http.StatusOK, map[string]any{
		"user":     sess.User,
		"redirect": urlutil.SafeReturn(f.Return, "", DefaultRoute(u.UserType)),
	})
}

// auditFailure records why a sign-in failed. The client is always told
// the same thing.
func (h *Handler) auditFailure(ctx context.Context, r *http.Request, email string) {
	u, err := h.Users.GetByEmail(ctx, email)
	switch {
	case err != nil:
		h.Audit.LoginFailedUserNotFound(ctx, r, email)
	case u.Status != models.StatusActive:
		h.Audit.LoginFailedUserDisabled(ctx, r, u.ID, email)
	default:
		h.Audit.LoginFailedWrongPassword(ctx, r, u.ID, email)
	}
}

// ServeLogout handles POST /logout.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		h.Audit.Logout(r.Context(), r, u.ID)
	}
	if _, err := h.SessionMgr.Apply(w, r, auth.Action{Type: auth.ClearUser}); err != nil {
		h.Log.Warn("logout: session save failed", zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}

// ServeMe handles GET /me.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.WriteJSON(w, http.StatusOK, map[string]any{"signed_in": false, "csrf_token": csrf.Token(r)})
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, map[string]any{
		"signed_in":  true,
		"user":       u,
		"home":       DefaultRoute(u.Role),
		"csrf_token": csrf.Token(r),
	})
}
