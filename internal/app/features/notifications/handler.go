// Package notifications lists notifications, summarizes their delivery
// analytics and creates new ones from {{placeholder}} templates.
package notifications

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/waffle/pantry/query"
	uierrors "github.com/homeandown/estatehub/internal/app/features/errors"
	notificationstore "github.com/homeandown/estatehub/internal/app/store/notifications"
	"github.com/homeandown/estatehub/internal/app/system/auditlog"
	"github.com/homeandown/estatehub/internal/app/system/authz"
	"github.com/homeandown/estatehub/internal/app/system/formutil"
	"github.com/homeandown/estatehub/internal/app/system/inputval"
	"github.com/homeandown/estatehub/internal/app/system/notifytemplate"
	"github.com/homeandown/estatehub/internal/app/system/realtime"
	"github.com/homeandown/estatehub/internal/app/system/stats"
	"github.com/homeandown/estatehub/internal/app/system/telemetry"
	"github.com/homeandown/estatehub/internal/app/system/timeouts"
	"github.com/homeandown/estatehub/internal/domain/models"
	"go.uber.org/zap"
)

const (
	defaultDays  = 30
	defaultLimit = 50
	maxLimit     = 500
)

// Store is the notification persistence the handler needs.
type Store interface {
	Latest(ctx context.Context, limit int64) ([]models.Notification, error)
	ListSent(ctx context.Context, since time.Time) ([]models.Notification, error)
	Create(ctx context.Context, n models.Notification) (models.Notification, error)
}

var _ Store = (*notificationstore.Store)(nil)

type Handler struct {
	Store     Store
	Audit     *auditlog.Logger
	Metrics   *telemetry.Metrics
	OnRefresh func(ctx context.Context, ev realtime.Event)
	ErrLog    *uierrors.ErrorLogger
	Log       *zap.Logger

	now func() time.Time
}

func NewHandler(store Store, audit *auditlog.Logger, m *telemetry.Metrics, onRefresh func(context.Context, realtime.Event), errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Store:     store,
		Audit:     audit,
		Metrics:   m,
		OnRefresh: onRefresh,
		ErrLog:    errLog,
		Log:       logger,
		now:       time.Now,
	}
}

func intParam(r *http.Request, key string, def int) int {
	n, err := strconv.Atoi(query.Get(r, key))
	if err != nil {
		return def
	}
	return n
}

// ServeList handles GET /notifications?limit=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r, "limit", defaultLimit)
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ns, err := h.Store.Latest(ctx, int64(limit))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list notifications failed", err, "A database error occurred.")
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, map[string]any{"notifications": ns})
}

// ServeAnalytics handles GET /notifications/analytics?days=. days <= 0
// covers every sent notification.
func (h *Handler) ServeAnalytics(w http.ResponseWriter, r *http.Request) {
	days := intParam(r, "days", defaultDays)
	var since time.Time
	if days > 0 {
		since = h.now().UTC().AddDate(0, 0, -days)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	ns, err := h.Store.ListSent(ctx, since)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "notification analytics failed", err, "A database error occurred.")
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, struct {
		Days int `json:"days"`
		stats.NotificationSummary
	}{days, stats.SummarizeNotifications(ns)})
}

type createForm struct {
	Title     string            `form:"title" json:"title" validate:"notblank,max=200"`
	Message   string            `form:"message" json:"message" validate:"max=5000"`
	Type      string            `form:"type" json:"type" validate:"max=30"`
	Audience  string            `form:"audience" json:"audience" validate:"omitempty,oneof=all buyer seller agent"`
	Status    string            `form:"status" json:"status" validate:"omitempty,oneof=draft scheduled sent"`
	Variables map[string]string `json:"variables"`
}

// ServeCreate handles POST /notifications. The message is rendered
// against variables; slots without a value are reported as unfilled.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	var f createForm
	if err := formutil.Decode(r, &f); err != nil {
		h.Metrics.Form("notification", "invalid")
		uierrors.RenderBadRequest(w, r, "The form could not be read.")
		return
	}
	if err := inputval.Validate(&f); err != nil {
		var fields inputval.Errors
		errors.As(err, &fields)
		h.Metrics.Form("notification", "invalid")
		h.ErrLog.LogFormError(w, r, http.StatusUnprocessableEntity, "notification form rejected", err,
			"Please correct the highlighted fields.", f, fields)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	n, err := h.Store.Create(ctx, models.Notification{
		Title:    f.Title,
		Message:  notifytemplate.Render(f.Message, f.Variables),
		Type:     f.Type,
		Audience: f.Audience,
		Status:   f.Status,
	})
	if err != nil {
		h.Metrics.Form("notification", "error")
		h.ErrLog.LogFormError(w, r, http.StatusInternalServerError, "notification create failed", err,
			"A database error occurred.", f, nil)
		return
	}

	h.Metrics.Form("notification", "ok")
	_, _, actor, _ := authz.UserCtx(r)
	h.Audit.NotificationCreated(r.Context(), r, actor.Hex(), n.ID.Hex(), n.Audience)
	if h.OnRefresh != nil {
		h.OnRefresh(r.Context(), realtime.Event{Table: "notifications", Event: realtime.Insert, ID: n.ID.Hex()})
	}
	uierrors.WriteJSON(w, http.StatusCreated, map[string]any{
		"notification": n,
		"unfilled":     notifytemplate.Placeholders(n.Message),
	})
}
