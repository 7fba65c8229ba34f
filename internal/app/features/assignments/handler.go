// Package assignments lets agents see and answer the inquiries assigned
// to them. Admins can list every assignment.
package assignments

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	uierrors "github.com/homeandown/estatehub/internal/app/features/errors"
	assignmentstore "github.com/homeandown/estatehub/internal/app/store/assignments"
	"github.com/homeandown/estatehub/internal/app/system/auditlog"
	"github.com/homeandown/estatehub/internal/app/system/authz"
	"github.com/homeandown/estatehub/internal/app/system/formutil"
	"github.com/homeandown/estatehub/internal/app/system/inputval"
	"github.com/homeandown/estatehub/internal/app/system/realtime"
	"github.com/homeandown/estatehub/internal/app/system/telemetry"
	"github.com/homeandown/estatehub/internal/app/system/timeouts"
	"github.com/homeandown/estatehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const adminListLimit = 500

type Store interface {
	List(ctx context.Context, status string, limit int64) ([]models.Assignment, error)
	ListForAgent(ctx context.Context, agentID primitive.ObjectID) ([]models.Assignment, error)
	Respond(ctx context.Context, id, agentID primitive.ObjectID, accept bool, notes, agentName string) (models.Assignment, error)
}

var _ Store = (*assignmentstore.Store)(nil)

type Handler struct {
	Store     Store
	Audit     *auditlog.Logger
	Metrics   *telemetry.Metrics
	OnRefresh func(ctx context.Context, ev realtime.Event)
	ErrLog    *uierrors.ErrorLogger
	Log       *zap.Logger
}

func NewHandler(store Store, audit *auditlog.Logger, m *telemetry.Metrics, onRefresh func(context.Context, realtime.Event), errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Store: store, Audit: audit, Metrics: m, OnRefresh: onRefresh, ErrLog: errLog, Log: logger}
}

// ServeList handles GET /assignments. Agents see their own; admins see
// all, or one agent's with ?agent_id=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	var (
		out []models.Assignment
		err error
	)
	if agentID, ok := authz.AgentScope(r); ok {
		out, err = h.Store.ListForAgent(ctx, agentID)
	} else if authz.IsAdmin(r) {
		out, err = h.Store.List(ctx, query.Get(r, "status"), adminListLimit)
	} else {
		uierrors.RenderForbidden(w, r, "")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list assignments failed", err, "A database error occurred.")
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, map[string]any{"assignments": out})
}

type respondForm struct {
	Status string `form:"status" json:"status" validate:"required,oneof=accepted declined"`
	Notes  string `form:"notes" json:"notes" validate:"max=2000"`
}

// ServeRespond handles PATCH /assignments/{id} from the assigned agent.
func (h *Handler) ServeRespond(w http.ResponseWriter, r *http.Request) {
	_, name, agentID, ok := authz.UserCtx(r)
	if !ok || !authz.IsAgent(r) {
		uierrors.RenderForbidden(w, r, "Only the assigned agent can respond.")
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "Assignment not found.")
		return
	}
	var f respondForm
	if err := formutil.Decode(r, &f); err != nil {
		uierrors.RenderBadRequest(w, r, "The form could not be read.")
		return
	}
	if err := inputval.Validate(&f); err != nil {
		var fields inputval.Errors
		errors.As(err, &fields)
		h.Metrics.Form("assignment", "invalid")
		h.ErrLog.LogFormError(w, r, http.StatusUnprocessableEntity, "assignment response rejected", err,
			"Choose accepted or declined.", f, fields)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	a, err := h.Store.Respond(ctx, id, agentID, f.Status == models.AssignmentAccepted, f.Notes, name)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		h.Metrics.Form("assignment", "not_found")
		uierrors.RenderNotFound(w, r, "Assignment not found.")
		return
	case errors.Is(err, assignmentstore.ErrNotYours):
		h.Metrics.Form("assignment", "forbidden")
		uierrors.RenderForbidden(w, r, err.Error())
		return
	case errors.Is(err, assignmentstore.ErrExpired):
		h.Metrics.Form("assignment", "expired")
		uierrors.Write(w, http.StatusGone, err.Error())
		return
	case errors.Is(err, assignmentstore.ErrNotPending):
		h.Metrics.Form("assignment", "conflict")
		uierrors.Write(w, http.StatusConflict, err.Error())
		return
	case err != nil && a.ID.IsZero():
		h.Metrics.Form("assignment", "error")
		h.ErrLog.LogServerError(w, r, "assignment response failed", err, "A database error occurred.")
		return
	case err != nil:
		// The answer is stored; only a follow-up write failed.
		h.Log.Warn("assignment follow-up failed", zap.String("assignment_id", id.Hex()), zap.Error(err))
	}

	h.Metrics.Form("assignment", "ok")
	h.Audit.AssignmentResponded(r.Context(), r, agentID.Hex(), id.Hex(), a.Status)
	if h.OnRefresh != nil {
		h.OnRefresh(r.Context(), realtime.Event{
			Table: "agent_inquiry_assignments", Event: realtime.Update, ID: id.Hex(), AgentID: agentID.Hex(),
		})
	}
	uierrors.WriteJSON(w, http.StatusOK, a)
}
