package forms

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	uierrors "github.com/homeandown/estatehub/internal/app/features/errors"
	assignmentstore "github.com/homeandown/estatehub/internal/app/store/assignments"
	"github.com/homeandown/estatehub/internal/app/system/authz"
	"github.com/homeandown/estatehub/internal/app/system/formutil"
	"github.com/homeandown/estatehub/internal/app/system/realtime"
	"github.com/homeandown/estatehub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const defaultExpiryHours = 24

type assignForm struct {
	AgentID     string       `form:"agent_id" json:"agent_id" validate:"required,objectid"`
	ExpiryHours formutil.Num `form:"expiry_hours" json:"expiry_hours" validate:"omitempty,numeric"`
	Notes       string       `form:"notes" json:"notes" validate:"max=2000"`
}

type agentOption struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	AgentLicenseNumber string `json:"agent_license_number,omitempty"`
}

// ServeAgents handles GET /forms/agents: the agents an inquiry can be
// assigned to.
func (h *Handler) ServeAgents(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	agents, err := h.Users.ListAssignableAgents(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list assignable agents failed", err, "A database error occurred.")
		return
	}
	out := make([]agentOption, 0, len(agents))
	for _, a := range agents {
		out = append(out, agentOption{
			ID:                 a.ID.Hex(),
			Name:               a.FullName(),
			Email:              a.Email,
			AgentLicenseNumber: a.AgentLicenseNumber,
		})
	}
	uierrors.WriteJSON(w, http.StatusOK, map[string]any{"agents": out})
}

// ServeAssign handles POST /forms/inquiries/{id}/assign.
func (h *Handler) ServeAssign(w http.ResponseWriter, r *http.Request) {
	inquiryID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.notFound(w, r, "assignment")
		return
	}
	var f assignForm
	if !h.decode(w, r, "assignment", &f) {
		return
	}
	hours := f.ExpiryHours.Int(int(h.DefaultExpiry / time.Hour))
	if hours <= 0 {
		h.invalid(w, r, "assignment", errors.New("expiry_hours must be positive"), f,
			map[string]string{"expiry_hours": "must be greater than 0"})
		return
	}
	agentID, _ := primitive.ObjectIDFromHex(f.AgentID)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := h.Inquiries.GetByID(ctx, inquiryID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			h.notFound(w, r, "assignment")
			return
		}
		h.failed(w, r, "assignment", err, f)
		return
	}

	a, err := h.Assignments.Assign(ctx, inquiryID, agentID, f.Notes, time.Duration(hours)*time.Hour)
	if errors.Is(err, assignmentstore.ErrAgentNotAssignable) {
		h.invalid(w, r, "assignment", err, f, map[string]string{"agent_id": err.Error()})
		return
	}
	if err != nil {
		h.failed(w, r, "assignment", err, f)
		return
	}

	_, _, actor, _ := authz.UserCtx(r)
	h.Audit.AgentAssigned(r.Context(), r, actor.Hex(), inquiryID.Hex(), agentID.Hex())
	h.saved(w, r, "assignment", http.StatusCreated, realtime.Event{
		Table: "agent_inquiry_assignments", Event: realtime.Insert, ID: a.ID.Hex(), AgentID: agentID.Hex(),
	}, a)
}
