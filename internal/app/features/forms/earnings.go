package forms

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/homeandown/estatehub/internal/app/system/authz"
	"github.com/homeandown/estatehub/internal/app/system/formutil"
	"github.com/homeandown/estatehub/internal/app/system/realtime"
	"github.com/homeandown/estatehub/internal/app/system/timeouts"
	"github.com/homeandown/estatehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type earningForm struct {
	AgentID         string       `form:"agent_id" json:"agent_id" validate:"required,objectid"`
	Year            formutil.Num `form:"year" json:"year" validate:"required,numeric"`
	Month           formutil.Num `form:"month" json:"month" validate:"required,numeric"`
	TotalCommission formutil.Num `form:"total_commission" json:"total_commission" validate:"required,numeric"`
}

// ranges checks what the tag validator cannot express for text numbers.
func (f earningForm) ranges() map[string]string {
	bad := map[string]string{}
	if y := f.Year.Int(0); y < 2000 || y > 2100 {
		bad["year"] = "must be between 2000 and 2100"
	}
	if m := f.Month.Int(0); m < 1 || m > 12 {
		bad["month"] = "must be between 1 and 12"
	}
	if c, _ := f.TotalCommission.Float(); c == nil || *c < 0 {
		bad["total_commission"] = "must be 0 or more"
	}
	return bad
}

// ServeRecordEarning handles POST /forms/earnings. It upserts one month of
// an agent's commission; the agent's dashboard shows the latest month.
func (h *Handler) ServeRecordEarning(w http.ResponseWriter, r *http.Request) {
	var f earningForm
	if !h.decode(w, r, "earning", &f) {
		return
	}
	if bad := f.ranges(); len(bad) > 0 {
		h.invalid(w, r, "earning", fmt.Errorf("earning out of range: %v", bad), f, bad)
		return
	}
	agentID, _ := primitive.ObjectIDFromHex(f.AgentID)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	agent, err := h.Users.GetByID(ctx, agentID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		h.failed(w, r, "earning", err, f)
		return
	}
	if agent == nil || agent.UserType != models.UserTypeAgent {
		h.invalid(w, r, "earning", errors.New("not an agent"), f,
			map[string]string{"agent_id": "must be an agent"})
		return
	}

	commission, _ := f.TotalCommission.Float()
	if err := h.Earnings.Record(ctx, agentID, f.Year.Int(0), f.Month.Int(0), *commission); err != nil {
		h.failed(w, r, "earning", err, f)
		return
	}
	latest, err := h.Earnings.Latest(ctx, agentID)
	if err != nil {
		h.failed(w, r, "earning", err, f)
		return
	}

	_, _, actor, _ := authz.UserCtx(r)
	h.Audit.RecordUpdated(r.Context(), r, actor.Hex(), "earnings", agentID.Hex())
	h.saved(w, r, "earning", http.StatusOK, realtime.Event{
		Table: "earnings", Event: realtime.Update, ID: agentID.Hex(), AgentID: agentID.Hex(),
	}, latest)
}
