// Package approvals is the seller verification queue.
package approvals

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	uierrors "github.com/homeandown/estatehub/internal/app/features/errors"
	sellerstore "github.com/homeandown/estatehub/internal/app/store/sellers"
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

type Store interface {
	ListPending(ctx context.Context) ([]models.SellerProfile, error)
	Decide(ctx context.Context, id primitive.ObjectID, decision string) (models.SellerProfile, error)
}

var _ Store = (*sellerstore.Store)(nil)

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

// ServeList handles GET /approvals: pending profiles, oldest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ps, err := h.Store.ListPending(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list pending sellers failed", err, "A database error occurred.")
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, map[string]any{"pending": ps, "total": len(ps)})
}

type decideForm struct {
	Decision string `form:"decision" json:"decision" validate:"required,oneof=approve reject verified rejected"`
}

func (f decideForm) status() string {
	if f.Decision == "approve" || f.Decision == models.VerificationVerified {
		return models.VerificationVerified
	}
	return models.VerificationRejected
}

// ServeDecide handles POST /approvals/{id}.
func (h *Handler) ServeDecide(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "Seller profile not found.")
		return
	}
	var f decideForm
	if err := formutil.Decode(r, &f); err != nil {
		uierrors.RenderBadRequest(w, r, "The form could not be read.")
		return
	}
	if err := inputval.Validate(&f); err != nil {
		var fields inputval.Errors
		errors.As(err, &fields)
		h.Metrics.Form("seller_profile", "invalid")
		h.ErrLog.LogFormError(w, r, http.StatusUnprocessableEntity, "seller decision rejected", err,
			"Choose approve or reject.", f, fields)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.Store.Decide(ctx, id, f.status())
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.Metrics.Form("seller_profile", "not_found")
		uierrors.RenderNotFound(w, r, "Seller profile not found.")
		return
	}
	if err != nil {
		h.Metrics.Form("seller_profile", "error")
		h.ErrLog.LogServerError(w, r, "seller decision failed", err, "A database error occurred.")
		return
	}

	h.Metrics.Form("seller_profile", "ok")
	_, _, actor, _ := authz.UserCtx(r)
	h.Audit.SellerDecided(r.Context(), r, actor.Hex(), id.Hex(), p.VerificationStatus)
	if h.OnRefresh != nil {
		h.OnRefresh(r.Context(), realtime.Event{Table: "seller_profiles", Event: realtime.Update, ID: id.Hex()})
	}
	uierrors.WriteJSON(w, http.StatusOK, p)
}
