// Package forms handles create/update submissions for users, properties
// and bookings, agent assignment for inquiries and monthly agent earnings.
//
// Every successful write calls OnRefresh so dashboards and open tables
// reload. Failures answer 422 (validation) or 500 (storage) and echo the
// submitted values.
package forms

import (
	"context"
	"errors"
	"net/http"
	"time"

	uierrors "github.com/homeandown/estatehub/internal/app/features/errors"
	assignmentstore "github.com/homeandown/estatehub/internal/app/store/assignments"
	bookingstore "github.com/homeandown/estatehub/internal/app/store/bookings"
	earningstore "github.com/homeandown/estatehub/internal/app/store/earnings"
	inquirystore "github.com/homeandown/estatehub/internal/app/store/inquiries"
	propertystore "github.com/homeandown/estatehub/internal/app/store/properties"
	userstore "github.com/homeandown/estatehub/internal/app/store/users"
	"github.com/homeandown/estatehub/internal/app/system/auditlog"
	"github.com/homeandown/estatehub/internal/app/system/formutil"
	"github.com/homeandown/estatehub/internal/app/system/inputval"
	"github.com/homeandown/estatehub/internal/app/system/realtime"
	"github.com/homeandown/estatehub/internal/app/system/telemetry"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const msgFixFields = "Please correct the highlighted fields."

type Handler struct {
	Users       *userstore.Store
	Properties  *propertystore.Store
	Bookings    *bookingstore.Store
	Inquiries   *inquirystore.Store
	Assignments *assignmentstore.Store
	Earnings    *earningstore.Store

	// DefaultExpiry applies when an assignment form leaves expiry_hours blank.
	DefaultExpiry time.Duration

	Audit     *auditlog.Logger
	Metrics   *telemetry.Metrics
	OnRefresh func(ctx context.Context, ev realtime.Event)
	ErrLog    *uierrors.ErrorLogger
	Log       *zap.Logger
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, m *telemetry.Metrics, onRefresh func(context.Context, realtime.Event), errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:         userstore.New(db),
		Properties:    propertystore.New(db),
		Bookings:      bookingstore.New(db),
		Inquiries:     inquirystore.New(db),
		Assignments:   assignmentstore.New(db, logger),
		Earnings:      earningstore.New(db),
		DefaultExpiry: defaultExpiryHours * time.Hour,
		Audit:         audit,
		Metrics:       m,
		OnRefresh:     onRefresh,
		ErrLog:        errLog,
		Log:           logger,
	}
}

// decode reads and validates the submission. On failure it has already
// answered the request.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, entity string, dst any) bool {
	return h.read(w, r, entity, dst) && h.validate(w, r, entity, dst, dst)
}

func (h *Handler) read(w http.ResponseWriter, r *http.Request, entity string, dst any) bool {
	if err := formutil.Decode(r, dst); err != nil {
		h.Metrics.Form(entity, "invalid")
		uierrors.RenderBadRequest(w, r, "The form could not be read.")
		return false
	}
	return true
}

// validate checks form and, on failure, answers with echo in its place.
func (h *Handler) validate(w http.ResponseWriter, r *http.Request, entity string, form, echo any) bool {
	err := inputval.Validate(form)
	if err == nil {
		return true
	}
	var fields inputval.Errors
	if errors.As(err, &fields) {
		h.invalid(w, r, entity, err, echo, fields)
		return false
	}
	h.failed(w, r, entity, err, echo)
	return false
}

// invalid answers 422 with per-field messages and the echoed form.
func (h *Handler) invalid(w http.ResponseWriter, r *http.Request, entity string, err error, form any, fields map[string]string) {
	h.Metrics.Form(entity, "invalid")
	h.ErrLog.LogFormError(w, r, http.StatusUnprocessableEntity, entity+" form rejected", err, msgFixFields, form, fields)
}

// failed answers 500 with the echoed form.
func (h *Handler) failed(w http.ResponseWriter, r *http.Request, entity string, err error, form any) {
	h.Metrics.Form(entity, "error")
	h.ErrLog.LogFormError(w, r, http.StatusInternalServerError, entity+" write failed", err, "A database error occurred.", form, nil)
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request, entity string) {
	h.Metrics.Form(entity, "not_found")
	uierrors.RenderNotFound(w, r, "Record not found.")
}

// saved records success, fires the refresh hook and writes the record.
func (h *Handler) saved(w http.ResponseWriter, r *http.Request, entity string, code int, ev realtime.Event, record any) {
	h.Metrics.Form(entity, "ok")
	if h.OnRefresh != nil {
		h.OnRefresh(r.Context(), ev)
	}
	uierrors.WriteJSON(w, code, record)
}
