package forms

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/homeandown/estatehub/internal/app/system/authz"
	"github.com/homeandown/estatehub/internal/app/system/normalize"
	"github.com/homeandown/estatehub/internal/app/system/realtime"
	"github.com/homeandown/estatehub/internal/app/system/timeouts"
	"github.com/homeandown/estatehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type bookingForm struct {
	PropertyID  string `form:"property_id" json:"property_id" validate:"required,objectid"`
	UserID      string `form:"user_id" json:"user_id" validate:"required,objectid"`
	AgentID     string `form:"agent_id" json:"agent_id" validate:"omitempty,objectid"`
	BookingDate string `form:"booking_date" json:"booking_date" validate:"required,ymd"`
	BookingTime string `form:"booking_time" json:"booking_time" validate:"required,hhmm"`
	Status      string `form:"status" json:"status" validate:"omitempty,oneof=pending confirmed cancelled"`
	Notes       string `form:"notes" json:"notes" validate:"max=2000"`
}

func (f bookingForm) booking() models.Booking {
	propertyID, _ := primitive.ObjectIDFromHex(f.PropertyID)
	userID, _ := primitive.ObjectIDFromHex(f.UserID)
	return models.Booking{
		PropertyID:  propertyID,
		UserID:      userID,
		AgentID:     optionalID(f.AgentID),
		BookingDate: f.BookingDate,
		BookingTime: f.BookingTime,
		Status:      f.Status,
		Notes:       f.Notes,
	}
}

func (f *bookingForm) bind(w http.ResponseWriter, r *http.Request, h *Handler) bool {
	if !h.read(w, r, "booking", f) {
		return false
	}
	f.Status = normalize.Lower(f.Status)
	return h.validate(w, r, "booking", f, f)
}

// propertyExists answers 422 on property_id when the property is unknown.
func (h *Handler) propertyExists(ctx context.Context, w http.ResponseWriter, r *http.Request, f bookingForm) bool {
	b := f.booking()
	_, err := h.Properties.GetByID(ctx, b.PropertyID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.invalid(w, r, "booking", err, f, map[string]string{"property_id": "no such property"})
		return false
	}
	if err != nil {
		h.failed(w, r, "booking", err, f)
		return false
	}
	return true
}

// ServeCreateBooking handles POST /forms/bookings.
func (h *Handler) ServeCreateBooking(w http.ResponseWriter, r *http.Request) {
	var f bookingForm
	if !f.bind(w, r, h) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if !h.propertyExists(ctx, w, r, f) {
		return
	}
	b, err := h.Bookings.Create(ctx, f.booking())
	if err != nil {
		h.failed(w, r, "booking", err, f)
		return
	}

	_, _, actor, _ := authz.UserCtx(r)
	h.Audit.RecordCreated(r.Context(), r, actor.Hex(), "bookings", b.ID.Hex())
	h.saved(w, r, "booking", http.StatusCreated, realtime.Event{
		Table: "bookings", Event: realtime.Insert, ID: b.ID.Hex(), AgentID: agentHex(b.AgentID),
	}, b)
}

// ServeUpdateBooking handles PUT /forms/bookings/{id}.
func (h *Handler) ServeUpdateBooking(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.notFound(w, r, "booking")
		return
	}
	var f bookingForm
	if !f.bind(w, r, h) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	b, err := h.Bookings.Update(ctx, id, f.booking())
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.notFound(w, r, "booking")
		return
	}
	if err != nil {
		h.failed(w, r, "booking", err, f)
		return
	}

	_, _, actor, _ := authz.UserCtx(r)
	h.Audit.RecordUpdated(r.Context(), r, actor.Hex(), "bookings", id.Hex())
	h.saved(w, r, "booking", http.StatusOK, realtime.Event{
		Table: "bookings", Event: realtime.Update, ID: id.Hex(), AgentID: agentHex(b.AgentID),
	}, b)
}
