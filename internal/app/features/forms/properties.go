package forms

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/homeandown/estatehub/internal/app/system/authz"
	"github.com/homeandown/estatehub/internal/app/system/formutil"
	"github.com/homeandown/estatehub/internal/app/system/normalize"
	"github.com/homeandown/estatehub/internal/app/system/realtime"
	"github.com/homeandown/estatehub/internal/app/system/timeouts"
	"github.com/homeandown/estatehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type propertyForm struct {
	Title        string       `form:"title" json:"title" validate:"notblank,max=200"`
	PropertyType string       `form:"property_type" json:"property_type" validate:"max=50"`
	City         string       `form:"city" json:"city" validate:"max=100"`
	State        string       `form:"state" json:"state" validate:"max=100"`
	Price        formutil.Num `form:"price" json:"price" validate:"omitempty,numeric"`
	MonthlyRent  formutil.Num `form:"monthly_rent" json:"monthly_rent" validate:"omitempty,numeric"`
	ListingType  string       `form:"listing_type" json:"listing_type" validate:"required,oneof=SALE RENT"`
	Status       string       `form:"status" json:"status" validate:"omitempty,oneof=active inactive pending sold rented"`
	Featured     bool         `form:"featured" json:"featured"`
	Verified     bool         `form:"verified" json:"verified"`
	OwnerID      string       `form:"owner_id" json:"owner_id" validate:"omitempty,objectid"`
	AgentID      string       `form:"agent_id" json:"agent_id" validate:"omitempty,objectid"`
}

func optionalID(hex string) *primitive.ObjectID {
	if hex == "" {
		return nil
	}
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return nil
	}
	return &id
}

// property converts a validated form. Number fields were checked by the
// validator so conversion errors cannot occur here.
func (f propertyForm) property() models.Property {
	price, _ := f.Price.Float()
	rent, _ := f.MonthlyRent.Float()
	return models.Property{
		Title:        f.Title,
		PropertyType: f.PropertyType,
		City:         f.City,
		State:        f.State,
		Price:        price,
		MonthlyRent:  rent,
		ListingType:  f.ListingType,
		Status:       normalize.Lower(f.Status),
		Featured:     f.Featured,
		Verified:     f.Verified,
		OwnerID:      optionalID(f.OwnerID),
		AgentID:      optionalID(f.AgentID),
	}
}

func (f *propertyForm) bind(w http.ResponseWriter, r *http.Request, h *Handler) bool {
	if !h.read(w, r, "property", f) {
		return false
	}
	// Listing type is matched case-insensitively.
	f.ListingType = normalize.Upper(f.ListingType)
	f.Status = normalize.Lower(f.Status)
	return h.validate(w, r, "property", f, f)
}

func agentHex(id *primitive.ObjectID) string {
	if id == nil {
		return ""
	}
	return id.Hex()
}

// ServeCreateProperty handles POST /forms/properties.
func (h *Handler) ServeCreateProperty(w http.ResponseWriter, r *http.Request) {
	var f propertyForm
	if !f.bind(w, r, h) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.Properties.Create(ctx, f.property())
	if err != nil {
		h.failed(w, r, "property", err, f)
		return
	}

	_, _, actor, _ := authz.UserCtx(r)
	h.Audit.RecordCreated(r.Context(), r, actor.Hex(), "properties", p.ID.Hex())
	h.saved(w, r, "property", http.StatusCreated, realtime.Event{
		Table: "properties", Event: realtime.Insert, ID: p.ID.Hex(), AgentID: agentHex(p.AgentID),
	}, p)
}

// ServeUpdateProperty handles PUT /forms/properties/{id}.
func (h *Handler) ServeUpdateProperty(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.notFound(w, r, "property")
		return
	}
	var f propertyForm
	if !f.bind(w, r, h) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.Properties.Update(ctx, id, f.property())
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.notFound(w, r, "property")
		return
	}
	if err != nil {
		h.failed(w, r, "property", err, f)
		return
	}

	_, _, actor, _ := authz.UserCtx(r)
	h.Audit.RecordUpdated(r.Context(), r, actor.Hex(), "properties", id.Hex())
	h.saved(w, r, "property", http.StatusOK, realtime.Event{
		Table: "properties", Event: realtime.Update, ID: id.Hex(), AgentID: agentHex(p.AgentID),
	}, p)
}
