// internal/domain/models/property.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Listing types.
const (
	ListingSale = "SALE"
	ListingRent = "RENT"
)

// Property is a listing. Price applies to SALE listings and MonthlyRent
// to RENT listings; either may be unset.
type Property struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	CustomID     string              `bson:"custom_id" json:"custom_id"`
	Title        string              `bson:"title" json:"title"`
	TitleCI      string              `bson:"title_ci" json:"-"`
	PropertyType string              `bson:"property_type" json:"property_type"`
	City         string              `bson:"city" json:"city"`
	State        string              `bson:"state,omitempty" json:"state,omitempty"`
	Price        *float64            `bson:"price,omitempty" json:"price"`
	MonthlyRent  *float64            `bson:"monthly_rent,omitempty" json:"monthly_rent"`
	ListingType  string              `bson:"listing_type" json:"listing_type"` // SALE | RENT
	Status       string              `bson:"status" json:"status"`
	Featured     bool                `bson:"featured" json:"featured"`
	Verified     bool                `bson:"verified" json:"verified"`
	OwnerID      *primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	AgentID      *primitive.ObjectID `bson:"agent_id,omitempty" json:"agent_id,omitempty"`
	Latitude     *float64            `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude    *float64            `bson:"longitude,omitempty" json:"longitude,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`

	// Owner is joined by the store; it is not persisted.
	Owner *PersonRef `bson:"-" json:"owner,omitempty"`
}

// Kind implements Record.
func (p Property) Kind() Kind { return KindProperty }

// RecordID implements Record.
func (p Property) RecordID() string { return p.ID.Hex() }

// Fields implements Record.
func (p Property) Fields() Fields {
	return Fields{
		{"id", p.ID},
		{"custom_id", p.CustomID},
		{"title", p.Title},
		{"property_type", p.PropertyType},
		{"city", p.City},
		{"price", p.Price},
		{"monthly_rent", p.MonthlyRent},
		{"listing_type", p.ListingType},
		{"status", p.Status},
		{"featured", p.Featured},
		{"verified", p.Verified},
		{"created_at", p.CreatedAt},
		{"owner", p.Owner},
	}
}

// Ref returns the joined subset shown on bookings and inquiries.
func (p Property) Ref() *PropertyRef {
	return &PropertyRef{Title: p.Title, CustomID: p.CustomID}
}

// Unassigned reports whether the property has no owner.
func (p Property) Unassigned() bool {
	return p.OwnerID == nil || p.OwnerID.IsZero()
}
