package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking statuses.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

// Booking is a scheduled property tour.
type Booking struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	PropertyID  primitive.ObjectID  `bson:"property_id" json:"property_id"`
	UserID      primitive.ObjectID  `bson:"user_id" json:"user_id"`
	AgentID     *primitive.ObjectID `bson:"agent_id,omitempty" json:"agent_id,omitempty"`
	BookingDate string              `bson:"booking_date" json:"booking_date"` // YYYY-MM-DD
	BookingTime string              `bson:"booking_time" json:"booking_time"` // HH:MM
	Status      string              `bson:"status" json:"status"`
	Notes       string              `bson:"notes,omitempty" json:"notes,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`

	Property *PropertyRef `bson:"-" json:"property,omitempty"`
	User     *PersonRef   `bson:"-" json:"user,omitempty"`
	Agent    *PersonRef   `bson:"-" json:"agent,omitempty"`
}

// Kind implements Record.
func (b Booking) Kind() Kind { return KindBooking }

// RecordID implements Record.
func (b Booking) RecordID() string { return b.ID.Hex() }

// Fields implements Record.
func (b Booking) Fields() Fields {
	return Fields{
		{"id", b.ID},
		{"booking_date", b.BookingDate},
		{"booking_time", b.BookingTime},
		{"status", b.Status},
		{"created_at", b.CreatedAt},
		{"property", b.Property},
		{"user", b.User},
		{"agent", b.Agent},
	}
}
