package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Inquiry statuses.
const (
	InquiryNew       = "new"
	InquiryResponded = "responded"
	InquiryClosed    = "closed"
)

// Inquiry is a message from a prospective buyer or tenant about a property.
type Inquiry struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	PropertyID      *primitive.ObjectID `bson:"property_id,omitempty" json:"property_id,omitempty"`
	Name            string              `bson:"name" json:"name"`
	Email           string              `bson:"email" json:"email"`
	Phone           string              `bson:"phone,omitempty" json:"phone,omitempty"`
	Message         string              `bson:"message" json:"message"`
	Status          string              `bson:"status" json:"status"`
	AssignedAgentID *primitive.ObjectID `bson:"assigned_agent_id,omitempty" json:"assigned_agent_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`

	Property *PropertyRef `bson:"-" json:"property,omitempty"`
}

// Kind implements Record.
func (i Inquiry) Kind() Kind { return KindInquiry }

// RecordID implements Record.
func (i Inquiry) RecordID() string { return i.ID.Hex() }

// Fields implements Record.
func (i Inquiry) Fields() Fields {
	return Fields{
		{"id", i.ID},
		{"name", i.Name},
		{"email", i.Email},
		{"phone", i.Phone},
		{"message", i.Message},
		{"status", i.Status},
		{"assigned_agent_id", hexOrEmpty(i.AssignedAgentID)},
		{"created_at", i.CreatedAt},
		{"property", i.Property},
	}
}
