package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Assignment statuses.
const (
	AssignmentPending  = "pending"
	AssignmentAccepted = "accepted"
	AssignmentDeclined = "declined"
	AssignmentExpired  = "expired"
)

// Assignment hands an inquiry to an agent, who must accept it before it
// expires.
type Assignment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	InquiryID  primitive.ObjectID `bson:"inquiry_id" json:"inquiry_id"`
	AgentID    primitive.ObjectID `bson:"agent_id" json:"agent_id"`
	Status     string             `bson:"status" json:"status"`
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`
	AssignedAt time.Time          `bson:"assigned_at" json:"assigned_at"`
	ExpiresAt  time.Time          `bson:"expires_at" json:"expires_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`

	RespondedAt *time.Time `bson:"responded_at,omitempty" json:"responded_at,omitempty"`

	Inquiry *Inquiry `bson:"-" json:"inquiry,omitempty"`
}

// Kind implements Record.
func (a Assignment) Kind() Kind { return KindAssignment }

// RecordID implements Record.
func (a Assignment) RecordID() string { return a.ID.Hex() }

// Fields implements Record.
func (a Assignment) Fields() Fields {
	return Fields{
		{"id", a.ID},
		{"inquiry_id", a.InquiryID},
		{"agent_id", a.AgentID},
		{"status", a.Status},
		{"notes", a.Notes},
		{"assigned_at", a.AssignedAt},
		{"expires_at", a.ExpiresAt},
	}
}

// Expired reports whether a pending assignment is past its deadline.
func (a Assignment) Expired(now time.Time) bool {
	return a.Status == AssignmentPending && !a.ExpiresAt.IsZero() && now.After(a.ExpiresAt)
}

// Earning is one month of agent commission.
type Earning struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AgentID         primitive.ObjectID `bson:"agent_id" json:"agent_id"`
	Year            int                `bson:"year" json:"year"`
	Month           int                `bson:"month" json:"month"`
	TotalCommission float64            `bson:"total_commission" json:"total_commission"`
}
