package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification statuses.
const (
	NotificationDraft     = "draft"
	NotificationScheduled = "scheduled"
	NotificationSent      = "sent"
)

// NotificationStats are the delivery counters recorded after a send.
type NotificationStats struct {
	TotalRecipients int64 `bson:"total_recipients" json:"total_recipients"`
	Delivered       int64 `bson:"delivered" json:"delivered"`
	Opened          int64 `bson:"opened" json:"opened"`
	Clicked         int64 `bson:"clicked" json:"clicked"`
}

// Notification is an announcement sent to an audience of users.
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title     string             `bson:"title" json:"title"`
	Message   string             `bson:"message" json:"message"`
	Type      string             `bson:"type" json:"type"`         // info | alert | promotion | ...
	Audience  string             `bson:"audience" json:"audience"` // all | buyer | seller | agent
	Status    string             `bson:"status" json:"status"`
	Analytics *NotificationStats `bson:"analytics,omitempty" json:"analytics,omitempty"`
	SentAt    *time.Time         `bson:"sent_at,omitempty" json:"sent_at,omitempty"`

	// EntityType and EntityID point at the record an event notification is about.
	EntityType string `bson:"entity_type,omitempty" json:"entity_type,omitempty"`
	EntityID   string `bson:"entity_id,omitempty" json:"entity_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Kind implements Record.
func (n Notification) Kind() Kind { return KindNotification }

// RecordID implements Record.
func (n Notification) RecordID() string { return n.ID.Hex() }

// Fields implements Record.
func (n Notification) Fields() Fields {
	return Fields{
		{"id", n.ID},
		{"title", n.Title},
		{"message", n.Message},
		{"type", n.Type},
		{"audience", n.Audience},
		{"status", n.Status},
		{"sent_at", n.SentAt},
		{"created_at", n.CreatedAt},
	}
}
