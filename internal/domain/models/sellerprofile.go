package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SellerProfile is a seller's application for verification. Admins approve
// or reject pending profiles.
type SellerProfile struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID             primitive.ObjectID `bson:"user_id" json:"user_id"`
	BusinessName       string             `bson:"business_name" json:"business_name"`
	VerificationStatus string             `bson:"verification_status" json:"verification_status"`
	CreatedAt          time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updated_at"`

	User *PersonRef `bson:"-" json:"user,omitempty"`
}

// Kind implements Record.
func (s SellerProfile) Kind() Kind { return KindSeller }

// RecordID implements Record.
func (s SellerProfile) RecordID() string { return s.ID.Hex() }

// Fields implements Record.
func (s SellerProfile) Fields() Fields {
	return Fields{
		{"id", s.ID},
		{"business_name", s.BusinessName},
		{"verification_status", s.VerificationStatus},
		{"created_at", s.CreatedAt},
		{"user", s.User},
	}
}
