// internal/domain/models/user.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User types.
const (
	UserTypeAdmin  = "admin"
	UserTypeAgent  = "agent"
	UserTypeSeller = "seller"
	UserTypeBuyer  = "buyer"
)

// Account statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusPending  = "pending"
)

// Verification statuses (users and seller profiles).
const (
	VerificationPending  = "pending"
	VerificationVerified = "verified"
	VerificationRejected = "rejected"
)

// User represents admins, agents, sellers and buyers.
//
// NOTE:
//   - PasswordHash never leaves the store; it is excluded from Fields and JSON.
//   - EmailCI is the folded email used for lookups.
type User struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CustomID           string             `bson:"custom_id" json:"custom_id"`
	FirstName          string             `bson:"first_name" json:"first_name"`
	LastName           string             `bson:"last_name" json:"last_name"`
	FullNameCI         string             `bson:"full_name_ci" json:"-"`
	Email              string             `bson:"email" json:"email"`
	PhoneNumber        string             `bson:"phone_number,omitempty" json:"phone_number,omitempty"`
	UserType           string             `bson:"user_type" json:"user_type"` // admin | agent | seller | buyer
	Status             string             `bson:"status" json:"status"`
	VerificationStatus string             `bson:"verification_status,omitempty" json:"verification_status,omitempty"`
	AgentLicenseNumber string             `bson:"agent_license_number,omitempty" json:"agent_license_number,omitempty"`
	City               string             `bson:"city,omitempty" json:"city,omitempty"`
	State              string             `bson:"state,omitempty" json:"state,omitempty"`
	PasswordHash       string             `bson:"password_hash,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Kind implements Record.
func (u User) Kind() Kind { return KindUser }

// RecordID implements Record.
func (u User) RecordID() string { return u.ID.Hex() }

// FullName joins first and last name.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Fields implements Record.
func (u User) Fields() Fields {
	return Fields{
		{"id", u.ID},
		{"custom_id", u.CustomID},
		{"first_name", u.FirstName},
		{"last_name", u.LastName},
		{"email", u.Email},
		{"phone_number", u.PhoneNumber},
		{"user_type", u.UserType},
		{"status", u.Status},
		{"verification_status", u.VerificationStatus},
		{"agent_license_number", u.AgentLicenseNumber},
		{"created_at", u.CreatedAt},
	}
}

// Ref returns the joined subset shown on other records.
func (u User) Ref() *PersonRef {
	return &PersonRef{
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		CustomID:           u.CustomID,
		AgentLicenseNumber: u.AgentLicenseNumber,
	}
}

// IsVerifiedAgent reports whether the user can receive inquiry assignments.
func (u User) IsVerifiedAgent() bool {
	return u.UserType == UserTypeAgent && u.Status == StatusActive && u.VerificationStatus == VerificationVerified
}
