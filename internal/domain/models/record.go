// internal/domain/models/record.go
package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind tags a Record with the entity it came from.
type Kind string

const (
	KindUser         Kind = "user"
	KindProperty     Kind = "property"
	KindBooking      Kind = "booking"
	KindInquiry      Kind = "inquiry"
	KindNotification Kind = "notification"
	KindAssignment   Kind = "assignment"
	KindSeller       Kind = "seller_profile"
)

// Kinds lists every record kind the table views know how to render.
var Kinds = []Kind{KindUser, KindProperty, KindBooking, KindInquiry, KindNotification, KindAssignment, KindSeller}

// ParseKind maps a URL segment or CLI argument ("users", "property", ...)
// to a Kind. Plural forms are accepted.
func ParseKind(s string) (Kind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "user", "users":
		return KindUser, true
	case "property", "properties":
		return KindProperty, true
	case "booking", "bookings":
		return KindBooking, true
	case "inquiry", "inquiries":
		return KindInquiry, true
	case "notification", "notifications":
		return KindNotification, true
	case "assignment", "assignments":
		return KindAssignment, true
	case "seller_profile", "seller_profiles", "sellers", "approvals":
		return KindSeller, true
	}
	return "", false
}

// Field is one named value of a Record. Value is one of: nil, string,
// bool, int/int64/float64, *float64, time.Time, primitive.ObjectID,
// *primitive.ObjectID, or a nested Fielder.
type Field struct {
	Key   string
	Value any
}

// Fields is an ordered list of fields. Order is the column order used for
// exports (header = keys of the first record).
type Fields []Field

// Get returns the value stored under key and whether the key exists.
func (fs Fields) Get(key string) (any, bool) {
	for _, f := range fs {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Keys returns the field names in order.
func (fs Fields) Keys() []string {
	keys := make([]string, len(fs))
	for i, f := range fs {
		keys[i] = f.Key
	}
	return keys
}

// Fielder is implemented by anything that can present itself as Fields,
// including nested reference objects (owner, property, agent).
type Fielder interface {
	Fields() Fields
}

// Record is a row fetched from the data gateway. The concrete type is one
// of User, Property, Booking, Inquiry, Notification, Assignment or
// SellerProfile.
type Record interface {
	Fielder
	Kind() Kind
	RecordID() string
}

// Stringify renders a field value the way it is searched and exported.
// Nil values (and nil pointers) render as the empty string; nested
// objects render as their non-empty values joined by a space.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case *float64:
		if x == nil {
			return ""
		}
		return strconv.FormatFloat(*x, 'f', -1, 64)
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.UTC().Format(time.RFC3339)
	case *time.Time:
		if x == nil || x.IsZero() {
			return ""
		}
		return x.UTC().Format(time.RFC3339)
	case primitive.ObjectID:
		if x.IsZero() {
			return ""
		}
		return x.Hex()
	case *primitive.ObjectID:
		if x == nil || x.IsZero() {
			return ""
		}
		return x.Hex()
	case Fielder:
		if isNilFielder(x) {
			return ""
		}
		parts := make([]string, 0, 4)
		for _, f := range x.Fields() {
			if s := Stringify(f.Value); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func isNilFielder(f Fielder) bool {
	switch x := f.(type) {
	case *PersonRef:
		return x == nil
	case *PropertyRef:
		return x == nil
	}
	return false
}

// FieldString is a convenience for Stringify(record field).
func FieldString(r Fielder, key string) (string, bool) {
	v, ok := r.Fields().Get(key)
	if !ok {
		return "", false
	}
	return Stringify(v), true
}

// PersonRef is the joined subset of a user shown next to other records
// (property owner, booking client, assigned agent).
type PersonRef struct {
	FirstName          string `bson:"first_name" json:"first_name"`
	LastName           string `bson:"last_name" json:"last_name"`
	CustomID           string `bson:"custom_id,omitempty" json:"custom_id,omitempty"`
	AgentLicenseNumber string `bson:"agent_license_number,omitempty" json:"agent_license_number,omitempty"`
}

// Fields implements Fielder.
func (p *PersonRef) Fields() Fields {
	if p == nil {
		return nil
	}
	return Fields{
		{"first_name", p.FirstName},
		{"last_name", p.LastName},
		{"custom_id", p.CustomID},
		{"agent_license_number", p.AgentLicenseNumber},
	}
}

// FullName joins first and last name.
func (p *PersonRef) FullName() string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// PropertyRef is the joined subset of a property shown on bookings and
// inquiries.
type PropertyRef struct {
	Title    string `bson:"title" json:"title"`
	CustomID string `bson:"custom_id,omitempty" json:"custom_id,omitempty"`
}

// Fields implements Fielder.
func (p *PropertyRef) Fields() Fields {
	if p == nil {
		return nil
	}
	return Fields{
		{"title", p.Title},
		{"custom_id", p.CustomID},
	}
}

func hexOrEmpty(id *primitive.ObjectID) string {
	if id == nil || id.IsZero() {
		return ""
	}
	return id.Hex()
}

// AsRecords widens a typed slice to []Record, preserving order.
func AsRecords[T Record](xs []T) []Record {
	out := make([]Record, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}
