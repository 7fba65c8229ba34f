package tableview

import (
	"errors"
	"fmt"

	"github.com/homeandown/estatehub/internal/app/system/display"
	"github.com/homeandown/estatehub/internal/domain/models"
)

// ErrUnknownKind is returned for a record kind with no column set.
var ErrUnknownKind = errors.New("tableview: unknown record kind")

// ColumnSpec describes one table column. When Render is nil the cell is
// the stringified record field named Key.
type ColumnSpec struct {
	Key    string                      `json:"key"`
	Header string                      `json:"header"`
	Render func(models.Record) string `json:"-"`
}

// RenderRow produces one display string per column. A missing key renders
// as a blank cell.
func RenderRow(r models.Record, cols []ColumnSpec) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		if c.Render != nil {
			out[i] = c.Render(r)
			continue
		}
		s, _ := models.FieldString(r, c.Key)
		out[i] = s
	}
	return out
}

// Columns returns the column set for kind.
func Columns(kind models.Kind) ([]ColumnSpec, error) {
	switch kind {
	case models.KindUser:
		return userColumns, nil
	case models.KindProperty:
		return propertyColumns, nil
	case models.KindBooking:
		return bookingColumns, nil
	case models.KindInquiry:
		return inquiryColumns, nil
	case models.KindNotification:
		return notificationColumns, nil
	case models.KindAssignment:
		return assignmentColumns, nil
	case models.KindSeller:
		return sellerColumns, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

func badge(key string) func(models.Record) string {
	return func(r models.Record) string {
		s, _ := models.FieldString(r, key)
		return display.StatusBadge(s).Label
	}
}

var userColumns = []ColumnSpec{
	{Key: "custom_id", Header: "ID"},
	{Key: "name", Header: "Name", Render: func(r models.Record) string {
		if u, ok := r.(models.User); ok {
			return u.FullName()
		}
		return ""
	}},
	{Key: "email", Header: "Email"},
	{Key: "phone_number", Header: "Phone"},
	{Key: "user_type", Header: "Type", Render: func(r models.Record) string {
		s, _ := models.FieldString(r, "user_type")
		return display.Capitalize(s)
	}},
	{Key: "status", Header: "Status", Render: badge("status")},
	{Key: "verification_status", Header: "Verification", Render: badge("verification_status")},
	{Key: "created_at", Header: "Joined", Render: dateOnly("created_at")},
}

var propertyColumns = []ColumnSpec{
	{Key: "custom_id", Header: "ID"},
	{Key: "title", Header: "Title"},
	{Key: "property_type", Header: "Type"},
	{Key: "city", Header: "City"},
	{Key: "price", Header: "Price", Render: func(r models.Record) string {
		p, ok := r.(models.Property)
		if !ok {
			return ""
		}
		if p.ListingType == models.ListingRent {
			return display.FormatINR(p.MonthlyRent)
		}
		return display.FormatINR(p.Price)
	}},
	{Key: "listing_type", Header: "Listing"},
	{Key: "owner", Header: "Owner", Render: func(r models.Record) string {
		if p, ok := r.(models.Property); ok && p.Owner != nil {
			return p.Owner.FullName()
		}
		return "Unassigned"
	}},
	{Key: "status", Header: "Status", Render: badge("status")},
	{Key: "created_at", Header: "Listed", Render: dateOnly("created_at")},
}

var bookingColumns = []ColumnSpec{
	{Key: "property", Header: "Property", Render: func(r models.Record) string {
		if b, ok := r.(models.Booking); ok && b.Property != nil {
			return b.Property.Title
		}
		return ""
	}},
	{Key: "user", Header: "Client", Render: func(r models.Record) string {
		if b, ok := r.(models.Booking); ok {
			return b.User.FullName()
		}
		return ""
	}},
	{Key: "agent", Header: "Agent", Render: func(r models.Record) string {
		if b, ok := r.(models.Booking); ok {
			return b.Agent.FullName()
		}
		return ""
	}},
	{Key: "booking_date", Header: "Date"},
	{Key: "booking_time", Header: "Time"},
	{Key: "status", Header: "Status", Render: badge("status")},
}

var inquiryColumns = []ColumnSpec{
	{Key: "name", Header: "Name"},
	{Key: "email", Header: "Email"},
	{Key: "phone", Header: "Phone"},
	{Key: "property", Header: "Property", Render: func(r models.Record) string {
		if i, ok := r.(models.Inquiry); ok && i.Property != nil {
			return i.Property.Title
		}
		return ""
	}},
	{Key: "message", Header: "Message"},
	{Key: "status", Header: "Status", Render: badge("status")},
	{Key: "created_at", Header: "Received", Render: dateOnly("created_at")},
}

var notificationColumns = []ColumnSpec{
	{Key: "title", Header: "Title"},
	{Key: "type", Header: "Type"},
	{Key: "audience", Header: "Audience"},
	{Key: "status", Header: "Status", Render: badge("status")},
	{Key: "sent_at", Header: "Sent", Render: dateOnly("sent_at")},
}

var assignmentColumns = []ColumnSpec{
	{Key: "inquiry_id", Header: "Inquiry"},
	{Key: "agent_id", Header: "Agent"},
	{Key: "status", Header: "Status", Render: badge("status")},
	{Key: "assigned_at", Header: "Assigned", Render: dateOnly("assigned_at")},
	{Key: "expires_at", Header: "Expires", Render: dateOnly("expires_at")},
}

var sellerColumns = []ColumnSpec{
	{Key: "business_name", Header: "Business"},
	{Key: "user", Header: "Seller", Render: func(r models.Record) string {
		if s, ok := r.(models.SellerProfile); ok {
			return s.User.FullName()
		}
		return ""
	}},
	{Key: "verification_status", Header: "Verification", Render: badge("verification_status")},
	{Key: "created_at", Header: "Applied", Render: dateOnly("created_at")},
}

// dateOnly trims an RFC3339 timestamp to its date.
func dateOnly(key string) func(models.Record) string {
	return func(r models.Record) string {
		s, _ := models.FieldString(r, key)
		if len(s) >= 10 {
			return s[:10]
		}
		return s
	}
}
