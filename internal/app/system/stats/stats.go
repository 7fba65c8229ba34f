// Package stats derives the dashboard aggregate from raw gateway results.
// Compute is pure: the caller fetches, this package only adds up.
package stats

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date format used for window bounds.
const DateLayout = "2006-01-02"

// Counts are the per-entity counters of one time window.
type Counts struct {
	Users      int64 `json:"users"`
	Properties int64 `json:"properties"`
	Bookings   int64 `json:"bookings"`
	Inquiries  int64 `json:"inquiries"`
}

// Inputs are the results of the dashboard sub-queries. Nil entries in
// SaleProperties and RentProperties are ignored.
type Inputs struct {
	UsersCount      int64
	PropertiesCount int64
	BookingsCount   int64
	InquiriesCount  int64
	ApprovalsCount  int64

	Daily  Counts
	Weekly Counts

	// Window bounds the Daily and Weekly counts were taken with.
	Today   string
	WeekAgo string

	SaleProperties       []*float64
	RentProperties       []*float64
	UnassignedProperties int64
}

// PropertyValues are the monetary aggregates over listed properties.
type PropertyValues struct {
	TotalSaleValue float64 `json:"total_sale_value"`
	TotalRentValue float64 `json:"total_rent_value"`
	AveragePrice   float64 `json:"average_price"`
	AverageRent    float64 `json:"average_rent"`
}

// Aggregate is the full dashboard stats snapshot.
type Aggregate struct {
	TotalUsers           int64          `json:"total_users"`
	TotalProperties      int64          `json:"total_properties"`
	TotalBookings        int64          `json:"total_bookings"`
	TotalInquiries       int64          `json:"total_inquiries"`
	PendingApprovals     int64          `json:"pending_approvals"`
	UnassignedProperties int64          `json:"unassigned_properties"`
	DailyStats           Counts         `json:"daily_stats"`
	WeeklyStats          Counts         `json:"weekly_stats"`
	PropertyValues       PropertyValues `json:"property_values"`
}

// Compute builds the aggregate for in.
func Compute(in Inputs) Aggregate {
	saleTotal, saleAvg := sumAvg(in.SaleProperties)
	rentTotal, rentAvg := sumAvg(in.RentProperties)

	return Aggregate{
		TotalUsers:           in.UsersCount,
		TotalProperties:      in.PropertiesCount,
		TotalBookings:        in.BookingsCount,
		TotalInquiries:       in.InquiriesCount,
		PendingApprovals:     in.ApprovalsCount,
		UnassignedProperties: in.UnassignedProperties,
		DailyStats:           in.Daily,
		WeeklyStats:          in.Weekly,
		PropertyValues: PropertyValues{
			TotalSaleValue: saleTotal,
			TotalRentValue: rentTotal,
			AveragePrice:   saleAvg,
			AverageRent:    rentAvg,
		},
	}
}

// sumAvg adds the non-nil values and returns the sum and mean (0 when
// there are no values).
func sumAvg(vals []*float64) (float64, float64) {
	sum := decimal.Zero
	n := int64(0)
	for _, v := range vals {
		if v == nil {
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(*v))
		n++
	}
	if n == 0 {
		return 0, 0
	}
	avg := sum.Div(decimal.NewFromInt(n))
	return sum.InexactFloat64(), avg.InexactFloat64()
}

// Window is the pair of lower bounds for the daily and weekly counters.
type Window struct {
	Today   string
	WeekAgo string
}

// WindowAt returns the window for now: today's date and the date seven
// days earlier, both in UTC.
func WindowAt(now time.Time) Window {
	now = now.UTC()
	return Window{
		Today:   now.Format(DateLayout),
		WeekAgo: now.AddDate(0, 0, -7).Format(DateLayout),
	}
}

// Start returns the inclusive lower bound instant for a window date.
func Start(date string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, date, time.UTC)
}

// Floats widens a []float64 into the pointer form used by Inputs.
func Floats(vals []float64) []*float64 {
	out := make([]*float64, len(vals))
	for i := range vals {
		out[i] = &vals[i]
	}
	return out
}
