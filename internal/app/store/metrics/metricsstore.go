// Package metricsstore loads the raw numbers behind the dashboards.
//
// Every sub-query is independent and tolerant: a failure is logged, the
// affected counter is left at 0 and the query name is reported in
// Degraded.
package metricsstore

import (
	"context"
	"time"

	"github.com/homeandown/estatehub/internal/app/store/gateway"
	"github.com/homeandown/estatehub/internal/app/system/stats"
	"github.com/homeandown/estatehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// Observer is notified of each degraded sub-query. It may be nil.
type Observer func(query string)

type fetcher struct {
	gw       gateway.Gateway
	log      *zap.Logger
	observe  Observer
	degraded []string
}

func (f *fetcher) fail(query string, err error) {
	f.log.Warn("dashboard sub-query failed",
		zap.String("query", query),
		zap.Error(err))
	f.degraded = append(f.degraded, query)
	if f.observe != nil {
		f.observe(query)
	}
}

func (f *fetcher) count(ctx context.Context, query, table string, filter bson.M) int64 {
	n, err := f.gw.Count(ctx, table, filter)
	if err != nil {
		f.fail(query, err)
		return 0
	}
	return n
}

func (f *fetcher) values(ctx context.Context, query, table, field string, filter bson.M) []*float64 {
	vals, err := f.gw.Values(ctx, table, field, filter)
	if err != nil {
		f.fail(query, err)
		return nil
	}
	return vals
}

// since builds a created_at >= date filter.
func since(date string) bson.M {
	start, err := stats.Start(date)
	if err != nil {
		return bson.M{"created_at": bson.M{"$gte": date}}
	}
	return bson.M{"created_at": bson.M{"$gte": start}}
}

// FetchDashboardInputs runs the sixteen dashboard sub-queries in order and
// returns their results plus the names of the ones that failed.
func FetchDashboardInputs(ctx context.Context, gw gateway.Gateway, w stats.Window, log *zap.Logger, observe Observer) (stats.Inputs, []string) {
	f := &fetcher{gw: gw, log: log, observe: observe}
	in := stats.Inputs{Today: w.Today, WeekAgo: w.WeekAgo}

	// totals
	in.UsersCount = f.count(ctx, "users_total", gateway.Users, nil)
	in.PropertiesCount = f.count(ctx, "properties_total", gateway.Properties, nil)
	in.BookingsCount = f.count(ctx, "bookings_total", gateway.Bookings, nil)
	in.InquiriesCount = f.count(ctx, "inquiries_total", gateway.Inquiries, nil)
	in.ApprovalsCount = f.count(ctx, "approvals_pending", gateway.Sellers, bson.M{"verification_status": models.VerificationPending})

	// today
	in.Daily.Users = f.count(ctx, "users_today", gateway.Users, since(w.Today))
	in.Daily.Properties = f.count(ctx, "properties_today", gateway.Properties, since(w.Today))
	in.Daily.Bookings = f.count(ctx, "bookings_today", gateway.Bookings, since(w.Today))
	in.Daily.Inquiries = f.count(ctx, "inquiries_today", gateway.Inquiries, since(w.Today))

	// last seven days
	in.Weekly.Users = f.count(ctx, "users_week", gateway.Users, since(w.WeekAgo))
	in.Weekly.Properties = f.count(ctx, "properties_week", gateway.Properties, since(w.WeekAgo))
	in.Weekly.Bookings = f.count(ctx, "bookings_week", gateway.Bookings, since(w.WeekAgo))
	in.Weekly.Inquiries = f.count(ctx, "inquiries_week", gateway.Inquiries, since(w.WeekAgo))

	// money
	in.SaleProperties = f.values(ctx, "sale_prices", gateway.Properties, "price",
		bson.M{"listing_type": models.ListingSale, "price": bson.M{"$ne": nil}})
	in.RentProperties = f.values(ctx, "rent_values", gateway.Properties, "monthly_rent",
		bson.M{"listing_type": models.ListingRent, "monthly_rent": bson.M{"$ne": nil}})
	in.UnassignedProperties = f.count(ctx, "properties_unassigned", gateway.Properties, bson.M{"owner_id": nil})

	return in, f.degraded
}

// totalQueries are the sub-queries whose joint failure switches the
// dashboard to the demo dataset.
var totalQueries = []string{"users_total", "properties_total", "bookings_total", "inquiries_total", "approvals_pending"}

func allTotalsFailed(degraded []string) bool {
	failed := make(map[string]bool, len(degraded))
	for _, q := range degraded {
		failed[q] = true
	}
	for _, q := range totalQueries {
		if !failed[q] {
			return false
		}
	}
	return true
}

// MockAggregate is the demo dataset shown when no totals can be loaded.
func MockAggregate() stats.Aggregate {
	return stats.Aggregate{
		TotalUsers:       156,
		TotalProperties:  89,
		TotalBookings:    34,
		TotalInquiries:   67,
		PendingApprovals: 12,
	}
}

// Activity is one entry of the admin dashboard's recent activity list.
type Activity struct {
	Kind      models.Kind `json:"kind"`
	ID        string      `json:"id"`
	Summary   string      `json:"summary"`
	Status    string      `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

// Options tune FetchAdminDashboard.
type Options struct {
	MockFallback bool
	Observe      Observer
	Now          func() time.Time
}

// AdminDashboard is everything the admin dashboard shows.
type AdminDashboard struct {
	Stats          stats.Aggregate       `json:"stats"`
	Notifications  []models.Notification `json:"notifications"`
	RecentActivity []Activity            `json:"recent_activity"`
	Window         stats.Window          `json:"window"`
	Degraded       []string              `json:"degraded,omitempty"`
	Warnings       []string              `json:"warnings,omitempty"`
	Mock           bool                  `json:"mock"`
	GeneratedAt    time.Time             `json:"generated_at"`
}

// Warning texts.
const (
	WarnPartial       = "Some dashboard figures could not be loaded and are shown as 0."
	WarnMock          = "Dashboard data is unavailable; showing sample figures."
	WarnNotifications = "Notifications could not be loaded."
	WarnActivity      = "Recent activity could not be loaded."
)

// FetchAdminDashboard loads the stats aggregate, the latest notifications
// and recent activity. It never fails; problems surface as Warnings.
func FetchAdminDashboard(ctx context.Context, gw gateway.Gateway, opts Options, log *zap.Logger) AdminDashboard {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	t := now()
	w := stats.WindowAt(t)

	in, degraded := FetchDashboardInputs(ctx, gw, w, log, opts.Observe)
	out := AdminDashboard{
		Stats:       stats.Compute(in),
		Window:      w,
		Degraded:    degraded,
		GeneratedAt: t.UTC(),
	}

	switch {
	case opts.MockFallback && allTotalsFailed(degraded):
		out.Stats = MockAggregate()
		out.Mock = true
		out.Warnings = append(out.Warnings, WarnMock)
	case len(degraded) > 0:
		out.Warnings = append(out.Warnings, WarnPartial)
	}

	notes, err := LatestNotifications(ctx, gw, 10)
	if err != nil {
		log.Warn("notifications unavailable", zap.Error(err))
		out.Warnings = append(out.Warnings, WarnNotifications)
	}
	out.Notifications = notes

	act, err := RecentActivity(ctx, gw, 5)
	if err != nil {
		log.Warn("recent activity unavailable", zap.Error(err))
		out.Warnings = append(out.Warnings, WarnActivity)
	}
	out.RecentActivity = act

	return out
}

var newestFirst = bson.D{{Key: "created_at", Value: -1}}

// LatestNotifications returns up to limit notifications, newest first.
// The result is never nil.
func LatestNotifications(ctx context.Context, gw gateway.Gateway, limit int64) ([]models.Notification, error) {
	rows, err := gw.Find(ctx, gateway.Notifications, nil, gateway.FindOptions{Sort: newestFirst, Limit: limit})
	if err != nil {
		return []models.Notification{}, err
	}
	notes, err := gateway.Decode[models.Notification](rows)
	if err != nil {
		return []models.Notification{}, err
	}
	return notes, nil
}

// RecentActivity returns the latest perKind bookings followed by the
// latest perKind inquiries. A failure of one source keeps the other.
func RecentActivity(ctx context.Context, gw gateway.Gateway, perKind int64) ([]Activity, error) {
	out := []Activity{}
	var firstErr error

	opts := gateway.FindOptions{Sort: newestFirst, Limit: perKind}

	if rows, err := gw.Find(ctx, gateway.Bookings, nil, opts); err != nil {
		firstErr = err
	} else if bookings, err := gateway.Decode[models.Booking](rows); err != nil {
		firstErr = err
	} else {
		for _, b := range bookings {
			out = append(out, Activity{
				Kind:      models.KindBooking,
				ID:        b.RecordID(),
				Summary:   "Booking for " + b.BookingDate + " " + b.BookingTime,
				Status:    b.Status,
				CreatedAt: b.CreatedAt,
			})
		}
	}

	if rows, err := gw.Find(ctx, gateway.Inquiries, nil, opts); err != nil {
		if firstErr == nil {
			firstErr = err
		}
	} else if inquiries, err := gateway.Decode[models.Inquiry](rows); err != nil {
		if firstErr == nil {
			firstErr = err
		}
	} else {
		for _, i := range inquiries {
			out = append(out, Activity{
				Kind:      models.KindInquiry,
				ID:        i.RecordID(),
				Summary:   "Inquiry from " + i.Name,
				Status:    i.Status,
				CreatedAt: i.CreatedAt,
			})
		}
	}

	if len(out) > 10 {
		out = out[:10]
	}
	return out, firstErr
}
