package metricsstore

import (
	"context"
	"math"
	"time"

	"github.com/homeandown/estatehub/internal/app/store/gateway"
	"github.com/homeandown/estatehub/internal/app/system/stats"
	"github.com/homeandown/estatehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DefaultFallbackCommission is credited per accepted assignment when an
// agent has no earnings rows.
const DefaultFallbackCommission = 15000

// Performance is the agent's headline scorecard.
type Performance struct {
	ConversionRate    int     `json:"conversion_rate"`
	ResponseTime      string  `json:"response_time"`
	CustomerRating    float64 `json:"customer_rating"`
	ActiveAssignments int64   `json:"active_assignments"`
}

// AgentDashboard is everything the agent dashboard shows.
type AgentDashboard struct {
	TotalAssignments    int64       `json:"total_assignments"`
	TotalInquiries      int64       `json:"total_inquiries"`
	TotalBookings       int64       `json:"total_bookings"`
	AcceptedAssignments int64       `json:"accepted_assignments"`
	TotalEarnings       float64     `json:"total_earnings"`
	MonthlyCommission   float64     `json:"monthly_commission"`
	Performance         Performance `json:"performance"`
	RecentContacts      []Activity  `json:"recent_contacts"`
	TodayContacts       []Activity  `json:"today_contacts"`
	Warnings            []string    `json:"warnings,omitempty"`
	GeneratedAt         time.Time   `json:"generated_at"`
}

// WarnAgent is shown when the agent's figures could not be loaded.
const WarnAgent = "Your dashboard could not be loaded; figures are shown as 0."

// AgentOptions tune FetchAgentDashboard.
type AgentOptions struct {
	// FallbackCommission <= 0 uses DefaultFallbackCommission.
	FallbackCommission float64
	Now                func() time.Time
}

// EmptyAgentDashboard is shown when the agent's records cannot be read.
func EmptyAgentDashboard() AgentDashboard {
	return AgentDashboard{
		Performance: Performance{
			ResponseTime:   "< 2 hours",
			CustomerRating: 4.5,
		},
		RecentContacts: []Activity{},
		TodayContacts:  []Activity{},
	}
}

// FetchAgentDashboard loads the agent's assignments, inquiries, bookings and
// latest earnings. If any of the first three fails the empty dashboard is
// returned with a warning; a missing earnings row falls back to a flat
// commission per accepted assignment.
func FetchAgentDashboard(ctx context.Context, gw gateway.Gateway, agentID primitive.ObjectID, opts AgentOptions, log *zap.Logger) AgentDashboard {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	t := now().UTC()
	commission := opts.FallbackCommission
	if commission <= 0 {
		commission = DefaultFallbackCommission
	}

	fail := func(what string, err error) AgentDashboard {
		log.Warn("agent dashboard unavailable",
			zap.String("agent_id", agentID.Hex()),
			zap.String("source", what),
			zap.Error(err))
		out := EmptyAgentDashboard()
		out.Warnings = []string{WarnAgent}
		out.GeneratedAt = t
		return out
	}

	assignments, err := findAs[models.Assignment](ctx, gw, gateway.Assignments,
		bson.M{"agent_id": agentID}, bson.D{{Key: "assigned_at", Value: -1}})
	if err != nil {
		return fail("assignments", err)
	}
	inquiries, err := findAs[models.Inquiry](ctx, gw, gateway.Inquiries,
		bson.M{"assigned_agent_id": agentID}, newestFirst)
	if err != nil {
		return fail("inquiries", err)
	}
	bookings, err := findAs[models.Booking](ctx, gw, gateway.Bookings,
		bson.M{"agent_id": agentID}, newestFirst)
	if err != nil {
		return fail("bookings", err)
	}

	var accepted, pending int64
	for _, a := range assignments {
		switch a.Status {
		case models.AssignmentAccepted:
			accepted++
		case models.AssignmentPending:
			pending++
		}
	}
	total := int64(len(assignments))

	out := AgentDashboard{
		TotalAssignments:    total,
		TotalInquiries:      int64(len(inquiries)),
		TotalBookings:       int64(len(bookings)),
		AcceptedAssignments: accepted,
		Performance: Performance{
			ConversionRate:    ConversionRate(accepted, total),
			ResponseTime:      "< 2 hours",
			CustomerRating:    4.8,
			ActiveAssignments: pending,
		},
		GeneratedAt: t,
	}

	out.TotalEarnings = float64(accepted) * commission
	earnings, err := findAs[models.Earning](ctx, gw, gateway.Earnings, bson.M{"agent_id": agentID},
		bson.D{{Key: "year", Value: -1}, {Key: "month", Value: -1}})
	if err != nil {
		log.Warn("agent earnings unavailable", zap.String("agent_id", agentID.Hex()), zap.Error(err))
	} else if len(earnings) > 0 {
		out.TotalEarnings = earnings[0].TotalCommission
	}
	out.MonthlyCommission = out.TotalEarnings / 12

	out.RecentContacts = append(inquiryContacts(head(inquiries, 5)), bookingContacts(head(bookings, 5))...)

	today := t.Format(stats.DateLayout)
	out.TodayContacts = []Activity{}
	for _, c := range append(inquiryContacts(inquiries), bookingContacts(bookings)...) {
		if c.CreatedAt.UTC().Format(stats.DateLayout) == today {
			out.TodayContacts = append(out.TodayContacts, c)
		}
	}
	return out
}

// ConversionRate is accepted/total as a whole percentage, 0 when total is 0.
func ConversionRate(accepted, total int64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(accepted) / float64(total) * 100))
}

func findAs[T any](ctx context.Context, gw gateway.Gateway, table string, filter bson.M, sort bson.D) ([]T, error) {
	rows, err := gw.Find(ctx, table, filter, gateway.FindOptions{Sort: sort})
	if err != nil {
		return nil, err
	}
	return gateway.Decode[T](rows)
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func inquiryContacts(in []models.Inquiry) []Activity {
	out := make([]Activity, 0, len(in))
	for _, i := range in {
		out = append(out, Activity{
			Kind:      models.KindInquiry,
			ID:        i.RecordID(),
			Summary:   "Inquiry from " + i.Name,
			Status:    i.Status,
			CreatedAt: i.CreatedAt,
		})
	}
	return out
}

func bookingContacts(bs []models.Booking) []Activity {
	out := make([]Activity, 0, len(bs))
	for _, b := range bs {
		out = append(out, Activity{
			Kind:      models.KindBooking,
			ID:        b.RecordID(),
			Summary:   "Booking for " + b.BookingDate + " " + b.BookingTime,
			Status:    b.Status,
			CreatedAt: b.CreatedAt,
		})
	}
	return out
}
