package stats

import (
	"sort"

	"github.com/homeandown/estatehub/internal/domain/models"
	"github.com/shopspring/decimal"
)

const (
	topNotifications    = 5
	detailNotifications = 10
)

// NotificationRow is one sent notification with its rates.
type NotificationRow struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Audience   string  `json:"audience"`
	Recipients int64   `json:"recipients"`
	Delivered  int64   `json:"delivered"`
	Opened     int64   `json:"opened"`
	Clicked    int64   `json:"clicked"`
	OpenRate   float64 `json:"open_rate"` // opened / recipients
	ClickRate  float64 `json:"click_rate"`
}

// NotificationSummary totals delivery analytics over sent notifications.
// Rates are percentages rounded to two places.
type NotificationSummary struct {
	TotalSent       int64             `json:"total_sent"`
	TotalRecipients int64             `json:"total_recipients"`
	TotalDelivered  int64             `json:"total_delivered"`
	TotalOpened     int64             `json:"total_opened"`
	TotalClicked    int64             `json:"total_clicked"`
	DeliveryRate    float64           `json:"delivery_rate"` // delivered / recipients
	OpenRate        float64           `json:"open_rate"`     // opened / delivered
	ClickRate       float64           `json:"click_rate"`    // clicked / opened
	Top             []NotificationRow `json:"top"`
	Details         []NotificationRow `json:"details"`
}

// Percent returns num/den*100 rounded to two places, or 0 when den is 0.
func Percent(num, den int64) float64 {
	if den == 0 {
		return 0
	}
	f, _ := decimal.NewFromInt(num).Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(den)).Round(2).Float64()
	return f
}

// SummarizeNotifications ignores notifications that are not sent or carry
// no analytics. Details keep the input order; Top is ordered by open rate
// against recipients, ties kept in input order.
func SummarizeNotifications(ns []models.Notification) NotificationSummary {
	out := NotificationSummary{Top: []NotificationRow{}, Details: []NotificationRow{}}
	rows := []NotificationRow{}
	for _, n := range ns {
		a := n.Analytics
		if n.Status != models.NotificationSent || a == nil {
			continue
		}
		out.TotalSent++
		out.TotalRecipients += a.TotalRecipients
		out.TotalDelivered += a.Delivered
		out.TotalOpened += a.Opened
		out.TotalClicked += a.Clicked
		rows = append(rows, NotificationRow{
			ID:         n.ID.Hex(),
			Title:      n.Title,
			Audience:   n.Audience,
			Recipients: a.TotalRecipients,
			Delivered:  a.Delivered,
			Opened:     a.Opened,
			Clicked:    a.Clicked,
			OpenRate:   Percent(a.Opened, a.TotalRecipients),
			ClickRate:  Percent(a.Clicked, a.Opened),
		})
	}
	out.DeliveryRate = Percent(out.TotalDelivered, out.TotalRecipients)
	out.OpenRate = Percent(out.TotalOpened, out.TotalDelivered)
	out.ClickRate = Percent(out.TotalClicked, out.TotalOpened)

	out.Details = append(out.Details, head(rows, detailNotifications)...)

	top := append([]NotificationRow(nil), rows...)
	sort.SliceStable(top, func(i, j int) bool { return top[i].OpenRate > top[j].OpenRate })
	out.Top = append(out.Top, head(top, topNotifications)...)
	return out
}

func head(rows []NotificationRow, n int) []NotificationRow {
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}
