package stats

import (
	"testing"

	"github.com/homeandown/estatehub/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func sent(title string, recipients, delivered, opened, clicked int64) models.Notification {
	return models.Notification{
		ID:     primitive.NewObjectID(),
		Title:  title,
		Status: models.NotificationSent,
		Analytics: &models.NotificationStats{
			TotalRecipients: recipients,
			Delivered:       delivered,
			Opened:          opened,
			Clicked:         clicked,
		},
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		num, den int64
		want     float64
	}{
		{0, 0, 0},
		{5, 0, 0},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{50, 50, 100},
	}
	for _, tt := range tests {
		if got := Percent(tt.num, tt.den); got != tt.want {
			t.Errorf("Percent(%d, %d) = %v, want %v", tt.num, tt.den, got, tt.want)
		}
	}
}

func TestSummarizeNotifications_Totals(t *testing.T) {
	sum := SummarizeNotifications([]models.Notification{
		sent("a", 100, 90, 45, 9),
		sent("b", 100, 80, 40, 1),
		{Title: "draft", Status: models.NotificationDraft, Analytics: &models.NotificationStats{TotalRecipients: 1000}},
		{Title: "no analytics", Status: models.NotificationSent},
	})

	assert.Equal(t, int64(2), sum.TotalSent)
	assert.Equal(t, int64(200), sum.TotalRecipients)
	assert.Equal(t, int64(170), sum.TotalDelivered)
	assert.Equal(t, 85.0, sum.DeliveryRate)
	assert.Equal(t, Percent(85, 170), sum.OpenRate)
	assert.Equal(t, Percent(10, 85), sum.ClickRate)
	assert.Len(t, sum.Details, 2)
}

func TestSummarizeNotifications_ZeroDenominators(t *testing.T) {
	sum := SummarizeNotifications([]models.Notification{sent("silent", 0, 0, 0, 0)})
	assert.Zero(t, sum.DeliveryRate)
	assert.Zero(t, sum.OpenRate)
	assert.Zero(t, sum.ClickRate)
	require.Len(t, sum.Top, 1)
	assert.Zero(t, sum.Top[0].OpenRate)
}

func TestSummarizeNotifications_TopAndDetailLimits(t *testing.T) {
	ns := []models.Notification{}
	for i := int64(0); i < 12; i++ {
		ns = append(ns, sent(string(rune('a'+i)), 100, 100, i*5, 0))
	}
	sum := SummarizeNotifications(ns)

	require.Len(t, sum.Details, 10)
	assert.Equal(t, "a", sum.Details[0].Title, "details keep input order")

	require.Len(t, sum.Top, 5)
	assert.Equal(t, "l", sum.Top[0].Title)
	assert.Equal(t, 55.0, sum.Top[0].OpenRate)
	assert.Equal(t, "h", sum.Top[4].Title)
}

func TestSummarizeNotifications_Empty(t *testing.T) {
	sum := SummarizeNotifications(nil)
	assert.Zero(t, sum.TotalSent)
	assert.NotNil(t, sum.Top)
	assert.NotNil(t, sum.Details)
}
