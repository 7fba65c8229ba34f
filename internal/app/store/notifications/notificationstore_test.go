package notificationstore_test

import (
	"testing"
	"time"

	notificationstore "github.com/homeandown/estatehub/internal/app/store/notifications"
	"github.com/homeandown/estatehub/internal/domain/models"
	"github.com/homeandown/estatehub/internal/testutil"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	n, err := store.Create(ctx, models.Notification{
		Title:   "New listings",
		Message: "<p>Fresh homes</p><script>alert(1)</script>",
		Status:  models.NotificationSent,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if n.Message != "<p>Fresh homes</p>" {
		t.Errorf("Message = %q, want script removed", n.Message)
	}
	if n.SentAt == nil {
		t.Error("SentAt should be set for sent notifications")
	}
	if n.Type != "info" || n.Audience != "all" {
		t.Errorf("defaults = %q/%q, want info/all", n.Type, n.Audience)
	}

	if _, err := store.Create(ctx, models.Notification{Title: "x", Audience: "aliens"}); err == nil {
		t.Error("expected error for unknown audience")
	}
	if _, err := store.Create(ctx, models.Notification{Title: "<b></b>"}); err == nil {
		t.Error("expected error for blank title")
	}
}

func TestStore_LatestAndListSent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := notificationstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for i := 0; i < 12; i++ {
		fixtures.CreateNotification(ctx, "draft", nil)
	}
	fixtures.CreateNotification(ctx, "sent", &models.NotificationStats{TotalRecipients: 10, Delivered: 9})

	latest, err := store.Latest(ctx, 10)
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if len(latest) != 10 {
		t.Errorf("len(Latest(10)) = %d, want 10", len(latest))
	}

	sent, err := store.ListSent(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("ListSent failed: %v", err)
	}
	if len(sent) != 1 || sent[0].Analytics.Delivered != 9 {
		t.Errorf("ListSent() = %+v, want the one sent notification", sent)
	}

	if err := store.Event(ctx, "Assignment Accepted", "Agent accepted", "inquiry", "abc"); err != nil {
		t.Fatalf("Event failed: %v", err)
	}
	latest, _ = store.Latest(ctx, 1)
	if len(latest) != 1 || latest[0].EntityID != "abc" {
		t.Errorf("Latest(1) = %+v, want the event", latest)
	}
}
