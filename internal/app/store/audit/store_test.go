package audit_test

import (
	"testing"
	"time"

	"github.com/homeandown/estatehub/internal/app/store/audit"
	"github.com/homeandown/estatehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Log(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	before := time.Now().Add(-time.Second)
	err := store.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    &userID,
		IP:        "192.168.1.1",
		UserAgent: "TestBrowser/1.0",
		Success:   true,
		Details:   map[string]string{"email": "a@example.com"},
	})
	if err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	events, err := store.GetByUser(ctx, userID, 10)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.ID.IsZero() {
		t.Error("expected ID to be auto-generated")
	}
	if e.Timestamp.Before(before) || e.Timestamp.After(time.Now().Add(time.Second)) {
		t.Errorf("expected timestamp near now, got %v", e.Timestamp)
	}
	if e.Details["email"] != "a@example.com" {
		t.Errorf("Details = %v, want email", e.Details)
	}
}

func TestStore_QueryFilters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	actor := primitive.NewObjectID()
	events := []audit.Event{
		{Category: audit.CategoryAdmin, EventType: audit.EventRecordDeleted, ActorID: &actor, Table: "properties", RecordID: "p1", Success: true},
		{Category: audit.CategoryAdmin, EventType: audit.EventRecordCreated, ActorID: &actor, Table: "users", RecordID: "u1", Success: true},
		{Category: audit.CategoryAuth, EventType: audit.EventLoginFailedWrongPassword, Success: false},
	}
	for _, e := range events {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter audit.QueryFilter
		want   int
	}{
		{"all", audit.QueryFilter{}, 3},
		{"by actor", audit.QueryFilter{ActorID: &actor}, 2},
		{"by table", audit.QueryFilter{Table: "properties"}, 1},
		{"by category", audit.QueryFilter{Category: audit.CategoryAuth}, 1},
		{"by type", audit.QueryFilter{EventType: audit.EventRecordCreated}, 1},
		{"limit", audit.QueryFilter{Limit: 2}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Query(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Query failed: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("len(Query()) = %d, want %d", len(got), tt.want)
			}
		})
	}

	n, err := store.CountByFilter(ctx, audit.QueryFilter{Category: audit.CategoryAdmin})
	if err != nil || n != 2 {
		t.Errorf("CountByFilter(admin) = %d, %v; want 2, nil", n, err)
	}

	failed, err := store.GetFailedLogins(ctx, time.Now().Add(-time.Hour), 10)
	if err != nil || len(failed) != 1 {
		t.Errorf("GetFailedLogins() = %d, %v; want 1, nil", len(failed), err)
	}
}
