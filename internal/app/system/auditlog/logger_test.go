package auditlog_test

import (
	"net/http/httptest"
	"testing"

	"github.com/homeandown/estatehub/internal/app/store/audit"
	"github.com/homeandown/estatehub/internal/app/system/auditlog"
	"github.com/homeandown/estatehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestLogger_NilLogger(t *testing.T) {
	var logger *auditlog.Logger
	ctx, cancel := testutil.TestContext()
	defer cancel()
	req := httptest.NewRequest("GET", "/", nil)

	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.LoginSuccess(ctx, req, primitive.NewObjectID(), "a@example.com")
	logger.Logout(ctx, req, primitive.NewObjectID().Hex())
	logger.RecordDeleted(ctx, req, "", "users", "x")
}

func TestLogger_ConfigModes(t *testing.T) {
	tests := []struct {
		name   string
		config auditlog.Config
		wantDB int
	}{
		{"off", auditlog.Config{Auth: "off", Admin: "off"}, 0},
		{"log only", auditlog.Config{Auth: "log", Admin: "log"}, 0},
		{"db", auditlog.Config{Auth: "db", Admin: "db"}, 2},
		{"all", auditlog.Config{Auth: "all", Admin: "all"}, 2},
		{"auth off", auditlog.Config{Auth: "off", Admin: "all"}, 1},
		{"empty means all", auditlog.Config{}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			store := audit.New(db)
			ctx, cancel := testutil.TestContext()
			defer cancel()

			logger := auditlog.New(store, zap.NewNop(), tt.config)
			req := httptest.NewRequest("POST", "/", nil)
			logger.LoginSuccess(ctx, req, primitive.NewObjectID(), "a@example.com")
			logger.RecordCreated(ctx, req, primitive.NewObjectID().Hex(), "properties", "p1")

			n, err := store.CountByFilter(ctx, audit.QueryFilter{})
			if err != nil {
				t.Fatalf("CountByFilter failed: %v", err)
			}
			if int(n) != tt.wantDB {
				t.Errorf("stored events = %d, want %d", n, tt.wantDB)
			}
		})
	}
}

func TestLogger_LoginFailed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: "db"})
	req := httptest.NewRequest("POST", "/login", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	logger.LoginFailedUserNotFound(ctx, req, "ghost@example.com")

	events, err := store.GetRecent(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.Success || e.FailureReason != "user not found" {
		t.Errorf("event = %+v, want failure 'user not found'", e)
	}
	if e.IP != "203.0.113.9" {
		t.Errorf("IP = %q, want X-Forwarded-For value", e.IP)
	}
	if e.Details["email"] != "ghost@example.com" {
		t.Errorf("Details = %v", e.Details)
	}
}

func TestLogger_AdminEvents(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Admin: "db"})
	req := httptest.NewRequest("POST", "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	actor := primitive.NewObjectID()

	logger.AgentAssigned(ctx, req, actor.Hex(), "inq1", "agent1")
	logger.DataExported(ctx, req, actor.Hex(), "users", "csv", 42)
	logger.Logout(ctx, req, "not-an-id")

	events, err := store.Query(ctx, audit.QueryFilter{ActorID: &actor})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 admin events, got %d", len(events))
	}
	for _, e := range events {
		switch e.EventType {
		case audit.EventAgentAssigned:
			if e.Table != "inquiries" || e.RecordID != "inq1" || e.Details["agent_id"] != "agent1" {
				t.Errorf("assign event = %+v", e)
			}
		case audit.EventDataExported:
			if e.Details["rows"] != "42" || e.Details["format"] != "csv" {
				t.Errorf("export event = %+v", e)
			}
		default:
			t.Errorf("unexpected event %q", e.EventType)
		}
		if e.IP != "10.0.0.1" {
			t.Errorf("IP = %q, want RemoteAddr host", e.IP)
		}
	}

	all, _ := store.GetRecent(ctx, 10)
	for _, e := range all {
		if e.EventType == audit.EventLogout && e.UserID != nil {
			t.Error("invalid user id should be stored as nil")
		}
	}
}
