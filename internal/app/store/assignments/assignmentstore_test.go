package assignmentstore_test

import (
	"errors"
	"testing"
	"time"

	assignmentstore "github.com/homeandown/estatehub/internal/app/store/assignments"
	inquirystore "github.com/homeandown/estatehub/internal/app/store/inquiries"
	notificationstore "github.com/homeandown/estatehub/internal/app/store/notifications"
	"github.com/homeandown/estatehub/internal/domain/models"
	"github.com/homeandown/estatehub/internal/testutil"
	"go.uber.org/zap"
)

func TestStore_AssignAndAccept(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assignmentstore.New(db, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	agent := fixtures.CreateAgent(ctx, "Asha", "Rao", "asha@example.com")
	inq := fixtures.CreateInquiry(ctx, "Buyer", "buyer@example.com", nil)

	a, err := store.Assign(ctx, inq.ID, agent.ID, "hot lead", 0)
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	if got := a.ExpiresAt.Sub(a.AssignedAt); got != assignmentstore.DefaultExpiry {
		t.Errorf("expiry = %v, want %v", got, assignmentstore.DefaultExpiry)
	}

	inqs := inquirystore.New(db)
	got, err := inqs.GetByID(ctx, inq.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.AssignedAgentID == nil || *got.AssignedAgentID != agent.ID {
		t.Errorf("AssignedAgentID = %v, want %s", got.AssignedAgentID, agent.ID.Hex())
	}

	accepted, err := store.Respond(ctx, a.ID, agent.ID, true, "", "Asha Rao")
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	if accepted.Status != models.AssignmentAccepted || accepted.RespondedAt == nil {
		t.Errorf("Respond() = %+v, want accepted with RespondedAt", accepted)
	}

	got, _ = inqs.GetByID(ctx, inq.ID)
	if got.Status != models.InquiryResponded {
		t.Errorf("inquiry status = %q, want responded", got.Status)
	}
	notes, _ := notificationstore.New(db).Latest(ctx, 1)
	if len(notes) != 1 || notes[0].Title != "Assignment Accepted" {
		t.Errorf("latest notification = %+v, want Assignment Accepted", notes)
	}

	if _, err := store.Respond(ctx, a.ID, agent.ID, false, "", "Asha Rao"); !errors.Is(err, assignmentstore.ErrNotPending) {
		t.Errorf("second Respond error = %v, want ErrNotPending", err)
	}

	counts, err := store.CountByStatus(ctx, agent.ID)
	if err != nil {
		t.Fatalf("CountByStatus failed: %v", err)
	}
	if counts[models.AssignmentAccepted] != 1 {
		t.Errorf("counts = %v, want 1 accepted", counts)
	}

	list, err := store.ListForAgent(ctx, agent.ID)
	if err != nil {
		t.Fatalf("ListForAgent failed: %v", err)
	}
	if len(list) != 1 || list[0].Inquiry == nil || list[0].Inquiry.Name != "Buyer" {
		t.Errorf("ListForAgent() = %+v, want one with inquiry joined", list)
	}
}

func TestStore_Assign_RejectsUnverifiedAgent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assignmentstore.New(db, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	buyer := fixtures.CreateUser(ctx, "Not", "Agent", "not@example.com", models.UserTypeBuyer)
	inq := fixtures.CreateInquiry(ctx, "Buyer", "buyer@example.com", nil)

	if _, err := store.Assign(ctx, inq.ID, buyer.ID, "", time.Hour); !errors.Is(err, assignmentstore.ErrAgentNotAssignable) {
		t.Errorf("Assign(buyer) error = %v, want ErrAgentNotAssignable", err)
	}
}

func TestStore_RespondGuards(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assignmentstore.New(db, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	agent := fixtures.CreateAgent(ctx, "A", "One", "a1@example.com")
	other := fixtures.CreateAgent(ctx, "B", "Two", "b2@example.com")
	inq := fixtures.CreateInquiry(ctx, "Buyer", "buyer@example.com", nil)

	a, err := store.Assign(ctx, inq.ID, agent.ID, "", time.Millisecond)
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	if _, err := store.Respond(ctx, a.ID, other.ID, true, "", "B Two"); !errors.Is(err, assignmentstore.ErrNotYours) {
		t.Errorf("Respond(other agent) error = %v, want ErrNotYours", err)
	}

	time.Sleep(5 * time.Millisecond)
	if _, err := store.Respond(ctx, a.ID, agent.ID, true, "", "A One"); !errors.Is(err, assignmentstore.ErrExpired) {
		t.Errorf("Respond(expired) error = %v, want ErrExpired", err)
	}

	n, err := store.ExpireOverdue(ctx, time.Now().UTC())
	if err != nil {
		t.Fatalf("ExpireOverdue failed: %v", err)
	}
	if n != 1 {
		t.Errorf("ExpireOverdue() = %d, want 1", n)
	}
}
