package assignments_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/homeandown/estatehub/internal/app/features/assignments"
	uierrors "github.com/homeandown/estatehub/internal/app/features/errors"
	assignmentstore "github.com/homeandown/estatehub/internal/app/store/assignments"
	"github.com/homeandown/estatehub/internal/app/system/realtime"
	"github.com/homeandown/estatehub/internal/app/system/telemetry"
	"github.com/homeandown/estatehub/internal/domain/models"
	"github.com/homeandown/estatehub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// fakeStore mirrors the guards of the Mongo store.
type fakeStore struct {
	items      map[primitive.ObjectID]*models.Assignment
	listStatus string
}

func (f *fakeStore) List(_ context.Context, status string, _ int64) ([]models.Assignment, error) {
	f.listStatus = status
	out := []models.Assignment{}
	for _, a := range f.items {
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeStore) ListForAgent(_ context.Context, agentID primitive.ObjectID) ([]models.Assignment, error) {
	out := []models.Assignment{}
	for _, a := range f.items {
		if a.AgentID == agentID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeStore) Respond(_ context.Context, id, agentID primitive.ObjectID, accept bool, notes, _ string) (models.Assignment, error) {
	a, ok := f.items[id]
	if !ok {
		return models.Assignment{}, mongo.ErrNoDocuments
	}
	if a.AgentID != agentID {
		return models.Assignment{}, assignmentstore.ErrNotYours
	}
	if a.Expired(time.Now()) {
		return models.Assignment{}, assignmentstore.ErrExpired
	}
	if a.Status != models.AssignmentPending {
		return models.Assignment{}, assignmentstore.ErrNotPending
	}
	a.Status = models.AssignmentDeclined
	if accept {
		a.Status = models.AssignmentAccepted
	}
	a.Notes = notes
	return *a, nil
}

type world struct {
	h       *assignments.Handler
	store   *fakeStore
	agent   primitive.ObjectID
	pending primitive.ObjectID
	expired primitive.ObjectID
	done    primitive.ObjectID
	events  *[]realtime.Event
}

func setup() world {
	agent := primitive.NewObjectID()
	now := time.Now()
	mk := func(status string, expires time.Time) *models.Assignment {
		return &models.Assignment{
			ID:        primitive.NewObjectID(),
			InquiryID: primitive.NewObjectID(),
			AgentID:   agent,
			Status:    status,
			ExpiresAt: expires,
		}
	}
	pending := mk(models.AssignmentPending, now.Add(time.Hour))
	expired := mk(models.AssignmentPending, now.Add(-time.Hour))
	done := mk(models.AssignmentAccepted, now.Add(time.Hour))
	other := &models.Assignment{ID: primitive.NewObjectID(), AgentID: primitive.NewObjectID(), Status: models.AssignmentPending, ExpiresAt: now.Add(time.Hour)}

	store := &fakeStore{items: map[primitive.ObjectID]*models.Assignment{
		pending.ID: pending, expired.ID: expired, done.ID: done, other.ID: other,
	}}
	events := &[]realtime.Event{}
	log := zap.NewNop()
	h := assignments.NewHandler(store, nil, telemetry.New(),
		func(_ context.Context, ev realtime.Event) { *events = append(*events, ev) },
		uierrors.NewErrorLogger(log), log)
	return world{h: h, store: store, agent: agent, pending: pending.ID, expired: expired.ID, done: done.ID, events: events}
}

func (w world) serve(req *http.Request) *testutil.ResponseRecorder {
	r := chi.NewRouter()
	r.Get("/assignments", w.h.ServeList)
	r.Patch("/assignments/{id}", w.h.ServeRespond)
	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestServeList_AgentSeesOwn(t *testing.T) {
	w := setup()
	rec := w.serve(testutil.NewAuthenticatedRequest("GET", "/assignments", testutil.AgentUser(w.agent)))
	rec.AssertStatus(t, http.StatusOK)

	var body struct {
		Assignments []models.Assignment `json:"assignments"`
	}
	rec.DecodeJSON(t, &body)
	assert.Len(t, body.Assignments, 3)
}

func TestServeList_AdminSeesAll(t *testing.T) {
	w := setup()
	rec := w.serve(testutil.NewAuthenticatedRequest("GET", "/assignments?status=pending", testutil.AdminUser()))
	rec.AssertStatus(t, http.StatusOK)
	assert.Equal(t, "pending", w.store.listStatus)

	var body struct {
		Assignments []models.Assignment `json:"assignments"`
	}
	rec.DecodeJSON(t, &body)
	assert.Len(t, body.Assignments, 4)
}

func TestServeList_BuyerForbidden(t *testing.T) {
	w := setup()
	rec := w.serve(testutil.NewAuthenticatedRequest("GET", "/assignments", testutil.BuyerUser()))
	rec.AssertStatus(t, http.StatusForbidden)
}

func TestServeRespond_Accept(t *testing.T) {
	w := setup()
	rec := w.serve(testutil.NewJSONRequest("PATCH", "/assignments/"+w.pending.Hex(),
		map[string]string{"status": "accepted", "notes": "On it"}, testutil.AgentUser(w.agent)))
	rec.AssertStatus(t, http.StatusOK)

	assert.Equal(t, models.AssignmentAccepted, w.store.items[w.pending].Status)
	require.Len(t, *w.events, 1)
	assert.Equal(t, w.agent.Hex(), (*w.events)[0].AgentID)
}

func TestServeRespond_Errors(t *testing.T) {
	w := setup()
	otherAgent := primitive.NewObjectID()

	tests := []struct {
		name string
		id   string
		user testutil.TestUser
		body map[string]string
		want int
	}{
		{"expired", w.expired.Hex(), testutil.AgentUser(w.agent), map[string]string{"status": "accepted"}, http.StatusGone},
		{"already answered", w.done.Hex(), testutil.AgentUser(w.agent), map[string]string{"status": "declined"}, http.StatusConflict},
		{"someone else's", w.pending.Hex(), testutil.AgentUser(otherAgent), map[string]string{"status": "accepted"}, http.StatusForbidden},
		{"unknown", primitive.NewObjectID().Hex(), testutil.AgentUser(w.agent), map[string]string{"status": "accepted"}, http.StatusNotFound},
		{"bad status", w.pending.Hex(), testutil.AgentUser(w.agent), map[string]string{"status": "maybe"}, http.StatusUnprocessableEntity},
		{"admin cannot answer", w.pending.Hex(), testutil.AdminUser(), map[string]string{"status": "accepted"}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := w.serve(testutil.NewJSONRequest("PATCH", "/assignments/"+tt.id, tt.body, tt.user))
			rec.AssertStatus(t, tt.want)
		})
	}
	assert.Equal(t, models.AssignmentPending, w.store.items[w.pending].Status)
	assert.Empty(t, *w.events)
}
