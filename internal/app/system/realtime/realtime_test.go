package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/homeandown/estatehub/internal/app/system/auth"
	"github.com/homeandown/estatehub/internal/app/system/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func recv(t *testing.T, ch <-chan Event) (Event, bool) {
	t.Helper()
	select {
	case ev, ok := <-ch:
		return ev, ok
	case <-time.After(100 * time.Millisecond):
		return Event{}, false
	}
}

func TestPublish_FiltersByAgent(t *testing.T) {
	h := NewHub(zap.NewNop(), telemetry.New(), nil)

	_, all, cancelAll := h.Subscribe("")
	defer cancelAll()
	_, mine, cancelMine := h.Subscribe("agent-1")
	defer cancelMine()

	h.Publish(context.Background(), Event{Table: "inquiries", Event: Insert, ID: "x", AgentID: "agent-2"})

	ev, ok := recv(t, all)
	require.True(t, ok)
	assert.Equal(t, "inquiries", ev.Table)
	assert.False(t, ev.At.IsZero())

	_, ok = recv(t, mine)
	assert.False(t, ok, "agent-1 must not see agent-2 events")

	h.Publish(context.Background(), Event{Table: "agent_inquiry_assignments", Event: Update, ID: "y", AgentID: "agent-1"})
	ev, ok = recv(t, mine)
	require.True(t, ok)
	assert.Equal(t, "y", ev.ID)
}

func TestPublish_UntaggedEventsReachAdminsOnly(t *testing.T) {
	h := NewHub(zap.NewNop(), telemetry.New(), nil)

	_, all, cancelAll := h.Subscribe("")
	defer cancelAll()
	_, mine, cancelMine := h.Subscribe("agent-1")
	defer cancelMine()

	h.Publish(context.Background(), Event{Table: "properties", Event: Insert, ID: "p1"})

	ev, ok := recv(t, all)
	require.True(t, ok)
	assert.Equal(t, "p1", ev.ID)

	_, ok = recv(t, mine)
	assert.False(t, ok, "agent feed must only carry events tagged with the agent")
}

func TestPublish_RunsOnEvent(t *testing.T) {
	var got []Event
	h := NewHub(zap.NewNop(), nil, func(_ context.Context, ev Event) { got = append(got, ev) })

	h.Publish(context.Background(), Event{Table: "bookings", Event: Insert, ID: "b1"})
	require.Len(t, got, 1)
	assert.Equal(t, "bookings", got[0].Table)
}

func TestSubscribe_CancelClosesChannel(t *testing.T) {
	h := NewHub(zap.NewNop(), nil, nil)
	_, ch, cancel := h.Subscribe("")
	assert.Equal(t, 1, h.Clients())

	cancel()
	cancel()
	assert.Equal(t, 0, h.Clients())
	_, ok := <-ch
	assert.False(t, ok)
}

func TestPublish_SlowSubscriberDoesNotBlock(t *testing.T) {
	h := NewHub(zap.NewNop(), nil, nil)
	_, _, cancel := h.Subscribe("")
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < sendBuffer*2; i++ {
			h.Publish(context.Background(), Event{Table: "users", Event: Update})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}
}

func serve(h *Hub, u *auth.SessionUser) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u != nil {
			r = auth.WithTestUser(r, u)
		}
		h.ServeWS(w, r)
	}))
}

func wsURL(s *httptest.Server) string {
	return "ws" + strings.TrimPrefix(s.URL, "http")
}

func TestServeWS_AgentReceivesOwnEvents(t *testing.T) {
	h := NewHub(zap.NewNop(), nil, nil)
	agent := primitive.NewObjectID()
	srv := serve(h, &auth.SessionUser{ID: agent.Hex(), Name: "Ann", Role: "agent"})
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return h.Clients() == 1 }, time.Second, 5*time.Millisecond)

	h.Publish(context.Background(), Event{Table: "bookings", Event: Insert, ID: "other", AgentID: primitive.NewObjectID().Hex()})
	h.Publish(context.Background(), Event{Table: "bookings", Event: Insert, ID: "own", AgentID: agent.Hex()})

	var ev Event
	conn.SetReadDeadline(time.Now().Add(time.Second))
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "own", ev.ID)
	assert.Equal(t, Insert, ev.Event)

	conn.Close()
	require.Eventually(t, func() bool { return h.Clients() == 0 }, time.Second, 5*time.Millisecond)
}

func TestServeWS_RejectsAnonymousAndBuyers(t *testing.T) {
	h := NewHub(zap.NewNop(), nil, nil)

	anon := serve(h, nil)
	defer anon.Close()
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(anon), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	buyer := serve(h, &auth.SessionUser{ID: primitive.NewObjectID().Hex(), Role: "buyer"})
	defer buyer.Close()
	_, resp, err = websocket.DefaultDialer.Dial(wsURL(buyer), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
