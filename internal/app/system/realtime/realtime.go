// Package realtime pushes row-change events to signed-in browsers over
// websockets.
//
// Admin connections receive every event. Agent connections receive only
// events tagged with their own agent id.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/homeandown/estatehub/internal/app/system/authz"
	"github.com/homeandown/estatehub/internal/app/system/telemetry"
	"go.uber.org/zap"
)

// Event kinds.
const (
	Insert = "INSERT"
	Update = "UPDATE"
	Delete = "DELETE"
)

// Event describes one changed row.
type Event struct {
	Table   string    `json:"table"`
	Event   string    `json:"event"`
	ID      string    `json:"id"`
	AgentID string    `json:"agent_id,omitempty"`
	At      time.Time `json:"at"`
}

const (
	sendBuffer = 16
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

type subscriber struct {
	id      string
	agentID string
	ch      chan Event
}

func (s *subscriber) wants(ev Event) bool {
	return s.agentID == "" || s.agentID == ev.AgentID
}

// Hub fans events out to subscribers.
type Hub struct {
	log     *zap.Logger
	metrics *telemetry.Metrics
	onEvent func(ctx context.Context, ev Event)

	upgrader websocket.Upgrader

	mu   sync.RWMutex
	subs map[string]*subscriber
}

// NewHub returns a Hub. onEvent, when non-nil, runs for every published
// event after fan-out (dashboard refresh).
func NewHub(log *zap.Logger, m *telemetry.Metrics, onEvent func(ctx context.Context, ev Event)) *Hub {
	return &Hub{
		log:     log,
		metrics: m,
		onEvent: onEvent,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		subs: map[string]*subscriber{},
	}
}

// Subscribe registers a listener. An empty agentID receives all events.
// The returned cancel func unregisters and closes the channel.
func (h *Hub) Subscribe(agentID string) (string, <-chan Event, func()) {
	s := &subscriber{
		id:      uuid.NewString(),
		agentID: agentID,
		ch:      make(chan Event, sendBuffer),
	}
	h.mu.Lock()
	h.subs[s.id] = s
	n := len(h.subs)
	h.mu.Unlock()
	h.metrics.Clients(n)

	var once sync.Once
	cancel := func() {
		once.Do(func() { h.remove(s.id) })
	}
	return s.id, s.ch, cancel
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	s, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
		close(s.ch)
	}
	n := len(h.subs)
	h.mu.Unlock()
	h.metrics.Clients(n)
}

// Clients returns the number of live subscribers.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Publish delivers ev to every interested subscriber. A subscriber whose
// buffer is full misses the event rather than blocking the publisher.
func (h *Hub) Publish(ctx context.Context, ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	h.mu.RLock()
	for _, s := range h.subs {
		if !s.wants(ev) {
			continue
		}
		select {
		case s.ch <- ev:
		default:
			h.log.Warn("realtime subscriber lagging; event dropped",
				zap.String("client", s.id),
				zap.String("table", ev.Table))
		}
	}
	h.mu.RUnlock()

	h.metrics.Event(ev.Table, ev.Event)
	if h.onEvent != nil {
		h.onEvent(ctx, ev)
	}
}

// ServeWS upgrades a signed-in admin or agent to a websocket and streams
// events as JSON text frames until either side closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	role, agentID, err := authz.FeedScope(r)
	switch {
	case errors.Is(err, authz.ErrSignedOut):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	case err != nil:
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	id, events, cancel := h.Subscribe(agentID)
	h.log.Debug("realtime client connected", zap.String("client", id), zap.String("role", role))

	done := make(chan struct{})
	go h.readPump(conn, done)
	h.writePump(conn, events, done)

	cancel()
	conn.Close()
	h.log.Debug("realtime client disconnected", zap.String("client", id))
}

// readPump discards client frames and closes done when the peer goes away.
func (h *Hub) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(conn *websocket.Conn, events <-chan Event, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			b, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
