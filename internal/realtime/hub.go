// Package realtime pushes live check-in and badge activity to staff
// dashboards over WebSocket, one room per event. Redis pub/sub bridges
// rooms across instances.
package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Heartbeat intervals in seconds.
const (
	PingInterval = 30
	PongWait     = 60
)

// RedisPublisher publishes room events for cross-instance broadcast.
type RedisPublisher interface {
	PublishEventFeed(eventID, eventType string, payload []byte) error
}

// RedisSubscriber subscribes to an event's channel and invokes handler for
// incoming messages.
type RedisSubscriber interface {
	SubscribeEvent(eventID string, handler func(eventType string, payload []byte)) (cancel func(), err error)
}

// Hub maintains event_id -> set of connections and broadcasts feed messages.
type Hub struct {
	rooms  map[string]map[string]*Client
	subs   map[string]func() // cancel Redis subscription per room
	mu     sync.RWMutex
	logger *zap.Logger
	pub    RedisPublisher
	sub    RedisSubscriber
}

// NewHub creates a WebSocket hub. pub and sub may be nil in single-instance
// deployments and tests.
func NewHub(logger *zap.Logger, pub RedisPublisher, sub RedisSubscriber) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		rooms:  make(map[string]map[string]*Client),
		subs:   make(map[string]func()),
		logger: logger,
		pub:    pub,
		sub:    sub,
	}
}

// Register adds a client to its event room. The first client of a room starts
// the room's Redis subscription.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.rooms[c.EventID] == nil {
		h.rooms[c.EventID] = make(map[string]*Client)
		if h.sub != nil {
			cancel, err := h.sub.SubscribeEvent(c.EventID, func(eventType string, payload []byte) {
				h.broadcastLocal(c.EventID, eventType, json.RawMessage(payload))
			})
			if err == nil {
				h.subs[c.EventID] = cancel
			} else {
				h.logger.Warn("redis subscribe failed", zap.Error(err), zap.String("event_id", c.EventID))
			}
		}
	}
	h.rooms[c.EventID][c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("client joined event feed",
		zap.String("client_id", c.ID), zap.String("event_id", c.EventID))
}

// Unregister removes a client. The last client leaving a room cancels the
// room's Redis subscription.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if m, ok := h.rooms[c.EventID]; ok {
		delete(m, c.ID)
		if len(m) == 0 {
			delete(h.rooms, c.EventID)
			if cancel, ok := h.subs[c.EventID]; ok {
				cancel()
				delete(h.subs, c.EventID)
			}
		}
	}
	h.mu.Unlock()
	h.logger.Debug("client left event feed",
		zap.String("client_id", c.ID), zap.String("event_id", c.EventID))
}

// broadcastLocal delivers a message to the clients of this instance only.
func (h *Hub) broadcastLocal(eventID, eventType string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		data, _ = json.Marshal(payload)
	}
	msg := WSMessage{Event: eventType, Data: data}

	h.mu.RLock()
	clients := h.rooms[eventID]
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// BroadcastToEvent sends a message to all clients of an event room, local and
// on other instances via Redis.
func (h *Hub) BroadcastToEvent(eventID, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.broadcastLocal(eventID, eventType, json.RawMessage(data))
	if h.pub != nil {
		_ = h.pub.PublishEventFeed(eventID, eventType, data)
	}
}

// RoomCount returns the number of connected clients for an event on this
// instance.
func (h *Hub) RoomCount(eventID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[eventID])
}
