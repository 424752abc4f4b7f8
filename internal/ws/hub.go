package ws

import (
	"encoding/json"
	"sync"

	"sales_arena/internal/domain"
	"sales_arena/internal/logger"
	"sales_arena/internal/metrics"

	"github.com/google/uuid"
)

// Hub tracks connected clients per user. A user may hold several connections.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[uuid.UUID]map[*Client]struct{})}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	set, ok := h.clients[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.UserID] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()

	metrics.WSConnections.Inc()
	logger.Debug("ws client registered", "user_id", c.UserID)
}

// Unregister removes c and closes its send queue. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.UserID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.UserID)
	}
	close(c.Send)
	metrics.WSConnections.Dec()
	logger.Debug("ws client unregistered", "user_id", c.UserID)
}

// Deliver writes ev to every connection of its recipients, or to everyone on broadcast.
// A client whose queue is full misses the event.
func (h *Hub) Deliver(ev domain.Event) {
	data, err := json.Marshal(messageFromEvent(ev))
	if err != nil {
		logger.Error("ws encode event", "type", ev.Type, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if ev.Broadcast {
		for _, set := range h.clients {
			h.sendAll(set, data, ev.Type)
		}
		return
	}
	for _, id := range ev.UserIDs {
		h.sendAll(h.clients[id], data, ev.Type)
	}
}

func (h *Hub) sendAll(set map[*Client]struct{}, data []byte, typ domain.EventType) {
	for c := range set {
		select {
		case c.Send <- data:
		default:
			logger.Warn("ws send queue full, dropping event", "user_id", c.UserID, "type", typ)
		}
	}
}

// send queues data for c if it is still registered.
func (h *Hub) send(c *Client, data []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if _, ok := h.clients[c.UserID][c]; !ok {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

// Connected returns the number of open connections for userID.
func (h *Hub) Connected(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Close drops every client. Their write pumps send a close frame and exit.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, set := range h.clients {
		for c := range set {
			close(c.Send)
			metrics.WSConnections.Dec()
		}
		delete(h.clients, id)
	}
}
