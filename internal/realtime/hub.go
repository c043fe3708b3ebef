// Package realtime pushes task events to the live websocket connections of
// their owner.
package realtime

import (
	"encoding/json"
	"errors"
	"log"
	"sync"

	"github.com/google/uuid"
)

var ErrHubClosed = errors.New("realtime hub is closed")

// Envelope is the wire format of every server-to-client message.
type Envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub is the process-wide registry of live connections grouped by user.
// Delivery is best-effort: a push reaches the connections joined at that
// moment, and a client with a full send buffer misses the message.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*Client
	groups  map[uint64]map[uuid.UUID]*Client
	closed  bool
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[uuid.UUID]*Client),
		groups:  make(map[uint64]map[uuid.UUID]*Client),
	}
}

// Register tracks a newly connected client. It joins no group yet.
func (h *Hub) Register(c *Client) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHubClosed
	}
	h.clients[c.ID] = c
	return nil
}

// Join adds a registered client to the group of userID.
func (h *Hub) Join(c *Client, userID uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.ID]; !ok {
		return
	}
	group := h.groups[userID]
	if group == nil {
		group = make(map[uuid.UUID]*Client)
		h.groups[userID] = group
	}
	group[c.ID] = c
	c.joined[userID] = struct{}{}
}

// Unregister drops the client and every membership it holds.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.clients, c.ID)
	for userID := range c.joined {
		group := h.groups[userID]
		delete(group, c.ID)
		if len(group) == 0 {
			delete(h.groups, userID)
		}
	}
	c.joined = make(map[uint64]struct{})
}

// Push queues event for every connection joined to userID and returns how
// many connections accepted it.
func (h *Hub) Push(userID uint64, event string, payload interface{}) int {
	message, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		log.Printf("[hub] failed to encode %s event: %v", event, err)
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, c := range h.groups[userID] {
		if c.enqueue(message) {
			delivered++
		} else {
			log.Printf("[hub] dropped %s event for client %s", event, c.ID)
		}
	}
	return delivered
}

// GroupSize returns the number of connections joined to userID.
func (h *Hub) GroupSize(userID uint64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[userID])
}

// Close disconnects every client and rejects further registrations.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for _, c := range h.clients {
		c.close()
	}
	h.clients = make(map[uuid.UUID]*Client)
	h.groups = make(map[uint64]map[uuid.UUID]*Client)
}
