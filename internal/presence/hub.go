// Package presence tracks which users are online over WebSocket connections
// and pushes realtime events (new messages, notifications, presence changes)
// to connected users. Online state lives in the hub; a last-seen timestamp is
// persisted only when a user's final connection drops.
package presence

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// EventType tags a realtime event pushed to clients.
type EventType string

const (
	EventPresenceOnline  EventType = "presence_online"
	EventPresenceOffline EventType = "presence_offline"
	EventNewMessage      EventType = "new_message"
	EventNotification    EventType = "notification"
)

// Event is the wire format for realtime pushes.
type Event struct {
	Type      EventType   `json:"type"`
	UserID    string      `json:"userId,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// LastSeenRecorder persists the moment a user goes offline.
type LastSeenRecorder interface {
	TouchLastSeen(userID string, at time.Time) error
}

// Client is one WebSocket connection belonging to a user. A user may hold
// several (multiple tabs); presence counts users, not connections.
type Client struct {
	UserID string
	Send   chan []byte
}

// Hub is the central registry of connected clients keyed by user id.
// All operations are safe for concurrent use.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]map[*Client]struct{} // user id -> connections
	recorder LastSeenRecorder
}

// NewHub creates a Hub. The recorder may be nil in tests.
func NewHub(recorder LastSeenRecorder) *Hub {
	return &Hub{
		clients:  make(map[string]map[*Client]struct{}),
		recorder: recorder,
	}
}

// Register adds a connection. The user's first connection broadcasts an
// online event to everyone else.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	first := h.clients[client.UserID] == nil
	if first {
		h.clients[client.UserID] = make(map[*Client]struct{})
	}
	h.clients[client.UserID][client] = struct{}{}
	h.mu.Unlock()

	if first {
		h.Broadcast(Event{Type: EventPresenceOnline, UserID: client.UserID, Timestamp: time.Now()})
	}
}

// Unregister removes a connection and closes its send channel. Dropping the
// user's last connection records last-seen and broadcasts an offline event.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	conns, ok := h.clients[client.UserID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, ok := conns[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(conns, client)
	last := len(conns) == 0
	if last {
		delete(h.clients, client.UserID)
	}
	h.mu.Unlock()

	close(client.Send)

	if last {
		now := time.Now()
		if h.recorder != nil {
			if err := h.recorder.TouchLastSeen(client.UserID, now); err != nil {
				log.Warn().Err(err).Msg("failed to persist last seen")
			}
		}
		h.Broadcast(Event{Type: EventPresenceOffline, UserID: client.UserID, Timestamp: now})
	}
}

// IsOnline reports whether the user has at least one live connection.
func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}

// OnlineUsers returns the ids of every connected user.
func (h *Hub) OnlineUsers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	users := make([]string, 0, len(h.clients))
	for id := range h.clients {
		users = append(users, id)
	}
	return users
}

// SendToUser pushes an event to every connection of one user. Connections
// with a full send buffer are skipped; the reader will reconcile on its next
// fetch.
func (h *Hub) SendToUser(userID string, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal presence event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[userID] {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

// Broadcast pushes an event to every connected client.
func (h *Hub) Broadcast(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal presence event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, conns := range h.clients {
		for client := range conns {
			select {
			case client.Send <- payload:
			default:
			}
		}
	}
}
