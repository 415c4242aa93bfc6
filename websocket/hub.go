package websocket

import (
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event types pushed over the WebSocket channel.
const (
	EventConnected       = "connected"
	EventNewNotification = "newNotification"
	EventRentalsUpdated  = "rentalsUpdated"
	EventCarsUpdated     = "carsUpdated"
	EventUsersUpdated    = "usersUpdated"
)

// Event is a message sent over the WebSocket channel.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// jsonWriter is the slice of a connection the hub needs. gorilla conns are
// not safe for concurrent writes, so every write goes through Client.send.
type jsonWriter interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Client represents one connected WebSocket connection. A user may hold
// several (multiple tabs/devices), each with its own connection id.
type Client struct {
	UserID primitive.ObjectID
	ConnID string

	conn jsonWriter
	mu   sync.Mutex
}

func (c *Client) send(e Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(e)
}

// Authenticated reports whether the connection is bound to a user.
func (c *Client) Authenticated() bool {
	return c.UserID != primitive.NilObjectID
}

// Hub owns the connection registry: userID -> connID -> client for private
// pushes, plus the full connection set for broadcasts. It is process-local
// and rebuilt from live connections; business logic only ever calls
// SendToUser and Broadcast.
type Hub struct {
	clients    map[primitive.ObjectID]map[string]*Client
	conns      map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[primitive.ObjectID]map[string]*Client),
		conns:      make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.join(client)
		case client := <-h.unregister:
			h.leave(client)
		}
	}
}

func (h *Hub) join(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.conns[client] = struct{}{}
	if !client.Authenticated() {
		return
	}
	byConn, ok := h.clients[client.UserID]
	if !ok {
		byConn = make(map[string]*Client)
		h.clients[client.UserID] = byConn
	}
	byConn[client.ConnID] = client
}

func (h *Hub) leave(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.conns, client)
	if client.Authenticated() {
		if byConn, ok := h.clients[client.UserID]; ok {
			delete(byConn, client.ConnID)
			if len(byConn) == 0 {
				delete(h.clients, client.UserID)
			}
		}
	}
	client.conn.Close()
}

// SendToUser delivers an event to every live connection of one user. Returns
// an error when the user has no connection; delivery to a connected client is
// still best-effort.
func (h *Hub) SendToUser(userID primitive.ObjectID, event Event) error {
	h.mu.RLock()
	byConn, ok := h.clients[userID]
	targets := make([]*Client, 0, len(byConn))
	for _, client := range byConn {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	if !ok || len(targets) == 0 {
		return fmt.Errorf("user %s not connected", userID.Hex())
	}
	for _, client := range targets {
		if err := client.send(event); err != nil {
			// Dead connection; the reader goroutine will unregister it.
			continue
		}
	}
	return nil
}

// Broadcast delivers an event to every connected client, authenticated or
// not. Used for the coarse "<entity>Updated" refresh signals.
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.conns))
	for client := range h.conns {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		client.send(event)
	}
}

// ConnectionCount reports the number of live connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}
