package notifications

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/minasenanami/wonderful-editor/internal/middleware"

	"github.com/gofiber/websocket/v2"
)

const defaultMaxClients = 10000

// ErrHubFull is returned when the connection limit is reached.
var ErrHubFull = errors.New("feed connection limit reached")

// ErrHubClosed is returned by Register after Shutdown.
var ErrHubClosed = errors.New("feed hub is shut down")

// Hub tracks feed subscribers on this instance and broadcasts to all of them.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]struct{}
	maxClients int
	closed     bool
}

// NewHub creates a hub. maxClients <= 0 uses the default limit.
func NewHub(maxClients int) *Hub {
	if maxClients <= 0 {
		maxClients = defaultMaxClients
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		maxClients: maxClients,
	}
}

// Register adds a connection. userID is 0 for anonymous subscribers.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	if len(h.clients) >= h.maxClients {
		return nil, ErrHubFull
	}

	c := newClient(h, conn, userID)
	h.clients[c] = struct{}{}
	middleware.ActiveWebSockets.Inc()
	return c, nil
}

// Unregister removes c and closes its Send channel. Calling it twice is safe.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.Send)
	middleware.ActiveWebSockets.Dec()
}

// Count returns the number of registered clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastAll queues message for every client.
func (h *Hub) BroadcastAll(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.trySend(message)
	}
}

// StartWiring subscribes the hub to the Redis event channel.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.Subscribe(ctx, func(payload string) {
		h.BroadcastAll([]byte(payload))
	})
}

// Shutdown sends a close frame to every client and drops them all.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	for c := range h.clients {
		if c.Conn != nil {
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")
			if err := c.Conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)); err != nil {
				middleware.Logger.Debug("failed to write feed close frame", slog.String("error", err.Error()))
			}
		}
		close(c.Send)
		delete(h.clients, c)
		middleware.ActiveWebSockets.Dec()
	}
	return nil
}
