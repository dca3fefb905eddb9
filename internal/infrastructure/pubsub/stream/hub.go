package streampubsub

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
)

const (
	sendBufferSize = 16
	writeWait      = 10 * time.Second
)

type client struct {
	conn  *websocket.Conn
	topic string
	send  chan []byte
}

// Hub maintains the set of active websocket clients and broadcasts messages
// to them. Clients choose the topic to listen for with the "topic" query
// parameter, all topics by default.
type Hub struct {
	lock     sync.RWMutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
	closed   bool
}

// NewHub returns a Hub accepting connections from any of the given origins,
// or from anywhere if none is given.
func NewHub(allowedOrigins ...string) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: checkOrigin(allowedOrigins),
		},
	}
}

// ServeHTTP upgrades the connection to a websocket and registers it with the
// Hub until the client goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Debug("websocket upgrade failed")
		return
	}

	topic := r.URL.Query().Get("topic")
	if topic == "" {
		topic = ports.AnyTopic
	}
	c := &client{conn, topic, make(chan []byte, sendBufferSize)}
	if !h.register(c) {
		conn.Close()
		return
	}

	go h.writeLoop(c)

	// Keep the connection open until the client disconnects.
	for {
		if _, _, err := conn.NextReader(); err != nil {
			h.unregister(c)
			return
		}
	}
}

// Broadcast implements ports.EventStream.
func (h *Hub) Broadcast(topic string, message []byte) {
	h.lock.Lock()
	defer h.lock.Unlock()

	for c := range h.clients {
		if c.topic != ports.AnyTopic && c.topic != topic {
			continue
		}
		select {
		case c.send <- message:
		default:
			// Slow client, drop it.
			h.removeClient(c)
		}
	}
}

// NumClients returns the number of connected clients.
func (h *Hub) NumClients() int {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return len(h.clients)
}

// Close implements ports.EventStream.
func (h *Hub) Close() {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.closed = true
	for c := range h.clients {
		h.removeClient(c)
	}
}

func (h *Hub) register(c *client) bool {
	h.lock.Lock()
	defer h.lock.Unlock()

	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *client) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.removeClient(c)
}

// removeClient must be called with the lock held.
func (h *Hub) removeClient(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()

	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.WithError(err).Debug("failed to write to websocket client")
			h.unregister(c)
			return
		}
	}
	c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait),
	)
}

func checkOrigin(allowedOrigins []string) func(r *http.Request) bool {
	if len(allowedOrigins) <= 0 {
		return func(r *http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowedOrigins {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}
