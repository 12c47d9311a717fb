package notifier

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	logger "github.com/sirupsen/logrus"
)

const writeTimeout = 10 * time.Second

// wsClient pairs a connection with its write lock. The websocket
// protocol allows only one concurrent writer per connection, while Emit
// is called from whichever request goroutine triggered the event.
type wsClient struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *wsClient) write(body []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, body)
}

// Hub broadcasts domain change events to subscribed websocket clients.
// A slow or dead client is dropped, never waited on: event delivery is
// best effort and must not block the mutating operation that emitted it.
type Hub struct {
	mu       sync.Mutex
	clients  map[*wsClient]struct{}
	upgrader websocket.Upgrader
}

type wsEnvelope struct {
	Event     string      `json:"event"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*wsClient]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Single-user app, same-origin policy handled upstream.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeWS upgrades the request and registers the client for events.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WithError(err).Error("websocket upgrade failed")
		return
	}

	client := &wsClient{conn: conn}

	h.mu.Lock()
	h.clients[client] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	logger.WithField("clients", total).Info("websocket client subscribed")

	// Reader loop exists only to detect disconnects.
	go func() {
		defer h.drop(client)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Emit broadcasts the event to all subscribed clients. Writes per
// connection are serialized through the client's write lock so that
// concurrent mutating requests can emit safely.
func (h *Hub) Emit(event Event, payload interface{}) {
	body, err := json.Marshal(wsEnvelope{
		Event:     string(event),
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		logger.WithError(err).Error("failed to marshal websocket event")
		return
	}

	h.mu.Lock()
	clients := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, client := range clients {
		if err := client.write(body); err != nil {
			logger.WithError(err).Debug("dropping dead websocket client")
			h.drop(client)
		}
	}
}

func (h *Hub) drop(client *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		_ = client.conn.Close()
	}
	h.mu.Unlock()
}
