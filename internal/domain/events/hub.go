package events

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
	sendBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, // origin is checked by the CORS layer
}

const (
	TypeLoaded  = "loaded"
	TypeInvalid = "invalid"
	TypeFailed  = "failed"
	TypeDone    = "done"
)

// Event is pushed to every open connection of the batch owner.
type Event struct {
	Type    string `json:"type"`
	BatchID string `json:"batch_id"`
	Payload any    `json:"payload,omitempty"`
}

type connection struct {
	userID int64
	conn   *websocket.Conn
	send   chan []byte
}

// Hub fans intake events out to websocket clients, keyed by user.
type Hub struct {
	mu          sync.RWMutex
	connections map[int64]map[*connection]struct{}
	log         *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		connections: make(map[int64]map[*connection]struct{}),
		log:         log,
	}
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.connections[c.userID] == nil {
		h.connections[c.userID] = make(map[*connection]struct{})
	}
	h.connections[c.userID][c] = struct{}{}
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := h.connections[c.userID]
	if _, ok := conns[c]; !ok {
		return
	}
	delete(conns, c)
	if len(conns) == 0 {
		delete(h.connections, c.userID)
	}
	close(c.send)
}

// Connected reports how many connections a user has open.
func (h *Hub) Connected(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[userID])
}

// Publish sends an event to all connections of userID. Slow clients miss it.
func (h *Hub) Publish(userID int64, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Warn("failed to encode event", "type", event.Type, "error", err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.connections[userID] {
		select {
		case c.send <- data:
		default:
			h.log.Debug("dropping event for slow client", "user_id", userID, "type", event.Type)
		}
	}
}

// ServeWS upgrades the request and blocks until the client disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID int64) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &connection{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}
	h.register(c)

	go h.writePump(c)
	h.readPump(c)
	return nil
}

// readPump only keeps the connection alive; clients have nothing to say.
func (h *Hub) readPump(c *connection) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
