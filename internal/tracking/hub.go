// Package tracking pushes live ride updates to riders over websockets.
package tracking

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cabgo/rider-web/internal/domain/ride"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 << 10
	sendBufferSize = 16
)

// Message is the envelope written to the socket.
type Message struct {
	Type string    `json:"type"`
	Data ride.View `json:"data"`
}

const MessageTypeTracking = "tracking"

// Upgrader accepts any origin; the CORS middleware guards the HTTP surface.
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type client struct {
	bookingID string
	conn      *websocket.Conn
	send      chan []byte
	closeOnce sync.Once
}

// Hub fans tracking views out to every socket watching a booking.
type Hub struct {
	logger *zap.Logger

	mu       sync.RWMutex
	watchers map[string]map[*client]struct{}
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:   logger,
		watchers: make(map[string]map[*client]struct{}),
	}
}

// Attach registers conn as a watcher of bookingID, sends the current view and
// serves the connection until it closes.
func (h *Hub) Attach(bookingID string, conn *websocket.Conn, current ride.View) {
	c := &client{
		bookingID: bookingID,
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
	}

	h.mu.Lock()
	if h.watchers[bookingID] == nil {
		h.watchers[bookingID] = make(map[*client]struct{})
	}
	h.watchers[bookingID][c] = struct{}{}
	h.mu.Unlock()

	h.logger.Debug("tracking watcher attached", zap.String("booking_id", bookingID))
	if data, ok := h.marshal(current); ok {
		c.send <- data
	}

	go h.writePump(c)
	h.readPump(c)
}

// Broadcast implements application.Notifier. Slow watchers drop updates rather than
// blocking the event consumer.
func (h *Hub) Broadcast(bookingID string, view ride.View) {
	data, ok := h.marshal(view)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.watchers[bookingID] {
		select {
		case c.send <- data:
		default:
			h.logger.Debug("tracking watcher buffer full", zap.String("booking_id", bookingID))
		}
	}
}

// Watchers returns the number of sockets watching a booking.
func (h *Hub) Watchers(bookingID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.watchers[bookingID])
}

// CloseAll disconnects every watcher.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	all := h.watchers
	h.watchers = make(map[string]map[*client]struct{})
	h.mu.Unlock()

	for _, set := range all {
		for c := range set {
			c.close()
		}
	}
}

func (h *Hub) detach(c *client) {
	h.mu.Lock()
	if set, ok := h.watchers[c.bookingID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.watchers, c.bookingID)
		}
	}
	h.mu.Unlock()
	c.close()
	h.logger.Debug("tracking watcher detached", zap.String("booking_id", c.bookingID))
}

func (h *Hub) marshal(view ride.View) ([]byte, bool) {
	data, err := json.Marshal(Message{Type: MessageTypeTracking, Data: view})
	if err != nil {
		h.logger.Error("failed to marshal tracking view", zap.Error(err))
		return nil, false
	}
	return data, true
}

// readPump only services control frames; riders never send data.
func (h *Hub) readPump(c *client) {
	defer h.detach(c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("tracking socket closed", zap.String("booking_id", c.bookingID), zap.Error(err))
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		_ = c.conn.Close()
	})
}
