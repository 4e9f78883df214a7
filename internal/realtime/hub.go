package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tranki-app/tranki-backend/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 512
	sendBuffer     = 64
)

var errHubStopped = errors.New("realtime: hub stopped")

// Message is the envelope written to websocket clients.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// delivery targets either every connection of recipients or, when to is set,
// that single connection.
type delivery struct {
	recipients []string
	to         *client
	data       []byte
}

type client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	send   chan []byte
}

// Hub keeps the open feed connections of each user and pushes social events to them.
type Hub struct {
	clients    map[string]map[*client]struct{}
	register   chan *client
	unregister chan *client
	deliver    chan delivery
	done       chan struct{}

	mu        sync.RWMutex
	connected int

	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewHub creates a hub accepting handshakes from allowedOrigins. An empty list
// or "*" accepts any origin.
func NewHub(allowedOrigins []string, logger *zap.Logger) *Hub {
	h := &Hub{
		clients:    make(map[string]map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		deliver:    make(chan delivery, 256),
		done:       make(chan struct{}),
		logger:     logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	if len(set) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// Run processes registrations and deliveries until ctx is cancelled, then
// closes every connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for uid, set := range h.clients {
				for c := range set {
					close(c.send)
				}
				delete(h.clients, uid)
			}
			h.connected = 0
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			set, ok := h.clients[c.userID]
			if !ok {
				set = make(map[*client]struct{})
				h.clients[c.userID] = set
			}
			set[c] = struct{}{}
			h.connected++
			h.mu.Unlock()
			h.logger.Debug("WebSocket client registered", zap.String("user_id", c.userID))

		case c := <-h.unregister:
			h.remove(c)

		case d := <-h.deliver:
			var slow []*client
			h.mu.RLock()
			if d.to != nil {
				if _, ok := h.clients[d.to.userID][d.to]; ok {
					select {
					case d.to.send <- d.data:
					default:
						slow = append(slow, d.to)
					}
				}
			}
			for _, uid := range d.recipients {
				for c := range h.clients[uid] {
					select {
					case c.send <- d.data:
					default:
						slow = append(slow, c)
					}
				}
			}
			h.mu.RUnlock()
			for _, c := range slow {
				h.logger.Warn("Dropping slow WebSocket client", zap.String("user_id", c.userID))
				h.remove(c)
			}
		}
	}
}

// reply queues data for c alone. Only Run writes to or closes c.send, so a
// client removed in the meantime is skipped.
func (h *Hub) reply(c *client, data []byte) {
	select {
	case h.deliver <- delivery{to: c, data: data}:
	case <-h.done:
	default:
		h.logger.Warn("WebSocket delivery queue full, dropping reply", zap.String("user_id", c.userID))
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
	close(c.send)
	h.connected--
}

// Connected returns the number of open connections.
func (h *Hub) Connected() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.connected
}

// Publish pushes event to the open connections of its recipients. Events are
// dropped when the delivery queue is full.
func (h *Hub) Publish(ctx context.Context, event models.SocialEvent) {
	if len(event.Recipients) == 0 {
		return
	}
	payload := event
	payload.Recipients = nil
	data, err := json.Marshal(Message{Type: event.Type, Payload: payload})
	if err != nil {
		h.logger.Error("Failed to marshal social event", zap.String("type", event.Type), zap.Error(err))
		return
	}
	select {
	case h.deliver <- delivery{recipients: event.Recipients, data: data}:
	case <-ctx.Done():
	default:
		h.logger.Warn("WebSocket delivery queue full, dropping event", zap.String("type", event.Type))
	}
}

// ServeWS upgrades the request and attaches the connection to userID.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &client{hub: h, conn: conn, userID: userID, send: make(chan []byte, sendBuffer)}

	welcome, _ := json.Marshal(Message{
		Type:    "connected",
		Payload: map[string]interface{}{"userId": userID, "time": time.Now().Unix()},
	})
	c.send <- welcome

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return errHubStopped
	}

	go c.writePump()
	go c.readPump()
	return nil
}

// readPump only handles control frames and client pings; the feed is push only.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("WebSocket read error", zap.String("user_id", c.userID), zap.Error(err))
			}
			return
		}
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		if msg.Type == "ping" {
			pong, _ := json.Marshal(Message{Type: "pong", Payload: map[string]int64{"time": time.Now().Unix()}})
			c.hub.reply(c, pong)
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
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
