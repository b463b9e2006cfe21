package websocket

import (
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/abrezinsky/outletplay/internal/broadcast"
	"github.com/abrezinsky/outletplay/internal/logger"
	"github.com/abrezinsky/outletplay/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	sendBufferSize = 64

	// MessageConnected greets a new viewer with its connection id
	MessageConnected = "connected"
	// MessageWin carries one win event
	MessageWin = "win"
)

// Feed is where viewers register for win events
type Feed interface {
	Subscribe(ch broadcast.Channel) (unsubscribe func())
}

// Hub maintains the set of connected websocket viewers
type Hub struct {
	log        logger.Logger
	feed       Feed
	upgrader   websocket.Upgrader
	pingPeriod time.Duration
	clients    map[*Client]struct{}
	mutex      sync.RWMutex
}

// Client is a middleman between the websocket connection and the feed
type Client struct {
	id          string
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	mu          sync.Mutex
	closed      bool
	unsubscribe func()
}

// New creates a new Hub. An empty allowedOrigins accepts every origin.
func New(log logger.Logger, feed Feed, allowedOrigins []string) *Hub {
	h := &Hub{
		log:        log,
		feed:       feed,
		pingPeriod: pingPeriod,
		clients:    make(map[*Client]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*") {
				return true
			}
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(allowedOrigins, origin)
		},
	}
	return h
}

// Size returns the number of connected websocket viewers
func (h *Hub) Size() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// ServeWs handles websocket requests from viewers
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("WebSocket upgrade error", "error", err)
		return
	}

	id, err := gonanoid.New()
	if err != nil {
		h.log.Error("Failed to generate viewer id", "error", err)
		conn.Close()
		return
	}

	client := &Client{
		id:   id,
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
	client.enqueue(MessageConnected, map[string]string{"id": id})

	h.mutex.Lock()
	h.clients[client] = struct{}{}
	h.mutex.Unlock()
	client.unsubscribe = h.feed.Subscribe(client)
	h.log.Debug("Live viewer connected", "transport", "websocket", "viewer", id)

	go client.writePump()
	go client.readPump()
}

// Close disconnects every viewer
func (h *Hub) Close() {
	h.mutex.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mutex.RUnlock()

	for _, c := range clients {
		c.close()
	}
}

func (h *Hub) remove(c *Client) {
	h.mutex.Lock()
	delete(h.clients, c)
	h.mutex.Unlock()
}

// WriteEvent implements broadcast.Channel. It queues the event without
// blocking.
func (c *Client) WriteEvent(id string, payload []byte) error {
	msg, err := json.Marshal(models.WSMessage{Type: MessageWin, Payload: json.RawMessage(payload)})
	if err != nil {
		return err
	}
	return c.queue(msg)
}

func (c *Client) enqueue(msgType string, payload any) {
	msg, err := json.Marshal(models.WSMessage{Type: msgType, Payload: payload})
	if err != nil {
		c.hub.log.Error("Failed to encode websocket message", "type", msgType, "error", err)
		return
	}
	c.queue(msg)
}

func (c *Client) queue(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return broadcast.ErrChannelClosed
	}
	select {
	case c.send <- msg:
		return nil
	default:
		return broadcast.ErrChannelFull
	}
}

// close stops delivery and lets the write pump send a close frame
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) detach() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	c.hub.remove(c)
	c.close()
}

// readPump drains the connection so pongs and close frames are processed
func (c *Client) readPump() {
	defer func() {
		c.detach()
		c.conn.Close()
		c.hub.log.Debug("Live viewer disconnected", "transport", "websocket", "viewer", c.id)
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("WebSocket error", "error", err)
			}
			return
		}
	}
}

// writePump pumps queued messages to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(c.hub.pingPeriod)
	defer func() {
		ticker.Stop()
		c.detach()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
