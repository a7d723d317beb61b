package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/samber/lo"

	"github.com/nerrad567/lovelace-strategy/internal/infrastructure/logging"
)

// EventDashboardGenerated is broadcast after every successful generation.
// Its payload is the generation summary.
const EventDashboardGenerated = "dashboard.generated"

// Message types.
const (
	WSTypeSubscribe   = "subscribe"
	WSTypeUnsubscribe = "unsubscribe"
	WSTypePing        = "ping"
	WSTypePong        = "pong"
	WSTypeEvent       = "event"
	WSTypeResponse    = "response"
	WSTypeError       = "error"
)

const (
	wsQueueSize    = 64
	wsReadLimit    = 4096
	wsPingEvery    = 30 * time.Second
	wsWriteTimeout = 10 * time.Second
	wsIdleTimeout  = wsPingEvery + wsWriteTimeout
)

// WSMessage is a frame exchanged with a websocket client.
type WSMessage struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// WSSubscribePayload names the event types of a subscribe or unsubscribe
// request.
type WSSubscribePayload struct {
	Channels []string `json:"channels"`
}

type wsRequest struct {
	Type    string             `json:"type"`
	ID      string             `json:"id"`
	Payload WSSubscribePayload `json:"payload"`
}

// Hub holds the connected dashboard watchers.
type Hub struct {
	logger *logging.Logger

	mu      sync.Mutex
	clients map[*WSClient]struct{}
}

// WSClient is one watcher. Its queue is drained by the write loop; done is
// closed exactly once when the client goes away.
type WSClient struct {
	hub   *Hub
	conn  *websocket.Conn
	queue chan []byte
	done  chan struct{}
	once  sync.Once

	mu     sync.Mutex
	events map[string]bool
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Cross-origin access is decided by corsMiddleware.
	CheckOrigin: func(*http.Request) bool { return true },
}

// NewHub returns a hub without clients.
func NewHub(logger *logging.Logger) *Hub {
	return &Hub{logger: logger, clients: map[*WSClient]struct{}{}}
}

func newWSClient(hub *Hub, conn *websocket.Conn, events ...string) *WSClient {
	c := &WSClient{
		hub:    hub,
		conn:   conn,
		queue:  make(chan []byte, wsQueueSize),
		done:   make(chan struct{}),
		events: map[string]bool{},
	}
	c.follow(events, true)
	return c
}

// Run waits for ctx and then drops every client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	clients := lo.Keys(h.clients)
	clear(h.clients)
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}

// Register starts delivering events to c.
func (h *Hub) Register(c *WSClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("dashboard watcher connected", "clients", n)
}

// Unregister drops c and closes it. Calling it twice is harmless.
func (h *Hub) Unregister(c *WSClient) {
	h.mu.Lock()
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()

	c.close()
	h.logger.Debug("dashboard watcher disconnected", "clients", n)
}

// ClientCount reports the connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast queues an event for the clients following eventType and returns
// how many accepted it. Clients with a full queue miss the event.
func (h *Hub) Broadcast(eventType string, payload any) int {
	data, err := encodeFrame(WSMessage{Type: WSTypeEvent, EventType: eventType, Payload: payload})
	if err != nil {
		h.logger.Error("encoding websocket event failed", "event", eventType, "error", err)
		return 0
	}

	h.mu.Lock()
	clients := lo.Keys(h.clients)
	h.mu.Unlock()

	delivered := lo.CountBy(clients, func(c *WSClient) bool {
		return c.follows(eventType) && c.enqueue(data)
	})
	if delivered < len(clients) {
		h.logger.Debug("websocket event not delivered to every client",
			"event", eventType, "delivered", delivered, "clients", len(clients))
	}
	return delivered
}

// handleWebSocket upgrades the request. The optional events query parameter
// is a comma separated list of event types to follow from the start.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	events := lo.Compact(lo.Map(strings.Split(r.URL.Query().Get("events"), ","),
		func(e string, _ int) string { return strings.TrimSpace(e) }))

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err, "request_id", requestID(r.Context()))
		return
	}

	c := newWSClient(s.hub, conn, events...)
	s.hub.Register(c)
	go c.writeLoop()
	go c.readLoop()
}

func (c *WSClient) close() {
	c.once.Do(func() {
		close(c.done)
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

func (c *WSClient) follow(events []string, on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range events {
		if on {
			c.events[e] = true
		} else {
			delete(c.events, e)
		}
	}
}

func (c *WSClient) follows(eventType string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.events[eventType]
}

// enqueue never blocks. It reports false for a closed client or a full queue.
func (c *WSClient) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.queue <- data:
		return true
	default:
		return false
	}
}

func (c *WSClient) readLoop() {
	defer c.hub.Unregister(c)

	c.conn.SetReadLimit(wsReadLimit)
	extend := func(string) error { return c.conn.SetReadDeadline(time.Now().Add(wsIdleTimeout)) }
	c.conn.SetPongHandler(extend)
	if err := extend(""); err != nil {
		return
	}

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read failed", "error", err)
			}
			return
		}
		if err := extend(""); err != nil {
			return
		}
		c.reply(data)
	}
}

func (c *WSClient) writeLoop() {
	ping := time.NewTicker(wsPingEvery)
	defer ping.Stop()

	write := func(kind int, data []byte) error {
		if err := c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
			return err
		}
		return c.conn.WriteMessage(kind, data)
	}

	for {
		var err error
		select {
		case <-c.done:
			return
		case data := <-c.queue:
			err = write(websocket.TextMessage, data)
		case <-ping.C:
			err = write(websocket.PingMessage, nil)
		}
		if err != nil {
			c.hub.Unregister(c)
			return
		}
	}
}

// reply answers one client request.
func (c *WSClient) reply(data []byte) {
	var req wsRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.respond(WSMessage{Type: WSTypeError, Payload: errorPayload("invalid JSON message")})
		return
	}

	out := WSMessage{Type: WSTypeResponse, ID: req.ID}
	switch req.Type {
	case WSTypeSubscribe:
		c.follow(req.Payload.Channels, true)
		out.Payload = map[string]any{"subscribed": req.Payload.Channels}
	case WSTypeUnsubscribe:
		c.follow(req.Payload.Channels, false)
		out.Payload = map[string]any{"unsubscribed": req.Payload.Channels}
	case WSTypePing:
		out.Type = WSTypePong
	default:
		out.Type = WSTypeError
		out.Payload = errorPayload("unknown message type: " + req.Type)
	}
	c.respond(out)
}

func (c *WSClient) respond(msg WSMessage) {
	if data, err := encodeFrame(msg); err == nil {
		c.enqueue(data)
	}
}

func errorPayload(message string) map[string]string {
	return map[string]string{"message": message}
}

// encodeFrame stamps msg with the current UTC time and encodes it.
func encodeFrame(msg WSMessage) ([]byte, error) {
	msg.Timestamp = time.Now().UTC().Format(time.RFC3339)
	return json.Marshal(msg)
}
