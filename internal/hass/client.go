package hass

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Websocket API message types.
const (
	msgAuthRequired = "auth_required"
	msgAuth         = "auth"
	msgAuthOK       = "auth_ok"
	msgAuthInvalid  = "auth_invalid"
	msgResult       = "result"

	cmdEntityRegistry = "config/entity_registry/list"
	cmdDeviceRegistry = "config/device_registry/list"
	cmdAreaRegistry   = "config/area_registry/list"
	cmdGetStates      = "get_states"

	defaultTimeout = 10 * time.Second
)

// Logger is the logging surface the client needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// ClientConfig holds the connection settings for the websocket API.
type ClientConfig struct {
	// URL is the websocket endpoint, e.g. ws://homeassistant.local:8123/api/websocket.
	URL string

	// Token is a long-lived access token.
	Token string

	// Timeout bounds the handshake and each write. Default: 10s
	Timeout time.Duration
}

// envelope is the subset of fields shared by every server message.
type envelope struct {
	ID      int             `json:"id"`
	Type    string          `json:"type"`
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Error   *commandError   `json:"error"`
	Message string          `json:"message"`
	Version string          `json:"ha_version"`
}

type commandError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Client is a Home Assistant websocket API client.
//
// Commands are multiplexed over one connection by message id; a single read
// goroutine routes results to the waiting callers.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type Client struct {
	conn    *websocket.Conn
	timeout time.Duration
	logger  Logger
	version string

	writeMu sync.Mutex

	mu      sync.Mutex
	nextID  int
	pending map[int]chan envelope
	closed  bool
	err     error

	done chan struct{}
}

// Dial connects to Home Assistant and completes the authentication handshake.
//
// Parameters:
//   - ctx: Bounds the dial and handshake
//   - cfg: Endpoint and credentials
//
// Returns:
//   - *Client: Authenticated client, ready for commands
//   - error: ErrAuthFailed, ErrUnexpectedMessage, or a wrapped transport error
func Dial(ctx context.Context, cfg ClientConfig) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("dialling %s: %w", cfg.URL, err)
	}

	c := &Client{
		conn:    conn,
		timeout: timeout,
		logger:  noopLogger{},
		nextID:  1,
		pending: make(map[int]chan envelope),
		done:    make(chan struct{}),
	}

	if err := c.authenticate(cfg.Token); err != nil {
		conn.Close() //nolint:errcheck // handshake already failed
		return nil, err
	}

	go c.readLoop()
	return c, nil
}

// SetLogger sets the logger for the client.
func (c *Client) SetLogger(logger Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// Version returns the Home Assistant version reported during the handshake.
func (c *Client) Version() string {
	return c.version
}

func (c *Client) authenticate(token string) error {
	deadline := time.Now().Add(c.timeout)
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return fmt.Errorf("setting read deadline: %w", err)
	}

	var hello envelope
	if err := c.conn.ReadJSON(&hello); err != nil {
		return fmt.Errorf("reading auth request: %w", err)
	}
	if hello.Type != msgAuthRequired {
		return fmt.Errorf("%w: got %q, want %q", ErrUnexpectedMessage, hello.Type, msgAuthRequired)
	}

	if err := c.writeJSON(map[string]any{"type": msgAuth, "access_token": token}); err != nil {
		return fmt.Errorf("sending auth: %w", err)
	}

	var reply envelope
	if err := c.conn.ReadJSON(&reply); err != nil {
		return fmt.Errorf("reading auth reply: %w", err)
	}

	switch reply.Type {
	case msgAuthOK:
		c.version = reply.Version
	case msgAuthInvalid:
		return fmt.Errorf("%w: %s", ErrAuthFailed, reply.Message)
	default:
		return fmt.Errorf("%w: got %q during auth", ErrUnexpectedMessage, reply.Type)
	}

	// Results may take arbitrarily long once authenticated; callers bound
	// them through their context.
	return c.conn.SetReadDeadline(time.Time{})
}

func (c *Client) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return err
	}
	return c.conn.WriteJSON(v)
}

// readLoop routes command results to their callers until the connection fails.
func (c *Client) readLoop() {
	defer close(c.done)

	for {
		var msg envelope
		if err := c.conn.ReadJSON(&msg); err != nil {
			c.fail(err)
			return
		}

		if msg.Type != msgResult {
			c.logger.Debug("ignoring websocket message", "type", msg.Type)
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[msg.ID]
		delete(c.pending, msg.ID)
		c.mu.Unlock()

		if !ok {
			c.logger.Warn("result for unknown command", "id", msg.ID)
			continue
		}
		ch <- msg
	}
}

// fail records the terminal error; pending callers observe it through done.
func (c *Client) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.logger.Error("websocket connection lost", "error", err)
		c.err = err
	}
	c.closed = true
	c.pending = make(map[int]chan envelope)
}

// Call sends one command and decodes its result into out.
//
// Parameters:
//   - ctx: Cancels the wait for the result
//   - msgType: Command type, e.g. "config/entity_registry/list"
//   - fields: Extra command fields (may be nil)
//   - out: Destination for the result payload (may be nil)
//
// Returns:
//   - error: ErrNotConnected, ErrCommandFailed, or a decode/transport error
func (c *Client) Call(ctx context.Context, msgType string, fields map[string]any, out any) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrNotConnected
	}
	id := c.nextID
	c.nextID++
	ch := make(chan envelope, 1)
	c.pending[id] = ch
	c.mu.Unlock()

	msg := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		msg[k] = v
	}
	msg["id"] = id
	msg["type"] = msgType

	if err := c.writeJSON(msg); err != nil {
		c.forget(id)
		return fmt.Errorf("sending %s: %w", msgType, err)
	}

	select {
	case <-ctx.Done():
		c.forget(id)
		return ctx.Err()
	case <-c.done:
		return fmt.Errorf("%w: %s interrupted", ErrNotConnected, msgType)
	case reply := <-ch:
		if !reply.Success {
			if reply.Error != nil {
				return fmt.Errorf("%w: %s: %s: %s", ErrCommandFailed, msgType, reply.Error.Code, reply.Error.Message)
			}
			return fmt.Errorf("%w: %s", ErrCommandFailed, msgType)
		}
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(reply.Result, out); err != nil {
			return fmt.Errorf("decoding %s result: %w", msgType, err)
		}
		return nil
	}
}

func (c *Client) forget(id int) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// Entities lists the entity registry.
func (c *Client) Entities(ctx context.Context) ([]Entity, error) {
	var entities []Entity
	if err := c.Call(ctx, cmdEntityRegistry, nil, &entities); err != nil {
		return nil, err
	}
	return entities, nil
}

// Devices lists the device registry.
func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	var devices []Device
	if err := c.Call(ctx, cmdDeviceRegistry, nil, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// Areas lists the area registry.
func (c *Client) Areas(ctx context.Context) ([]Area, error) {
	var areas []Area
	if err := c.Call(ctx, cmdAreaRegistry, nil, &areas); err != nil {
		return nil, err
	}
	return areas, nil
}

// States returns the current state of every entity.
func (c *Client) States(ctx context.Context) (States, error) {
	var list []State
	if err := c.Call(ctx, cmdGetStates, nil, &list); err != nil {
		return nil, err
	}
	states := make(States, len(list))
	for _, st := range list {
		states[st.EntityID] = st
	}
	return states, nil
}

// Close sends a close frame and tears down the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage, //nolint:errcheck // best effort
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()

	err := c.conn.Close()
	<-c.done
	return err
}
