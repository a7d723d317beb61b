package mqtt

import (
	"context"
	"fmt"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/lovelace-strategy/internal/infrastructure/config"
)

// Logger receives handler failures and connection changes.
// *logging.Logger satisfies it.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// MessageHandler handles one received message. A returned error is logged.
// Handlers run on paho's goroutines and should hand long work off.
type MessageHandler func(topic string, payload []byte) error

// Client is a broker connection that keeps its subscriptions across
// reconnects and announces itself on the status topic.
//
// All methods are safe for concurrent use.
type Client struct {
	client pahomqtt.Client
	qos    byte
	topics Topics

	mu     sync.RWMutex
	subs   map[string]MessageHandler
	logger Logger
}

// Connect dials the broker configured in cfg.
//
// Parameters:
//   - cfg: the mqtt configuration section
//
// Returns:
//   - *Client: a connected client with "online" published on the status topic
//   - error: ErrConnectionFailed when the broker cannot be reached in time
func Connect(cfg config.MQTTConfig) (*Client, error) {
	topics := Topics{Prefix: cfg.TopicPrefix}
	opts := buildClientOptions(cfg, topics)

	c := &Client{
		qos:    byte(cfg.QoS),
		topics: topics,
		subs:   make(map[string]MessageHandler),
		logger: nopLogger{},
	}
	opts.SetOnConnectHandler(func(pahomqtt.Client) { c.onConnect() })
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		c.log().Warn("MQTT connection lost", "error", err)
	})

	c.client = pahomqtt.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	return c, nil
}

// newClient wraps an existing paho client.
func newClient(pc pahomqtt.Client, qos byte, topics Topics) *Client {
	return &Client{
		client: pc,
		qos:    qos,
		topics: topics,
		subs:   make(map[string]MessageHandler),
		logger: nopLogger{},
	}
}

// onConnect runs on the first connect and on every reconnect.
func (c *Client) onConnect() {
	c.mu.RLock()
	for topic, handler := range c.subs {
		c.client.Subscribe(topic, c.qos, c.wrap(handler))
	}
	c.mu.RUnlock()

	c.client.Publish(c.topics.Status(), c.qos, true, statusOnline)
	c.log().Info("MQTT connected", "status_topic", c.topics.Status())
}

// Topics returns the topic builder for the configured prefix.
func (c *Client) Topics() Topics {
	return c.topics
}

// SetLogger replaces the default no-op logger.
func (c *Client) SetLogger(l Logger) {
	c.mu.Lock()
	c.logger = l
	c.mu.Unlock()
}

func (c *Client) log() Logger {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.logger
}

// IsConnected reports the current broker connection state.
func (c *Client) IsConnected() bool {
	return c != nil && c.client != nil && c.client.IsConnected()
}

// HealthCheck returns ErrNotConnected while the connection is down.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mqtt health check: %w", err)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// Close publishes "offline" and disconnects. It is safe on a nil client.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	if c.IsConnected() {
		c.client.Publish(c.topics.Status(), c.qos, true, statusOffline).WaitTimeout(operationTimeout)
	}
	c.client.Disconnect(disconnectQuiesce)
	return nil
}

// wrap adapts a MessageHandler to paho, logging errors and recovering
// panics so one bad message cannot take the connection down.
func (c *Client) wrap(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				c.log().Error("MQTT handler panic recovered", "topic", msg.Topic(), "panic", r)
			}
		}()
		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			c.log().Warn("MQTT handler returned error", "topic", msg.Topic(), "error", err)
		}
	}
}
