// Package realtime receives storefront push updates over a WebSocket.
package realtime

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/William2207/uteshop/cli/pkg/config"
	"github.com/William2207/uteshop/cli/pkg/logger"
	"github.com/gorilla/websocket"
	json "github.com/json-iterator/go"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	MessageTypeCartUpdated   MessageType = "cart_updated"
	MessageTypeOrderStatus   MessageType = "order_status"
	MessageTypePointsChanged MessageType = "points_changed"
	MessageTypeHeartbeat     MessageType = "heartbeat"
	MessageTypePong          MessageType = "pong"
	MessageTypeError         MessageType = "error"
)

// Message is one frame from the server
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Decode unmarshals the payload into v
func (m Message) Decode(v interface{}) error {
	if len(m.Payload) == 0 {
		return fmt.Errorf("%s message has no payload", m.Type)
	}
	return json.Unmarshal(m.Payload, v)
}

// CartUpdated is the payload of cart_updated
type CartUpdated struct {
	TotalItems int `json:"totalItems"`
}

// OrderStatus is the payload of order_status
type OrderStatus struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

// PointsChanged is the payload of points_changed
type PointsChanged struct {
	Balance int    `json:"balance"`
	Delta   int    `json:"delta"`
	Reason  string `json:"reason,omitempty"`
}

// Config holds WebSocket client configuration
type Config struct {
	URL                  string
	ConnectTimeout       time.Duration
	HeartbeatInterval    time.Duration
	ReconnectBaseDelay   time.Duration
	ReconnectMaxDelay    time.Duration
	MaxReconnectAttempts int // negative for unlimited
}

// DefaultConfig returns the settings used against a local API
func DefaultConfig() Config {
	return Config{
		URL:                  "ws://localhost:5000/ws",
		ConnectTimeout:       15 * time.Second,
		HeartbeatInterval:    30 * time.Second,
		ReconnectBaseDelay:   2 * time.Second,
		ReconnectMaxDelay:    30 * time.Second,
		MaxReconnectAttempts: -1,
	}
}

// ConfigFromSettings reads api.ws_url from the loaded config
func ConfigFromSettings() Config {
	cfg := DefaultConfig()
	if u := config.GetString("api.ws_url"); u != "" {
		cfg.URL = u
	}
	return cfg
}

// TokenSource supplies the access token for each (re)connect
type TokenSource interface {
	AccessToken() string
}

// ConnectionState represents the state of the WebSocket connection
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateError
)

func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateError:
		return "error"
	default:
		return "disconnected"
	}
}

// ConnectionStats holds connection statistics
type ConnectionStats struct {
	MessagesReceived int64
	MessagesSent     int64
	ReconnectCount   int
	LastError        string
	ConnectedAt      time.Time
	DisconnectedAt   time.Time
}

type listener struct {
	id int
	fn func(Message)
}

// Client manages the WebSocket connection
type Client struct {
	config Config
	tokens TokenSource

	mu             sync.RWMutex
	conn           *websocket.Conn
	writeMu        sync.Mutex
	state          atomic.Value // ConnectionState
	reconnectDelay time.Duration

	listenersMu sync.RWMutex
	listeners   map[MessageType][]listener
	nextID      int

	ctx    context.Context
	cancel context.CancelFunc

	statsLock sync.RWMutex
	stats     ConnectionStats
}

// NewClient creates a disconnected client. tokens may be nil for anonymous
// connections.
func NewClient(cfg Config, tokens TokenSource) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		config:         cfg,
		tokens:         tokens,
		listeners:      make(map[MessageType][]listener),
		ctx:            ctx,
		cancel:         cancel,
		reconnectDelay: cfg.ReconnectBaseDelay,
	}
	c.state.Store(StateDisconnected)
	return c
}

// Connect dials the server and starts the read and heartbeat loops
func (c *Client) Connect(ctx context.Context) error {
	c.setState(StateConnecting)

	conn, err := c.dial(ctx)
	if err != nil {
		c.setState(StateError)
		c.recordError(err.Error())
		return err
	}

	c.attach(conn)
	logger.Debug("WebSocket connected", "url", c.config.URL)
	return nil
}

// Disconnect closes the connection and stops reconnecting
func (c *Client) Disconnect() error {
	c.cancel()

	c.mu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	c.setState(StateDisconnected)
	c.recordDisconnected()

	logger.Debug("WebSocket disconnected")
	return nil
}

// Done is closed once Disconnect has been called or reconnecting gave up
func (c *Client) Done() <-chan struct{} {
	return c.ctx.Done()
}

// State returns the connection state
func (c *Client) State() ConnectionState {
	return c.state.Load().(ConnectionState)
}

// IsConnected returns true if the connection is established
func (c *Client) IsConnected() bool {
	return c.State() == StateConnected
}

// On subscribes to a message type. The empty type receives every message.
// It returns the unsubscribe function.
func (c *Client) On(msgType MessageType, fn func(Message)) func() {
	c.listenersMu.Lock()
	c.nextID++
	id := c.nextID
	c.listeners[msgType] = append(c.listeners[msgType], listener{id: id, fn: fn})
	c.listenersMu.Unlock()

	return func() {
		c.listenersMu.Lock()
		defer c.listenersMu.Unlock()

		ls := c.listeners[msgType]
		for i, l := range ls {
			if l.id == id {
				c.listeners[msgType] = append(ls[:i:i], ls[i+1:]...)
				break
			}
		}
	}
}

// Send sends a message to the server
func (c *Client) Send(msgType MessageType, payload interface{}) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return fmt.Errorf("not connected")
	}

	frame := struct {
		Type    MessageType `json:"type"`
		Payload interface{} `json:"payload,omitempty"`
	}{msgType, payload}

	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	err = conn.WriteMessage(websocket.TextMessage, data)
	c.writeMu.Unlock()
	if err != nil {
		return err
	}

	c.recordMessageSent()
	return nil
}

// GetStats returns connection statistics
func (c *Client) GetStats() ConnectionStats {
	c.statsLock.RLock()
	defer c.statsLock.RUnlock()
	return c.stats
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	u, err := url.Parse(c.config.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid websocket url: %w", err)
	}

	if c.tokens != nil {
		if token := c.tokens.AccessToken(); token != "" {
			q := u.Query()
			q.Set("token", token)
			u.RawQuery = q.Encode()
		}
	}

	dialCtx, cancel := context.WithTimeout(ctx, c.config.ConnectTimeout)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, u.String(), nil)
	return conn, err
}

func (c *Client) attach(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.reconnectDelay = c.config.ReconnectBaseDelay
	c.mu.Unlock()

	c.setState(StateConnected)
	c.recordConnected()

	go c.readLoop(conn)
	go c.heartbeatLoop(conn)
}

func (c *Client) readLoop(conn *websocket.Conn) {
	defer c.handleDisconnect(conn)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if c.ctx.Err() == nil {
				c.recordError(err.Error())
				logger.Warn("WebSocket read error", "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Debug("Ignoring malformed websocket frame", "error", err)
			continue
		}
		c.recordMessageReceived()
		c.dispatch(msg)
	}
}

func (c *Client) dispatch(msg Message) {
	c.listenersMu.RLock()
	ls := make([]listener, 0, len(c.listeners[msg.Type])+len(c.listeners[""]))
	ls = append(ls, c.listeners[msg.Type]...)
	if msg.Type != "" {
		ls = append(ls, c.listeners[""]...)
	}
	c.listenersMu.RUnlock()

	for _, l := range ls {
		l.fn(msg)
	}
}

func (c *Client) heartbeatLoop(conn *websocket.Conn) {
	if c.config.HeartbeatInterval <= 0 {
		return
	}
	ticker := time.NewTicker(c.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.mu.RLock()
			current := c.conn
			c.mu.RUnlock()
			if current != conn {
				return
			}
			if err := c.Send(MessageTypeHeartbeat, nil); err != nil {
				logger.Debug("Failed to send heartbeat", "error", err)
			}
		}
	}
}

// handleDisconnect reconnects with exponential backoff unless the client was
// disconnected on purpose.
func (c *Client) handleDisconnect(conn *websocket.Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
	conn.Close()

	if c.ctx.Err() != nil {
		return
	}

	c.setState(StateReconnecting)
	c.recordDisconnected()

	for attempt := 0; ; attempt++ {
		if c.config.MaxReconnectAttempts >= 0 && attempt >= c.config.MaxReconnectAttempts {
			c.setState(StateError)
			logger.Error("Max reconnection attempts reached")
			c.cancel()
			return
		}

		c.mu.Lock()
		delay := c.reconnectDelay
		c.reconnectDelay *= 2
		if c.reconnectDelay > c.config.ReconnectMaxDelay {
			c.reconnectDelay = c.config.ReconnectMaxDelay
		}
		c.mu.Unlock()

		wait := delay + time.Duration(rand.Int63n(int64(delay)/2+1))
		logger.Debug("Reconnecting WebSocket", "attempt", attempt+1, "wait_ms", wait.Milliseconds())

		select {
		case <-c.ctx.Done():
			return
		case <-time.After(wait):
		}

		next, err := c.dial(c.ctx)
		if err != nil {
			c.recordError(err.Error())
			continue
		}

		c.statsLock.Lock()
		c.stats.ReconnectCount++
		c.statsLock.Unlock()

		c.attach(next)
		logger.Debug("WebSocket reconnected")
		return
	}
}

func (c *Client) setState(state ConnectionState) {
	c.state.Store(state)
}

func (c *Client) recordMessageReceived() {
	c.statsLock.Lock()
	c.stats.MessagesReceived++
	c.statsLock.Unlock()
}

func (c *Client) recordMessageSent() {
	c.statsLock.Lock()
	c.stats.MessagesSent++
	c.statsLock.Unlock()
}

func (c *Client) recordError(errMsg string) {
	c.statsLock.Lock()
	c.stats.LastError = errMsg
	c.statsLock.Unlock()
}

func (c *Client) recordConnected() {
	c.statsLock.Lock()
	c.stats.ConnectedAt = time.Now()
	c.statsLock.Unlock()
}

func (c *Client) recordDisconnected() {
	c.statsLock.Lock()
	c.stats.DisconnectedAt = time.Now()
	c.statsLock.Unlock()
}
