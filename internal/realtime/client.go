// Package realtime maintains the push-channel connection to the backend
// and fans incoming server events out to local subscribers.
//
// The client holds at most one live connection. Connection failures are
// never fatal: they surface as local events (connected, disconnected,
// connect_error, reconnect_failed) that subscribers may react to.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/quizhub/quizctl/internal/model"
	"github.com/quizhub/quizctl/internal/storage"
)

// State is the connection lifecycle state
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	}
	return "disconnected"
}

// Config holds realtime client settings
type Config struct {
	// URL is the backend base URL; http(s) schemes are rewritten to ws(s)
	URL string

	// MaxReconnectAttempts bounds automatic retries after a dropped
	// connection before the client gives up
	MaxReconnectAttempts int

	// ReconnectDelay is the fixed pause between automatic retries
	ReconnectDelay time.Duration

	// HandshakeTimeout caps the websocket dial
	HandshakeTimeout time.Duration
}

// DefaultConfig returns the standard reconnection policy
func DefaultConfig(baseURL string) Config {
	return Config{
		URL:                  baseURL,
		MaxReconnectAttempts: 5,
		ReconnectDelay:       time.Second,
		HandshakeTimeout:     20 * time.Second,
	}
}

// Client is the realtime channel client
type Client struct {
	cfg      Config
	store    storage.Store
	logger   *slog.Logger
	registry *registry

	mu                sync.Mutex
	state             State
	conn              *websocket.Conn
	writeMu           sync.Mutex
	reconnectAttempts int
	reconnectTimer    *time.Timer
	stopped           bool // set by Disconnect, cleared by Connect
	generation        int  // invalidates read pumps of torn-down connections
}

// New creates a realtime client; no connection is opened until Connect
func New(cfg Config, store storage.Store, logger *slog.Logger) *Client {
	if cfg.MaxReconnectAttempts <= 0 {
		cfg.MaxReconnectAttempts = 5
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = time.Second
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 20 * time.Second
	}
	l := logger.With(slog.String("component", "realtime"))
	return &Client{
		cfg:      cfg,
		store:    store,
		logger:   l,
		registry: newRegistry(l),
	}
}

// State returns the current connection state
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// On subscribes a handler to an event name. Handlers for the same event
// run in registration order.
func (c *Client) On(event model.EventType, fn Handler) HandlerID {
	return c.registry.on(event, fn)
}

// Off unsubscribes a handler; unknown ids are a no-op
func (c *Client) Off(event model.EventType, id HandlerID) {
	c.registry.off(event, id)
}

// Connect opens the push channel using the stored access token as
// connection-time credentials.
//
// It returns false when no token is available, true once a connection
// attempt has been initiated (or one is already live). Success and
// failure are reported asynchronously through the connected and
// connect_error local events. Calling Connect while connected is a no-op.
func (c *Client) Connect() bool {
	c.mu.Lock()

	if c.state == Connected || c.state == Connecting {
		c.mu.Unlock()
		c.logger.Debug("connect ignored, already active", slog.String("state", c.state.String()))
		return true
	}

	tok, err := c.store.AccessToken(context.Background())
	if err != nil || tok == "" {
		c.mu.Unlock()
		c.logger.Warn("no access token available for realtime connection")
		return false
	}

	c.state = Connecting
	c.stopped = false
	c.reconnectAttempts = 0
	c.mu.Unlock()

	go c.dial(tok)
	return true
}

// Disconnect tears down the connection and stops any pending retry.
// Safe to call when already disconnected.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.stopped = true
	c.generation++
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
	conn := c.conn
	c.conn = nil
	c.state = Disconnected
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
		c.logger.Info("realtime channel disconnected")
	}
}

// Emit sends a client event to the server. While not connected the
// message is dropped with a warning, not queued.
func (c *Client) Emit(event model.EventType, payload any) error {
	c.mu.Lock()
	conn := c.conn
	connected := c.state == Connected
	c.mu.Unlock()

	if !connected || conn == nil {
		c.logger.Warn("dropping emit, realtime channel not connected",
			slog.String("event", string(event)))
		return model.ErrNotConnected
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteJSON(model.Event{Type: event, Data: data})
}

// JoinQuizRoom subscribes this connection to a quiz's room on the server
func (c *Client) JoinQuizRoom(quizID model.QuizID) error {
	return c.Emit(model.EventJoinQuizRoom, model.RoomPayload{QuizID: quizID})
}

// LeaveQuizRoom leaves a quiz's room
func (c *Client) LeaveQuizRoom(quizID model.QuizID) error {
	return c.Emit(model.EventLeaveQuizRoom, model.RoomPayload{QuizID: quizID})
}

// NotifyAdmin sends a notification to the administrator room
func (c *Client) NotifyAdmin(message, kind string) error {
	return c.Emit(model.EventAdminNotification, model.NotificationPayload{
		Message:   message,
		Kind:      kind,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// dial performs one connection attempt
func (c *Client) dial(tok string) {
	target, err := wsURL(c.cfg.URL, tok)
	if err != nil {
		c.failAttempt(fmt.Errorf("invalid realtime URL: %w", err))
		return
	}

	dialer := websocket.Dialer{HandshakeTimeout: c.cfg.HandshakeTimeout}
	conn, resp, err := dialer.Dial(target, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		c.failAttempt(err)
		return
	}

	c.mu.Lock()
	if c.stopped {
		// Disconnect raced the dial; drop the fresh connection
		c.mu.Unlock()
		_ = conn.Close()
		return
	}
	c.conn = conn
	c.state = Connected
	c.reconnectAttempts = 0
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	c.logger.Info("realtime channel connected")
	c.registry.publish(model.EventConnected, nil)

	go c.readPump(conn, gen)
}

// failAttempt records a failed dial and schedules a retry if the budget
// allows
func (c *Client) failAttempt(err error) {
	c.logger.Warn("realtime connection failed", slog.String("error", err.Error()))

	c.mu.Lock()
	c.state = Disconnected
	c.mu.Unlock()

	c.publishError(model.EventConnectError, err)
	c.scheduleReconnect()
}

// readPump consumes server events until the connection dies
func (c *Client) readPump(conn *websocket.Conn, gen int) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			c.handleDrop(conn, gen, err)
			return
		}

		var event model.Event
		if err := json.Unmarshal(raw, &event); err != nil {
			c.logger.Warn("undecodable realtime message", slog.String("error", err.Error()))
			continue
		}
		if event.Type == "" {
			continue
		}

		c.registry.publish(event.Type, event.Data)
	}
}

// handleDrop reacts to a dead connection: silently for a manual
// disconnect, with a retry for a server-initiated one
func (c *Client) handleDrop(conn *websocket.Conn, gen int, err error) {
	_ = conn.Close()

	c.mu.Lock()
	if c.stopped || gen != c.generation {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.state = Disconnected
	c.mu.Unlock()

	c.logger.Warn("realtime channel dropped", slog.String("error", err.Error()))
	c.registry.publish(model.EventDisconnected, nil)
	c.scheduleReconnect()
}

// scheduleReconnect arms the fixed-delay retry, or gives up once the
// attempt budget is exhausted
func (c *Client) scheduleReconnect() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}

	if c.reconnectAttempts >= c.cfg.MaxReconnectAttempts {
		c.mu.Unlock()
		c.logger.Warn("realtime reconnect budget exhausted",
			slog.Int("attempts", c.cfg.MaxReconnectAttempts))
		c.registry.publish(model.EventReconnectFailed, nil)
		return
	}

	c.reconnectAttempts++
	attempt := c.reconnectAttempts
	c.reconnectTimer = time.AfterFunc(c.cfg.ReconnectDelay, func() {
		c.retry(attempt)
	})
	c.mu.Unlock()
}

// retry performs one scheduled reconnection attempt
func (c *Client) retry(attempt int) {
	c.mu.Lock()
	if c.stopped || c.state != Disconnected {
		c.mu.Unlock()
		return
	}

	tok, err := c.store.AccessToken(context.Background())
	if err != nil || tok == "" {
		// Session ended while we were waiting; nothing to reconnect with
		c.mu.Unlock()
		c.logger.Warn("realtime reconnect abandoned, no access token")
		return
	}

	c.state = Connecting
	c.mu.Unlock()

	c.logger.Info("realtime reconnect attempt", slog.Int("attempt", attempt))
	c.dial(tok)
}

func (c *Client) publishError(event model.EventType, err error) {
	payload, _ := json.Marshal(map[string]string{"message": err.Error()})
	c.registry.publish(event, payload)
}

// wsURL converts the base URL to a websocket endpoint carrying the token
func wsURL(base, tok string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	if !strings.HasSuffix(u.Path, "/ws") {
		u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	}

	q := u.Query()
	q.Set("token", tok)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
