// Package realtime pushes server events to subscribers over a single
// Socket.IO connection. The connection is opened lazily on the first
// subscription and authenticated with the session token.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Event names a server push. The catalog is closed.
type Event string

const (
	EventNewOrder        Event = "new-order"
	EventOrderUpdated    Event = "order-updated"
	EventSettingsUpdated Event = "settings-updated"
)

// Events returns the full event catalog.
func Events() []Event {
	return []Event{EventNewOrder, EventOrderUpdated, EventSettingsUpdated}
}

// Valid reports whether e is in the catalog.
func (e Event) Valid() bool {
	return slices.Contains(Events(), e)
}

var (
	ErrNoSession    = errors.New("realtime: no session token")
	ErrUnknownEvent = errors.New("realtime: unknown event")
	ErrClosed       = errors.New("realtime: channel closed")

	errConnectRefused = errors.New("realtime: connection refused by server")
)

// State is the connection state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Handler receives an event payload exactly as the server sent it.
type Handler func(payload json.RawMessage)

// Unsubscribe removes one handler. Calling it more than once, or after
// Close, does nothing.
type Unsubscribe func()

// TokenSource supplies the current session token; empty means no session.
type TokenSource interface {
	Token() string
}

// Config holds connection settings.
type Config struct {
	BaseURL           string
	ReconnectAttempts int
	ReconnectDelay    time.Duration
	HandshakeTimeout  time.Duration
}

// DefaultConfig returns the default reconnect policy for baseURL.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:           baseURL,
		ReconnectAttempts: 5,
		ReconnectDelay:    time.Second,
		HandshakeTimeout:  10 * time.Second,
	}
}

type subscription struct {
	id      string
	handler Handler
}

// attempt is one connect cycle, shared by every subscriber that arrives
// while it runs. err is set before done is closed.
type attempt struct {
	done chan struct{}
	err  error
}

// Channel is the realtime event channel. There is at most one physical
// connection per Channel.
type Channel struct {
	cfg        Config
	tokens     TokenSource
	httpClient *http.Client
	dialer     *websocket.Dialer
	logger     *slog.Logger

	mu       sync.Mutex
	state    State
	conn     transport
	attempt  *attempt
	handlers map[Event][]subscription
	closed   bool
	done     chan struct{}
}

// New creates a disconnected channel. httpClient serves the long-polling
// fallback.
func New(cfg Config, tokens TokenSource, httpClient *http.Client, logger *slog.Logger) *Channel {
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 10 * time.Second
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	connectionState.Set(float64(StateDisconnected))
	return &Channel{
		cfg:        cfg,
		tokens:     tokens,
		httpClient: httpClient,
		dialer:     &websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout},
		logger:     logger,
		handlers:   make(map[Event][]subscription),
		done:       make(chan struct{}),
	}
}

// Subscribe registers handler for event, connecting first if needed.
// Without a session token it returns ErrNoSession and touches no network.
func (c *Channel) Subscribe(ctx context.Context, event Event, handler Handler) (Unsubscribe, error) {
	if !event.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, event)
	}
	if handler == nil {
		return nil, errors.New("realtime: nil handler")
	}
	if c.tokens.Token() == "" {
		return nil, ErrNoSession
	}

	if err := c.ensureConnected(ctx); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	c.handlers[event] = append(c.handlers[event], subscription{id: id, handler: handler})

	return func() { c.remove(event, id) }, nil
}

func (c *Channel) remove(event Event, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[event] = slices.DeleteFunc(c.handlers[event], func(s subscription) bool {
		return s.id == id
	})
}

// State returns the current connection state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close disconnects and drops every handler. It is safe to call twice.
func (c *Channel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	t := c.conn
	c.conn = nil
	c.handlers = make(map[Event][]subscription)
	c.setState(StateDisconnected)
	c.mu.Unlock()

	if t != nil {
		return t.Close()
	}
	return nil
}

// setState must be called with mu held.
func (c *Channel) setState(s State) {
	c.state = s
	connectionState.Set(float64(s))
}

// ensureConnected returns once the channel is connected, or the current
// attempt has failed. ctx bounds only the wait.
func (c *Channel) ensureConnected(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state == StateConnected {
		c.mu.Unlock()
		return nil
	}
	a := c.startAttemptLocked(false)
	c.mu.Unlock()

	select {
	case <-a.done:
		return a.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// startAttemptLocked joins the running attempt or starts a new one.
func (c *Channel) startAttemptLocked(reconnect bool) *attempt {
	if c.attempt != nil {
		return c.attempt
	}
	a := &attempt{done: make(chan struct{})}
	c.attempt = a
	c.setState(StateConnecting)
	go c.run(a, reconnect)
	return a
}

func (c *Channel) run(a *attempt, reconnect bool) {
	t, leftover, err := c.connectWithRetry(reconnect)

	c.mu.Lock()
	c.attempt = nil
	if err == nil && c.closed {
		_ = t.Close()
		err = ErrClosed
	}
	if err != nil {
		if !c.closed {
			c.setState(StateDisconnected)
		}
		c.mu.Unlock()
		switch {
		case errors.Is(err, ErrClosed):
		case reconnect:
			c.logger.Error("realtime reconnect failed", slog.String("error", err.Error()))
		default:
			c.logger.Warn("realtime connect failed", slog.String("error", err.Error()))
		}
		a.err = err
		close(a.done)
		return
	}
	c.conn = t
	c.setState(StateConnected)
	c.mu.Unlock()

	c.logger.Info("realtime connected", slog.String("transport", t.Name()))
	a.err = nil
	close(a.done)
	c.readLoop(t, leftover)
}

// connectWithRetry tries once, then up to ReconnectAttempts more times with a
// fixed delay. A reconnect waits before its first try. A refused connect is
// not retried.
func (c *Channel) connectWithRetry(reconnect bool) (transport, []string, error) {
	var lastErr error
	tries := c.cfg.ReconnectAttempts
	if !reconnect {
		tries++
	}
	if tries < 1 {
		tries = 1
	}

	for i := 0; i < tries; i++ {
		if reconnect || i > 0 {
			select {
			case <-time.After(c.cfg.ReconnectDelay):
			case <-c.done:
				return nil, nil, ErrClosed
			}
		}

		token := c.tokens.Token()
		if token == "" {
			return nil, nil, ErrNoSession
		}

		t, leftover, err := c.connect(token)
		if err == nil {
			return t, leftover, nil
		}
		lastErr = err
		c.logger.Debug("realtime connect attempt failed",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()),
		)
		if errors.Is(err, errConnectRefused) {
			return nil, nil, err
		}
	}
	return nil, nil, lastErr
}

// connect opens a transport, completes the Engine.IO handshake and joins the
// default namespace. Packets that arrived after the namespace ack are
// returned for the read loop.
func (c *Channel) connect(token string) (transport, []string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.HandshakeTimeout)
	defer cancel()

	t, open, err := c.open(ctx)
	if err != nil {
		return nil, nil, err
	}
	// Unblocks a stalled handshake read.
	stop := context.AfterFunc(ctx, func() { _ = t.Close() })
	defer stop()

	t.SetReadTimeout(open.readTimeout())

	pkt, err := connectPacket(token)
	if err != nil {
		_ = t.Close()
		return nil, nil, err
	}
	if err := t.Write(ctx, pkt); err != nil {
		_ = t.Close()
		return nil, nil, fmt.Errorf("send connect: %w", err)
	}

	for {
		packets, err := t.Read()
		if err != nil {
			_ = t.Close()
			return nil, nil, fmt.Errorf("await connect: %w", err)
		}
		for i, p := range packets {
			switch {
			case p == string(eioPing):
				if err := t.Write(ctx, string(eioPong)); err != nil {
					_ = t.Close()
					return nil, nil, fmt.Errorf("send pong: %w", err)
				}
			case len(p) >= 2 && p[0] == eioMessage && p[1] == sioConnect:
				connectAttempts.WithLabelValues(t.Name(), "success").Inc()
				return t, packets[i+1:], nil
			case len(p) >= 2 && p[0] == eioMessage && p[1] == sioConnectError:
				_ = t.Close()
				connectAttempts.WithLabelValues(t.Name(), "refused").Inc()
				return nil, nil, fmt.Errorf("%w: %s", errConnectRefused, connectErrorMessage(p[2:]))
			}
		}
	}
}

// open prefers websocket and falls back to long-polling for this attempt.
func (c *Channel) open(ctx context.Context) (transport, openPacket, error) {
	ws, wsErr := dialWebsocket(ctx, c.dialer, c.cfg.BaseURL)
	if wsErr == nil {
		ws.SetReadTimeout(c.cfg.HandshakeTimeout)
		packets, err := ws.Read()
		if err == nil {
			var open openPacket
			if open, err = parseOpen(packets[0]); err == nil {
				return ws, open, nil
			}
		}
		_ = ws.Close()
		wsErr = err
	}
	connectAttempts.WithLabelValues(transportWebsocket, "failure").Inc()
	c.logger.Debug("websocket unavailable, falling back to polling", slog.String("error", wsErr.Error()))

	p, raw, err := openPolling(ctx, c.httpClient, c.cfg.BaseURL)
	if err != nil {
		connectAttempts.WithLabelValues(transportPolling, "failure").Inc()
		return nil, openPacket{}, fmt.Errorf("websocket: %v; polling: %w", wsErr, err)
	}
	open, err := parseOpen(raw)
	if err != nil {
		_ = p.Close()
		return nil, openPacket{}, err
	}
	return p, open, nil
}

// readLoop delivers events until the transport fails or the server ends
// the session. Handlers run on this goroutine in arrival order.
func (c *Channel) readLoop(t transport, leftover []string) {
	for _, p := range leftover {
		if !c.handle(t, p) {
			c.dropped(t, nil)
			return
		}
	}
	for {
		packets, err := t.Read()
		if err != nil {
			c.dropped(t, err)
			return
		}
		for _, p := range packets {
			if !c.handle(t, p) {
				c.dropped(t, nil)
				return
			}
		}
	}
}

// handle processes one packet and reports whether the connection stays up.
func (c *Channel) handle(t transport, p string) bool {
	if p == "" {
		return true
	}
	switch p[0] {
	case eioPing:
		if err := t.Write(context.Background(), string(eioPong)); err != nil {
			c.logger.Debug("send pong failed", slog.String("error", err.Error()))
		}
	case eioClose:
		return false
	case eioMessage:
		if len(p) < 2 {
			return true
		}
		switch p[1] {
		case sioEvent:
			name, payload, err := parseEvent(p[2:])
			if err != nil {
				c.logger.Debug("dropping realtime packet", slog.String("error", err.Error()))
				return true
			}
			c.dispatch(Event(name), payload)
		case sioDisconnect:
			return false
		case sioConnectError:
			c.logger.Error("realtime connection error", slog.String("message", connectErrorMessage(p[2:])))
			return false
		}
	}
	return true
}

func (c *Channel) dispatch(event Event, payload json.RawMessage) {
	if !event.Valid() {
		c.logger.Debug("ignoring unknown realtime event", slog.String("event", string(event)))
		return
	}
	eventsReceived.WithLabelValues(string(event)).Inc()

	c.mu.Lock()
	subs := slices.Clone(c.handlers[event])
	c.mu.Unlock()

	for _, s := range subs {
		c.invoke(event, s.handler, append(json.RawMessage(nil), payload...))
	}
}

func (c *Channel) invoke(event Event, h Handler, payload json.RawMessage) {
	defer func() {
		if rec := recover(); rec != nil {
			c.logger.Error("realtime handler panicked",
				slog.String("event", string(event)),
				slog.Any("panic", rec),
			)
		}
	}()
	h(payload)
}

// dropped handles the end of a connection. A transport error triggers a
// reconnect; a server-initiated disconnect (err == nil) does not.
func (c *Channel) dropped(t transport, err error) {
	_ = t.Close()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != t || c.closed {
		return
	}
	c.conn = nil
	c.setState(StateDisconnected)

	if err == nil {
		c.logger.Warn("realtime disconnected by server")
		return
	}
	c.logger.Warn("realtime connection lost", slog.String("error", err.Error()))
	c.startAttemptLocked(true)
}
