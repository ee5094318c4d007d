package transport

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	"fastpai/models"
	"fastpai/pkg/logger"
)

// State of the realtime channel. A session owns exactly one connection;
// StateClosed is terminal, there is no reconnection.
type State string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateOpen       State = "open"
	StateErrored    State = "errored"
	StateClosed     State = "closed"
)

var ErrNotOpen = errors.New("connection is not open")

// Handler receives connection lifecycle events and validated inbound frames.
// It is registered once at construction and invoked from the adapter's read
// goroutine (and from Connect for dial failures), one event at a time.
type Handler struct {
	OnOpen    func()
	OnMessage func(models.InboundFrame)
	OnError   func(error)
	OnClose   func()
}

// Conn adapts one gorilla/websocket client connection. Dial failures and
// dropped connections are surfaced through the handler as diagnostics, never
// as panics; malformed inbound frames are dropped and logged.
type Conn struct {
	mu        sync.Mutex
	ws        *websocket.Conn
	state     State
	h         Handler
	dialer    *websocket.Dialer
	closeOnce sync.Once
}

func New(h Handler) *Conn {
	return &Conn{state: StateIdle, h: h, dialer: websocket.DefaultDialer}
}

func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect dials the endpoint and starts the read loop. An unreachable
// endpoint does not return an error: the connection moves through
// errored into closed and the handler is told, matching the contract that
// connection problems degrade the session instead of failing the caller.
func (c *Conn) Connect(endpoint string) {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		logger.S().Warnw("connect ignored: connection already used", "state", c.state)
		return
	}
	c.state = StateConnecting
	c.mu.Unlock()

	ws, _, err := c.dialer.Dial(endpoint, nil)
	if err != nil {
		logger.S().Errorw("websocket dial failed", "endpoint", endpoint, "err", err)
		c.mu.Lock()
		c.state = StateErrored
		c.mu.Unlock()
		c.emitError(err)
		c.shutdown()
		return
	}

	c.mu.Lock()
	if c.state == StateClosed {
		// Close raced the dial; honor it.
		c.mu.Unlock()
		_ = ws.Close()
		return
	}
	c.ws = ws
	c.state = StateOpen
	c.mu.Unlock()

	if c.h.OnOpen != nil {
		c.h.OnOpen()
	}
	go c.readLoop()
}

// SendText writes the user's text as a bare frame.
func (c *Conn) SendText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateOpen {
		return ErrNotOpen
	}
	return c.ws.WriteMessage(websocket.TextMessage, []byte(text))
}

// SendJSON writes a structured outbound frame.
func (c *Conn) SendJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateOpen {
		return ErrNotOpen
	}
	return c.ws.WriteJSON(v)
}

// Close releases the underlying connection. Safe to call from any exit path
// and idempotent; the handler sees OnClose exactly once.
func (c *Conn) Close() {
	c.shutdown()
}

func (c *Conn) readLoop() {
	defer c.shutdown()
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			c.mu.Lock()
			wasClosed := c.state == StateClosed
			if !wasClosed {
				c.state = StateErrored
			}
			c.mu.Unlock()
			if !wasClosed {
				logger.S().Warnw("websocket read failed", "err", err)
				c.emitError(err)
			}
			return
		}
		frame, err := models.ParseInbound(data)
		if err != nil {
			logger.S().Warnw("dropping malformed inbound frame", "err", err)
			continue
		}
		if c.h.OnMessage != nil {
			c.h.OnMessage(frame)
		}
	}
}

func (c *Conn) shutdown() {
	c.mu.Lock()
	ws := c.ws
	c.state = StateClosed
	c.mu.Unlock()
	if ws != nil {
		_ = ws.Close()
	}
	c.closeOnce.Do(func() {
		if c.h.OnClose != nil {
			c.h.OnClose()
		}
	})
}

func (c *Conn) emitError(err error) {
	if c.h.OnError != nil {
		c.h.OnError(err)
	}
}
