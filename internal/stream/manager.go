package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Default configuration values.
const (
	DefaultReconnectInterval = 5 * time.Second
	DefaultKeepAliveInterval = 30 * time.Second
	DefaultPongTimeout       = 10 * time.Second
	DefaultWriteTimeout      = 10 * time.Second
	DefaultHandshakeTimeout  = 10 * time.Second
)

// ErrExhausted is returned by Run when the configured maximum reconnect
// attempt count has been reached. Monitoring is stopped permanently; the
// caller must surface this once.
var ErrExhausted = errors.New("stream: reconnect attempts exhausted")

// Config configures the subscription manager.
type Config struct {
	// Endpoint is the websocket URL.
	Endpoint string
	// Programs lists the program IDs to watch. One logsSubscribe request
	// is sent per program at connect time.
	Programs []string
	// Commitment level for subscriptions. Defaults to "confirmed".
	Commitment string
	// MaxReconnectAttempts bounds consecutive failed connection attempts.
	// 0 retries forever.
	MaxReconnectAttempts int
	// ReconnectInterval is the fixed delay between attempts.
	ReconnectInterval time.Duration
	// KeepAliveInterval is the transport ping cadence, independent of
	// message traffic.
	KeepAliveInterval time.Duration
	// PongTimeout is how long after a ping a pong (or any read) must
	// arrive before the connection is treated as dead.
	PongTimeout time.Duration

	WriteTimeout     time.Duration
	HandshakeTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.Commitment == "" {
		c.Commitment = "confirmed"
	}
	if c.ReconnectInterval <= 0 {
		c.ReconnectInterval = DefaultReconnectInterval
	}
	if c.KeepAliveInterval <= 0 {
		c.KeepAliveInterval = DefaultKeepAliveInterval
	}
	if c.PongTimeout <= 0 {
		c.PongTimeout = DefaultPongTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = DefaultHandshakeTimeout
	}
}

// Manager owns one long-lived subscription connection. Run keeps it alive
// until the context is cancelled or retries are exhausted; inbound payloads
// are forwarded raw, in order, to the message callback. Classification
// happens downstream and must not block the read loop on network calls.
type Manager struct {
	cfg    Config
	logger *log.Logger

	conn   *websocket.Conn
	connMu sync.Mutex

	requestID atomic.Uint64
	attempts  atomic.Int32

	onStateChange func(State)
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. Defaults to the standard logger.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithStateChangeHook installs a callback invoked on every session state
// transition. Used for metrics and tests.
func WithStateChangeHook(fn func(State)) Option {
	return func(m *Manager) { m.onStateChange = fn }
}

// New creates a Manager. The endpoint and at least one watched program are
// required.
func New(cfg Config, opts ...Option) (*Manager, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("stream: endpoint required")
	}
	if len(cfg.Programs) == 0 {
		return nil, errors.New("stream: at least one watched program required")
	}
	cfg.applyDefaults()

	m := &Manager{
		cfg:    cfg,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Attempts returns the current consecutive failed-attempt count. It resets
// to zero on every successful subscription.
func (m *Manager) Attempts() int {
	return int(m.attempts.Load())
}

// Run connects, subscribes, and forwards inbound payloads to onMessage
// until ctx is cancelled (returns ctx.Err()) or the reconnect budget is
// exhausted (returns ErrExhausted). onMessage is called synchronously from
// the read loop with the raw payload.
func (m *Manager) Run(ctx context.Context, onMessage func([]byte)) error {
	sess := NewSession(m.cfg.MaxReconnectAttempts)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		sess = m.transition(sess.Dialing())
		m.attempts.Store(int32(sess.Attempts))

		conn, err := m.dial(ctx)
		if err == nil {
			err = m.subscribeAll(conn)
			if err != nil {
				conn.Close()
			}
		}
		if err != nil {
			m.logger.Printf("[stream] connect attempt %d failed: %v", sess.Attempts, err)
			sess = m.transition(sess.Failed())
			if sess.Exhausted() {
				return ErrExhausted
			}
			if !m.sleep(ctx) {
				return ctx.Err()
			}
			continue
		}

		m.setConn(conn)
		sess = m.transition(sess.Established())
		m.attempts.Store(0)
		m.logger.Printf("[stream] subscribed to %d program(s)", len(m.cfg.Programs))

		err = m.receive(ctx, conn, onMessage)
		m.setConn(nil)
		conn.Close()

		if ctx.Err() != nil {
			m.transition(sess.Stopped())
			return ctx.Err()
		}

		m.logger.Printf("[stream] connection lost: %v", err)
		sess = m.transition(sess.Failed())
		if sess.Exhausted() {
			return ErrExhausted
		}
		if !m.sleep(ctx) {
			return ctx.Err()
		}
	}
}

// Send writes a raw payload on the current connection. Used by the caller
// to answer application-level pings. Fails when not connected.
func (m *Manager) Send(payload []byte) error {
	m.connMu.Lock()
	defer m.connMu.Unlock()

	if m.conn == nil {
		return errors.New("stream: not connected")
	}
	m.conn.SetWriteDeadline(time.Now().Add(m.cfg.WriteTimeout))
	return m.conn.WriteMessage(websocket.TextMessage, payload)
}

func (m *Manager) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: m.cfg.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, m.cfg.Endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}
	return conn, nil
}

// subscribeRequest is the logsSubscribe JSON-RPC request.
type subscribeRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

func (m *Manager) subscribeAll(conn *websocket.Conn) error {
	for _, program := range m.cfg.Programs {
		req := subscribeRequest{
			JSONRPC: "2.0",
			ID:      m.requestID.Add(1),
			Method:  "logsSubscribe",
			Params: []interface{}{
				map[string]interface{}{"mentions": []string{program}},
				map[string]string{"commitment": m.cfg.Commitment},
			},
		}
		conn.SetWriteDeadline(time.Now().Add(m.cfg.WriteTimeout))
		if err := conn.WriteJSON(req); err != nil {
			return fmt.Errorf("write subscribe for %s: %w", program, err)
		}
	}
	return nil
}

// receive runs the read loop until a transport error or cancellation. A
// ping is written every KeepAliveInterval; the read deadline requires a
// pong or message within KeepAliveInterval+PongTimeout.
func (m *Manager) receive(ctx context.Context, conn *websocket.Conn, onMessage func([]byte)) error {
	readDeadline := m.cfg.KeepAliveInterval + m.cfg.PongTimeout

	conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readDeadline))
	})

	pingDone := make(chan struct{})
	defer close(pingDone)
	go m.pingLoop(ctx, conn, pingDone)

	// Unblock the read on cancellation.
	cancelDone := make(chan struct{})
	defer close(cancelDone)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-cancelDone:
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("connection closed: %w", err)
			}
			return err
		}
		conn.SetReadDeadline(time.Now().Add(readDeadline))
		onMessage(payload)
	}
}

func (m *Manager) pingLoop(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(m.cfg.KeepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			deadline := time.Now().Add(m.cfg.WriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				// Dead connection; the read loop notices via deadline.
				return
			}
		}
	}
}

func (m *Manager) setConn(conn *websocket.Conn) {
	m.connMu.Lock()
	m.conn = conn
	m.connMu.Unlock()
}

func (m *Manager) transition(next Session) Session {
	if m.onStateChange != nil {
		m.onStateChange(next.State)
	}
	return next
}

// sleep waits out the reconnect interval. Returns false when ctx was
// cancelled during the wait.
func (m *Manager) sleep(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(m.cfg.ReconnectInterval):
		return true
	}
}
