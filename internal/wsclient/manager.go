// Package wsclient keeps one authenticated WebSocket connection to the game
// server alive: heartbeat, bounded reconnect with exponential backoff and
// fire-and-forget sends.
package wsclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var (
	ErrNoCredential   = errors.New("wsclient: no credential available")
	ErrNotConnected   = errors.New("wsclient: not connected")
	ErrSendBufferFull = errors.New("wsclient: send buffer full")
	ErrClosed         = errors.New("wsclient: connection closed by client")
)

type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	Reconnecting
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Reconnecting:
		return "reconnecting"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Status is a point-in-time view of the connection.
type Status struct {
	State    State
	Attempts int
	Err      string
}

// CredentialSource hands out the current session token. An empty token means
// there is nobody to connect as.
type CredentialSource interface {
	Token(ctx context.Context) (string, error)
}

type CredentialFunc func(ctx context.Context) (string, error)

func (f CredentialFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

type Config struct {
	URL                  string
	MaxReconnectAttempts int
	ReconnectDelay       time.Duration
	HeartbeatInterval    time.Duration
	SendBuffer           int
}

func (c Config) withDefaults() Config {
	if c.MaxReconnectAttempts < 0 {
		c.MaxReconnectAttempts = 0
	}
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = 3 * time.Second
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = 64
	}
	return c
}

// link is one live connection with its writer goroutine.
type link struct {
	conn Conn
	send chan []byte

	done      chan struct{}
	closeOnce sync.Once
}

func (l *link) stop() {
	l.closeOnce.Do(func() { close(l.done) })
}

// attempt is an in-flight dial that concurrent Connect calls join.
type attempt struct {
	done chan struct{}
	err  error
}

type Manager struct {
	cfg    Config
	dialer Dialer
	creds  CredentialSource
	log    *slog.Logger

	mu       sync.Mutex
	state    State
	attempts int
	lastErr  string

	// bumped by Disconnect; timers and dials from an older generation are ignored
	gen     uint64
	link    *link
	pending *attempt
	timer   *time.Timer

	handler  func(Envelope)
	listener func(Status)
}

func NewManager(cfg Config, dialer Dialer, creds CredentialSource, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		cfg:    cfg.withDefaults(),
		dialer: dialer,
		creds:  creds,
		log:    log.With("component", "wsclient"),
	}
}

// SetHandler sets the consumer of inbound messages. It is called from the
// reader goroutine, one message at a time, in arrival order.
func (m *Manager) SetHandler(h func(Envelope)) {
	m.mu.Lock()
	m.handler = h
	m.mu.Unlock()
}

// SetStatusListener is called on every status change with the manager lock
// held. It must not call back into the Manager.
func (m *Manager) SetStatusListener(fn func(Status)) {
	m.mu.Lock()
	m.listener = fn
	m.mu.Unlock()
}

func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusLocked()
}

// Connect opens the connection. While a dial is in flight further calls wait
// for it instead of dialing again; when already connected it returns nil.
func (m *Manager) Connect(ctx context.Context) error {
	return m.connect(ctx, 0, false)
}

func (m *Manager) connect(ctx context.Context, gen uint64, fromTimer bool) error {
	m.mu.Lock()
	if fromTimer && (gen != m.gen || m.state != Reconnecting) {
		m.mu.Unlock()
		return nil
	}
	if m.state == Connected {
		m.mu.Unlock()
		return nil
	}
	if a := m.pending; a != nil {
		m.mu.Unlock()
		select {
		case <-a.done:
			return a.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.stopTimerLocked()
	a := &attempt{done: make(chan struct{})}
	m.pending = a
	gen = m.gen
	if !fromTimer {
		m.attempts = 0
		m.setStateLocked(Connecting)
	}
	m.mu.Unlock()

	err := m.dial(ctx, gen)

	m.mu.Lock()
	if m.pending == a {
		m.pending = nil
	}
	a.err = err
	close(a.done)
	m.mu.Unlock()
	return err
}

func (m *Manager) dial(ctx context.Context, gen uint64) error {
	token, err := m.creds.Token(ctx)
	if err != nil || token == "" {
		m.mu.Lock()
		defer m.mu.Unlock()
		if gen == m.gen {
			m.lastErr = "no credential available"
			m.setStateLocked(Disconnected)
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrNoCredential, err)
		}
		return ErrNoCredential
	}

	target, err := withToken(m.cfg.URL, token)
	if err != nil {
		m.mu.Lock()
		defer m.mu.Unlock()
		if gen == m.gen {
			m.lastErr = err.Error()
			m.setStateLocked(Disconnected)
		}
		return err
	}

	conn, err := m.dialer.Dial(ctx, target)

	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.gen {
		// Disconnect won the race
		if conn != nil {
			_ = conn.Close(websocket.CloseNormalClosure, "client disconnect")
		}
		return ErrClosed
	}
	if err != nil {
		m.log.Warn("dial failed", "url", m.cfg.URL, "attempt", m.attempts, "err", err)
		m.lastErr = "failed to connect to server: " + err.Error()
		m.closedLocked(websocket.CloseAbnormalClosure)
		return fmt.Errorf("wsclient: connect: %w", err)
	}

	m.openLocked(conn)
	return nil
}

func (m *Manager) openLocked(conn Conn) {
	l := &link{
		conn: conn,
		send: make(chan []byte, m.cfg.SendBuffer),
		done: make(chan struct{}),
	}
	m.link = l
	m.attempts = 0
	m.lastErr = ""
	m.setStateLocked(Connected)
	m.log.Info("connected", "url", m.cfg.URL)

	go m.writeLoop(l)
	go m.readLoop(l)
}

// closedLocked decides what happens after the connection is gone.
func (m *Manager) closedLocked(code int) {
	if isNormalClose(code) {
		m.setStateLocked(Disconnected)
		return
	}
	if m.attempts >= m.cfg.MaxReconnectAttempts {
		m.log.Error("giving up reconnecting", "attempts", m.attempts, "err", m.lastErr)
		m.setStateLocked(Disconnected)
		return
	}

	m.attempts++
	delay := m.cfg.ReconnectDelay << (m.attempts - 1)
	m.setStateLocked(Reconnecting)
	m.log.Info("reconnecting", "attempt", m.attempts, "max", m.cfg.MaxReconnectAttempts, "delay", delay)

	gen := m.gen
	m.timer = time.AfterFunc(delay, func() {
		if err := m.connect(context.Background(), gen, true); err != nil && !errors.Is(err, ErrClosed) {
			m.log.Debug("reconnect attempt failed", "err", err)
		}
	})
}

// Disconnect closes the connection with a normal closure and cancels any
// pending reconnect. Nothing is retried afterwards until the next Connect.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gen++
	m.stopTimerLocked()
	m.pending = nil
	m.attempts = 0
	if l := m.link; l != nil {
		m.link = nil
		l.stop()
		_ = l.conn.Close(websocket.CloseNormalClosure, "client disconnect")
	}
	if m.state != Disconnected {
		m.setStateLocked(Disconnected)
	}
}

// Send queues env for the writer. When there is no open connection the
// message is dropped and ErrNotConnected returned; nothing is buffered for
// later.
func (m *Manager) Send(env Envelope) error {
	if env.Timestamp == "" {
		env.Timestamp = Timestamp(time.Now())
	}
	b, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("wsclient: encode %s: %w", env.Type, err)
	}

	m.mu.Lock()
	l := m.link
	ok := l != nil && m.state == Connected
	m.mu.Unlock()

	if !ok {
		m.log.Error("not connected, dropping message", "type", env.Type)
		return ErrNotConnected
	}
	return m.enqueue(l, env.Type, b)
}

func (m *Manager) enqueue(l *link, typ string, b []byte) error {
	select {
	case <-l.done:
		return ErrNotConnected
	default:
	}
	select {
	case l.send <- b:
		return nil
	default:
		m.log.Warn("send buffer full, dropping message", "type", typ)
		return ErrSendBufferFull
	}
}

func (m *Manager) readLoop(l *link) {
	for {
		data, err := l.conn.ReadMessage()
		if err != nil {
			m.mu.Lock()
			if m.link == l {
				code := CloseCode(err)
				m.link = nil
				l.stop()
				_ = l.conn.Close(websocket.CloseNormalClosure, "")
				if !isNormalClose(code) {
					m.lastErr = fmt.Sprintf("connection lost (code %d)", code)
				}
				m.log.Info("connection closed", "code", code, "err", err)
				m.closedLocked(code)
			}
			m.mu.Unlock()
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			m.log.Error("failed to parse message", "err", err)
			continue
		}

		if env.Type == TypePing {
			m.pong(l, env)
		}

		m.mu.Lock()
		h := m.handler
		current := m.link == l
		m.mu.Unlock()
		if current && h != nil {
			h(env)
		}
	}
}

func (m *Manager) pong(l *link, ping Envelope) {
	var p TimestampPayload
	if err := ping.Decode(&p); err != nil {
		m.log.Warn("bad ping payload", "err", err)
	}
	env, err := NewEnvelope(TypePong, p)
	if err != nil {
		return
	}
	b, err := json.Marshal(env)
	if err != nil {
		return
	}
	_ = m.enqueue(l, TypePong, b)
}

func (m *Manager) writeLoop(l *link) {
	var tick <-chan time.Time
	if m.cfg.HeartbeatInterval > 0 {
		ticker := time.NewTicker(m.cfg.HeartbeatInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-l.done:
			return
		case msg := <-l.send:
			if err := l.conn.WriteMessage(msg); err != nil {
				m.log.Warn("write failed", "err", err)
			}
		case now := <-tick:
			env, err := NewEnvelope(TypePing, TimestampPayload{Timestamp: Timestamp(now)})
			if err != nil {
				continue
			}
			b, _ := json.Marshal(env)
			if err := l.conn.WriteMessage(b); err != nil {
				m.log.Warn("heartbeat failed", "err", err)
			}
		}
	}
}

func (m *Manager) stopTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *Manager) setStateLocked(s State) {
	m.state = s
	if m.listener != nil {
		m.listener(m.statusLocked())
	}
}

func (m *Manager) statusLocked() Status {
	return Status{State: m.state, Attempts: m.attempts, Err: m.lastErr}
}

func withToken(raw, token string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("wsclient: bad url %q: %w", raw, err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
