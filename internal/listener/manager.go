package listener

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pixil98/go-webmud/internal/display"
	"github.com/pixil98/go-webmud/internal/protocol"
	"github.com/pixil98/go-webmud/internal/session"
)

const (
	frameAnswered = "answered"
	frameDropped  = "dropped"
)

// SessionBinder resolves the session a frame is applied against.
type SessionBinder interface {
	Bind(playerID string) (*session.Session, error)
	Default() *session.Session
}

// ConnectionManager tracks open connections and runs every inbound frame
// through decode, bind, apply and respond.
type ConnectionManager struct {
	sessions SessionBinder
	metrics  *Metrics

	mu    sync.Mutex
	conns map[string]*Connection
	bound map[string]*Connection
}

type ManagerOpt func(*ConnectionManager)

// WithMetrics records connection and frame metrics on m.
func WithMetrics(m *Metrics) ManagerOpt {
	return func(cm *ConnectionManager) {
		cm.metrics = m
	}
}

func NewConnectionManager(sessions SessionBinder, opts ...ManagerOpt) *ConnectionManager {
	m := &ConnectionManager{
		sessions: sessions,
		conns:    map[string]*Connection{},
		bound:    map[string]*Connection{},
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// AcceptConnection registers t as an unbound connection and serves it until
// the transport fails or ctx is canceled. Frames from one connection are
// handled strictly in arrival order.
func (m *ConnectionManager) AcceptConnection(ctx context.Context, t Transport) {
	c := m.register(t)
	defer m.unregister(ctx, c)

	slog.InfoContext(ctx, "connection accepted", "conn", c.ID(), "remote", c.RemoteAddr())

	// Closing the transport unblocks ReadMessage on shutdown.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = t.Close()
		case <-done:
		}
	}()

	for {
		payload, err := t.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				slog.InfoContext(ctx, "connection read ended", "conn", c.ID(), "error", err)
			}
			return
		}

		resp, ok := m.HandleFrame(ctx, c, payload)
		if !ok {
			continue
		}

		if err := c.Send(resp); err != nil {
			slog.WarnContext(ctx, "sending response", "conn", c.ID(), "error", err)
			return
		}
	}
}

// HandleFrame decodes one frame and builds its response. It returns false
// when the frame was dropped and nothing should be sent.
func (m *ConnectionManager) HandleFrame(ctx context.Context, c *Connection, payload []byte) ([]byte, bool) {
	env, err := protocol.Decode(payload)
	if err != nil {
		slog.WarnContext(ctx, "dropping frame", "conn", c.ID(), "error", err)
		m.metrics.frame(frameDropped)
		return nil, false
	}

	binding := false
	if env.HasCredential() && c.State() == StateUnbound {
		if err := m.bind(c, env.PlayerID); err != nil {
			slog.ErrorContext(ctx, "binding connection", "conn", c.ID(), "player", env.PlayerID, "error", err)
		} else {
			binding = true
			slog.InfoContext(ctx, "connection bound", "conn", c.ID(), "player", env.PlayerID)
		}
	}

	sess := c.Session()
	if sess == nil {
		sess = m.sessions.Default()
	}

	resp := protocol.NewResponse(env.Input)
	sess.WithLock(func() {
		if binding {
			if _, room := sess.CurrentRoom(); room != nil {
				resp.AppendOutputLine(display.Wrap(room.ShortDescription(), 0))
			}
		}

		produced := false
		for _, a := range env.Actions {
			if line, ok := sess.ApplyAction(ctx, a); ok {
				resp.AppendOutputLine(line)
				produced = true
			}
		}

		if !produced {
			resp.AppendOutputLine(protocol.FallbackText)
		}
	})

	out, err := resp.Finalize()
	if err != nil {
		slog.ErrorContext(ctx, "finalizing response", "conn", c.ID(), "error", err)
		m.metrics.frame(frameDropped)
		return nil, false
	}

	m.metrics.frame(frameAnswered)
	return out, true
}

// Broadcast sends payload to every bound connection. Delivery is best
// effort: failures are logged, the first one is returned, and failing
// connections stay registered until their read loop ends.
func (m *ConnectionManager) Broadcast(payload []byte) error {
	m.mu.Lock()
	targets := make([]*Connection, 0, len(m.bound))
	for _, c := range m.bound {
		targets = append(targets, c)
	}
	m.mu.Unlock()

	m.metrics.broadcast()

	var firstErr error
	for _, c := range targets {
		if err := c.Send(payload); err != nil {
			slog.Warn("broadcasting", "conn", c.ID(), "error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("sending to %s: %w", c.ID(), err)
			}
		}
	}
	return firstErr
}

// BroadcastText wraps text in a response envelope and broadcasts it.
func (m *ConnectionManager) BroadcastText(text string) error {
	resp := protocol.NewResponse(nil)
	resp.AppendOutputLine(text)

	payload, err := resp.Finalize()
	if err != nil {
		return err
	}
	return m.Broadcast(payload)
}

// ConnectionCount returns the number of open connections.
func (m *ConnectionManager) ConnectionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.conns)
}

// BoundCount returns the number of open, bound connections.
func (m *ConnectionManager) BoundCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bound)
}

func (m *ConnectionManager) register(t Transport) *Connection {
	c := newConnection(t)

	m.mu.Lock()
	m.conns[c.ID()] = c
	m.mu.Unlock()

	m.metrics.connectionAccepted()
	return c
}

func (m *ConnectionManager) bind(c *Connection, playerID string) error {
	sess, err := m.sessions.Bind(playerID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	prev, err := c.bind(sess)
	if err != nil {
		return err
	}
	m.bound[c.ID()] = c

	m.metrics.connectionMoved(prev, StateBound)
	return nil
}

func (m *ConnectionManager) unregister(ctx context.Context, c *Connection) {
	m.mu.Lock()
	prev := c.close()
	delete(m.conns, c.ID())
	delete(m.bound, c.ID())
	m.mu.Unlock()

	if err := c.transport.Close(); err != nil {
		slog.DebugContext(ctx, "closing transport", "conn", c.ID(), "error", err)
	}

	m.metrics.connectionMoved(prev, StateClosed)
	slog.InfoContext(ctx, "connection closed", "conn", c.ID(), "was", prev.String())
}
