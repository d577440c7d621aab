package listener

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/pixil98/go-webmud/internal/session"
)

// Transport is a message-oriented, bidirectional channel to one client.
type Transport interface {
	// ReadMessage blocks until the next frame arrives or the transport closes.
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	Close() error
	RemoteAddr() string
}

// State is a connection's binding state.
type State int

const (
	StateUnbound State = iota
	StateBound
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnbound:
		return "unbound"
	case StateBound:
		return "bound"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Connection is one accepted client. Unbound -> Bound happens once, on the
// first frame carrying a player id; any state may move to Closed.
type Connection struct {
	id        string
	transport Transport

	writeMu sync.Mutex

	mu      sync.Mutex
	state   State
	session *session.Session
}

func newConnection(t Transport) *Connection {
	return &Connection{
		id:        uuid.New().String(),
		transport: t,
		state:     StateUnbound,
	}
}

func (c *Connection) ID() string {
	return c.id
}

func (c *Connection) RemoteAddr() string {
	return c.transport.RemoteAddr()
}

func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Session returns the bound session, or nil while unbound.
func (c *Connection) Session() *session.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// bind promotes an unbound connection. It returns the previous state.
func (c *Connection) bind(sess *session.Session) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if sess == nil {
		return c.state, fmt.Errorf("binding connection %s: session is nil", c.id)
	}
	if c.state != StateUnbound {
		return c.state, fmt.Errorf("binding connection %s: invalid transition from %s", c.id, c.state)
	}

	c.state = StateBound
	c.session = sess
	return StateUnbound, nil
}

// close marks the connection closed. It returns the previous state.
func (c *Connection) close() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.state
	c.state = StateClosed
	return prev
}

// Send writes one frame. Writes are serialized so that broadcasts and
// responses never interleave on the wire.
func (c *Connection) Send(data []byte) error {
	if c.State() == StateClosed {
		return fmt.Errorf("connection %s is closed", c.id)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.transport.WriteMessage(data)
}
