package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-webmud/internal/session"
	"github.com/pixil98/go-webmud/internal/world"
)

type SessionsConfig struct {
	// Mode is "shared" (default) or "isolated". Kept as text so that
	// MUD_SESSION_MODE can replace it before it is parsed.
	Mode      string `json:"mode"`
	StartRoom int    `json:"start_room"`
}

func (c *SessionsConfig) validate() error {
	el := errors.NewErrorList()

	if _, err := c.mode(); err != nil {
		el.Add(fmt.Errorf("sessions: %w", err))
	}
	if c.StartRoom < 0 {
		el.Add(fmt.Errorf("sessions: start_room must not be negative"))
	}

	return el.Err()
}

func (c *SessionsConfig) mode() (session.Mode, error) {
	var m session.Mode
	err := m.UnmarshalText([]byte(c.Mode))
	return m, err
}

func (c *SessionsConfig) BuildStore(interp session.Interpreter, reg *world.Registry) (*session.Store, error) {
	mode, err := c.mode()
	if err != nil {
		return nil, err
	}
	return session.NewStore(mode, interp, reg, c.StartRoom)
}
