package command

import (
	"github.com/pixil98/go-errors"
)

type Config struct {
	Listener ListenerConfig `json:"listener"`
	Storage  StorageConfig  `json:"storage"`
	Sessions SessionsConfig `json:"sessions"`
	Nats     NatsConfig     `json:"nats"`
}

// Validate applies environment overrides before checking the config, since
// the app validates before any workers are built.
func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if err := c.applyEnv(); err != nil {
		el.Add(err)
	}

	el.Add(c.Listener.validate())
	el.Add(c.Storage.validate())
	el.Add(c.Sessions.validate())
	el.Add(c.Nats.validate())

	return el.Err()
}
