package command

import (
	"errors"
	"fmt"

	"github.com/joeshaw/envdecode"
)

// envOverrides are settings that may be supplied by the environment instead
// of the config file.
type envOverrides struct {
	ListenAddr  string `env:"MUD_LISTEN_ADDR"`
	SessionMode string `env:"MUD_SESSION_MODE"`
}

// applyEnv overwrites config values with any overrides set in the
// environment. Nothing changes when none are set.
func (c *Config) applyEnv() error {
	var env envOverrides
	err := envdecode.Decode(&env)
	if errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("decoding environment: %w", err)
	}

	if env.ListenAddr != "" {
		c.Listener.Address = env.ListenAddr
	}
	if env.SessionMode != "" {
		c.Sessions.Mode = env.SessionMode
	}

	return nil
}
