package command

import (
	"fmt"
	"net"
	"strings"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-webmud/internal/listener"
)

type ListenerConfig struct {
	Address        string   `json:"address"`
	Path           string   `json:"path,omitempty"`
	AllowedOrigins []string `json:"allowed_origins,omitempty"`
	MetricsPath    string   `json:"metrics_path,omitempty"`
}

func (c *ListenerConfig) validate() error {
	el := errors.NewErrorList()

	if c.Address == "" {
		el.Add(fmt.Errorf("listener: address is required"))
	} else if _, _, err := net.SplitHostPort(c.Address); err != nil {
		el.Add(fmt.Errorf("listener: invalid address %q: %w", c.Address, err))
	}

	if c.Path != "" && !strings.HasPrefix(c.Path, "/") {
		el.Add(fmt.Errorf("listener: path must start with /"))
	}

	if c.MetricsPath != "" {
		if !strings.HasPrefix(c.MetricsPath, "/") {
			el.Add(fmt.Errorf("listener: metrics_path must start with /"))
		}
		if c.MetricsPath == c.path() {
			el.Add(fmt.Errorf("listener: metrics_path must differ from path"))
		}
	}

	return el.Err()
}

func (c *ListenerConfig) path() string {
	if c.Path == "" {
		return listener.DefaultPath
	}
	return c.Path
}

func (c *ListenerConfig) BuildListener(cm *listener.ConnectionManager, m *listener.Metrics) *listener.WebsocketListener {
	opts := []listener.ListenerOpt{
		listener.WithPath(c.path()),
	}
	if len(c.AllowedOrigins) > 0 {
		opts = append(opts, listener.WithAllowedOrigins(c.AllowedOrigins))
	}
	if c.MetricsPath != "" {
		opts = append(opts, listener.WithMetricsEndpoint(c.MetricsPath, m))
	}

	return listener.NewWebsocketListener(c.Address, cm, opts...)
}
