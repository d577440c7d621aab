package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pixil98/go-webmud/internal/protocol"
)

// descriptor is the interpreter's reading of one action. Clients send either
// a string ("go north") or an object ({"verb": "go", "args": ["north"]}).
type descriptor struct {
	Verb string   `json:"verb"`
	Args []string `json:"args"`
}

func parseDescriptor(a protocol.Action) (*descriptor, error) {
	raw := bytes.TrimSpace(a.Raw())
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty action")
	}

	var d descriptor
	switch raw[0] {
	case '"':
		var line string
		if err := json.Unmarshal(raw, &line); err != nil {
			return nil, fmt.Errorf("unmarshalling action string: %w", err)
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			return nil, fmt.Errorf("empty action")
		}
		d.Verb, d.Args = fields[0], fields[1:]
	case '{':
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("unmarshalling action object: %w", err)
		}
		d.Verb = strings.TrimSpace(d.Verb)
		if d.Verb == "" {
			return nil, fmt.Errorf("action verb not set")
		}
	default:
		return nil, fmt.Errorf("unsupported action %s", raw)
	}

	return &d, nil
}
