package commands

import (
	"fmt"
	"strings"

	"github.com/pixil98/go-errors"
)

// InputType represents the type of a command input parameter.
type InputType string

const (
	InputTypeString InputType = "string" // Single word, or the rest of the line when rest=true
	InputTypeNumber InputType = "number" // Integer
)

// InputSpec defines an argument a command accepts from the action descriptor.
type InputSpec struct {
	Name     string    `json:"name"`
	Type     InputType `json:"type"`
	Required bool      `json:"required"`
	Rest     bool      `json:"rest"` // If true, captures all remaining args
}

// Command defines a command loaded from JSON. The asset id is the verb.
type Command struct {
	Handler string         `json:"handler"`
	Aliases []string       `json:"aliases,omitempty"`
	Config  map[string]any `json:"config,omitempty"`
	Inputs  []InputSpec    `json:"inputs,omitempty"`
}

func (c *Command) Validate() error {
	el := errors.NewErrorList()

	if c.Handler == "" {
		el.Add(fmt.Errorf("command handler not set"))
	}

	for _, alias := range c.Aliases {
		if alias == "" || strings.ContainsAny(alias, " \t") {
			el.Add(fmt.Errorf("alias %q must be a single word", alias))
		}
	}

	for i, input := range c.Inputs {
		if input.Name == "" {
			el.Add(fmt.Errorf("input %d: name is required", i))
			continue
		}
		switch input.Type {
		case InputTypeString, InputTypeNumber:
		case "":
			el.Add(fmt.Errorf("input %q: type is required", input.Name))
		default:
			el.Add(fmt.Errorf("input %q: unknown type %q", input.Name, input.Type))
		}
		if input.Rest && i != len(c.Inputs)-1 {
			el.Add(fmt.Errorf("input %q: only the last input can have rest=true", input.Name))
		}
	}

	return el.Err()
}
