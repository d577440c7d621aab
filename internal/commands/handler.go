package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pixil98/go-webmud/internal/protocol"
	"github.com/pixil98/go-webmud/internal/session"
	"github.com/pixil98/go-webmud/internal/storage"
	"github.com/pixil98/go-webmud/internal/world"
)

// InternalErrorText replaces errors that are not meant for the player.
const InternalErrorText = "Something went wrong."

// CommandContext is what a compiled command runs against.
type CommandContext struct {
	Session *session.Session
	Verb    string
	Args    []string
	Inputs  map[string]any
}

// TemplateData builds the template view of the command context.
func (c *CommandContext) TemplateData() *TemplateData {
	data := &TemplateData{
		Player: c.Session.PlayerID(),
		Verb:   c.Verb,
		Args:   c.Args,
		Text:   strings.Join(c.Args, " "),
		Inputs: c.Inputs,
	}
	if _, room := c.Session.CurrentRoom(); room != nil {
		data.Room = room.ShortDescription()
	}
	return data
}

// CommandFunc runs a command and returns the line to show the player.
// An empty line means no output.
type CommandFunc func(ctx context.Context, cmdCtx *CommandContext) (string, error)

// HandlerFactory creates CommandFuncs from command configurations.
type HandlerFactory interface {
	// ValidateConfig validates that the config contains required fields.
	ValidateConfig(config map[string]any) error
	// Create creates a CommandFunc from the validated config.
	Create(config map[string]any) (CommandFunc, error)
}

// Publisher provides the ability to publish messages to subjects
type Publisher interface {
	Publish(subject string, data []byte) error
}

// compiledCommand holds a command that's been validated and compiled.
type compiledCommand struct {
	cmd     *Command
	cmdFunc CommandFunc
}

// Handler is the action interpreter. It resolves the verb of each action to
// a compiled command and runs it against the player's session.
type Handler struct {
	store     storage.Storer[*Command]
	factories map[string]HandlerFactory
	compiled  map[string]*compiledCommand
}

// NewHandler creates a Handler with the built-in look, move and message
// factories registered. Call CompileAll before use.
func NewHandler(c storage.Storer[*Command], reg *world.Registry, pub Publisher, subject string) *Handler {
	h := &Handler{
		store:     c,
		factories: make(map[string]HandlerFactory),
		compiled:  make(map[string]*compiledCommand),
	}
	// Built-ins; names are unique so registration cannot fail.
	_ = h.RegisterFactory("look", NewLookHandlerFactory())
	_ = h.RegisterFactory("move", NewMoveHandlerFactory(reg))
	_ = h.RegisterFactory("message", NewMessageHandlerFactory(pub, subject))
	return h
}

// RegisterFactory registers a handler factory by name.
// The name must match the "handler" field in command JSON definitions.
func (h *Handler) RegisterFactory(name string, factory HandlerFactory) error {
	if name == "" {
		return fmt.Errorf("handler name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("handler factory cannot be nil")
	}
	if _, exists := h.factories[name]; exists {
		return fmt.Errorf("handler factory %q already registered", name)
	}
	h.factories[name] = factory
	return nil
}

// CompileAll compiles all commands from the store.
// Call this after all handler factories have been registered.
func (h *Handler) CompileAll() error {
	for id, cmd := range h.store.GetAll() {
		err := h.compile(id, cmd)
		if err != nil {
			return fmt.Errorf("compiling command %q: %w", id, err)
		}
	}
	return nil
}

func (h *Handler) compile(id string, cmd *Command) error {
	factory, ok := h.factories[cmd.Handler]
	if !ok {
		return fmt.Errorf("unknown handler %q", cmd.Handler)
	}

	if err := factory.ValidateConfig(cmd.Config); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	cmdFunc, err := factory.Create(cmd.Config)
	if err != nil {
		return fmt.Errorf("creating handler: %w", err)
	}

	cc := &compiledCommand{cmd: cmd, cmdFunc: cmdFunc}
	for _, verb := range append([]string{id}, cmd.Aliases...) {
		verb = strings.ToLower(verb)
		if _, exists := h.compiled[verb]; exists {
			return fmt.Errorf("verb %q already defined", verb)
		}
		h.compiled[verb] = cc
	}
	return nil
}

// ProcessAction satisfies session.Interpreter. Unknown or unreadable actions
// produce no output; errors become console text.
func (h *Handler) ProcessAction(ctx context.Context, s *session.Session, a protocol.Action) (string, bool) {
	d, err := parseDescriptor(a)
	if err != nil {
		slog.DebugContext(ctx, "ignoring action", "action", a.String(), "error", err)
		return "", false
	}

	line, err := h.Exec(ctx, s, d.Verb, d.Args...)
	if err != nil {
		var userErr *UserError
		if errors.As(err, &userErr) {
			return userErr.Message, true
		}
		slog.ErrorContext(ctx, "executing action", "verb", d.Verb, "player", s.PlayerID(), "error", err)
		return InternalErrorText, true
	}

	return line, line != ""
}

// Exec executes a verb with the given arguments. An unknown verb yields no
// output and no error.
func (h *Handler) Exec(ctx context.Context, s *session.Session, verb string, rawArgs ...string) (string, error) {
	compiled, ok := h.compiled[strings.ToLower(verb)]
	if !ok {
		return "", nil
	}

	inputs, err := h.parseInputs(compiled.cmd.Inputs, rawArgs)
	if err != nil {
		return "", err
	}

	return compiled.cmdFunc(ctx, &CommandContext{
		Session: s,
		Verb:    verb,
		Args:    rawArgs,
		Inputs:  inputs,
	})
}

// parseInputs validates raw arguments against input specs. Commands without
// input specs accept any arguments.
func (h *Handler) parseInputs(specs []InputSpec, rawArgs []string) (map[string]any, error) {
	inputs := make(map[string]any, len(specs))
	if len(specs) == 0 {
		return inputs, nil
	}

	hasRest := specs[len(specs)-1].Rest
	if !hasRest && len(rawArgs) > len(specs) {
		return nil, NewUserError(fmt.Sprintf("Expected at most %d argument(s), got %d.", len(specs), len(rawArgs)))
	}

	argIndex := 0
	for _, spec := range specs {
		if argIndex >= len(rawArgs) {
			if spec.Required {
				return nil, NewUserError(fmt.Sprintf("Missing required parameter: %s.", spec.Name))
			}
			continue
		}

		var raw string
		if spec.Rest {
			raw = strings.Join(rawArgs[argIndex:], " ")
			argIndex = len(rawArgs)
		} else {
			raw = rawArgs[argIndex]
			argIndex++
		}

		value, err := h.parseValue(spec.Type, raw)
		if err != nil {
			return nil, err
		}
		inputs[spec.Name] = value
	}

	return inputs, nil
}

// parseValue parses a raw string into the appropriate type.
func (h *Handler) parseValue(inputType InputType, raw string) (any, error) {
	switch inputType {
	case InputTypeString:
		return raw, nil

	case InputTypeNumber:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, NewUserError(fmt.Sprintf("%q is not a valid number.", raw))
		}
		return n, nil

	default:
		return nil, fmt.Errorf("unknown parameter type %q", inputType)
	}
}
