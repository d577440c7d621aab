package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/pixil98/go-webmud/internal/display"
	"github.com/pixil98/go-webmud/internal/world"
)

// MoveHandlerFactory creates handlers that move players between rooms.
// Config:
//   - direction (optional): fixed direction; otherwise the first argument is used
type MoveHandlerFactory struct {
	world *world.Registry
}

// NewMoveHandlerFactory creates a new MoveHandlerFactory with access to the room registry.
func NewMoveHandlerFactory(reg *world.Registry) *MoveHandlerFactory {
	return &MoveHandlerFactory{world: reg}
}

func (f *MoveHandlerFactory) ValidateConfig(config map[string]any) error {
	if d, ok := config["direction"]; ok {
		if s, ok := d.(string); !ok || s == "" {
			return fmt.Errorf("direction must be a non-empty string")
		}
	}
	return nil
}

func (f *MoveHandlerFactory) Create(config map[string]any) (CommandFunc, error) {
	if f.world == nil {
		return nil, fmt.Errorf("move handler requires a room registry")
	}
	fixed, _ := config["direction"].(string)

	return func(ctx context.Context, cmdCtx *CommandContext) (string, error) {
		direction := fixed
		if direction == "" {
			if len(cmdCtx.Args) == 0 {
				return "", NewUserError("Go where?")
			}
			direction = cmdCtx.Args[0]
		}
		direction = strings.ToLower(direction)

		_, from := cmdCtx.Session.CurrentRoom()
		if from == nil {
			return "", NewUserError("You are in an invalid location.")
		}

		destId, ok := from.Exit(direction)
		if !ok {
			return "", NewUserError(fmt.Sprintf("You cannot go %s from here.", direction))
		}

		to, err := f.world.GetRoom(destId)
		if err != nil {
			return "", NewUserError("Alas, you cannot go that way...")
		}

		cmdCtx.Session.MoveTo(destId, to)

		return display.Wrap(to.ShortDescription(), 0), nil
	}, nil
}
