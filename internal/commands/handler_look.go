package commands

import (
	"context"
	"fmt"

	"github.com/pixil98/go-webmud/internal/display"
)

// LookHandlerFactory creates handlers that describe the current room.
// Config:
//   - width (optional): wrap column, defaults to display.DefaultWidth
type LookHandlerFactory struct{}

func NewLookHandlerFactory() *LookHandlerFactory {
	return &LookHandlerFactory{}
}

func (f *LookHandlerFactory) ValidateConfig(config map[string]any) error {
	if w, ok := config["width"]; ok {
		if n, ok := w.(float64); !ok || n < 0 {
			return fmt.Errorf("width must be a non-negative number")
		}
	}
	return nil
}

func (f *LookHandlerFactory) Create(config map[string]any) (CommandFunc, error) {
	width, _ := config["width"].(float64)

	return func(ctx context.Context, cmdCtx *CommandContext) (string, error) {
		_, room := cmdCtx.Session.CurrentRoom()
		if room == nil {
			return "", NewUserError("You are in an invalid location.")
		}

		exits := "There are no obvious exits."
		if names := room.ExitNames(); len(names) > 0 {
			exits = fmt.Sprintf("Exits: %s.", display.List(names))
		}

		return display.Wrap(room.LongDescription(), int(width)) + "\n" + exits, nil
	}, nil
}
