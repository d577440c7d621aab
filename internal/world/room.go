package world

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pixil98/go-errors"
)

// Room is a location loaded from a room asset.
type Room struct {
	Name        string         `json:"name"`
	Short       string         `json:"short"`
	Description string         `json:"description"`
	Exits       map[string]int `json:"exits"` // direction -> room id
}

// Validate satisfies storage.ValidatingSpec. Exit destinations are checked by
// the registry once every room is known.
func (r *Room) Validate() error {
	el := errors.NewErrorList()

	if r.Name == "" {
		el.Add(fmt.Errorf("room name is required"))
	}

	for dir, dest := range r.Exits {
		if strings.TrimSpace(dir) == "" {
			el.Add(fmt.Errorf("exit direction is required"))
		} else if dir != strings.ToLower(dir) {
			el.Add(fmt.Errorf("exit %s: direction must be lowercase", dir))
		}
		if dest < 0 {
			el.Add(fmt.Errorf("exit %s: room id must not be negative", dir))
		}
	}

	return el.Err()
}

// ShortDescription is the one-line text shown when a player arrives.
func (r *Room) ShortDescription() string {
	if r.Short != "" {
		return r.Short
	}
	return r.Name
}

// LongDescription is the text shown when a player looks around.
func (r *Room) LongDescription() string {
	if r.Description != "" {
		return r.Description
	}
	return r.ShortDescription()
}

// ExitNames returns the room's exit directions sorted by name.
func (r *Room) ExitNames() []string {
	names := make([]string, 0, len(r.Exits))
	for dir := range r.Exits {
		names = append(names, dir)
	}
	slices.Sort(names)
	return names
}

// Exit returns the destination for a direction, case-insensitively.
func (r *Room) Exit(direction string) (int, bool) {
	id, ok := r.Exits[strings.ToLower(direction)]
	return id, ok
}
