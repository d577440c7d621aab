package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-webmud/internal/commands"
	"github.com/pixil98/go-webmud/internal/storage"
	"github.com/pixil98/go-webmud/internal/world"
)

type StorageConfig struct {
	Rooms    AssetConfig[*world.Room]       `json:"rooms"`
	Commands AssetConfig[*commands.Command] `json:"commands"`
}

func (c *StorageConfig) validate() error {
	el := errors.NewErrorList()
	el.Add(c.Rooms.Validate("rooms"))
	el.Add(c.Commands.Validate("commands"))
	return el.Err()
}

// BuildRegistry loads every room asset into a world registry.
func (c *StorageConfig) BuildRegistry() (*world.Registry, error) {
	rooms, err := c.Rooms.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating room store: %w", err)
	}

	reg, err := world.NewRegistry(rooms)
	if err != nil {
		return nil, fmt.Errorf("building world registry: %w", err)
	}

	return reg, nil
}

type AssetConfig[T storage.ValidatingSpec] struct {
	Path string `json:"path"`
}

func (c *AssetConfig[T]) Validate(name string) error {
	if c.Path == "" {
		return fmt.Errorf("storage: %s: path is required", name)
	}
	_, err := os.Stat(c.Path)
	if err != nil {
		return fmt.Errorf("storage: %s: invalid path %q: %w", name, c.Path, err)
	}

	return nil
}

func (c *AssetConfig[T]) BuildFileStore() (*storage.FileStore[T], error) {
	return storage.NewFileStore[T](c.Path)
}
