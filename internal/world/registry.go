package world

import (
	"errors"
	"fmt"
	"strconv"

	goerrors "github.com/pixil98/go-errors"
	"github.com/pixil98/go-webmud/internal/storage"
)

var ErrRoomNotFound = errors.New("room not found")

// Registry maps room ids to rooms. It is built once and read concurrently.
type Registry struct {
	rooms map[int]*Room
}

// NewRegistry builds a registry from a room store whose asset ids are
// non-negative integers.
func NewRegistry(st storage.Storer[*Room]) (*Registry, error) {
	el := goerrors.NewErrorList()

	rooms := map[int]*Room{}
	for key, room := range st.GetAll() {
		id, err := strconv.Atoi(key)
		if err != nil || id < 0 {
			el.Add(fmt.Errorf("room %q: id must be a non-negative integer", key))
			continue
		}
		rooms[id] = room
	}
	if err := el.Err(); err != nil {
		return nil, err
	}

	return NewRegistryFromRooms(rooms)
}

// NewRegistryFromRooms builds a registry from rooms already keyed by id.
func NewRegistryFromRooms(rooms map[int]*Room) (*Registry, error) {
	el := goerrors.NewErrorList()

	r := &Registry{rooms: make(map[int]*Room, len(rooms))}
	for id, room := range rooms {
		if room == nil {
			el.Add(fmt.Errorf("room %d: missing definition", id))
			continue
		}
		r.rooms[id] = room
	}

	for id, room := range r.rooms {
		for dir, dest := range room.Exits {
			if _, ok := r.rooms[dest]; !ok {
				el.Add(fmt.Errorf("room %d: exit %s leads to unknown room %d", id, dir, dest))
			}
		}
	}

	if err := el.Err(); err != nil {
		return nil, err
	}
	return r, nil
}

// GetRoom returns the room with the given id.
func (r *Registry) GetRoom(id int) (*Room, error) {
	room, ok := r.rooms[id]
	if !ok {
		return nil, fmt.Errorf("room %d: %w", id, ErrRoomNotFound)
	}
	return room, nil
}

func (r *Registry) Len() int {
	return len(r.rooms)
}
