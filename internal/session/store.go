package session

import (
	"fmt"
	"sync"

	"github.com/pixil98/go-webmud/internal/world"
)

// DefaultPlayerID identifies the session every connection shares in ModeShared.
const DefaultPlayerID = "default"

type Mode int

const (
	// ModeShared binds every player identifier to the one default session.
	ModeShared Mode = iota
	// ModeIsolated gives each player identifier its own session.
	ModeIsolated
)

func (m *Mode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "", "shared":
		*m = ModeShared
	case "isolated":
		*m = ModeIsolated
	default:
		return fmt.Errorf("unknown session mode: %s", text)
	}
	return nil
}

func (m Mode) String() string {
	switch m {
	case ModeShared:
		return "shared"
	case ModeIsolated:
		return "isolated"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Store maps player identifiers to sessions.
type Store struct {
	mode      Mode
	interp    Interpreter
	world     *world.Registry
	startRoom int

	mu       sync.Mutex
	def      *Session
	sessions map[string]*Session
}

// NewStore creates the store and its default session in startRoom.
func NewStore(mode Mode, interp Interpreter, reg *world.Registry, startRoom int) (*Store, error) {
	room, err := reg.GetRoom(startRoom)
	if err != nil {
		return nil, fmt.Errorf("resolving start room: %w", err)
	}

	return &Store{
		mode:      mode,
		interp:    interp,
		world:     reg,
		startRoom: startRoom,
		def:       newSession(DefaultPlayerID, interp, startRoom, room),
		sessions:  map[string]*Session{},
	}, nil
}

func (s *Store) Mode() Mode {
	return s.mode
}

// Default returns the session used for frames from connections that have not
// bound yet.
func (s *Store) Default() *Session {
	return s.def
}

// Bind returns the session for playerID, creating it on first use.
func (s *Store) Bind(playerID string) (*Session, error) {
	if playerID == "" {
		return nil, fmt.Errorf("player id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[playerID]; ok {
		return sess, nil
	}

	sess := s.def
	if s.mode == ModeIsolated {
		room, err := s.world.GetRoom(s.startRoom)
		if err != nil {
			return nil, fmt.Errorf("resolving start room: %w", err)
		}
		sess = newSession(playerID, s.interp, s.startRoom, room)
	}

	s.sessions[playerID] = sess
	return sess, nil
}

// Len returns the number of player identifiers that have bound.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}
