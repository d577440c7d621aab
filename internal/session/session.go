package session

import (
	"context"
	"sync"

	"github.com/pixil98/go-webmud/internal/protocol"
	"github.com/pixil98/go-webmud/internal/world"
)

// Interpreter turns one action into at most one line of console output,
// mutating the session as a side effect.
type Interpreter interface {
	ProcessAction(ctx context.Context, s *Session, a protocol.Action) (string, bool)
}

// Session is one player's live state. A session may be shared by several
// connections; callers serialize a frame's work with WithLock.
type Session struct {
	mu     sync.Mutex
	interp Interpreter

	playerID string
	roomID   int
	room     *world.Room
}

func newSession(playerID string, interp Interpreter, roomID int, room *world.Room) *Session {
	return &Session{
		interp:   interp,
		playerID: playerID,
		roomID:   roomID,
		room:     room,
	}
}

func (s *Session) PlayerID() string {
	return s.playerID
}

// CurrentRoom returns the id and definition of the room the player is in.
func (s *Session) CurrentRoom() (int, *world.Room) {
	return s.roomID, s.room
}

// MoveTo relocates the player. Only the interpreter calls this.
func (s *Session) MoveTo(id int, room *world.Room) {
	s.roomID = id
	s.room = room
}

// ApplyAction hands a to the interpreter and returns its output line, if any.
func (s *Session) ApplyAction(ctx context.Context, a protocol.Action) (string, bool) {
	if s.interp == nil {
		return "", false
	}
	return s.interp.ProcessAction(ctx, s, a)
}

// WithLock runs fn while holding the session lock.
func (s *Session) WithLock(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}
