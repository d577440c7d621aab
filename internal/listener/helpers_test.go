package listener

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/pixil98/go-webmud/internal/protocol"
	"github.com/pixil98/go-webmud/internal/session"
	"github.com/pixil98/go-webmud/internal/world"
)

// stubInterpreter understands {"verb": "look"}, {"verb": "north"},
// {"verb": "south"} and {"verb": "nothing"}; everything else yields no output.
type stubInterpreter struct {
	world *world.Registry
}

func (i *stubInterpreter) ProcessAction(_ context.Context, s *session.Session, a protocol.Action) (string, bool) {
	var d struct {
		Verb string `json:"verb"`
	}
	if err := json.Unmarshal(a.Raw(), &d); err != nil {
		return "", false
	}

	switch d.Verb {
	case "look":
		_, room := s.CurrentRoom()
		return room.LongDescription(), true
	case "north", "south":
		_, room := s.CurrentRoom()
		id, ok := room.Exit(d.Verb)
		if !ok {
			return "You cannot go " + d.Verb + " from here.", true
		}
		to, err := i.world.GetRoom(id)
		if err != nil {
			return "Alas, you cannot go that way...", true
		}
		s.MoveTo(id, to)
		return to.ShortDescription(), true
	default:
		return "", false
	}
}

func newTestManager(t *testing.T, mode session.Mode) (*ConnectionManager, *session.Store) {
	t.Helper()

	reg, err := world.NewRegistryFromRooms(map[int]*world.Room{
		0: {Name: "Room One", Short: "You are in Room One.", Description: "A bare stone room.", Exits: map[string]int{"north": 1}},
		1: {Name: "Room Two", Short: "You are in Room Two.", Exits: map[string]int{"south": 0}},
	})
	if err != nil {
		t.Fatalf("building registry: %v", err)
	}

	store, err := session.NewStore(mode, &stubInterpreter{world: reg}, reg, 0)
	if err != nil {
		t.Fatalf("building session store: %v", err)
	}

	return NewConnectionManager(store, WithMetrics(NewMetrics())), store
}

var errTransportClosed = errors.New("transport closed")

type fakeTransport struct {
	in     chan []byte
	out    chan []byte
	closed chan struct{}
	once   sync.Once

	writeErr error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		in:     make(chan []byte, 16),
		out:    make(chan []byte, 16),
		closed: make(chan struct{}),
	}
}

func (f *fakeTransport) ReadMessage() ([]byte, error) {
	select {
	case b := <-f.in:
		return b, nil
	case <-f.closed:
		return nil, io.EOF
	}
}

func (f *fakeTransport) WriteMessage(data []byte) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	select {
	case <-f.closed:
		return errTransportClosed
	default:
	}
	f.out <- append([]byte(nil), data...)
	return nil
}

func (f *fakeTransport) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeTransport) RemoteAddr() string {
	return "fake:0"
}

func (f *fakeTransport) send(frame string) {
	f.in <- []byte(frame)
}

func (f *fakeTransport) expectFrame(t *testing.T) string {
	t.Helper()
	select {
	case b := <-f.out:
		return string(b)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return ""
	}
}

func (f *fakeTransport) expectNoFrame(t *testing.T) {
	t.Helper()
	select {
	case b := <-f.out:
		t.Fatalf("unexpected frame: %s", b)
	case <-time.After(50 * time.Millisecond):
	}
}

type wireResponse struct {
	EchoedInput   json.RawMessage `json:"echoedInput"`
	ConsoleOutput []struct {
		ResponseText string `json:"responseText"`
	} `json:"consoleOutput"`
}

func parseResponse(t *testing.T, raw []byte) wireResponse {
	t.Helper()
	var r wireResponse
	if err := json.Unmarshal(raw, &r); err != nil {
		t.Fatalf("unmarshalling response %s: %v", raw, err)
	}
	return r
}

func (r wireResponse) lines() []string {
	out := make([]string, len(r.ConsoleOutput))
	for i, l := range r.ConsoleOutput {
		out[i] = l.ResponseText
	}
	return out
}

func waitFor(t *testing.T, desc string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", desc)
}
