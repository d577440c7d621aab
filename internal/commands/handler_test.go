package commands

import (
	"context"
	"fmt"
	"testing"

	"github.com/pixil98/go-testutil"
	"github.com/pixil98/go-webmud/internal/protocol"
	"github.com/pixil98/go-webmud/internal/session"
	"github.com/pixil98/go-webmud/internal/world"
)

type mockCommandStore struct {
	cmds map[string]*Command
}

func (s *mockCommandStore) Get(id string) (*Command, bool) {
	c, ok := s.cmds[id]
	return c, ok
}

func (s *mockCommandStore) GetAll() map[string]*Command {
	return s.cmds
}

type recordingPublisher struct {
	subjects []string
	messages []string
	err      error
}

func (p *recordingPublisher) Publish(subject string, data []byte) error {
	if p.err != nil {
		return p.err
	}
	p.subjects = append(p.subjects, subject)
	p.messages = append(p.messages, string(data))
	return nil
}

func testCommands() map[string]*Command {
	return map[string]*Command{
		"look":  {Handler: "look", Aliases: []string{"l"}},
		"go":    {Handler: "move"},
		"north": {Handler: "move", Aliases: []string{"n"}, Config: map[string]any{"direction": "north"}},
		"south": {Handler: "move", Config: map[string]any{"direction": "south"}},
		"say": {
			Handler: "message",
			Config:  map[string]any{"self_message": `You say, '{{ .Text }}'`},
			Inputs:  []InputSpec{{Name: "text", Type: InputTypeString, Required: true, Rest: true}},
		},
		"shout": {
			Handler: "message",
			Config: map[string]any{
				"self_message":      `You shout, '{{ .Text | upper }}'`,
				"broadcast_message": `{{ .Player }} shouts, '{{ .Text | upper }}'`,
			},
		},
		"count": {
			Handler: "message",
			Config:  map[string]any{"self_message": `You count to {{ .Inputs.n }}.`},
			Inputs:  []InputSpec{{Name: "n", Type: InputTypeNumber, Required: true}},
		},
		"wave": {
			Handler: "message",
			Config:  map[string]any{"broadcast_message": `{{ .Player }} waves.`},
		},
	}
}

func newTestHandler(t *testing.T, pub Publisher) (*Handler, *session.Session) {
	t.Helper()

	reg, err := world.NewRegistryFromRooms(map[int]*world.Room{
		0: {Name: "Room One", Short: "You are in Room One.", Description: "A bare stone room.", Exits: map[string]int{"north": 1}},
		1: {Name: "Room Two", Short: "You are in Room Two.", Exits: map[string]int{"south": 0}},
	})
	if err != nil {
		t.Fatalf("building registry: %v", err)
	}

	h := NewHandler(&mockCommandStore{cmds: testCommands()}, reg, pub, "broadcast")
	if err := h.CompileAll(); err != nil {
		t.Fatalf("compiling commands: %v", err)
	}

	store, err := session.NewStore(session.ModeIsolated, h, reg, 0)
	if err != nil {
		t.Fatalf("building session store: %v", err)
	}
	sess, err := store.Bind("p1")
	if err != nil {
		t.Fatalf("binding session: %v", err)
	}

	return h, sess
}

func action(raw string) protocol.Action {
	return protocol.NewAction([]byte(raw))
}

func TestHandler_ProcessAction(t *testing.T) {
	tests := map[string]struct {
		actions []string
		expLine string
		expOk   bool
		expRoom int
	}{
		"look describes room and exits": {
			actions: []string{`{"verb": "look"}`},
			expLine: "A bare stone room.\nExits: north.",
			expOk:   true,
		},
		"alias works": {
			actions: []string{`"L"`},
			expLine: "A bare stone room.\nExits: north.",
			expOk:   true,
		},
		"fixed direction moves": {
			actions: []string{`"north"`},
			expLine: "You are in Room Two.",
			expOk:   true,
			expRoom: 1,
		},
		"direction from args": {
			actions: []string{`{"verb": "go", "args": ["North"]}`},
			expLine: "You are in Room Two.",
			expOk:   true,
			expRoom: 1,
		},
		"round trip": {
			actions: []string{`"n"`, `"south"`},
			expLine: "You are in Room One.",
			expOk:   true,
		},
		"no exit is a user error": {
			actions: []string{`"south"`},
			expLine: "You cannot go south from here.",
			expOk:   true,
		},
		"go without direction": {
			actions: []string{`"go"`},
			expLine: "Go where?",
			expOk:   true,
		},
		"unknown verb yields nothing": {
			actions: []string{`{"verb": "dance"}`},
		},
		"unreadable descriptor yields nothing": {
			actions: []string{`17`},
		},
		"message template": {
			actions: []string{`"say hello there"`},
			expLine: "You say, 'hello there'",
			expOk:   true,
		},
		"missing required input": {
			actions: []string{`"say"`},
			expLine: "Missing required parameter: text.",
			expOk:   true,
		},
		"number input": {
			actions: []string{`"count 3"`},
			expLine: "You count to 3.",
			expOk:   true,
		},
		"bad number input": {
			actions: []string{`"count three"`},
			expLine: `"three" is not a valid number.`,
			expOk:   true,
		},
		"too many inputs": {
			actions: []string{`"count 1 2"`},
			expLine: "Expected at most 1 argument(s), got 2.",
			expOk:   true,
		},
		"broadcast only has no output": {
			actions: []string{`"wave"`},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			h, sess := newTestHandler(t, &recordingPublisher{})

			var line string
			var ok bool
			for _, a := range tt.actions {
				line, ok = h.ProcessAction(context.Background(), sess, action(a))
			}

			testutil.AssertEqual(t, "ok", ok, tt.expOk)
			testutil.AssertEqual(t, "line", line, tt.expLine)

			roomId, _ := sess.CurrentRoom()
			testutil.AssertEqual(t, "room", roomId, tt.expRoom)
		})
	}
}

func TestHandler_Broadcast(t *testing.T) {
	pub := &recordingPublisher{}
	h, sess := newTestHandler(t, pub)

	line, ok := h.ProcessAction(context.Background(), sess, action(`"shout hi all"`))

	testutil.AssertEqual(t, "ok", ok, true)
	testutil.AssertEqual(t, "line", line, "You shout, 'HI ALL'")
	testutil.AssertEqual(t, "published", len(pub.messages), 1)
	testutil.AssertEqual(t, "subject", pub.subjects[0], "broadcast")
	testutil.AssertEqual(t, "message", pub.messages[0], "p1 shouts, 'HI ALL'")
}

func TestHandler_InternalErrorBecomesLine(t *testing.T) {
	pub := &recordingPublisher{err: fmt.Errorf("nats down")}
	h, sess := newTestHandler(t, pub)

	line, ok := h.ProcessAction(context.Background(), sess, action(`"shout hi"`))

	testutil.AssertEqual(t, "ok", ok, true)
	testutil.AssertEqual(t, "line", line, InternalErrorText)
}

func TestHandler_CompileErrors(t *testing.T) {
	reg, err := world.NewRegistryFromRooms(map[int]*world.Room{0: {Name: "Room One"}})
	if err != nil {
		t.Fatalf("building registry: %v", err)
	}

	tests := map[string]struct {
		cmds   map[string]*Command
		pub    Publisher
		expErr string
	}{
		"unknown handler": {
			cmds:   map[string]*Command{"dance": {Handler: "dance"}},
			expErr: `unknown handler "dance"`,
		},
		"duplicate alias": {
			cmds: map[string]*Command{
				"look":   {Handler: "look", Aliases: []string{"l"}},
				"listen": {Handler: "look", Aliases: []string{"l"}},
			},
			expErr: `verb "l" already defined`,
		},
		"message without text": {
			cmds:   map[string]*Command{"say": {Handler: "message"}},
			expErr: "at least one of self_message or broadcast_message is required",
		},
		"broken template": {
			cmds:   map[string]*Command{"say": {Handler: "message", Config: map[string]any{"self_message": "{{ .Text "}}},
			expErr: "self_message: parsing template",
		},
		"broadcast without publisher": {
			cmds:   map[string]*Command{"wave": {Handler: "message", Config: map[string]any{"broadcast_message": "hi"}}},
			expErr: "broadcast_message requires a publisher",
		},
		"bad direction config": {
			cmds:   map[string]*Command{"north": {Handler: "move", Config: map[string]any{"direction": 3}}},
			expErr: "direction must be a non-empty string",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			h := NewHandler(&mockCommandStore{cmds: tt.cmds}, reg, tt.pub, "broadcast")
			testutil.AssertErrorContains(t, h.CompileAll(), tt.expErr)
		})
	}
}

func TestHandler_RegisterFactory(t *testing.T) {
	h := NewHandler(&mockCommandStore{cmds: map[string]*Command{}}, nil, nil, "")

	testutil.AssertErrorContains(t, h.RegisterFactory("", NewLookHandlerFactory()), "handler name cannot be empty")
	testutil.AssertErrorContains(t, h.RegisterFactory("custom", nil), "handler factory cannot be nil")
	testutil.AssertErrorContains(t, h.RegisterFactory("look", NewLookHandlerFactory()), `handler factory "look" already registered`)

	if err := h.RegisterFactory("custom", NewLookHandlerFactory()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
