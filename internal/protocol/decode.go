package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeError is returned for inbound payloads that cannot be turned into an
// Envelope. The frame is dropped; the connection stays open.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decoding frame: %s: %s", e.Reason, e.Err)
	}
	return fmt.Sprintf("decoding frame: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Action is one descriptor from the playerInput list. Its contents are only
// meaningful to the action interpreter.
type Action struct {
	raw json.RawMessage
}

// NewAction wraps a raw descriptor. The bytes are copied.
func NewAction(raw []byte) Action {
	return Action{raw: bytes.Clone(raw)}
}

// Raw returns a copy of the descriptor's JSON.
func (a Action) Raw() json.RawMessage {
	return bytes.Clone(a.raw)
}

func (a Action) String() string {
	return string(a.raw)
}

// Envelope is the decoded form of one inbound message.
type Envelope struct {
	// PlayerID is the binding credential; empty when the frame carries none.
	PlayerID string
	// Input is the compacted playerInput exactly as received, for echoing.
	Input   json.RawMessage
	Actions []Action
}

// HasCredential reports whether the frame carries a player identifier.
func (e *Envelope) HasCredential() bool {
	return e.PlayerID != ""
}

type wireRequest struct {
	PlayerID    *string         `json:"playerId"`
	PlayerInput json.RawMessage `json:"playerInput"`
}

// Decode parses a client frame. It fails on invalid JSON, a missing or
// non-array playerInput, and a non-string playerId.
func Decode(raw []byte) (*Envelope, error) {
	var req wireRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, &DecodeError{Reason: "invalid json", Err: err}
	}

	input := bytes.TrimSpace(req.PlayerInput)
	if len(input) == 0 || bytes.Equal(input, []byte("null")) {
		return nil, &DecodeError{Reason: "missing playerInput"}
	}

	var descriptors []json.RawMessage
	if err := json.Unmarshal(input, &descriptors); err != nil {
		return nil, &DecodeError{Reason: "playerInput must be a list", Err: err}
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, input); err != nil {
		return nil, &DecodeError{Reason: "invalid playerInput", Err: err}
	}

	env := &Envelope{
		Input:   compact.Bytes(),
		Actions: make([]Action, 0, len(descriptors)),
	}
	if req.PlayerID != nil {
		env.PlayerID = *req.PlayerID
	}
	for _, d := range descriptors {
		env.Actions = append(env.Actions, NewAction(d))
	}

	return env, nil
}
