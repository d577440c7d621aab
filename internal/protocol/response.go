package protocol

import (
	"encoding/json"
	"fmt"
)

// FallbackText is sent when a frame produced no console output.
const FallbackText = "I don't know what you mean."

type ConsoleOutput struct {
	ResponseText string `json:"responseText"`
}

type wireResponse struct {
	EchoedInput   json.RawMessage `json:"echoedInput"`
	ConsoleOutput []ConsoleOutput `json:"consoleOutput"`
}

// Response accumulates the console lines answering one inbound frame.
type Response struct {
	echo  json.RawMessage
	lines []ConsoleOutput
}

// NewResponse starts an empty response echoing input. A nil input is echoed
// as an empty list.
func NewResponse(input json.RawMessage) *Response {
	return &Response{echo: input}
}

func (r *Response) AppendOutputLine(line string) {
	r.lines = append(r.lines, ConsoleOutput{ResponseText: line})
}

func (r *Response) HasOutputLines() bool {
	return len(r.lines) > 0
}

// Lines returns the response text of every line in order.
func (r *Response) Lines() []string {
	out := make([]string, len(r.lines))
	for i, l := range r.lines {
		out[i] = l.ResponseText
	}
	return out
}

// Finalize serializes the response, adding the fallback line if nothing was
// appended.
func (r *Response) Finalize() ([]byte, error) {
	if !r.HasOutputLines() {
		r.AppendOutputLine(FallbackText)
	}

	echo := r.echo
	if len(echo) == 0 {
		echo = json.RawMessage("[]")
	}

	b, err := json.Marshal(wireResponse{
		EchoedInput:   echo,
		ConsoleOutput: r.lines,
	})
	if err != nil {
		return nil, fmt.Errorf("marshalling response: %w", err)
	}
	return b, nil
}
