package commands

import (
	"context"
	"fmt"
	"strings"
	"text/template"
)

// MessageHandlerFactory creates handlers that answer with a templated line
// and optionally broadcast a second templated line to every player.
// Config:
//   - self_message (optional): template for the line returned to the actor
//   - broadcast_message (optional): template published on the broadcast subject
//
// At least one of the two is required.
type MessageHandlerFactory struct {
	pub     Publisher
	subject string
}

// NewMessageHandlerFactory creates a new MessageHandlerFactory with a publisher.
func NewMessageHandlerFactory(pub Publisher, subject string) *MessageHandlerFactory {
	return &MessageHandlerFactory{pub: pub, subject: subject}
}

func (f *MessageHandlerFactory) ValidateConfig(config map[string]any) error {
	self, _ := config["self_message"].(string)
	broadcast, _ := config["broadcast_message"].(string)
	if self == "" && broadcast == "" {
		return fmt.Errorf("at least one of self_message or broadcast_message is required")
	}
	return nil
}

func (f *MessageHandlerFactory) Create(config map[string]any) (CommandFunc, error) {
	selfTmpl, err := optionalTemplate(config, "self_message")
	if err != nil {
		return nil, err
	}
	broadcastTmpl, err := optionalTemplate(config, "broadcast_message")
	if err != nil {
		return nil, err
	}
	if broadcastTmpl != nil && (f.pub == nil || f.subject == "") {
		return nil, fmt.Errorf("broadcast_message requires a publisher")
	}

	return func(ctx context.Context, cmdCtx *CommandContext) (string, error) {
		data := cmdCtx.TemplateData()

		if broadcastTmpl != nil {
			msg, err := execute(broadcastTmpl, data)
			if err != nil {
				return "", fmt.Errorf("expanding broadcast message: %w", err)
			}
			if err := f.pub.Publish(f.subject, []byte(strings.TrimSpace(msg))); err != nil {
				return "", fmt.Errorf("publishing broadcast: %w", err)
			}
		}

		if selfTmpl == nil {
			return "", nil
		}
		msg, err := execute(selfTmpl, data)
		if err != nil {
			return "", fmt.Errorf("expanding self message: %w", err)
		}
		return strings.TrimSpace(msg), nil
	}, nil
}

func optionalTemplate(config map[string]any, key string) (*template.Template, error) {
	s, _ := config[key].(string)
	if s == "" {
		return nil, nil
	}
	tmpl, err := compileTemplate(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return tmpl, nil
}
