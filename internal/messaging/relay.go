package messaging

import (
	"context"
	"log/slog"
)

// Subscriber is the subscribing half of NatsServer.
type Subscriber interface {
	Ready() <-chan struct{}
	Subscribe(subject string, handler func(data []byte)) (func(), error)
}

// Broadcaster delivers one line of text to every bound connection.
type Broadcaster interface {
	BroadcastText(text string) error
}

// Relay forwards every message published on a subject to a Broadcaster.
type Relay struct {
	sub     Subscriber
	subject string
	out     Broadcaster

	subscribed chan struct{}
}

func NewRelay(sub Subscriber, subject string, out Broadcaster) *Relay {
	return &Relay{
		sub:        sub,
		subject:    subject,
		out:        out,
		subscribed: make(chan struct{}),
	}
}

// Start waits for the messaging server, subscribes and relays until ctx is
// canceled.
func (r *Relay) Start(ctx context.Context) error {
	select {
	case <-r.sub.Ready():
	case <-ctx.Done():
		return nil
	}

	unsubscribe, err := r.sub.Subscribe(r.subject, func(data []byte) {
		if err := r.out.BroadcastText(string(data)); err != nil {
			slog.WarnContext(ctx, "relaying broadcast", "subject", r.subject, "error", err)
		}
	})
	if err != nil {
		return err
	}
	defer unsubscribe()
	close(r.subscribed)

	slog.InfoContext(ctx, "relaying broadcasts", "subject", r.subject)
	<-ctx.Done()
	return nil
}

// Subscribed is closed once the relay is receiving messages.
func (r *Relay) Subscribed() <-chan struct{} {
	return r.subscribed
}
