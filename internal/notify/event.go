package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"decoder/internal/middleware"
)

type EventPublisher interface {
	Publish(topic string, body []byte) error
}

// Event publishes the notification as JSON on a queue topic, leaving delivery
// to whoever subscribes.
type Event struct {
	pub   EventPublisher
	topic string
}

var _ Notifier = (*Event)(nil)

func NewEvent(pub EventPublisher, topic string) *Event {
	return &Event{pub: pub, topic: topic}
}

func (e *Event) Notify(ctx context.Context, n Notification) (*Result, error) {
	if e.pub == nil {
		return nil, errNoPublisher
	}
	if n.RequestID == "" {
		n.RequestID = middleware.GetRequestID(ctx)
	}
	body, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}
	if err := e.pub.Publish(e.topic, body); err != nil {
		slog.ErrorContext(ctx, "failed to publish document event", "topic", e.topic, "error", err)
		return nil, err
	}
	return &Result{Status: Sent, Detail: e.topic}, nil
}
