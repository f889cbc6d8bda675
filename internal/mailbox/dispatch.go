package mailbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"decoder/internal/middleware"
)

// Dispatcher delivers a payload to the intake side.
type Dispatcher interface {
	Dispatch(ctx context.Context, p *EmailPayload) error
}

const DefaultWebhookTimeout = 60 * time.Second

// WebhookDispatcher posts payloads to the intake trigger endpoint.
type WebhookDispatcher struct {
	url    string
	secret string
	client *http.Client
}

func NewWebhookDispatcher(url, secret string, timeout time.Duration) *WebhookDispatcher {
	if timeout <= 0 {
		timeout = DefaultWebhookTimeout
	}
	return &WebhookDispatcher{url: url, secret: secret, client: &http.Client{Timeout: timeout}}
}

func (d *WebhookDispatcher) Dispatch(ctx context.Context, p *EmailPayload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.SecretHeader, d.secret)
	req.Header.Set(middleware.RequestIDHeader, middleware.GetRequestID(ctx))

	start := time.Now()
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook: status %d: %s", resp.StatusCode, respBody)
	}
	slog.InfoContext(ctx, "webhook delivered", "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds(), "size", len(body))
	return nil
}

type EventPublisher interface {
	Publish(topic string, body []byte) error
}

// QueueDispatcher publishes payloads to an NSQ topic for the intake consumer.
type QueueDispatcher struct {
	pub   EventPublisher
	topic string
}

func NewQueueDispatcher(pub EventPublisher, topic string) *QueueDispatcher {
	return &QueueDispatcher{pub: pub, topic: topic}
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, p *EmailPayload) error {
	if p.RequestID == "" {
		p.RequestID = middleware.GetRequestID(ctx)
	}
	body, err := json.Marshal(p)
	if err != nil {
		return err
	}
	if err := d.pub.Publish(d.topic, body); err != nil {
		return fmt.Errorf("publish %s: %w", d.topic, err)
	}
	slog.InfoContext(ctx, "payload queued", "topic", d.topic, "size", len(body))
	return nil
}
