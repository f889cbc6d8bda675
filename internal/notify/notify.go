// Package notify tells a human that a document was published.
package notify

import (
	"context"
	"errors"
)

var (
	ErrNotConfigured      = errors.New("notifier not configured")
	ErrAuth               = errors.New("notifier rejected credentials")
	ErrInvalidDestination = errors.New("invalid destination number")
	ErrChannelNotEnabled  = errors.New("sender not enabled for channel")
	errNoPublisher        = errors.New("no event publisher")
)

type Status string

const (
	Sent    Status = "sent"
	Skipped Status = "skipped"
)

type Notification struct {
	Subject     string `json:"subject"`
	From        string `json:"from"`
	Priority    string `json:"priority"`
	DocumentID  string `json:"documentId"`
	DocumentURL string `json:"documentUrl"`
	Idempotent  bool   `json:"idempotent"`
	RequestID   string `json:"requestId,omitempty"`
}

type Result struct {
	Status    Status `json:"status"`
	MessageID string `json:"messageSid,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) (*Result, error)
}

// Disabled accepts every notification and reports it skipped.
type Disabled struct{}

func (Disabled) Notify(context.Context, Notification) (*Result, error) {
	return &Result{Status: Skipped, Detail: "notifications disabled"}, nil
}
