// Package job keeps queued intake payloads that ran out of delivery attempts
// so they can be inspected and re-queued.
package job

import (
	"encoding/json"
	"time"
)

type Job struct {
	ID        string          `json:"id"`
	MessageID string          `json:"message_id"`
	Handler   string          `json:"handler"`
	Payload   json.RawMessage `json:"payload"`
	Error     string          `json:"error"`
	Retries   int             `json:"retries"`
	// Parked counts how often the message ran out of attempts.
	Parked    int       `json:"parked"`
	CreatedAt time.Time `json:"created_at"`
	FailedAt  time.Time `json:"failed_at"`
}
