// Package intake runs an inbound email through analysis, publishing and
// notification.
package intake

import (
	"errors"

	"decoder/internal/insight"
	"decoder/internal/notify"
	"decoder/internal/publish"
)

var (
	ErrAnalysis = errors.New("analysis failed")
	ErrNotify   = errors.New("notification failed")
)

type Analysis struct {
	Text        string           `json:"text"`
	ActionItems []string         `json:"actionItems"`
	Priority    insight.Priority `json:"priority"`
}

// Result collects whatever the pipeline produced. On failure the fields
// reached before the failing step are still set.
type Result struct {
	Analysis      *Analysis         `json:"analysis,omitempty"`
	Notion        *publish.Document `json:"notion,omitempty"`
	WhatsApp      *notify.Result    `json:"whatsapp,omitempty"`
	Idempotent    bool              `json:"idempotent"`
	Appended      int               `json:"appendedBlocks"`
	CorrelationID string            `json:"correlationId,omitempty"`
	Fingerprint   string            `json:"contentHash,omitempty"`
}
