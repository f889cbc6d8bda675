// Package publish writes analyses to the document store. The Publisher owns
// the create-or-update decision keyed by content fingerprint; the Appender
// owns the mechanics of writing long block sequences in batches.
package publish

import (
	"context"
	"time"

	"decoder/internal/blocks"
)

// Store is the document store as seen by the publisher. FindByFingerprint
// returns nil without error when no document carries the fingerprint.
type Store interface {
	FindByFingerprint(ctx context.Context, fingerprint string) (*Document, error)
	CreateDocument(ctx context.Context, props Properties, children []blocks.Block) (*Document, error)
	UpdateProperties(ctx context.Context, id string, props Properties) error
	AppendBlocks(ctx context.Context, id string, children []blocks.Block) (int, error)
}

type Document struct {
	ID  string `json:"pageId"`
	URL string `json:"pageUrl"`
}

// Properties is the property set of a published document. Zero values mean
// "not supplied" and are left out of the store payload.
type Properties struct {
	Subject    string
	Status     string
	ReceivedAt time.Time
	Sender     string
	Priority   string

	SourceType string
	Framework  string
	OriginURL  string
	Confidence *int
	Impact     string
	Effort     string
	ROI        string
	Tags       []string
	Deadline   string
	Origin     string
	Owner      string

	CorrelationID string
	Fingerprint   string
	NotifyLink    string
	AppLink       string
	UpdatedAt     time.Time
}

const (
	StatusPending = "Pendente"

	OriginManual  = "Manual"
	OriginWebhook = "Webhook Email"
)
