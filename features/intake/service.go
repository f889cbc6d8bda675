package intake

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"decoder/internal/analysis"
	"decoder/internal/fingerprint"
	"decoder/internal/insight"
	"decoder/internal/ledger"
	"decoder/internal/mailbox"
	"decoder/internal/middleware"
	"decoder/internal/notify"
	"decoder/internal/publish"
)

type Publisher interface {
	Publish(ctx context.Context, req publish.Request) (*publish.Result, error)
}

type Service struct {
	analyzer  analysis.Analyzer
	extractor *insight.Extractor
	publisher Publisher
	notifier  notify.Notifier
	ledger    ledger.Ledger
	appURL    string
}

type Option func(*Service)

func WithLedger(l ledger.Ledger) Option {
	return func(s *Service) {
		if l != nil {
			s.ledger = l
		}
	}
}

// WithAppLink sets the link back to the application stored on documents.
func WithAppLink(url string) Option {
	return func(s *Service) { s.appURL = url }
}

func NewService(a analysis.Analyzer, e *insight.Extractor, p Publisher, n notify.Notifier, opts ...Option) *Service {
	if e == nil {
		e = insight.Default()
	}
	if n == nil {
		n = notify.Disabled{}
	}
	s := &Service{
		analyzer:  a,
		extractor: e,
		publisher: p,
		notifier:  n,
		ledger:    ledger.Noop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Process analyses the email, publishes the analysis and sends the
// notification. The returned Result is non-nil whenever validation passed.
func (s *Service) Process(ctx context.Context, p *mailbox.EmailPayload) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	res := &Result{}

	slog.InfoContext(ctx, "processing email", "subject", p.Subject, "from", p.From, "attachments", len(p.Attachments))

	text, err := s.analyzer.Analyze(ctx, analysis.EmailContent(analysis.Message{
		Subject:     p.Subject,
		From:        p.From,
		Date:        p.Date,
		Text:        p.Text,
		HTML:        p.HTML,
		Attachments: p.AttachmentNames(),
	}), analysis.Email)
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrAnalysis, err)
	}

	items := s.extractor.ActionItems(text)
	priority := s.extractor.Priority(p.Subject, text)
	res.Analysis = &Analysis{Text: text, ActionItems: items, Priority: priority}
	res.CorrelationID = fingerprint.Correlation(p.Subject, p.From, p.Date, p.AttachmentBytes())
	slog.InfoContext(ctx, "analysis complete", "action_items", len(items), "priority", priority, "correlation_id", res.CorrelationID)

	pub, err := s.publisher.Publish(ctx, publish.Request{
		Content:     SourceContent(p),
		Analysis:    text,
		ActionItems: items,
		Properties: publish.Properties{
			Subject:       p.Subject,
			Sender:        p.From,
			ReceivedAt:    parseDate(p.Date),
			Priority:      string(priority),
			Origin:        publish.OriginWebhook,
			CorrelationID: res.CorrelationID,
			AppLink:       s.appURL,
		},
	})
	if pub != nil {
		res.Notion = &pub.Document
		res.Idempotent = pub.Idempotent()
		res.Appended = pub.Appended
		res.Fingerprint = pub.Fingerprint
	}
	if err != nil {
		return res, err
	}
	s.record(ctx, p.MessageID, res)

	sent, err := s.notifier.Notify(ctx, notify.Notification{
		Subject:     p.Subject,
		From:        p.From,
		Priority:    string(priority),
		DocumentID:  pub.Document.ID,
		DocumentURL: pub.Document.URL,
		Idempotent:  res.Idempotent,
		RequestID:   middleware.GetRequestID(ctx),
	})
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrNotify, err)
	}
	res.WhatsApp = sent
	return res, nil
}

func (s *Service) record(ctx context.Context, messageID string, res *Result) {
	if messageID == "" {
		return
	}
	err := s.ledger.Mark(ctx, ledger.Entry{
		MessageID:   messageID,
		Fingerprint: res.Fingerprint,
		DocumentID:  res.Notion.ID,
		Status:      ledger.StatusPublished,
	})
	if err != nil {
		slog.WarnContext(ctx, "ledger update failed", "message_id", messageID, "error", err)
	}
}

// SourceContent is the text whose fingerprint identifies an email: subject
// and body, with the plain-text body preferred.
func SourceContent(p *mailbox.EmailPayload) string {
	body := p.Text
	if strings.TrimSpace(body) == "" {
		body = p.HTML
	}
	return p.Subject + "\n\n" + body
}

func parseDate(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
