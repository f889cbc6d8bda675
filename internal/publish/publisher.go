package publish

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"decoder/internal/audit"
	"decoder/internal/blocks"
	"decoder/internal/fingerprint"
	"decoder/internal/middleware"
)

const (
	maxSubjectRunes = 100

	headingAnalysis      = "🔑 Análise Completa"
	headingActions       = "⚡ Itens de Ação"
	headingUpdate        = "🔁 Atualização de Análise"
	headingUpdateActions = "⚡ Itens de Ação (Atualização)"
)

type Outcome string

const (
	Created Outcome = "created"
	Updated Outcome = "updated"
)

// Request is one publish. Content is the source material the fingerprint is
// taken from; Analysis is the Markdown that becomes the document body.
type Request struct {
	Content     string
	Analysis    string
	ActionItems []string
	Properties  Properties
}

type Result struct {
	Document    Document
	Outcome     Outcome
	Fingerprint string
	Appended    int
}

// Idempotent reports whether the publish landed on an existing document.
func (r *Result) Idempotent() bool {
	return r != nil && r.Outcome == Updated
}

type Publisher struct {
	store    Store
	appender *Appender
	audit    *audit.Logger
	now      func() time.Time
}

type Option func(*Publisher)

func WithClock(now func() time.Time) Option {
	return func(p *Publisher) { p.now = now }
}

func WithAudit(l *audit.Logger) Option {
	return func(p *Publisher) { p.audit = l }
}

func WithRetryBackoff(d time.Duration) Option {
	return func(p *Publisher) { p.appender.SetBackoff(d) }
}

// NewPublisher wires a publisher to store. A nil store is accepted and makes
// every Publish fail with ErrNotConfigured.
func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:    store,
		appender: NewAppender(store),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish creates a document for the request's content fingerprint, or when
// one already exists updates it and appends a new dated section. On an
// append failure the partial Result is returned together with the error.
func (p *Publisher) Publish(ctx context.Context, req Request) (*Result, error) {
	if p.store == nil {
		return nil, ErrNotConfigured
	}

	start := time.Now()
	fp := fingerprint.Content(req.Content)

	existing, err := p.store.FindByFingerprint(ctx, fp)
	if err != nil {
		slog.WarnContext(ctx, "fingerprint lookup failed, creating new document", "fingerprint", fp, "error", err)
		existing = nil
	}

	var res *Result
	if existing != nil {
		res, err = p.update(ctx, *existing, req)
	} else {
		res, err = p.create(ctx, fp, req)
	}
	if res != nil {
		res.Fingerprint = fp
	}

	p.record(ctx, fp, res, err, time.Since(start))
	return res, err
}

func (p *Publisher) update(ctx context.Context, doc Document, req Request) (*Result, error) {
	now := p.now()
	slog.InfoContext(ctx, "document exists, appending update", "document_id", doc.ID)

	props := Properties{UpdatedAt: now, AppLink: req.Properties.AppLink}
	if err := p.store.UpdateProperties(ctx, doc.ID, props); err != nil {
		p.logStoreError(ctx, "failed to update document properties", err)
		return nil, err
	}

	res := &Result{Document: doc, Outcome: Updated}

	section := []blocks.Block{
		blocks.NewDivider(),
		blocks.NewHeading3(headingUpdate + " (" + now.UTC().Format("2006-01-02 15:04 UTC") + ")"),
	}
	section = append(section, blocks.FromMarkdown(req.Analysis)...)

	n, err := p.appender.Append(ctx, doc.ID, section)
	res.Appended += n
	if err != nil {
		return res, err
	}

	if todos := todoBlocks(req.ActionItems); len(todos) > 0 {
		section = append([]blocks.Block{blocks.NewDivider(), blocks.NewHeading3(headingUpdateActions)}, todos...)
		n, err = p.appender.Append(ctx, doc.ID, section)
		res.Appended += n
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

func (p *Publisher) create(ctx context.Context, fp string, req Request) (*Result, error) {
	now := p.now()

	props := req.Properties
	props.Subject = truncateRunes(props.Subject, maxSubjectRunes)
	props.Fingerprint = fp
	if props.Status == "" {
		props.Status = StatusPending
	}
	if props.ReceivedAt.IsZero() {
		props.ReceivedAt = now
	}
	if props.UpdatedAt.IsZero() {
		props.UpdatedAt = now
	}

	body := blocks.FromMarkdown(req.Analysis)
	head, rest := body, []blocks.Block(nil)
	if len(body) > InitialBlocks {
		head, rest = body[:InitialBlocks], body[InitialBlocks:]
	}

	children := []blocks.Block{blocks.NewHeading2(headingAnalysis)}
	children = append(children, head...)
	if todos := todoBlocks(req.ActionItems); len(todos) > 0 {
		children = append(children, blocks.NewHeading2(headingActions))
		children = append(children, todos...)
	}
	children = append(children, blocks.NewDivider())

	doc, err := p.store.CreateDocument(ctx, props, children)
	if err != nil {
		p.logStoreError(ctx, "failed to create document", err)
		return nil, err
	}
	slog.InfoContext(ctx, "document created", "document_id", doc.ID, "blocks", len(children), "remaining", len(rest))

	res := &Result{Document: *doc, Outcome: Created}
	if len(rest) > 0 {
		n, err := p.appender.Append(ctx, doc.ID, rest)
		res.Appended = n
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

func (p *Publisher) logStoreError(ctx context.Context, msg string, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		slog.ErrorContext(ctx, msg, "error", err, "payload", verr.Payload)
		return
	}
	slog.ErrorContext(ctx, msg, "error", err)
}

func (p *Publisher) record(ctx context.Context, fp string, res *Result, err error, d time.Duration) {
	entry := audit.Entry{
		RequestID:   middleware.GetRequestID(ctx),
		Fingerprint: fp,
		Outcome:     "failed",
		Duration:    d,
	}
	if res != nil {
		entry.DocumentID = res.Document.ID
		entry.Outcome = string(res.Outcome)
		entry.Appended = res.Appended
	}
	if err != nil {
		entry.Error = err.Error()
	}
	p.audit.Record(entry)
}

// todoBlocks dedupes items in first-seen order and caps them at MaxTodos.
func todoBlocks(items []string) []blocks.Block {
	seen := make(map[string]struct{}, len(items))
	var out []blocks.Block
	for _, item := range items {
		if _, ok := seen[item]; ok || item == "" {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, blocks.NewToDo(item))
		if len(out) == MaxTodos {
			break
		}
	}
	return out
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
