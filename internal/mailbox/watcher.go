package mailbox

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"decoder/internal/ledger"
	"decoder/internal/middleware"
)

const DefaultPollInterval = 30 * time.Second

// Watcher drains unread mail at start, then follows the mailbox history.
// Messages are handled one at a time; a failing message is logged and the
// loop continues.
type Watcher struct {
	mailbox  Mailbox
	dispatch Dispatcher
	ledger   ledger.Ledger
	filter   *Filter
	interval time.Duration
	now      func() time.Time

	// handled remembers ids seen this session; drain and history overlap
	handled map[string]struct{}
}

const maxHandled = 1000

type WatcherOption func(*Watcher)

func WithLedger(l ledger.Ledger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.ledger = l
		}
	}
}

// WithAutoReplyIndicators replaces the default auto-reply indicators.
func WithAutoReplyIndicators(indicators []string) WatcherOption {
	return func(w *Watcher) { w.filter = NewFilter(indicators) }
}

func WithPollInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

func WithClock(now func() time.Time) WatcherOption {
	return func(w *Watcher) { w.now = now }
}

func NewWatcher(mb Mailbox, d Dispatcher, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		mailbox:  mb,
		dispatch: d,
		ledger:   ledger.Noop{},
		filter:   defaultFilter,
		interval: DefaultPollInterval,
		now:      time.Now,
		handled:  map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run blocks until ctx is done or the mailbox rejects the credentials.
func (w *Watcher) Run(ctx context.Context) error {
	cursor, err := w.mailbox.Checkpoint(ctx)
	if err != nil {
		return err
	}
	if err := w.Drain(ctx); err != nil {
		return err
	}
	slog.InfoContext(ctx, "watching mailbox", "interval", w.interval, "history_id", cursor)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "mailbox watcher stopped")
			return nil
		case <-ticker.C:
			next, err := w.poll(ctx, cursor)
			if errors.Is(err, ErrUnauthorized) {
				return err
			}
			if err != nil {
				slog.ErrorContext(ctx, "mailbox poll failed", "error", err)
				continue
			}
			cursor = next
		}
	}
}

// Drain handles every unread inbox message.
func (w *Watcher) Drain(ctx context.Context) error {
	ids, err := w.mailbox.Unread(ctx)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "draining unread messages", "count", len(ids))
	w.handleAll(ctx, ids)
	return nil
}

func (w *Watcher) poll(ctx context.Context, cursor uint64) (uint64, error) {
	ids, next, err := w.mailbox.Changes(ctx, cursor)
	if errors.Is(err, ErrHistoryExpired) {
		slog.WarnContext(ctx, "history expired, resyncing from unread", "history_id", cursor)
		if next, err = w.mailbox.Checkpoint(ctx); err != nil {
			return cursor, err
		}
		return next, w.Drain(ctx)
	}
	if err != nil {
		return cursor, err
	}
	w.handleAll(ctx, ids)
	return next, nil
}

func (w *Watcher) handleAll(ctx context.Context, ids []string) {
	for _, id := range ids {
		if ctx.Err() != nil {
			return
		}
		if _, dup := w.handled[id]; dup {
			continue
		}
		if len(w.handled) >= maxHandled {
			clear(w.handled)
		}
		w.handled[id] = struct{}{}
		msgCtx := middleware.WithRequestID(ctx, uuid.New().String())
		if err := w.Handle(msgCtx, id); err != nil {
			slog.ErrorContext(msgCtx, "failed to handle message", "message_id", id, "error", err)
		}
	}
}

// Handle processes one message: fetch, mark read, filter, dispatch.
func (w *Watcher) Handle(ctx context.Context, id string) error {
	seen, err := w.ledger.Seen(ctx, id)
	if err != nil {
		slog.WarnContext(ctx, "ledger lookup failed", "message_id", id, "error", err)
	}
	if seen {
		slog.InfoContext(ctx, "message already processed", "message_id", id)
		return w.mailbox.MarkRead(ctx, id)
	}

	raw, err := w.mailbox.Fetch(ctx, id)
	if err != nil {
		return err
	}
	msg, err := Parse(raw)
	if err != nil {
		return err
	}
	// the unread flag is the progress marker; clear it before the slow part
	if err := w.mailbox.MarkRead(ctx, id); err != nil {
		return err
	}

	slog.InfoContext(ctx, "new message", "message_id", id, "subject", msg.Subject, "from", msg.From, "attachments", len(msg.Attachments))
	if ok, reason := w.filter.Accept(msg.Subject, msg.From); !ok {
		slog.InfoContext(ctx, "message filtered", "message_id", id, "reason", reason)
		return w.mark(ctx, id, ledger.StatusSkipped)
	}

	payload := &EmailPayload{
		MessageID:   id,
		Subject:     msg.Subject,
		From:        msg.From,
		To:          msg.To,
		Date:        w.now().UTC().Format(time.RFC3339),
		Text:        msg.Text,
		HTML:        msg.HTML,
		Attachments: msg.Attachments,
		RequestID:   middleware.GetRequestID(ctx),
	}
	if payload.Attachments == nil {
		payload.Attachments = []Attachment{}
	}
	if err := w.dispatch.Dispatch(ctx, payload); err != nil {
		return err
	}

	status := ledger.StatusDispatched
	if _, queued := w.dispatch.(*QueueDispatcher); queued {
		status = ledger.StatusQueued
	}
	return w.mark(ctx, id, status)
}

func (w *Watcher) mark(ctx context.Context, id string, status ledger.Status) error {
	if err := w.ledger.Mark(ctx, ledger.Entry{MessageID: id, Status: status}); err != nil {
		slog.WarnContext(ctx, "ledger update failed", "message_id", id, "error", err)
	}
	return nil
}
