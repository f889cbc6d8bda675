// Package worker consumes queued intake payloads from NSQ.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nsqio/go-nsq"

	"decoder/features/intake"
	"decoder/features/job"
	"decoder/internal/analysis"
	"decoder/internal/mailbox"
	"decoder/internal/middleware"
	"decoder/internal/publish"
)

const (
	DefaultTimeout     = 60 * time.Second
	DefaultMaxAttempts = 5
	handlerName        = "intake-consumer"
)

type Processor interface {
	Process(ctx context.Context, p *mailbox.EmailPayload) (*intake.Result, error)
}

type FailedJobSaver interface {
	Save(ctx context.Context, j *job.Job) error
}

// IntakeConsumer runs every message of the intake topic through the
// pipeline. Transient failures are requeued by NSQ; permanent ones, and
// messages out of attempts, are parked as failed jobs.
type IntakeConsumer struct {
	processor   Processor
	jobs        FailedJobSaver
	timeout     time.Duration
	maxAttempts uint16
}

func NewIntakeConsumer(p Processor, jobs FailedJobSaver, timeout time.Duration, maxAttempts uint16) *IntakeConsumer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxAttempts == 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &IntakeConsumer{processor: p, jobs: jobs, timeout: timeout, maxAttempts: maxAttempts}
}

func (h *IntakeConsumer) HandleMessage(m *nsq.Message) error {
	if len(m.Body) == 0 {
		return nil
	}

	var payload mailbox.EmailPayload
	err := json.Unmarshal(m.Body, &payload)

	requestID := payload.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}
	ctx := middleware.WithRequestID(context.Background(), requestID)

	if err != nil {
		// Poison Pill: invalid JSON, don't retry
		slog.ErrorContext(ctx, "poison pill: invalid json", "error", err)
		return nil
	}
	if err := payload.Validate(); err != nil {
		slog.ErrorContext(ctx, "invalid payload, dropping", "error", err, "message_id", payload.MessageID)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	res, err := h.processor.Process(ctx, &payload)
	if err == nil {
		slog.InfoContext(ctx, "queued email processed", "message_id", payload.MessageID, "document_id", res.Notion.ID, "idempotent", res.Idempotent)
		return nil
	}

	if errors.Is(err, intake.ErrNotify) {
		// the document is written; another attempt would only append again
		slog.WarnContext(ctx, "document published but notification failed", "error", err, "message_id", payload.MessageID)
		return nil
	}
	if permanent(err) || m.Attempts >= h.maxAttempts {
		slog.ErrorContext(ctx, "intake failed, parking job", "error", err, "attempts", m.Attempts, "message_id", payload.MessageID)
		h.park(ctx, m, &payload, err)
		return nil
	}

	slog.WarnContext(ctx, "intake failed, requeueing", "error", err, "attempts", m.Attempts, "message_id", payload.MessageID)
	return err
}

func (h *IntakeConsumer) park(ctx context.Context, m *nsq.Message, p *mailbox.EmailPayload, cause error) {
	if h.jobs == nil {
		return
	}
	j := &job.Job{
		MessageID: p.MessageID,
		Handler:   handlerName,
		Payload:   json.RawMessage(m.Body),
		Error:     cause.Error(),
		Retries:   int(m.Attempts),
	}
	if err := h.jobs.Save(context.WithoutCancel(ctx), j); err != nil {
		slog.ErrorContext(ctx, "failed to save failed job", "error", err)
		return
	}
	slog.InfoContext(ctx, "saved failed job for retry", "job_id", j.ID)
}

// permanent reports errors another attempt cannot fix.
func permanent(err error) bool {
	return errors.Is(err, analysis.ErrNotConfigured) ||
		errors.Is(err, publish.ErrNotConfigured) ||
		errors.Is(err, publish.ErrUnauthorized) ||
		errors.Is(err, publish.ErrNotFound) ||
		errors.Is(err, publish.ErrValidation)
}

// Subscribe attaches h to topic/channel on nsqd with one message in flight.
func Subscribe(topic, channel, nsqd string, h nsq.Handler) (*nsq.Consumer, error) {
	cfg := nsq.NewConfig()
	cfg.MaxInFlight = 1
	consumer, err := nsq.NewConsumer(topic, channel, cfg)
	if err != nil {
		return nil, err
	}
	consumer.AddHandler(h)
	if err := consumer.ConnectToNSQD(nsqd); err != nil {
		consumer.Stop()
		return nil, err
	}
	return consumer, nil
}
