package publish

import (
	"context"
	"log/slog"
	"time"

	"decoder/internal/blocks"
)

const (
	BatchSize     = 80
	MaxAttempts   = 3
	RetryBackoff  = 300 * time.Millisecond
	InitialBlocks = 20
	MaxTodos      = 20
)

// BlockAppender is the part of the store the Appender writes through.
type BlockAppender interface {
	AppendBlocks(ctx context.Context, id string, children []blocks.Block) (int, error)
}

// Appender writes block sequences to an existing document in fixed-size
// batches, one request in flight at a time.
type Appender struct {
	store     BlockAppender
	batchSize int
	attempts  int
	backoff   time.Duration
}

func NewAppender(store BlockAppender) *Appender {
	return &Appender{
		store:     store,
		batchSize: BatchSize,
		attempts:  MaxAttempts,
		backoff:   RetryBackoff,
	}
}

// Append writes children to document id and returns how many blocks landed.
// A batch is tried up to three times with linear backoff; when all attempts
// fail the remaining batches are skipped and an *AppendError is returned
// alongside the count written so far.
func (a *Appender) Append(ctx context.Context, id string, children []blocks.Block) (int, error) {
	appended := 0
	for start, batch := 0, 0; start < len(children); start, batch = start+a.batchSize, batch+1 {
		end := min(start+a.batchSize, len(children))

		n, err := a.appendBatch(ctx, id, batch, children[start:end])
		if err != nil {
			return appended, &AppendError{Appended: appended, Batch: batch, Err: err}
		}
		appended += n
	}
	return appended, nil
}

func (a *Appender) appendBatch(ctx context.Context, id string, batch int, chunk []blocks.Block) (int, error) {
	var err error
	for attempt := 1; attempt <= a.attempts; attempt++ {
		var n int
		if n, err = a.store.AppendBlocks(ctx, id, chunk); err == nil {
			return n, nil
		}

		slog.WarnContext(ctx, "append batch failed", "document_id", id, "batch", batch, "attempt", attempt, "max_attempts", a.attempts, "error", err)
		if attempt == a.attempts {
			break
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(a.backoff * time.Duration(attempt)):
		}
	}
	return 0, err
}

// SetBackoff changes the base delay between attempts.
func (a *Appender) SetBackoff(d time.Duration) {
	a.backoff = d
}
