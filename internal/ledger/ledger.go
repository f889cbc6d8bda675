// Package ledger remembers which mailbox messages were already handled, so a
// message marked unread again is not analysed twice.
package ledger

import (
	"context"
	"database/sql"
	"time"
)

type Status string

const (
	StatusDispatched Status = "dispatched"
	StatusQueued     Status = "queued"
	StatusPublished  Status = "published"
	StatusSkipped    Status = "skipped"
)

type Entry struct {
	MessageID   string
	Fingerprint string
	DocumentID  string
	Status      Status
	ProcessedAt time.Time
}

type Ledger interface {
	Seen(ctx context.Context, messageID string) (bool, error)
	Mark(ctx context.Context, e Entry) error
}

type PostgresRepo struct {
	db *sql.DB
}

var _ Ledger = (*PostgresRepo)(nil)

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Seen(ctx context.Context, messageID string) (bool, error) {
	var seen bool
	query := `SELECT EXISTS (SELECT 1 FROM processed_messages WHERE message_id = $1)`
	err := r.db.QueryRowContext(ctx, query, messageID).Scan(&seen)
	return seen, err
}

// Mark records e, overwriting any earlier entry for the same message.
func (r *PostgresRepo) Mark(ctx context.Context, e Entry) error {
	query := `INSERT INTO processed_messages (message_id, fingerprint, document_id, status) VALUES ($1, $2, $3, $4)
		ON CONFLICT (message_id) DO UPDATE SET fingerprint = EXCLUDED.fingerprint, document_id = EXCLUDED.document_id, status = EXCLUDED.status, processed_at = now()`
	_, err := r.db.ExecContext(ctx, query, e.MessageID, e.Fingerprint, e.DocumentID, string(e.Status))
	return err
}

func (r *PostgresRepo) Get(ctx context.Context, messageID string) (*Entry, error) {
	e := &Entry{}
	var status string
	query := `SELECT message_id, fingerprint, document_id, status, processed_at FROM processed_messages WHERE message_id = $1`
	err := r.db.QueryRowContext(ctx, query, messageID).Scan(&e.MessageID, &e.Fingerprint, &e.DocumentID, &status, &e.ProcessedAt)
	if err != nil {
		return nil, err
	}
	e.Status = Status(status)
	return e, nil
}

// CountByStatus reports how many messages ended in each status.
func (r *PostgresRepo) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM processed_messages GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[Status]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[Status(status)] = n
	}
	return counts, rows.Err()
}

// Noop never reports a message as seen. It stands in when no database is
// configured and the unread flag alone tracks progress.
type Noop struct{}

func (Noop) Seen(context.Context, string) (bool, error) { return false, nil }
func (Noop) Mark(context.Context, Entry) error          { return nil }
