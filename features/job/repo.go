package job

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("job not found")

type Repository interface {
	Save(ctx context.Context, job *Job) error
	List(ctx context.Context) ([]Job, error)
	Get(ctx context.Context, id string) (*Job, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

const jobColumns = `id, message_id, handler, payload, error, retries, parked, created_at, failed_at`

// Save parks a payload. A message that is already parked keeps its row: the
// payload and error are replaced and the park count goes up. Payloads without
// a message id always get a row of their own.
func (r *PostgresRepo) Save(ctx context.Context, job *Job) error {
	query := `INSERT INTO failed_jobs (message_id, handler, payload, error, retries)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (message_id) WHERE message_id <> '' DO UPDATE SET
			handler = EXCLUDED.handler,
			payload = EXCLUDED.payload,
			error = EXCLUDED.error,
			retries = EXCLUDED.retries,
			parked = failed_jobs.parked + 1,
			failed_at = now()
		RETURNING id, parked, created_at, failed_at`
	err := r.db.QueryRowContext(ctx, query, job.MessageID, job.Handler, []byte(job.Payload), job.Error, job.Retries).
		Scan(&job.ID, &job.Parked, &job.CreatedAt, &job.FailedAt)
	if err != nil {
		return fmt.Errorf("park %q: %w", job.MessageID, err)
	}
	return nil
}

// List returns parked jobs, most recent failure first.
func (r *PostgresRepo) List(ctx context.Context) ([]Job, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+jobColumns+` FROM failed_jobs ORDER BY failed_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (*Job, error) {
	j, err := scanJob(r.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM failed_jobs WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return j, err
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM failed_jobs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (r *PostgresRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM failed_jobs`).Scan(&count)
	return count, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(s scanner) (*Job, error) {
	var j Job
	var payload []byte
	if err := s.Scan(&j.ID, &j.MessageID, &j.Handler, &payload, &j.Error, &j.Retries, &j.Parked, &j.CreatedAt, &j.FailedAt); err != nil {
		return nil, err
	}
	j.Payload = json.RawMessage(payload)
	return &j, nil
}
