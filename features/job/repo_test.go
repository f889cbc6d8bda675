package job_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"decoder/features/job"
)

var jobRowColumns = []string{"id", "message_id", "handler", "payload", "error", "retries", "parked", "created_at", "failed_at"}

func TestPostgresRepo_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	failed := created.Add(time.Hour)
	mock.ExpectQuery(`(?s)INSERT INTO failed_jobs \(message_id, handler, payload, error, retries\).*ON CONFLICT \(message_id\) WHERE message_id <> '' DO UPDATE.*parked = failed_jobs\.parked \+ 1.*RETURNING id, parked, created_at, failed_at`).
		WithArgs("gmail-1", "intake-consumer", []byte(`{"subject":"x"}`), "boom", 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "parked", "created_at", "failed_at"}).AddRow("job-1", 2, created, failed))

	j := &job.Job{MessageID: "gmail-1", Handler: "intake-consumer", Payload: json.RawMessage(`{"subject":"x"}`), Error: "boom", Retries: 5}
	require.NoError(t, job.NewPostgresRepo(db).Save(context.Background(), j))
	assert.Equal(t, "job-1", j.ID)
	assert.Equal(t, 2, j.Parked)
	assert.Equal(t, created, j.CreatedAt)
	assert.Equal(t, failed, j.FailedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, message_id, handler, payload, error, retries, parked, created_at, failed_at FROM failed_jobs ORDER BY failed_at DESC`)).
		WillReturnRows(sqlmock.NewRows(jobRowColumns).
			AddRow("2", "m2", "intake-consumer", []byte(`{}`), "e2", 5, 1, now, now).
			AddRow("1", "m1", "intake-consumer", []byte(`{}`), "e1", 5, 3, now.Add(-time.Hour), now.Add(-time.Minute)))

	jobs, err := job.NewPostgresRepo(db).List(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "m2", jobs[0].MessageID)
	assert.Equal(t, 3, jobs[1].Parked)
	assert.JSONEq(t, `{}`, string(jobs[1].Payload))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM failed_jobs WHERE id = $1`)).WithArgs("99").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM failed_jobs WHERE id = $1`)).WithArgs("99").WillReturnResult(sqlmock.NewResult(0, 0))

	repo := job.NewPostgresRepo(db)
	_, err = repo.Get(context.Background(), "99")
	assert.ErrorIs(t, err, job.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(context.Background(), "99"), job.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_DeleteAndCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM failed_jobs WHERE id = $1`)).WithArgs("1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM failed_jobs`)).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	repo := job.NewPostgresRepo(db)
	require.NoError(t, repo.Delete(context.Background(), "1"))
	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
