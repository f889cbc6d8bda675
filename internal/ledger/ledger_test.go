package ledger_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"decoder/internal/ledger"
)

func TestPostgresRepo_Seen(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := ledger.NewPostgresRepo(db)
	query := regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM processed_messages WHERE message_id = $1)`)

	t.Run("Seen", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("m1").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		seen, err := repo.Seen(context.Background(), "m1")
		assert.NoError(t, err)
		assert.True(t, seen)
	})

	t.Run("Not Seen", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("m2").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		seen, err := repo.Seen(context.Background(), "m2")
		assert.NoError(t, err)
		assert.False(t, seen)
	})

	t.Run("Error", func(t *testing.T) {
		mock.ExpectQuery(query).WillReturnError(sqlmock.ErrCancelled)
		_, err := repo.Seen(context.Background(), "m3")
		assert.Error(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_Mark(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := ledger.NewPostgresRepo(db)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO processed_messages (message_id, fingerprint, document_id, status) VALUES ($1, $2, $3, $4)`)).
		WithArgs("m1", "fp", "doc-1", "published").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Mark(context.Background(), ledger.Entry{MessageID: "m1", Fingerprint: "fp", DocumentID: "doc-1", Status: ledger.StatusPublished})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := ledger.NewPostgresRepo(db)
	now := time.Now()
	query := regexp.QuoteMeta(`SELECT message_id, fingerprint, document_id, status, processed_at FROM processed_messages WHERE message_id = $1`)

	mock.ExpectQuery(query).WithArgs("m1").
		WillReturnRows(sqlmock.NewRows([]string{"message_id", "fingerprint", "document_id", "status", "processed_at"}).
			AddRow("m1", "fp", "doc-1", "queued", now))
	e, err := repo.Get(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusQueued, e.Status)
	assert.Equal(t, "doc-1", e.DocumentID)

	mock.ExpectQuery(query).WithArgs("missing").WillReturnError(sql.ErrNoRows)
	_, err = repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestNoop(t *testing.T) {
	seen, err := ledger.Noop{}.Seen(context.Background(), "x")
	assert.NoError(t, err)
	assert.False(t, seen)
	assert.NoError(t, ledger.Noop{}.Mark(context.Background(), ledger.Entry{}))
}

func TestPostgresRepo_CountByStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	query := regexp.QuoteMeta(`SELECT status, COUNT(*) FROM processed_messages GROUP BY status`)
	mock.ExpectQuery(query).WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
		AddRow("published", 4).
		AddRow("skipped", 2))

	counts, err := ledger.NewPostgresRepo(db).CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[ledger.Status]int{ledger.StatusPublished: 4, ledger.StatusSkipped: 2}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}
