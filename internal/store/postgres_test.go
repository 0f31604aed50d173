package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var articleColumns = []string{"id", "title", "content", "excerpt", "image_url", "author", "category", "status", "date"}

func setupPgStore(t *testing.T) (*PgStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPgStore(db, "postgres"), mock
}

func TestPgStoreListAll(t *testing.T) {
	s, mock := setupPgStore(t)
	a, b := article("b", "B"), article("a", "A")

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY position ASC")).
		WillReturnRows(sqlmock.NewRows(articleColumns).
			AddRow(a.ID, a.Title, a.Content, a.Excerpt, a.ImageURL, a.Author, a.Category, "draft", a.Date).
			AddRow(b.ID, b.Title, b.Content, b.Excerpt, b.ImageURL, b.Author, b.Category, "draft", b.Date))

	got, err := s.ListAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids(got))
	assert.Equal(t, a, got[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgStoreGet(t *testing.T) {
	s, mock := setupPgStore(t)
	a := article("a", "A")

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
		WithArgs("a").
		WillReturnRows(sqlmock.NewRows(articleColumns).
			AddRow(a.ID, a.Title, a.Content, a.Excerpt, a.ImageURL, a.Author, a.Category, "draft", a.Date))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	got, err := s.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, a, got)

	_, err = s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgStorePut(t *testing.T) {
	a := article("a", "A")

	t.Run("existing id is updated in place", func(t *testing.T) {
		s, mock := setupPgStore(t)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE articles SET")).
			WithArgs(a.ID, a.Title, a.Content, a.Excerpt, a.ImageURL, a.Author, a.Category, "draft", a.Date).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, s.Put(context.Background(), a))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("new id is inserted ahead of every row", func(t *testing.T) {
		s, mock := setupPgStore(t)
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE articles SET")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta("COALESCE(MIN(position), 0) - 1")).
			WithArgs(a.ID, a.Title, a.Content, a.Excerpt, a.ImageURL, a.Author, a.Category, "draft", a.Date).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		require.NoError(t, s.Put(context.Background(), a))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure rolls back", func(t *testing.T) {
		s, mock := setupPgStore(t)
		boom := errors.New("connection reset")
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE articles SET")).WillReturnError(boom)
		mock.ExpectRollback()

		err := s.Put(context.Background(), a)
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPgStoreDelete(t *testing.T) {
	s, mock := setupPgStore(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM articles WHERE id = $1")).
		WithArgs("a").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Delete(context.Background(), "a"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS articles")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, RunMigrations(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
