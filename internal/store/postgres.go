package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/nitesh/velara/pkg/models"
)

// PgStore keeps one row per article. New rows take a position below every
// existing row so ListAll returns them first; updates leave position alone.
type PgStore struct {
	db *sqlx.DB
}

func NewPgStore(db *sql.DB, driverName string) *PgStore {
	if driverName == "" {
		driverName = "postgres"
	}
	return &PgStore{db: sqlx.NewDb(db, driverName)}
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	initSQL := `
CREATE TABLE IF NOT EXISTS articles(
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL DEFAULT '',
  content TEXT NOT NULL DEFAULT '',
  excerpt TEXT NOT NULL DEFAULT '',
  image_url TEXT NOT NULL DEFAULT '',
  author TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'draft',
  date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  position BIGINT NOT NULL DEFAULT 0,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_articles_position ON articles(position);
CREATE INDEX IF NOT EXISTS idx_articles_status ON articles(status);
`
	_, err := db.ExecContext(ctx, initSQL)
	return err
}

const selectArticles = `
SELECT id,title,content,excerpt,image_url,author,category,status,date
FROM articles
`

func (p *PgStore) ListAll(ctx context.Context) ([]models.Article, error) {
	rows := []models.Article{}
	err := p.db.SelectContext(ctx, &rows, selectArticles+"ORDER BY position ASC, created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return rows, nil
}

func (p *PgStore) Get(ctx context.Context, id string) (models.Article, error) {
	var a models.Article
	err := p.db.GetContext(ctx, &a, selectArticles+"WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Article{}, ErrNotFound
	}
	if err != nil {
		return models.Article{}, fmt.Errorf("get article id=%s: %w", id, err)
	}
	return a, nil
}

// Put updates the row in place or inserts it at the front, in one transaction.
func (p *PgStore) Put(ctx context.Context, a models.Article) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `
UPDATE articles SET
 title=$2,
 content=$3,
 excerpt=$4,
 image_url=$5,
 author=$6,
 category=$7,
 status=$8,
 date=$9
WHERE id=$1
`, a.ID, a.Title, a.Content, a.Excerpt, a.ImageURL, a.Author, a.Category, string(a.Status), a.Date)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("update article id=%s: %w", a.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("update article id=%s: %w", a.ID, err)
	}

	if n == 0 {
		_, err = tx.ExecContext(ctx, `
INSERT INTO articles (id, title, content, excerpt, image_url, author, category, status, date, position, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,(SELECT COALESCE(MIN(position), 0) - 1 FROM articles),NOW())
`, a.ID, a.Title, a.Content, a.Excerpt, a.ImageURL, a.Author, a.Category, string(a.Status), a.Date)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("insert article id=%s: %w", a.ID, err)
		}
	}

	return tx.Commit()
}

func (p *PgStore) Delete(ctx context.Context, id string) error {
	if _, err := p.db.ExecContext(ctx, "DELETE FROM articles WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete article id=%s: %w", id, err)
	}
	return nil
}

// Ping reports whether the database answers.
func (p *PgStore) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}
