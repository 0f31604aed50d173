package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/nitesh/velara/pkg/models"
)

var (
	// ErrNotFound is returned by Get when no article has the requested id.
	ErrNotFound = errors.New("article not found")
	// ErrCorrupt means the persisted collection could not be decoded.
	ErrCorrupt = errors.New("article store is corrupt")
)

// Collection holds the whole article list as a single value.
// ReadAll returns an empty slice when nothing has been stored yet.
// WriteAll replaces the stored list in one step.
type Collection interface {
	ReadAll(ctx context.Context) ([]models.Article, error)
	WriteAll(ctx context.Context, articles []models.Article) error
}

// Repository is the keyed-record view the service works against.
// Put replaces a record with the same id in place, otherwise inserts it first.
type Repository interface {
	ListAll(ctx context.Context) ([]models.Article, error)
	Get(ctx context.Context, id string) (models.Article, error)
	Put(ctx context.Context, article models.Article) error
	Delete(ctx context.Context, id string) error
}

// BlobStore implements Repository on top of a Collection by reading and
// rewriting the whole list on every mutation. The mutex only serializes
// callers inside this process; separate processes sharing the same
// collection still race and the last WriteAll wins.
type BlobStore struct {
	mu   sync.Mutex
	coll Collection
}

func NewBlobStore(coll Collection) *BlobStore {
	return &BlobStore{coll: coll}
}

func (s *BlobStore) ListAll(ctx context.Context) ([]models.Article, error) {
	return s.coll.ReadAll(ctx)
}

func (s *BlobStore) Get(ctx context.Context, id string) (models.Article, error) {
	articles, err := s.coll.ReadAll(ctx)
	if err != nil {
		return models.Article{}, err
	}
	for _, a := range articles {
		if a.ID == id {
			return a, nil
		}
	}
	return models.Article{}, ErrNotFound
}

func (s *BlobStore) Put(ctx context.Context, article models.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	articles, err := s.coll.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("read articles: %w", err)
	}
	if err := s.coll.WriteAll(ctx, upsert(articles, article)); err != nil {
		return fmt.Errorf("write articles: %w", err)
	}
	return nil
}

func (s *BlobStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	articles, err := s.coll.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("read articles: %w", err)
	}
	if err := s.coll.WriteAll(ctx, remove(articles, id)); err != nil {
		return fmt.Errorf("write articles: %w", err)
	}
	return nil
}

// upsert replaces the first record with a's id and drops any later copies
// of that id, or prepends a when the id is new.
func upsert(articles []models.Article, a models.Article) []models.Article {
	out := make([]models.Article, 0, len(articles)+1)
	found := false
	for _, cur := range articles {
		if cur.ID != a.ID {
			out = append(out, cur)
			continue
		}
		if !found {
			out = append(out, a)
			found = true
		}
	}
	if found {
		return out
	}
	return append([]models.Article{a}, out...)
}

func remove(articles []models.Article, id string) []models.Article {
	out := make([]models.Article, 0, len(articles))
	for _, a := range articles {
		if a.ID != id {
			out = append(out, a)
		}
	}
	return out
}

func decodeArticles(b []byte) ([]models.Article, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return []models.Article{}, nil
	}
	var out []models.Article
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if out == nil {
		out = []models.Article{}
	}
	return out, nil
}

func encodeArticles(articles []models.Article) ([]byte, error) {
	if articles == nil {
		articles = []models.Article{}
	}
	b, err := json.Marshal(articles)
	if err != nil {
		return nil, fmt.Errorf("encode articles: %w", err)
	}
	return b, nil
}

// Pinger is implemented by backends that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping delegates to the collection when it can report connectivity.
func (s *BlobStore) Ping(ctx context.Context) error {
	if p, ok := s.coll.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
