package store

import (
	"context"
	"sync"

	"github.com/nitesh/velara/pkg/models"
)

// MemoryCollection keeps the encoded list in process memory. Reads decode a
// fresh copy so callers never share slices with the stored value.
type MemoryCollection struct {
	mu   sync.RWMutex
	data []byte
}

func NewMemoryCollection() *MemoryCollection {
	return &MemoryCollection{}
}

func (m *MemoryCollection) ReadAll(_ context.Context) ([]models.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return decodeArticles(m.data)
}

func (m *MemoryCollection) WriteAll(_ context.Context, articles []models.Article) error {
	b, err := encodeArticles(articles)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data = b
	m.mu.Unlock()
	return nil
}
