package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nitesh/velara/pkg/models"
)

// FileCollection stores the list as one JSON file. Writes go to a temp file
// in the same directory and are renamed over the old one.
type FileCollection struct {
	path string
}

func NewFileCollection(path string) *FileCollection {
	return &FileCollection{path: path}
}

func (f *FileCollection) Path() string { return f.path }

func (f *FileCollection) ReadAll(_ context.Context) ([]models.Article, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Article{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", f.path, err)
	}
	return decodeArticles(b)
}

func (f *FileCollection) WriteAll(_ context.Context, articles []models.Article) error {
	b, err := encodeArticles(articles)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating store dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".articles-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replacing %s: %w", f.path, err)
	}
	return nil
}
