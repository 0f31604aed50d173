package backup

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nitesh/velara/internal/store"
	"github.com/nitesh/velara/pkg/models"
)

// Lister is the read side of the article service.
type Lister interface {
	List(ctx context.Context) ([]models.Article, error)
}

// WriteSnapshot writes the current article list to dir as one JSON file and
// returns its path.
func WriteSnapshot(ctx context.Context, l Lister, dir string, now time.Time) (string, error) {
	articles, err := l.List(ctx)
	if err != nil {
		return "", fmt.Errorf("list articles: %w", err)
	}
	path := filepath.Join(dir, "articles-"+now.UTC().Format("20060102T150405Z")+".json")
	if err := store.NewFileCollection(path).WriteAll(ctx, articles); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

type Scheduler struct {
	c *cron.Cron
}

// NewScheduler registers a snapshot job on a six-field (with seconds) cron spec.
func NewScheduler(l Lister, dir, spec string) (*Scheduler, error) {
	c := cron.New(cron.WithSeconds())
	_, err := c.AddFunc(spec, func() {
		path, err := WriteSnapshot(context.Background(), l, dir, time.Now())
		if err != nil {
			log.Printf("[backup] snapshot failed: %v", err)
			return
		}
		log.Printf("[backup] snapshot written path=%s", path)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid backup schedule %q: %w", spec, err)
	}
	return &Scheduler{c: c}, nil
}

func (s *Scheduler) Start() {
	s.c.Start()
	log.Println("[backup] scheduler started")
}

// Stop halts scheduling and waits for a running snapshot to finish.
func (s *Scheduler) Stop() {
	<-s.c.Stop().Done()
}
