package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nitesh/velara/internal/llm"
	"github.com/nitesh/velara/internal/store"
	"github.com/nitesh/velara/pkg/models"
)

// ErrInvalidArticle marks input the service refuses to store.
var ErrInvalidArticle = errors.New("invalid article")

// Generator drafts article text from a topic.
type Generator interface {
	GenerateArticle(ctx context.Context, topic string) (models.Draft, error)
}

type Service struct {
	repo  store.Repository
	gen   Generator
	now   func() time.Time
	newID func() string
}

type Option func(*Service)

// WithClock replaces time.Now for save timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDFunc replaces the UUID generator used for new drafts.
func WithIDFunc(f func() string) Option {
	return func(s *Service) { s.newID = f }
}

func NewService(repo store.Repository, gen Generator, opts ...Option) *Service {
	s := &Service{
		repo:  repo,
		gen:   gen,
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the stored articles as they are, most recent first.
func (s *Service) List(ctx context.Context) ([]models.Article, error) {
	return s.repo.ListAll(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (models.Article, error) {
	return s.repo.Get(ctx, id)
}

// Save stamps the article with the current time and stores it as a full
// replacement. A new id goes to the front of the list; an existing one keeps
// its place.
func (s *Service) Save(ctx context.Context, a models.Article) (models.Article, error) {
	if strings.TrimSpace(a.ID) == "" {
		return models.Article{}, fmt.Errorf("%w: id is required", ErrInvalidArticle)
	}
	if a.Status == "" {
		a.Status = models.StatusDraft
	}
	if !a.Status.Valid() {
		return models.Article{}, fmt.Errorf("%w: unknown status %q", ErrInvalidArticle, a.Status)
	}
	a.Date = s.now()

	if err := s.repo.Put(ctx, a); err != nil {
		return models.Article{}, fmt.Errorf("save article id=%s: %w", a.ID, err)
	}
	return a, nil
}

// Delete removes the article; a missing id is not an error.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete article id=%s: %w", id, err)
	}
	return nil
}

// NewDraft returns the defaults the editor starts a new article from.
func (s *Service) NewDraft() models.Article {
	return models.Article{
		ID:       s.newID(),
		Author:   models.DefaultAuthor,
		Category: models.DefaultCategory,
		Status:   models.StatusDraft,
		Date:     s.now(),
	}
}

// Search keeps articles whose title or category contains term, ignoring case.
func (s *Service) Search(ctx context.Context, term string) ([]models.Article, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if term == "" {
		return all, nil
	}
	term = strings.ToLower(term)
	out := []models.Article{}
	for _, a := range all {
		if strings.Contains(strings.ToLower(a.Title), term) ||
			strings.Contains(strings.ToLower(a.Category), term) {
			out = append(out, a)
		}
	}
	return out, nil
}

type Stats struct {
	Published int `json:"published"`
	Drafts    int `json:"drafts"`
	Total     int `json:"total"`
}

// Stats counts articles per status for the dashboard header.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return Stats{}, err
	}
	st := Stats{Total: len(all)}
	for _, a := range all {
		switch a.Status {
		case models.StatusPublished:
			st.Published++
		case models.StatusDraft:
			st.Drafts++
		}
	}
	return st, nil
}

// Create stores a new article from the plain backend payload.
func (s *Service) Create(ctx context.Context, in models.BackendInput) (models.Article, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Content) == "" {
		return models.Article{}, fmt.Errorf("%w: missing title or content", ErrInvalidArticle)
	}
	a := s.NewDraft()
	a.Title = in.Title
	a.Content = in.Content
	a.ImageURL = in.ImageURL
	if in.Category != "" {
		a.Category = in.Category
	}
	return s.Save(ctx, a)
}

// Generate fills title, content and excerpt of draft from topic. On failure
// the draft comes back untouched with an error matching llm.ErrGenerationFailed
// or llm.ErrEmptyTopic.
func (s *Service) Generate(ctx context.Context, draft models.Article, topic string) (models.Article, error) {
	if s.gen == nil {
		return draft, fmt.Errorf("%w: no generator configured", llm.ErrGenerationFailed)
	}
	d, err := s.gen.GenerateArticle(ctx, topic)
	if err != nil {
		return draft, err
	}
	return d.ApplyTo(draft), nil
}
