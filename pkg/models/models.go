package models

import (
	"time"
)

// Status controls only how the dashboard filters an article.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Valid reports whether s is one of the two known statuses.
func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// Default values the editor fills into a fresh article.
const (
	DefaultAuthor   = "Admin"
	DefaultCategory = "General"
)

// Categories lists the conventional category labels. Category is free text,
// so this list is a hint for clients and never enforced.
var Categories = []string{"General", "Technology", "Politics", "Lifestyle", "Sports"}

// Article represents a news article record used across the service.
// JSON names follow the persisted blob layout; db tags follow the articles table.
type Article struct {
	ID       string    `db:"id" json:"id"`
	Title    string    `db:"title" json:"title"`
	Content  string    `db:"content" json:"content"`
	Excerpt  string    `db:"excerpt" json:"excerpt"`
	ImageURL string    `db:"image_url" json:"imageUrl"`
	Author   string    `db:"author" json:"author"`
	Category string    `db:"category" json:"category"`
	Status   Status    `db:"status" json:"status"`
	Date     time.Time `db:"date" json:"date"`
}

// Draft is what the AI writer produces for an article.
type Draft struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Excerpt string `json:"excerpt"`
}

// ApplyTo overwrites only the generated fields of a.
func (d Draft) ApplyTo(a Article) Article {
	a.Title = d.Title
	a.Content = d.Content
	a.Excerpt = d.Excerpt
	return a
}

// BackendInput is the body accepted by the plain articles endpoint.
type BackendInput struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`
	Category string `json:"category"`
}

// BackendRow is an article as the plain articles endpoint returns it.
// CreatedAt carries the article date, which every save moves forward, so
// after an edit it is the last save time rather than the creation time.
type BackendRow struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"image_url"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// Row converts a to its backend row shape.
func (a Article) Row() BackendRow {
	return BackendRow{
		ID:        a.ID,
		Title:     a.Title,
		Content:   a.Content,
		ImageURL:  a.ImageURL,
		Category:  a.Category,
		CreatedAt: a.Date,
	}
}
