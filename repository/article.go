package repository

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrDuplicateURL is returned by Insert when the article URL is already stored.
	ErrDuplicateURL = errors.New("article url already exists")
	// ErrNotFound is returned when an article id has no stored record.
	ErrNotFound = errors.New("article not found")
)

// Category is the closed set of topics an article can be classified into.
type Category string

const (
	CategoryCybersecurity Category = "Cybersecurity"
	CategoryAI            Category = "Artificial Intelligence & Emerging Tech"
	CategorySoftware      Category = "Software & Development"
	CategoryHardware      Category = "Hardware & Devices"
	CategoryBusiness      Category = "Tech Industry & Business"
	CategoryOther         Category = "Other"
)

// FallbackCategory is assigned when classification fails or returns an
// unknown value.
const FallbackCategory = CategorySoftware

// Categories returns all valid categories in a stable order.
func Categories() []Category {
	return []Category{
		CategoryCybersecurity,
		CategoryAI,
		CategorySoftware,
		CategoryHardware,
		CategoryBusiness,
		CategoryOther,
	}
}

// ParseCategory reports whether s names a valid category.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories() {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// RawArticle is what a feed producer hands to the ingestion pipeline.
type RawArticle struct {
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Summary     string     `json:"summary"`
	Source      string     `json:"source"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// Article is a stored news item. Category is empty until classification
// has been persisted.
type Article struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Summary     string     `json:"summary"`
	Source      string     `json:"source"`
	Category    Category   `json:"category"`
	PublishedAt *time.Time `json:"published_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// StoreStats summarizes the relational store contents.
type StoreStats struct {
	Total      int            `json:"total_articles"`
	ByCategory map[string]int `json:"by_category"`
	BySource   map[string]int `json:"by_source"`
}

// ArticleStore persists articles with URL uniqueness enforced at the
// store boundary.
type ArticleStore interface {
	// Insert stores a new article and returns its assigned id.
	// Inserting an already-stored URL returns ErrDuplicateURL with no
	// side effects.
	Insert(ctx context.Context, raw RawArticle) (int64, error)
	// SetCategory persists the classification result for an article.
	SetCategory(ctx context.Context, id int64, category Category) error
	GetByID(ctx context.Context, id int64) (*Article, error)
	// ListAll returns every stored article; used by the reconciler.
	ListAll(ctx context.Context) ([]Article, error)
	ListByCategory(ctx context.Context, category Category, limit int) ([]Article, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context) (*StoreStats, error)
}
