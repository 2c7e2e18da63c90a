package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"nexnews/embedding"
	"nexnews/repository"
)

// ErrInvalidRequest is returned for malformed search requests: neither
// prompt nor category given, a category outside the fixed set, or a
// non-positive limit.
var ErrInvalidRequest = errors.New("invalid search request")

// DefaultLimit bounds result counts when the caller does not set one.
const DefaultLimit = 10

// queryTimeout bounds one whole retrieval call, query embedding and
// store reads included. HTTP request contexts carry no deadline of
// their own.
const queryTimeout = 30 * time.Second

// Request carries the retrieval parameters. At least one of Prompt or
// Category must be set.
type Request struct {
	Prompt   string
	Category string
	Limit    int
}

// Result is a hydrated article with its similarity score. Score is zero
// in category-only mode, where there is no query vector to rank against.
type Result struct {
	Article repository.Article `json:"article"`
	Score   float64            `json:"score"`
}

// Stats combines relational-store counters with the vector index size.
type Stats struct {
	repository.StoreStats
	EmbeddingCount uint64 `json:"embedding_count"`
}

// Engine answers search requests against the vector index and the
// relational store. Semantic and category-only mode are chosen per call
// and never combined into one query.
type Engine struct {
	store    repository.ArticleStore
	vectors  repository.ArticleVectorRepo
	embedder embedding.Client
	logger   *zap.Logger
}

func NewEngine(
	store repository.ArticleStore,
	vectors repository.ArticleVectorRepo,
	embedder embedding.Client,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		store:    store,
		vectors:  vectors,
		embedder: embedder,
		logger:   logger,
	}
}

// Search runs semantic mode when a prompt is present, otherwise
// category-only mode. Results are capped at req.Limit.
func (e *Engine) Search(ctx context.Context, req Request) ([]Result, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if req.Limit == 0 {
		req.Limit = DefaultLimit
	}
	if req.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must be positive", ErrInvalidRequest)
	}
	if req.Prompt == "" && req.Category == "" {
		return nil, fmt.Errorf("%w: at least one of prompt or category is required", ErrInvalidRequest)
	}

	var category repository.Category
	if req.Category != "" {
		parsed, ok := repository.ParseCategory(req.Category)
		if !ok {
			return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidRequest, req.Category)
		}
		category = parsed
	}

	if req.Prompt != "" {
		return e.semanticSearch(ctx, req.Prompt, category, req.Limit)
	}
	return e.categorySearch(ctx, category, req.Limit)
}

func (e *Engine) semanticSearch(ctx context.Context, prompt string, category repository.Category, limit int) ([]Result, error) {
	vectors, err := e.embedder.GetEmbeddings(ctx, []string{prompt})
	if err != nil || len(vectors) == 0 || len(vectors[0]) == 0 {
		// Query embedding failure degrades to an empty result, never an
		// error to the caller.
		e.logger.Warn("query embedding failed",
			zap.String("prompt", prompt),
			zap.Error(err))
		return []Result{}, nil
	}

	matches, err := e.vectors.Query(ctx, vectors[0], category, limit)
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}

	results := make([]Result, 0, len(matches))
	for _, m := range matches {
		article, err := e.store.GetByID(ctx, m.ArticleID)
		if errors.Is(err, repository.ErrNotFound) {
			// Orphaned embedding whose article was deleted without the
			// paired vector delete; dropped from the result.
			e.logger.Warn("dropping match without stored article",
				zap.Int64("article_id", m.ArticleID))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("hydrate article %d: %w", m.ArticleID, err)
		}
		results = append(results, Result{Article: *article, Score: float64(m.Score)})
	}

	return results, nil
}

func (e *Engine) categorySearch(ctx context.Context, category repository.Category, limit int) ([]Result, error) {
	articles, err := e.store.ListByCategory(ctx, category, limit)
	if err != nil {
		return nil, fmt.Errorf("list by category: %w", err)
	}

	results := make([]Result, 0, len(articles))
	for _, a := range articles {
		results = append(results, Result{Article: a})
	}
	return results, nil
}

// GetByID fetches a single article; an unknown id surfaces as
// repository.ErrNotFound, distinct from an empty search result.
func (e *Engine) GetByID(ctx context.Context, id int64) (*repository.Article, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return e.store.GetByID(ctx, id)
}

// Stats reports relational-store counters plus the embedding count.
func (e *Engine) Stats(ctx context.Context) (*Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	storeStats, err := e.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("store stats: %w", err)
	}
	count, err := e.vectors.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("vector count: %w", err)
	}
	return &Stats{StoreStats: *storeStats, EmbeddingCount: count}, nil
}
