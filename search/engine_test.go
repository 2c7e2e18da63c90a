package search

import (
	"context"
	"errors"
	"math"
	"testing"

	"go.uber.org/zap"

	"nexnews/ingest"
	"nexnews/pkg/memstore"
	"nexnews/repository"
)

type stubClassifier struct {
	category repository.Category
}

func (s *stubClassifier) Classify(_ context.Context, _, _ string) (repository.Category, error) {
	return s.category, nil
}

type stubEmbedder struct {
	vec     []float32
	fail    bool
	bounded bool
}

func (s *stubEmbedder) GetEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	_, s.bounded = ctx.Deadline()
	if s.fail {
		return nil, errors.New("embedding unavailable")
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = s.vec
	}
	return out, nil
}

type fixture struct {
	store    *memstore.ArticleStore
	vectors  *memstore.VectorIndex
	embedder *stubEmbedder
	pipeline *ingest.Pipeline
	engine   *Engine
}

func newFixture(category repository.Category) *fixture {
	store := memstore.NewArticleStore()
	vectors := memstore.NewVectorIndex()
	embedder := &stubEmbedder{vec: []float32{0.1, 0.2, 0.3}}
	pipeline := ingest.NewPipeline(store, vectors, &stubClassifier{category: category}, embedder, zap.NewNop())
	engine := NewEngine(store, vectors, embedder, zap.NewNop())
	return &fixture{store: store, vectors: vectors, embedder: embedder, pipeline: pipeline, engine: engine}
}

func TestSearchRequestValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(repository.CategoryCybersecurity)

	testCases := []struct {
		name string
		req  Request
	}{
		{"MissingPromptAndCategory", Request{Limit: 10}},
		{"UnknownCategory", Request{Category: "Sports", Limit: 10}},
		{"NegativeLimit", Request{Prompt: "x", Limit: -1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.engine.Search(context.Background(), tc.req); !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestCategorySearchScenario(t *testing.T) {
	t.Parallel()

	f := newFixture(repository.CategoryCybersecurity)
	f.pipeline.Ingest(context.Background(), []repository.RawArticle{{
		Title:   "Zero-day in X",
		URL:     "https://e/1",
		Summary: "critical flaw",
		Source:  "rss:test",
	}})

	results, err := f.engine.Search(context.Background(), Request{Category: "Cybersecurity", Limit: 10})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected exactly 1 result, got %d", len(results))
	}
	if results[0].Article.URL != "https://e/1" {
		t.Errorf("unexpected article %q", results[0].Article.URL)
	}

	article, err := f.engine.GetByID(context.Background(), results[0].Article.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if article.Title != "Zero-day in X" {
		t.Errorf("unexpected title %q", article.Title)
	}

	if _, err := f.engine.GetByID(context.Background(), 999999); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestSemanticSearchIdenticalVectorScoresOne(t *testing.T) {
	t.Parallel()

	f := newFixture(repository.CategoryCybersecurity)
	f.pipeline.Ingest(context.Background(), []repository.RawArticle{{
		Title:   "Zero-day in X",
		URL:     "https://e/1",
		Summary: "critical flaw",
		Source:  "rss:test",
	}})

	results, err := f.engine.Search(context.Background(), Request{Prompt: "zero day", Limit: 1})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected exactly 1 result, got %d", len(results))
	}
	if results[0].Article.URL != "https://e/1" {
		t.Errorf("unexpected article %q", results[0].Article.URL)
	}
	if math.Abs(results[0].Score-1.0) > 1e-5 {
		t.Errorf("expected similarity 1.0 for identical vectors, got %f", results[0].Score)
	}
}

func TestSearchHonorsLimit(t *testing.T) {
	t.Parallel()

	f := newFixture(repository.CategoryCybersecurity)
	raws := []repository.RawArticle{
		{Title: "a", URL: "https://e/1", Source: "rss:test"},
		{Title: "b", URL: "https://e/2", Source: "rss:test"},
		{Title: "c", URL: "https://e/3", Source: "rss:test"},
		{Title: "d", URL: "https://e/4", Source: "rss:test"},
		{Title: "e", URL: "https://e/5", Source: "rss:test"},
	}
	f.pipeline.Ingest(context.Background(), raws)

	for _, req := range []Request{
		{Prompt: "anything", Limit: 2},
		{Category: "Cybersecurity", Limit: 2},
		{Prompt: "anything", Category: "Cybersecurity", Limit: 2},
	} {
		results, err := f.engine.Search(context.Background(), req)
		if err != nil {
			t.Fatalf("search %+v: %v", req, err)
		}
		if len(results) > 2 {
			t.Errorf("search %+v returned %d results, want at most 2", req, len(results))
		}
	}
}

func TestPromptEmbeddingFailureDegradesToEmpty(t *testing.T) {
	t.Parallel()

	f := newFixture(repository.CategoryCybersecurity)
	f.pipeline.Ingest(context.Background(), []repository.RawArticle{{
		Title: "a", URL: "https://e/1", Source: "rss:test",
	}})

	f.embedder.fail = true
	results, err := f.engine.Search(context.Background(), Request{Prompt: "anything", Limit: 5})
	if err != nil {
		t.Fatalf("expected graceful degradation, got error %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty result set, got %d", len(results))
	}
}

func TestOrphanedEmbeddingDroppedAtHydration(t *testing.T) {
	t.Parallel()

	f := newFixture(repository.CategoryCybersecurity)
	f.pipeline.Ingest(context.Background(), []repository.RawArticle{
		{Title: "a", URL: "https://e/1", Source: "rss:test"},
		{Title: "b", URL: "https://e/2", Source: "rss:test"},
	})

	// Delete the article row only, leaving its embedding orphaned.
	if err := f.store.Delete(context.Background(), 1); err != nil {
		t.Fatalf("delete: %v", err)
	}

	results, err := f.engine.Search(context.Background(), Request{Prompt: "anything", Limit: 10})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected orphaned match dropped, got %d results", len(results))
	}
	if results[0].Article.ID != 2 {
		t.Errorf("expected surviving article 2, got %d", results[0].Article.ID)
	}
}

func TestSemanticSearchBoundsQueryEmbedding(t *testing.T) {
	t.Parallel()

	f := newFixture(repository.CategoryCybersecurity)
	f.pipeline.Ingest(context.Background(), []repository.RawArticle{{
		Title: "a", URL: "https://e/1", Source: "rss:test",
	}})

	f.embedder.bounded = false
	if _, err := f.engine.Search(context.Background(), Request{Prompt: "anything", Limit: 5}); err != nil {
		t.Fatalf("search: %v", err)
	}
	if !f.embedder.bounded {
		t.Error("query embedding received a context without a deadline")
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	f := newFixture(repository.CategoryCybersecurity)
	f.pipeline.Ingest(context.Background(), []repository.RawArticle{
		{Title: "a", URL: "https://e/1", Source: "rss:one"},
		{Title: "b", URL: "https://e/2", Source: "rss:two"},
	})

	stats, err := f.engine.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 2 {
		t.Errorf("expected 2 articles, got %d", stats.Total)
	}
	if stats.ByCategory[string(repository.CategoryCybersecurity)] != 2 {
		t.Errorf("unexpected category counts: %v", stats.ByCategory)
	}
	if stats.BySource["rss:one"] != 1 || stats.BySource["rss:two"] != 1 {
		t.Errorf("unexpected source counts: %v", stats.BySource)
	}
	if stats.EmbeddingCount != 2 {
		t.Errorf("expected 2 embeddings, got %d", stats.EmbeddingCount)
	}
}
