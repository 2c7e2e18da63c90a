package repository

import "context"

// ArticleVectorDoc is the embedding record indexed for one article. The
// metadata fields are a snapshot taken at embedding time and are never
// refreshed if the article changes afterwards.
type ArticleVectorDoc struct {
	ArticleID int64
	Vector    []float32
	Category  Category
	Source    string
	Title     string
}

// ArticleVectorMatch is one nearest-neighbor result. Score is cosine
// similarity where 1.0 means identical.
type ArticleVectorMatch struct {
	ArticleID int64
	Score     float32
}

// ArticleVectorRepo stores at most one embedding per article id and
// supports similarity queries with an optional category filter.
type ArticleVectorRepo interface {
	// InsertOne indexes the document unless the article id is already
	// present. A repeated insert is a no-op.
	InsertOne(ctx context.Context, doc *ArticleVectorDoc) error
	// Query returns up to limit matches ordered nearest-first. An empty
	// category means no filter.
	Query(ctx context.Context, vector []float32, category Category, limit int) ([]ArticleVectorMatch, error)
	// ListIDs returns every indexed article id; used by the reconciler.
	ListIDs(ctx context.Context) ([]int64, error)
	DeleteOne(ctx context.Context, articleID int64) error
	Count(ctx context.Context) (uint64, error)
}
