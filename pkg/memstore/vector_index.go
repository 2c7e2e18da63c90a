package memstore

import (
	"context"
	"sort"
	"sync"

	"nexnews/embedding"
	"nexnews/repository"
)

// VectorIndex is an in-memory repository.ArticleVectorRepo backed by a
// brute-force cosine scan. Fine for dev mode and tests; qdrant serves
// production.
type VectorIndex struct {
	mu   sync.RWMutex
	docs map[int64]repository.ArticleVectorDoc
}

var _ repository.ArticleVectorRepo = (*VectorIndex)(nil)

func NewVectorIndex() *VectorIndex {
	return &VectorIndex{docs: make(map[int64]repository.ArticleVectorDoc)}
}

func (v *VectorIndex) InsertOne(_ context.Context, doc *repository.ArticleVectorDoc) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, exists := v.docs[doc.ArticleID]; exists {
		return nil
	}
	v.docs[doc.ArticleID] = *doc
	return nil
}

func (v *VectorIndex) Query(_ context.Context, vector []float32, category repository.Category, limit int) ([]repository.ArticleVectorMatch, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	matches := make([]repository.ArticleVectorMatch, 0, len(v.docs))
	for id, doc := range v.docs {
		if category != "" && doc.Category != category {
			continue
		}
		matches = append(matches, repository.ArticleVectorMatch{
			ArticleID: id,
			Score:     embedding.CosineSimilarity(vector, doc.Vector),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score == matches[j].Score {
			return matches[i].ArticleID < matches[j].ArticleID
		}
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (v *VectorIndex) ListIDs(_ context.Context) ([]int64, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	ids := make([]int64, 0, len(v.docs))
	for id := range v.docs {
		ids = append(ids, id)
	}
	return ids, nil
}

func (v *VectorIndex) DeleteOne(_ context.Context, articleID int64) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	delete(v.docs, articleID)
	return nil
}

func (v *VectorIndex) Count(_ context.Context) (uint64, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return uint64(len(v.docs)), nil
}
