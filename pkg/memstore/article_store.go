package memstore

import (
	"context"
	"sync"
	"time"

	"nexnews/repository"
)

// ArticleStore is a mutex-guarded in-memory implementation of
// repository.ArticleStore. It backs dev mode when no database is
// configured and the package tests.
type ArticleStore struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*repository.Article
	byURL  map[string]int64
}

var _ repository.ArticleStore = (*ArticleStore)(nil)

func NewArticleStore() *ArticleStore {
	return &ArticleStore{
		nextID: 1,
		byID:   make(map[int64]*repository.Article),
		byURL:  make(map[string]int64),
	}
}

func (s *ArticleStore) Insert(_ context.Context, raw repository.RawArticle) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byURL[raw.URL]; exists {
		return 0, repository.ErrDuplicateURL
	}

	id := s.nextID
	s.nextID++
	s.byID[id] = &repository.Article{
		ID:          id,
		Title:       raw.Title,
		URL:         raw.URL,
		Summary:     raw.Summary,
		Source:      raw.Source,
		PublishedAt: raw.PublishedAt,
		CreatedAt:   time.Now().UTC(),
	}
	s.byURL[raw.URL] = id
	return id, nil
}

func (s *ArticleStore) SetCategory(_ context.Context, id int64, category repository.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	article, ok := s.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	article.Category = category
	return nil
}

func (s *ArticleStore) GetByID(_ context.Context, id int64) (*repository.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	article, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *article
	return &copied, nil
}

func (s *ArticleStore) ListAll(_ context.Context) ([]repository.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	articles := make([]repository.Article, 0, len(s.byID))
	for id := int64(1); id < s.nextID; id++ {
		if article, ok := s.byID[id]; ok {
			articles = append(articles, *article)
		}
	}
	return articles, nil
}

func (s *ArticleStore) ListByCategory(_ context.Context, category repository.Category, limit int) ([]repository.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var articles []repository.Article
	for id := int64(1); id < s.nextID && len(articles) < limit; id++ {
		article, ok := s.byID[id]
		if !ok || article.Category != category {
			continue
		}
		articles = append(articles, *article)
	}
	return articles, nil
}

func (s *ArticleStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	article, ok := s.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(s.byURL, article.URL)
	delete(s.byID, id)
	return nil
}

func (s *ArticleStore) Stats(_ context.Context) (*repository.StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &repository.StoreStats{
		Total:      len(s.byID),
		ByCategory: make(map[string]int),
		BySource:   make(map[string]int),
	}
	for _, article := range s.byID {
		stats.ByCategory[string(article.Category)]++
		stats.BySource[article.Source]++
	}
	return stats, nil
}
