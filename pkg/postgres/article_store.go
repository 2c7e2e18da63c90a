package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nexnews/repository"
)

// ArticleStore persists articles in Postgres. URL uniqueness is enforced
// by the unique index created in the migrations.
type ArticleStore struct {
	pool *pgxpool.Pool
}

var _ repository.ArticleStore = (*ArticleStore)(nil)

func NewArticleStore(ctx context.Context, dbURL, migrationsPath string) (*ArticleStore, error) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	m, err := migrate.New(migrationsPath, dbURL)
	if err != nil {
		return nil, err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return nil, err
	}

	return &ArticleStore{pool: pool}, nil
}

func (s *ArticleStore) Insert(ctx context.Context, raw repository.RawArticle) (int64, error) {
	query := `
		INSERT INTO articles (title, url, summary, source, published_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (url) DO NOTHING
		RETURNING id
	`

	var id int64
	err := s.pool.QueryRow(ctx, query, raw.Title, raw.URL, raw.Summary, raw.Source, raw.PublishedAt).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, repository.ErrDuplicateURL
	}
	if err != nil {
		return 0, fmt.Errorf("unable to insert article: %w", err)
	}
	return id, nil
}

func (s *ArticleStore) SetCategory(ctx context.Context, id int64, category repository.Category) error {
	tag, err := s.pool.Exec(ctx, `UPDATE articles SET category = $1 WHERE id = $2`, string(category), id)
	if err != nil {
		return fmt.Errorf("unable to update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *ArticleStore) GetByID(ctx context.Context, id int64) (*repository.Article, error) {
	query := `
		SELECT id, title, url, COALESCE(summary, ''), source, COALESCE(category, ''), published_at, created_at
		FROM articles WHERE id = $1
	`

	var a repository.Article
	var category string
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.Title, &a.URL, &a.Summary, &a.Source, &category, &a.PublishedAt, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("unable to fetch article: %w", err)
	}
	a.Category = repository.Category(category)
	return &a, nil
}

func (s *ArticleStore) ListAll(ctx context.Context) ([]repository.Article, error) {
	query := `
		SELECT id, title, url, COALESCE(summary, ''), source, COALESCE(category, ''), published_at, created_at
		FROM articles ORDER BY id
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("unable to list articles: %w", err)
	}
	defer rows.Close()

	return scanArticles(rows)
}

func (s *ArticleStore) ListByCategory(ctx context.Context, category repository.Category, limit int) ([]repository.Article, error) {
	query := `
		SELECT id, title, url, COALESCE(summary, ''), source, COALESCE(category, ''), published_at, created_at
		FROM articles WHERE category = $1 ORDER BY id LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, string(category), limit)
	if err != nil {
		return nil, fmt.Errorf("unable to list articles by category: %w", err)
	}
	defer rows.Close()

	return scanArticles(rows)
}

func (s *ArticleStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("unable to delete article: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *ArticleStore) Stats(ctx context.Context) (*repository.StoreStats, error) {
	stats := &repository.StoreStats{
		ByCategory: make(map[string]int),
		BySource:   make(map[string]int),
	}

	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM articles`).Scan(&stats.Total); err != nil {
		return nil, fmt.Errorf("unable to count articles: %w", err)
	}

	rows, err := s.pool.Query(ctx, `SELECT COALESCE(category, ''), COUNT(*) FROM articles GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("unable to group by category: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		stats.ByCategory[category] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	srcRows, err := s.pool.Query(ctx, `SELECT source, COUNT(*) FROM articles GROUP BY source`)
	if err != nil {
		return nil, fmt.Errorf("unable to group by source: %w", err)
	}
	defer srcRows.Close()
	for srcRows.Next() {
		var source string
		var count int
		if err := srcRows.Scan(&source, &count); err != nil {
			return nil, err
		}
		stats.BySource[source] = count
	}
	if err := srcRows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *ArticleStore) Close() {
	s.pool.Close()
}

func scanArticles(rows pgx.Rows) ([]repository.Article, error) {
	var articles []repository.Article
	for rows.Next() {
		var a repository.Article
		var category string
		if err := rows.Scan(&a.ID, &a.Title, &a.URL, &a.Summary, &a.Source, &category, &a.PublishedAt, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Category = repository.Category(category)
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return articles, nil
}
