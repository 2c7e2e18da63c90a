package ingest

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"nexnews/classify"
	"nexnews/embedding"
	"nexnews/repository"
)

const (
	// AdapterTimeout bounds every classify/embed call.
	AdapterTimeout = 30 * time.Second

	// StoreTimeout bounds every relational and vector store call.
	StoreTimeout = 10 * time.Second

	// metaTitleLimit caps the title snapshot stored in the vector index.
	metaTitleLimit = 200
)

// Pipeline drives raw articles through dedupe-insert, classification,
// embedding, and vector indexing. The relational write and the vector
// write are two independent operations; a crash between them leaves
// store-ahead drift that Reconcile repairs on the next start.
type Pipeline struct {
	store      repository.ArticleStore
	vectors    repository.ArticleVectorRepo
	classifier classify.Client
	embedder   embedding.Client
	logger     *zap.Logger
}

func NewPipeline(
	store repository.ArticleStore,
	vectors repository.ArticleVectorRepo,
	classifier classify.Client,
	embedder embedding.Client,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		store:      store,
		vectors:    vectors,
		classifier: classifier,
		embedder:   embedder,
		logger:     logger,
	}
}

// Ingest processes one batch of raw articles and returns the number of
// newly stored ones. Duplicate URLs are skipped silently; every other
// per-item failure is logged and isolated so the batch always runs to
// completion.
func (p *Pipeline) Ingest(ctx context.Context, raws []repository.RawArticle) int {
	cycleID := uuid.NewString()
	stored := 0

	for _, raw := range raws {
		ictx, icancel := context.WithTimeout(ctx, StoreTimeout)
		id, err := p.store.Insert(ictx, raw)
		icancel()
		if errors.Is(err, repository.ErrDuplicateURL) {
			continue
		}
		if err != nil {
			p.logger.Error("insert article",
				zap.String("cycle_id", cycleID),
				zap.String("url", raw.URL),
				zap.Error(err))
			continue
		}
		stored++

		category := p.classifyWithFallback(ctx, cycleID, id, raw)

		sctx, scancel := context.WithTimeout(ctx, StoreTimeout)
		err = p.store.SetCategory(sctx, id, category)
		scancel()
		if err != nil {
			// Article stays stored with a null category; still indexed
			// under the category the classifier decided.
			p.logger.Error("persist category",
				zap.String("cycle_id", cycleID),
				zap.Int64("article_id", id),
				zap.Error(err))
		}

		p.embedAndIndex(ctx, cycleID, id, raw.Title, raw.Summary, category, raw.Source)
	}

	return stored
}

func (p *Pipeline) classifyWithFallback(ctx context.Context, cycleID string, id int64, raw repository.RawArticle) repository.Category {
	cctx, cancel := context.WithTimeout(ctx, AdapterTimeout)
	defer cancel()

	category, err := p.classifier.Classify(cctx, raw.Title, raw.Summary)
	if err != nil {
		p.logger.Warn("classification failed, using fallback category",
			zap.String("cycle_id", cycleID),
			zap.Int64("article_id", id),
			zap.String("fallback", string(repository.FallbackCategory)),
			zap.Error(err))
		return repository.FallbackCategory
	}
	if _, ok := repository.ParseCategory(string(category)); !ok {
		p.logger.Warn("classifier returned unknown category, using fallback",
			zap.String("cycle_id", cycleID),
			zap.Int64("article_id", id),
			zap.String("category", string(category)))
		return repository.FallbackCategory
	}
	return category
}

func (p *Pipeline) embedAndIndex(ctx context.Context, cycleID string, id int64, title, summary string, category repository.Category, source string) bool {
	ectx, cancel := context.WithTimeout(ctx, AdapterTimeout)
	defer cancel()

	vectors, err := p.embedder.GetEmbeddings(ectx, []string{EmbeddingText(title, summary)})
	if err != nil || len(vectors) == 0 || len(vectors[0]) == 0 {
		// Article stays searchable by category only; never retried inline.
		p.logger.Warn("embedding failed, article left unembedded",
			zap.String("cycle_id", cycleID),
			zap.Int64("article_id", id),
			zap.Error(err))
		return false
	}

	doc := &repository.ArticleVectorDoc{
		ArticleID: id,
		Vector:    vectors[0],
		Category:  category,
		Source:    source,
		Title:     truncate(title, metaTitleLimit),
	}
	sctx, scancel := context.WithTimeout(ctx, StoreTimeout)
	err = p.vectors.InsertOne(sctx, doc)
	scancel()
	if err != nil {
		p.logger.Error("index embedding",
			zap.String("cycle_id", cycleID),
			zap.Int64("article_id", id),
			zap.Error(err))
		return false
	}
	return true
}

// Reconcile re-derives embeddings for every article present in the
// relational store but absent from the vector index and returns how many
// it recomputed. Orphaned embeddings whose article was deleted are not
// detected here; the retrieval engine drops them at hydration time.
func (p *Pipeline) Reconcile(ctx context.Context) int {
	lctx, lcancel := context.WithTimeout(ctx, StoreTimeout)
	articles, err := p.store.ListAll(lctx)
	lcancel()
	if err != nil {
		p.logger.Error("reconcile: list articles", zap.Error(err))
		return 0
	}

	lctx, lcancel = context.WithTimeout(ctx, StoreTimeout)
	ids, err := p.vectors.ListIDs(lctx)
	lcancel()
	if err != nil {
		p.logger.Error("reconcile: list indexed ids", zap.Error(err))
		return 0
	}
	indexed := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		indexed[id] = struct{}{}
	}

	recomputed := 0
	for _, article := range articles {
		if _, ok := indexed[article.ID]; ok {
			continue
		}

		p.logger.Info("recomputing missing embedding",
			zap.Int64("article_id", article.ID),
			zap.String("title", truncate(article.Title, 50)))
		if p.embedAndIndex(ctx, "reconcile", article.ID, article.Title, article.Summary, article.Category, article.Source) {
			recomputed++
		}
	}

	p.logger.Info("embedding reconciliation complete",
		zap.Int("articles", len(articles)),
		zap.Int("recomputed", recomputed))
	return recomputed
}

// Delete removes an article and its embedding record in lockstep. Deleting
// an unknown id returns repository.ErrNotFound.
func (p *Pipeline) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, StoreTimeout)
	defer cancel()

	if _, err := p.store.GetByID(ctx, id); err != nil {
		return err
	}
	if err := p.store.Delete(ctx, id); err != nil {
		return err
	}
	if err := p.vectors.DeleteOne(ctx, id); err != nil {
		// The article row is already gone; the orphaned vector is dropped
		// at search-hydration time.
		p.logger.Error("delete embedding", zap.Int64("article_id", id), zap.Error(err))
		return err
	}
	return nil
}

// EmbeddingText builds the string embedded for an article.
func EmbeddingText(title, summary string) string {
	return title + ". " + summary
}

// truncate cuts s to at most n bytes without splitting a UTF-8 rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
