package qdrantdb

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"nexnews/embedding"
	"nexnews/repository"
)

const (
	ArticleCollectionName = "articles"
)

var _ repository.ArticleVectorRepo = (*ArticleClient)(nil)

// CreateArticleCollection ensures the cosine-distance collection and the
// keyword index used for category filtering exist.
func (c *ArticleClient) CreateArticleCollection(ctx context.Context) error {
	exists, err := c.Client.CollectionExists(ctx, ArticleCollectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	err = c.Client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: ArticleCollectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(embedding.Dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("err create article collection: %w", err)
	}

	_, err = c.Client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: ArticleCollectionName,
		FieldName:      "category",
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
	})
	if err != nil {
		return fmt.Errorf("err create category index: %w", err)
	}
	return nil
}

// InsertOne indexes one article embedding. The point id is the article id,
// and an existing point makes the call a no-op, so a repeated insert never
// duplicates work.
func (c *ArticleClient) InsertOne(ctx context.Context, doc *repository.ArticleVectorDoc) error {
	pointID := qdrant.NewIDNum(uint64(doc.ArticleID))

	resp, err := c.Client.Get(ctx, &qdrant.GetPoints{
		CollectionName: ArticleCollectionName,
		Ids:            []*qdrant.PointId{pointID},
	})
	if err != nil {
		return err
	}
	if len(resp) > 0 {
		return nil
	}

	md := map[string]any{
		"category": string(doc.Category),
		"source":   doc.Source,
		"title":    doc.Title,
	}
	point := &qdrant.PointStruct{
		Id:      pointID,
		Vectors: qdrant.NewVectorsDense(doc.Vector),
		Payload: qdrant.NewValueMap(md),
	}

	_, err = c.Client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: ArticleCollectionName,
		Points:         []*qdrant.PointStruct{point},
	})

	return err
}

// Query returns the nearest article ids for the vector, nearest first.
// Qdrant reports cosine similarity directly, so scores pass through with
// 1.0 meaning identical.
func (c *ArticleClient) Query(ctx context.Context, vector []float32, category repository.Category, limit int) ([]repository.ArticleVectorMatch, error) {
	req := &qdrant.QueryPoints{
		CollectionName: ArticleCollectionName,
		Query:          qdrant.NewQueryDense(vector),
		Limit:          qdrant.PtrOf(uint64(limit)),
	}
	if category != "" {
		req.Filter = &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("category", string(category)),
			},
		}
	}

	points, err := c.Client.Query(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("err query articles: %w", err)
	}

	matches := make([]repository.ArticleVectorMatch, 0, len(points))
	for _, p := range points {
		matches = append(matches, repository.ArticleVectorMatch{
			ArticleID: int64(p.GetId().GetNum()),
			Score:     p.GetScore(),
		})
	}
	return matches, nil
}

// ListIDs scrolls the whole collection and returns every indexed article id.
func (c *ArticleClient) ListIDs(ctx context.Context) ([]int64, error) {
	total, err := c.Count(ctx)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, nil
	}

	points, err := c.Client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: ArticleCollectionName,
		Limit:          qdrant.PtrOf(uint32(total)),
	})
	if err != nil {
		return nil, fmt.Errorf("err scroll articles: %w", err)
	}

	ids := make([]int64, 0, len(points))
	for _, p := range points {
		ids = append(ids, int64(p.GetId().GetNum()))
	}
	return ids, nil
}

func (c *ArticleClient) DeleteOne(ctx context.Context, articleID int64) error {
	_, err := c.Client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: ArticleCollectionName,
		Points:         qdrant.NewPointsSelector(qdrant.NewIDNum(uint64(articleID))),
	})
	if err != nil {
		return fmt.Errorf("err delete article point %d: %w", articleID, err)
	}
	return nil
}

func (c *ArticleClient) Count(ctx context.Context) (uint64, error) {
	count, err := c.Client.Count(ctx, &qdrant.CountPoints{
		CollectionName: ArticleCollectionName,
	})
	if err != nil {
		return 0, fmt.Errorf("err count articles: %w", err)
	}
	return count, nil
}
