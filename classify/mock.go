package classify

import (
	"context"
	"math/rand"

	"nexnews/repository"
)

// MockClassifier returns random valid categories. Used when no API key is
// configured so the pipeline can run offline.
type MockClassifier struct{}

func NewMockClassifier() *MockClassifier {
	return &MockClassifier{}
}

func (m *MockClassifier) Classify(_ context.Context, _, _ string) (repository.Category, error) {
	cats := repository.Categories()
	return cats[rand.Intn(len(cats))], nil
}
