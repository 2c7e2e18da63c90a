package classify

import (
	"context"

	"nexnews/repository"
)

// Client assigns one of the fixed categories to an article. Implementations
// return an error on transport failure or when the backing model produces a
// value outside the category set; callers substitute the fallback.
type Client interface {
	Classify(ctx context.Context, title, summary string) (repository.Category, error)
}
