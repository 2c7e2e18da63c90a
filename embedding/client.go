package embedding

import (
	"context"
	"math"
)

// Client converts texts into embedding vectors.
// If you send 3 texts, you get 3 vectors back, in order.
// A failed or empty embedding surfaces as an error or an empty slice;
// callers treat both the same way.
type Client interface {
	GetEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// CosineSimilarity returns the cosine of the angle between a and b,
// 1.0 for identical direction, 0 when either vector is zero or the
// dimensions differ.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
