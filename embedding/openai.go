package embedding

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/sashabaranov/go-openai"
)

// MaxInputChars bounds the text sent to the embeddings endpoint.
const MaxInputChars = 8000

// Dimension of the vectors produced by the OpenAI embedding model.
const Dimension = 1536

// OpenAIEmbedder produces 1536-dimensional vectors via the OpenAI
// embeddings API.
type OpenAIEmbedder struct {
	client *openai.Client
}

func NewOpenAIEmbedder(apiKey string) *OpenAIEmbedder {
	return &OpenAIEmbedder{client: openai.NewClient(apiKey)}
}

func (e *OpenAIEmbedder) GetEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	inputs := make([]string, len(texts))
	for i, t := range texts {
		inputs[i] = truncate(t, MaxInputChars)
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: inputs,
		Model: openai.AdaEmbeddingV2,
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) != len(inputs) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(inputs), len(resp.Data))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
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
