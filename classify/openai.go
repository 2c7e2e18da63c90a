package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"nexnews/repository"
)

// OpenAIClassifier classifies articles with a chat completion constrained
// to answer with a single category name.
type OpenAIClassifier struct {
	client *openai.Client
	model  string
}

func NewOpenAIClassifier(apiKey, model string) *OpenAIClassifier {
	if model == "" {
		model = openai.GPT4
	}
	return &OpenAIClassifier{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (c *OpenAIClassifier) Classify(ctx context.Context, title, summary string) (repository.Category, error) {
	names := make([]string, 0, len(repository.Categories()))
	for _, cat := range repository.Categories() {
		names = append(names, string(cat))
	}

	content := "Title: " + title
	if summary != "" {
		content += "\nSummary: " + summary
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf(
					"You are a precise news categorization assistant. Classify the article into exactly ONE of these categories: %s. Reply with the category name only.",
					strings.Join(names, ", ")),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: content,
			},
		},
		Temperature: 0,
		MaxTokens:   20,
	})
	if err != nil {
		return "", fmt.Errorf("classify chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("classify: empty completion")
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	category, ok := repository.ParseCategory(answer)
	if !ok {
		return "", fmt.Errorf("classify: model returned unknown category %q", answer)
	}
	return category, nil
}
