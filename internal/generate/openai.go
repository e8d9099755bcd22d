package generate

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
	"quiz-app-service/internal/domain"
)

const defaultOpenAIModel = openai.GPT3Dot5Turbo

// OpenAIGenerator asks an OpenAI chat model for questions.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

func NewOpenAIGenerator(apiKey, model string) *OpenAIGenerator {
	return NewOpenAIGeneratorWithConfig(openai.DefaultConfig(apiKey), model)
}

// NewOpenAIGeneratorWithConfig allows pointing the client at a different base URL.
func NewOpenAIGeneratorWithConfig(cfg openai.ClientConfig, model string) *OpenAIGenerator {
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIGenerator{client: openai.NewClientWithConfig(cfg), model: model}
}

func (g *OpenAIGenerator) FromBook(ctx context.Context, bookLink, topic string, n int) ([]domain.Question, error) {
	return g.complete(ctx, bookPrompt(bookLink, topic, n))
}

func (g *OpenAIGenerator) FromNews(ctx context.Context, newsContent string, n int) ([]domain.Question, error) {
	return g.complete(ctx, newsPrompt(newsContent, n))
}

func (g *OpenAIGenerator) complete(ctx context.Context, prompt string) ([]domain.Question, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an expert quiz question generator. Reply with JSON only.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errEmptyCompletion
	}

	log.Debug().Str("model", g.model).Int("tokens", resp.Usage.TotalTokens).Msg("openai completion received")
	return parseQuestions(resp.Choices[0].Message.Content)
}
