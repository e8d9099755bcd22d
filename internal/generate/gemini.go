package generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
	"quiz-app-service/internal/domain"
)

const defaultGeminiModel = "gemini-1.5-flash"

// GeminiGenerator asks a Gemini model for questions.
type GeminiGenerator struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if model == "" {
		model = defaultGeminiModel
	}
	gm := client.GenerativeModel(model)
	gm.SetTemperature(0.7)
	gm.ResponseMIMEType = "application/json"
	return &GeminiGenerator{client: client, model: gm}, nil
}

func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

func (g *GeminiGenerator) FromBook(ctx context.Context, bookLink, topic string, n int) ([]domain.Question, error) {
	return g.complete(ctx, bookPrompt(bookLink, topic, n))
}

func (g *GeminiGenerator) FromNews(ctx context.Context, newsContent string, n int) ([]domain.Question, error) {
	return g.complete(ctx, newsPrompt(newsContent, n))
}

func (g *GeminiGenerator) complete(ctx context.Context, prompt string) ([]domain.Question, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		log.Warn().Msg("gemini response was empty")
		return nil, errEmptyCompletion
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return parseQuestions(sb.String())
}
