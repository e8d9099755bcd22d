// Package generate produces quiz questions and news source material, either
// from hosted providers or from deterministic offline fixtures.
package generate

import (
	"context"
	"fmt"
	"time"

	"quiz-app-service/internal/domain"
)

// MockGenerator returns canned questions so quiz generation works without
// provider credentials.
type MockGenerator struct{}

func (MockGenerator) FromBook(_ context.Context, _ string, topic string, n int) ([]domain.Question, error) {
	out := make([]domain.Question, 0, n)
	for i := 0; i < n; i++ {
		switch i % 3 {
		case 0:
			out = append(out, domain.Question{
				QuestionText:  fmt.Sprintf("What is a key concept in %s?", topic),
				QuestionType:  domain.QuestionMultipleChoice,
				Options:       []string{"Concept A", "Concept B", "Concept C", "Concept D"},
				CorrectAnswer: "Concept A",
				Explanation:   fmt.Sprintf("This is a fundamental concept in %s", topic),
				Difficulty:    domain.DifficultyMedium,
			})
		case 1:
			out = append(out, domain.Question{
				QuestionText:  fmt.Sprintf("%s is important in modern education.", topic),
				QuestionType:  domain.QuestionTrueFalse,
				Options:       []string{"True", "False"},
				CorrectAnswer: "True",
				Explanation:   fmt.Sprintf("%s plays a vital role in education", topic),
				Difficulty:    domain.DifficultyEasy,
			})
		default:
			out = append(out, domain.Question{
				QuestionText:  fmt.Sprintf("The main principle of %s is _____.", topic),
				QuestionType:  domain.QuestionFillInBlank,
				CorrectAnswer: "knowledge",
				Explanation:   "Knowledge is a core principle",
				Difficulty:    domain.DifficultyMedium,
			})
		}
	}
	return out, nil
}

func (MockGenerator) FromNews(_ context.Context, _ string, n int) ([]domain.Question, error) {
	out := make([]domain.Question, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.Question{
			QuestionText:  "What was the main topic of the recent news article?",
			QuestionType:  domain.QuestionMultipleChoice,
			Options:       []string{"Climate Change", "Technology", "Politics", "Sports"},
			CorrectAnswer: "Climate Change",
			Explanation:   "The article focused on climate-related developments",
			Difficulty:    domain.DifficultyMedium,
		})
	}
	return out, nil
}

// MockHeadlines serves two fixed articles stamped with the current time.
type MockHeadlines struct {
	Now func() time.Time
}

func (m MockHeadlines) TopHeadlines(context.Context) ([]domain.Article, error) {
	now := time.Now().UTC()
	if m.Now != nil {
		now = m.Now()
	}
	return []domain.Article{
		{
			Title:       "Global Climate Summit Concludes with New Agreements",
			Description: "World leaders agree on new climate action plans",
			Content:     "The global climate summit concluded today with significant agreements on emissions reduction...",
			URL:         "https://example.com/climate",
			PublishedAt: now,
			Source:      "Global News",
		},
		{
			Title:       "Technology Breakthrough in Renewable Energy",
			Description: "Scientists develop more efficient solar panels",
			Content:     "Researchers have announced a major breakthrough in solar panel efficiency...",
			URL:         "https://example.com/tech",
			PublishedAt: now,
			Source:      "Tech Today",
		},
	}, nil
}
