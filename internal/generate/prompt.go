package generate

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"quiz-app-service/internal/domain"
)

var errEmptyCompletion = errors.New("model returned no content")

const questionShape = `[{
  "questionText": "question here",
  "questionType": "multiple-choice" or "true-false" or "fill-in-blank",
  "options": ["option1", "option2", "option3", "option4"] (only for multiple-choice),
  "correctAnswer": "correct answer",
  "explanation": "brief explanation",
  "difficulty": "easy" or "medium" or "hard"
}]`

func bookPrompt(bookLink, topic string, n int) string {
	return fmt.Sprintf(`Generate %d quiz questions about %q from the book at %s.
Create a mix of multiple-choice (with 4 options), true-false, and fill-in-the-blank questions.
Respond with only a JSON array with this structure:
%s`, n, topic, bookLink, questionShape)
}

func newsPrompt(newsContent string, n int) string {
	return fmt.Sprintf(`Based on this news article, generate %d quiz questions:

%s

Create multiple-choice questions with 4 options each.
Respond with only a JSON array with this structure:
%s`, n, newsContent, questionShape)
}

// parseQuestions decodes a model reply, tolerating a surrounding markdown code fence.
func parseQuestions(raw string) ([]domain.Question, error) {
	body := strings.TrimSpace(raw)
	if strings.HasPrefix(body, "```") {
		body = strings.TrimPrefix(body, "```")
		if nl := strings.IndexByte(body, '\n'); nl >= 0 {
			body = body[nl+1:]
		}
		body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	}
	if body == "" {
		return nil, errEmptyCompletion
	}

	var questions []domain.Question
	if err := json.Unmarshal([]byte(body), &questions); err != nil {
		return nil, fmt.Errorf("decode generated questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, errEmptyCompletion
	}
	return questions, nil
}
