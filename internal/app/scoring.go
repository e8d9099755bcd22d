package app

import (
	"fmt"
	"strings"

	"quiz-app-service/internal/domain"
)

// ValidateAnswer compares the stored correct answer and the submitted answer after
// trimming surrounding whitespace and lower-casing both. There is no partial credit.
func ValidateAnswer(question domain.Question, userAnswer string) bool {
	return normalizeAnswer(question.CorrectAnswer) == normalizeAnswer(userAnswer)
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Score validates every submitted answer, in submission order, against the quiz.
// TotalQuestions is always len(quiz.Questions): questions without an answer count as
// not correct and are listed in Unanswered.
func Score(quiz domain.Quiz, answers []domain.SubmittedAnswer) (domain.ScoredResult, error) {
	total := len(quiz.Questions)
	if total == 0 {
		return domain.ScoredResult{}, domain.ErrEmptyQuiz
	}

	answered := make([]bool, total)
	scored := make([]domain.ScoredAnswer, 0, len(answers))
	score := 0
	for _, answer := range answers {
		idx := answer.QuestionIndex
		if idx < 0 || idx >= total {
			return domain.ScoredResult{}, &domain.OutOfRangeError{Index: idx, Total: total}
		}
		if answered[idx] {
			return domain.ScoredResult{}, fmt.Errorf("%w (index %d)", domain.ErrDuplicateAnswer, idx)
		}
		answered[idx] = true

		question := quiz.Questions[idx]
		correct := ValidateAnswer(question, answer.UserAnswer)
		if correct {
			score++
		}
		scored = append(scored, domain.ScoredAnswer{
			QuestionIndex: idx,
			QuestionID:    question.ID,
			UserAnswer:    answer.UserAnswer,
			IsCorrect:     correct,
			TimeTaken:     answer.TimeTaken,
		})
	}

	unanswered := make([]int, 0)
	for i, ok := range answered {
		if !ok {
			unanswered = append(unanswered, i)
		}
	}

	return domain.ScoredResult{
		Answers:         scored,
		Score:           score,
		TotalQuestions:  total,
		PercentageScore: percentage(score, total),
		Unanswered:      unanswered,
	}, nil
}

func percentage(score, total int) float64 {
	return 100 * float64(score) / float64(total)
}
