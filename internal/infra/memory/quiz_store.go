package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"quiz-app-service/internal/domain"
)

// QuizStore is an in-memory implementation of app.QuizRepository. It also serves
// as the QuizLoader behind QuizCache.
type QuizStore struct {
	mu      sync.RWMutex
	quizzes map[string]domain.Quiz
}

func NewQuizStore() *QuizStore {
	return &QuizStore{quizzes: make(map[string]domain.Quiz)}
}

func (s *QuizStore) Create(_ context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[quiz.ID]; ok {
		return domain.Quiz{}, fmt.Errorf("quiz %s %w", quiz.ID, domain.ErrConflict)
	}
	s.quizzes[quiz.ID] = cloneQuiz(quiz)
	return cloneQuiz(quiz), nil
}

func (s *QuizStore) Get(_ context.Context, id string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[id]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return cloneQuiz(quiz), nil
}

func (s *QuizStore) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return s.Get(ctx, quizID)
}

func (s *QuizStore) List(_ context.Context, filter domain.QuizFilter) ([]domain.Quiz, error) {
	s.mu.RLock()
	out := make([]domain.Quiz, 0, len(s.quizzes))
	for _, quiz := range s.quizzes {
		if !quiz.IsPublic {
			continue
		}
		if filter.Category != "" && quiz.Category != filter.Category {
			continue
		}
		if filter.CreatedBy != "" && quiz.CreatedBy != filter.CreatedBy {
			continue
		}
		out = append(out, cloneQuiz(quiz))
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *QuizStore) Replace(_ context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[quiz.ID]; !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	s.quizzes[quiz.ID] = cloneQuiz(quiz)
	return cloneQuiz(quiz), nil
}

func (s *QuizStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[id]; !ok {
		return domain.ErrQuizNotFound
	}
	delete(s.quizzes, id)
	return nil
}

// cloneQuiz copies the question slice so callers cannot mutate stored state.
func cloneQuiz(q domain.Quiz) domain.Quiz {
	questions := make([]domain.Question, len(q.Questions))
	for i, question := range q.Questions {
		if question.Options != nil {
			question.Options = append([]string(nil), question.Options...)
		}
		questions[i] = question
	}
	q.Questions = questions
	if q.TimeLimit != nil {
		limit := *q.TimeLimit
		q.TimeLimit = &limit
	}
	return q
}
