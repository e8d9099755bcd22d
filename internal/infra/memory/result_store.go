package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"quiz-app-service/internal/domain"
)

// ResultStore is an append-only in-memory implementation of app.ResultRepository.
type ResultStore struct {
	now     func() time.Time
	mu      sync.RWMutex
	results []domain.QuizResult
}

func NewResultStore() *ResultStore {
	return NewResultStoreWithClock(func() time.Time { return time.Now().UTC() })
}

// NewResultStoreWithClock is test-only for deterministic completion times.
func NewResultStoreWithClock(now func() time.Time) *ResultStore {
	return &ResultStore{now: now}
}

func (s *ResultStore) Record(_ context.Context, result domain.QuizResult) (domain.QuizResult, error) {
	result.ID = uuid.NewString()
	result.CompletedAt = s.now()
	result.Answers = append([]domain.ScoredAnswer(nil), result.Answers...)

	s.mu.Lock()
	s.results = append(s.results, result)
	s.mu.Unlock()
	return result, nil
}

func (s *ResultStore) ListByUser(_ context.Context, userID string) ([]domain.QuizResult, error) {
	out := s.filter(func(r domain.QuizResult) bool { return r.UserID == userID })
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	return out, nil
}

func (s *ResultStore) ListByQuiz(_ context.Context, quizID string) ([]domain.QuizResult, error) {
	return s.filter(func(r domain.QuizResult) bool { return r.QuizID == quizID }), nil
}

func (s *ResultStore) ListAll(_ context.Context) ([]domain.QuizResult, error) {
	return s.filter(func(domain.QuizResult) bool { return true }), nil
}

func (s *ResultStore) filter(keep func(domain.QuizResult) bool) []domain.QuizResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.QuizResult, 0)
	for _, r := range s.results {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
