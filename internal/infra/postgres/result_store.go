package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"quiz-app-service/internal/domain"
)

// ResultStore appends quiz results. Each record is one INSERT; there is no update path.
type ResultStore struct {
	db  *bun.DB
	now func() time.Time
}

func NewResultStore(db *bun.DB) *ResultStore {
	return &ResultStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (s *ResultStore) Record(ctx context.Context, result domain.QuizResult) (domain.QuizResult, error) {
	result.ID = uuid.NewString()
	result.CompletedAt = s.now()
	row := newResultRow(result)
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return domain.QuizResult{}, fmt.Errorf("insert result: %w", err)
	}
	return row.toDomain(), nil
}

func (s *ResultStore) ListByUser(ctx context.Context, userID string) ([]domain.QuizResult, error) {
	return s.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("user_id = ?", userID).Order("completed_at DESC")
	})
}

func (s *ResultStore) ListByQuiz(ctx context.Context, quizID string) ([]domain.QuizResult, error) {
	return s.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("quiz_id = ?", quizID)
	})
}

func (s *ResultStore) ListAll(ctx context.Context) ([]domain.QuizResult, error) {
	return s.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery { return q })
}

func (s *ResultStore) list(ctx context.Context, scope func(*bun.SelectQuery) *bun.SelectQuery) ([]domain.QuizResult, error) {
	var rows []resultRow
	if err := scope(s.db.NewSelect().Model(&rows)).Scan(ctx); err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	out := make([]domain.QuizResult, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}
