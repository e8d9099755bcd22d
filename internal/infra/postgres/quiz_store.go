package postgres

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"quiz-app-service/internal/domain"
)

// QuizStore persists quizzes with their questions embedded as JSONB.
type QuizStore struct {
	db *bun.DB
}

func NewQuizStore(db *bun.DB) *QuizStore {
	return &QuizStore{db: db}
}

func (s *QuizStore) Create(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	row := newQuizRow(quiz)
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return domain.Quiz{}, fmt.Errorf("quiz %s %w", quiz.ID, domain.ErrConflict)
		}
		return domain.Quiz{}, fmt.Errorf("insert quiz: %w", err)
	}
	return row.toDomain(), nil
}

func (s *QuizStore) Get(ctx context.Context, id string) (domain.Quiz, error) {
	row := new(quizRow)
	err := s.db.NewSelect().Model(row).Where("id = ?", id).Scan(ctx)
	if isNoRows(err) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("select quiz: %w", err)
	}
	return row.toDomain(), nil
}

func (s *QuizStore) List(ctx context.Context, filter domain.QuizFilter) ([]domain.Quiz, error) {
	var rows []quizRow
	q := s.db.NewSelect().Model(&rows).Where("is_public = TRUE")
	if filter.Category != "" {
		q = q.Where("category = ?", string(filter.Category))
	}
	if filter.CreatedBy != "" {
		q = q.Where("created_by = ?", filter.CreatedBy)
	}
	if err := q.Order("created_at DESC", "id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}

	out := make([]domain.Quiz, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}

func (s *QuizStore) Replace(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	row := newQuizRow(quiz)
	res, err := s.db.NewUpdate().Model(row).WherePK().Exec(ctx)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("update quiz: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return row.toDomain(), nil
}

func (s *QuizStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*quizRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}
