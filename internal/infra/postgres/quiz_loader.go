package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"quiz-app-service/internal/domain"
)

// QuizLoader reads quiz documents straight from Postgres for the quiz cache.
type QuizLoader struct {
	pool *pgxpool.Pool
}

func NewQuizLoader(pool *pgxpool.Pool) *QuizLoader {
	return &QuizLoader{pool: pool}
}

func (l *QuizLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var (
		quiz      domain.Quiz
		category  string
		rawQs     []byte
		timeLimit *int32
	)
	err := l.pool.QueryRow(ctx, `
		SELECT id, title, description, category, created_by, questions, time_limit,
		       is_public, source, created_at, updated_at
		FROM quizzes WHERE id=$1`, quizID).Scan(
		&quiz.ID, &quiz.Title, &quiz.Description, &category, &quiz.CreatedBy, &rawQs, &timeLimit,
		&quiz.IsPublic, &quiz.Source, &quiz.CreatedAt, &quiz.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	if err := json.Unmarshal(rawQs, &quiz.Questions); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal questions: %w", err)
	}
	quiz.Category = domain.Category(category)
	if timeLimit != nil {
		limit := int(*timeLimit)
		quiz.TimeLimit = &limit
	}
	return quiz, nil
}
