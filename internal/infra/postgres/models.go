package postgres

import (
	"time"

	"github.com/uptrace/bun"
	"quiz-app-service/internal/domain"
)

type userRow struct {
	bun.BaseModel `bun:"table:users"`

	ID           string    `bun:"id,pk"`
	Email        string    `bun:"email,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	Name         string    `bun:"name,notnull"`
	Role         string    `bun:"role,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
	UpdatedAt    time.Time `bun:"updated_at,notnull"`
}

func newUserRow(u domain.User) *userRow {
	return &userRow{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Name:         u.Name,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (r *userRow) toDomain() domain.User {
	return domain.User{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Name:         r.Name,
		Role:         domain.Role(r.Role),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes"`

	ID          string            `bun:"id,pk"`
	Title       string            `bun:"title,notnull"`
	Description string            `bun:"description,notnull"`
	Category    string            `bun:"category,notnull"`
	CreatedBy   string            `bun:"created_by,notnull"`
	Questions   []domain.Question `bun:"questions,type:jsonb,notnull"`
	TimeLimit   *int              `bun:"time_limit"`
	IsPublic    bool              `bun:"is_public,notnull"`
	Source      string            `bun:"source,notnull"`
	CreatedAt   time.Time         `bun:"created_at,notnull"`
	UpdatedAt   time.Time         `bun:"updated_at,notnull"`
}

func newQuizRow(q domain.Quiz) *quizRow {
	return &quizRow{
		ID:          q.ID,
		Title:       q.Title,
		Description: q.Description,
		Category:    string(q.Category),
		CreatedBy:   q.CreatedBy,
		Questions:   q.Questions,
		TimeLimit:   q.TimeLimit,
		IsPublic:    q.IsPublic,
		Source:      q.Source,
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
	}
}

func (r *quizRow) toDomain() domain.Quiz {
	return domain.Quiz{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Category:    domain.Category(r.Category),
		CreatedBy:   r.CreatedBy,
		Questions:   r.Questions,
		TimeLimit:   r.TimeLimit,
		IsPublic:    r.IsPublic,
		Source:      r.Source,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type resultRow struct {
	bun.BaseModel `bun:"table:quiz_results"`

	ID              string                `bun:"id,pk"`
	UserID          string                `bun:"user_id,notnull"`
	QuizID          string                `bun:"quiz_id,notnull"`
	Answers         []domain.ScoredAnswer `bun:"answers,type:jsonb,notnull"`
	Score           int                   `bun:"score,notnull"`
	TotalQuestions  int                   `bun:"total_questions,notnull"`
	PercentageScore float64               `bun:"percentage_score,notnull"`
	TimeTaken       float64               `bun:"time_taken,notnull"`
	CompletedAt     time.Time             `bun:"completed_at,notnull"`
}

func newResultRow(r domain.QuizResult) *resultRow {
	return &resultRow{
		ID:              r.ID,
		UserID:          r.UserID,
		QuizID:          r.QuizID,
		Answers:         r.Answers,
		Score:           r.Score,
		TotalQuestions:  r.TotalQuestions,
		PercentageScore: r.PercentageScore,
		TimeTaken:       r.TimeTaken,
		CompletedAt:     r.CompletedAt,
	}
}

func (r *resultRow) toDomain() domain.QuizResult {
	return domain.QuizResult{
		ID:              r.ID,
		UserID:          r.UserID,
		QuizID:          r.QuizID,
		Answers:         r.Answers,
		Score:           r.Score,
		TotalQuestions:  r.TotalQuestions,
		PercentageScore: r.PercentageScore,
		TimeTaken:       r.TimeTaken,
		CompletedAt:     r.CompletedAt,
	}
}
