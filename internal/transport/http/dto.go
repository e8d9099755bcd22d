package http

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
	"quiz-app-service/internal/domain"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

type registerRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Name     string      `json:"name"`
	Role     domain.Role `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type quizRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Category    domain.Category   `json:"category"`
	Questions   []domain.Question `json:"questions"`
	TimeLimit   *int              `json:"timeLimit"`
	IsPublic    *bool             `json:"isPublic"`
	Source      string            `json:"source"`
}

type bookRequest struct {
	BookLink          string `json:"bookLink"`
	Topic             string `json:"topic"`
	NumberOfQuestions int    `json:"numberOfQuestions"`
	Title             string `json:"title"`
	Description       string `json:"description"`
}

type newsRequest struct {
	NumberOfQuestions int `json:"numberOfQuestions"`
}

type submitRequest struct {
	QuizID    string          `json:"quizId"`
	Answers   []answerRequest `json:"answers"`
	TimeTaken *float64        `json:"timeTaken"`
}

// answerRequest keeps required fields as pointers so an omitted index is not read as 0.
type answerRequest struct {
	QuestionIndex *int     `json:"questionIndex"`
	UserAnswer    *string  `json:"userAnswer"`
	TimeTaken     *float64 `json:"timeTaken"`
}

// toSubmitted converts decoded answers, rejecting any with a missing required field.
// A nil slice stays nil so the service can report missing answers.
func toSubmitted(answers []answerRequest) ([]domain.SubmittedAnswer, error) {
	if answers == nil {
		return nil, nil
	}
	out := make([]domain.SubmittedAnswer, len(answers))
	for i, a := range answers {
		if a.QuestionIndex == nil {
			return nil, domain.Validationf("answers[%d].questionIndex is required", i)
		}
		if a.UserAnswer == nil {
			return nil, domain.Validationf("answers[%d].userAnswer is required", i)
		}
		out[i] = domain.SubmittedAnswer{
			QuestionIndex: *a.QuestionIndex,
			UserAnswer:    *a.UserAnswer,
			TimeTaken:     a.TimeTaken,
		}
	}
	return out, nil
}

type submitResponse struct {
	ID              string                `json:"id"`
	QuizID          string                `json:"quizId"`
	Answers         []domain.ScoredAnswer `json:"answers"`
	Score           int                   `json:"score"`
	TotalQuestions  int                   `json:"totalQuestions"`
	PercentageScore float64               `json:"percentageScore"`
	TimeTaken       float64               `json:"timeTaken"`
	CompletedAt     time.Time             `json:"completedAt"`
	Unanswered      []int                 `json:"unanswered"`
}

type creatorResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// quizResponse is a quiz as read back by clients; createdBy stays the author's id.
type quizResponse struct {
	domain.Quiz
	Creator *creatorResponse `json:"creator"`
}

type quizSummary struct {
	Title    string          `json:"title"`
	Category domain.Category `json:"category"`
}

type userResultResponse struct {
	ID              string                `json:"id"`
	QuizID          string                `json:"quizId"`
	Quiz            *quizSummary          `json:"quiz"`
	Answers         []domain.ScoredAnswer `json:"answers"`
	Score           int                   `json:"score"`
	TotalQuestions  int                   `json:"totalQuestions"`
	PercentageScore float64               `json:"percentageScore"`
	TimeTaken       float64               `json:"timeTaken"`
	CompletedAt     time.Time             `json:"completedAt"`
}

func mapInto(dst, src any) error {
	return copier.Copy(dst, src)
}

func toUserResponse(u domain.User) userResponse {
	var out userResponse
	_ = mapInto(&out, &u)
	return out
}

// parseLimit reads ?limit=, defaulting to 10 and capping at 100.
func parseLimit(c *gin.Context) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return defaultLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, domain.Validationf("limit must be a positive integer")
	}
	if n > maxLimit {
		n = maxLimit
	}
	return n, nil
}
