package app

import (
	"context"
	"errors"

	"quiz-app-service/internal/domain"
)

// ResultRepository persists scored attempts. Records are never updated or deleted.
type ResultRepository interface {
	Record(ctx context.Context, result domain.QuizResult) (domain.QuizResult, error)
	// ListByUser returns the user's results, most recently completed first.
	ListByUser(ctx context.Context, userID string) ([]domain.QuizResult, error)
	ListByQuiz(ctx context.Context, quizID string) ([]domain.QuizResult, error)
	ListAll(ctx context.Context) ([]domain.QuizResult, error)
}

// QuizReader loads quiz content (from cache/backing store).
type QuizReader interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// UserLookup resolves user IDs to accounts for display names.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (domain.User, error)
}

// Submission is one quiz attempt as sent by the client.
type Submission struct {
	QuizID    string
	Answers   []domain.SubmittedAnswer
	TimeTaken *float64 // seconds, required
}

// Receipt is what the caller learns after a submission is recorded.
type Receipt struct {
	Result     domain.QuizResult
	Unanswered []int
}

// UserResult is a recorded result with the quiz title and category attached.
// Both are empty when the quiz has since been deleted.
type UserResult struct {
	domain.QuizResult
	QuizTitle    string
	QuizCategory domain.Category
}

// ResultService scores submissions and serves leaderboards and statistics.
type ResultService struct {
	results ResultRepository
	quizzes QuizReader
	users   UserLookup
}

func NewResultService(results ResultRepository, quizzes QuizReader, users UserLookup) *ResultService {
	return &ResultService{results: results, quizzes: quizzes, users: users}
}

// Submit scores the attempt against the stored quiz and records it for the caller.
func (s *ResultService) Submit(ctx context.Context, caller domain.Caller, sub Submission) (Receipt, error) {
	if err := validateSubmission(sub); err != nil {
		return Receipt{}, err
	}

	quiz, err := s.quizzes.GetQuiz(ctx, sub.QuizID)
	if err != nil {
		return Receipt{}, err
	}

	scored, err := Score(quiz, sub.Answers)
	if err != nil {
		return Receipt{}, err
	}

	recorded, err := s.results.Record(ctx, domain.QuizResult{
		UserID:          caller.UserID,
		QuizID:          quiz.ID,
		Answers:         scored.Answers,
		Score:           scored.Score,
		TotalQuestions:  scored.TotalQuestions,
		PercentageScore: scored.PercentageScore,
		TimeTaken:       *sub.TimeTaken,
	})
	if err != nil {
		return Receipt{}, domain.Persistence("record result", err)
	}
	return Receipt{Result: recorded, Unanswered: scored.Unanswered}, nil
}

func validateSubmission(sub Submission) error {
	if sub.QuizID == "" {
		return domain.Validationf("quizId is required")
	}
	if sub.Answers == nil {
		return domain.Validationf("answers are required")
	}
	if sub.TimeTaken == nil {
		return domain.Validationf("timeTaken is required")
	}
	if *sub.TimeTaken < 0 {
		return domain.Validationf("timeTaken must not be negative")
	}
	for _, a := range sub.Answers {
		if a.TimeTaken != nil && *a.TimeTaken < 0 {
			return domain.Validationf("answer timeTaken must not be negative")
		}
	}
	return nil
}

// UserResults lists a user's results, newest first. An empty userID means the caller.
func (s *ResultService) UserResults(ctx context.Context, caller domain.Caller, userID string) ([]UserResult, error) {
	target, err := authorizeUserView(caller, userID)
	if err != nil {
		return nil, err
	}

	results, err := s.results.ListByUser(ctx, target)
	if err != nil {
		return nil, domain.Persistence("list user results", err)
	}

	quizzes := make(map[string]domain.Quiz)
	out := make([]UserResult, 0, len(results))
	for _, r := range results {
		quiz, ok := quizzes[r.QuizID]
		if !ok {
			quiz, err = s.quizzes.GetQuiz(ctx, r.QuizID)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
			quizzes[r.QuizID] = quiz
		}
		out = append(out, UserResult{QuizResult: r, QuizTitle: quiz.Title, QuizCategory: quiz.Category})
	}
	return out, nil
}

// QuizLeaderboard returns the best attempts for one quiz.
func (s *ResultService) QuizLeaderboard(ctx context.Context, quizID string, limit int) ([]domain.QuizLeaderboardEntry, error) {
	if _, err := s.quizzes.GetQuiz(ctx, quizID); err != nil {
		return nil, err
	}

	results, err := s.results.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, domain.Persistence("list quiz results", err)
	}

	ranked := RankQuizResults(results, limit)
	names := make(map[string]string)
	entries := make([]domain.QuizLeaderboardEntry, 0, len(ranked))
	for _, r := range ranked {
		name, err := s.userName(ctx, names, r.UserID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, domain.QuizLeaderboardEntry{
			ResultID:  r.ID,
			UserID:    r.UserID,
			UserName:  name,
			Score:     r.Score,
			TimeTaken: r.TimeTaken,
		})
	}
	return entries, nil
}

// GlobalLeaderboard ranks users across every recorded attempt. Results of users
// that no longer exist are left out.
func (s *ResultService) GlobalLeaderboard(ctx context.Context, limit int) ([]domain.UserRanking, error) {
	results, err := s.results.ListAll(ctx)
	if err != nil {
		return nil, domain.Persistence("list results", err)
	}

	ranked := RankUsers(results, 0)
	out := make([]domain.UserRanking, 0, len(ranked))
	for _, r := range ranked {
		if limit > 0 && len(out) == limit {
			break
		}
		user, err := s.users.GetByID(ctx, r.UserID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, domain.Persistence("lookup user", err)
		}
		r.UserName = user.Name
		out = append(out, r)
	}
	return out, nil
}

// UserStats summarises a user's attempts. An empty userID means the caller.
func (s *ResultService) UserStats(ctx context.Context, caller domain.Caller, userID string) (domain.UserStats, error) {
	target, err := authorizeUserView(caller, userID)
	if err != nil {
		return domain.UserStats{}, err
	}
	results, err := s.results.ListByUser(ctx, target)
	if err != nil {
		return domain.UserStats{}, domain.Persistence("list user results", err)
	}
	return ComputeUserStats(results), nil
}

func (s *ResultService) userName(ctx context.Context, cache map[string]string, userID string) (string, error) {
	if name, ok := cache[userID]; ok {
		return name, nil
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return "", domain.Persistence("lookup user", err)
	}
	cache[userID] = user.Name
	return user.Name, nil
}

// authorizeUserView resolves the user whose data is requested. Callers may always
// read their own data; reading someone else's requires an elevated role.
func authorizeUserView(caller domain.Caller, userID string) (string, error) {
	if userID == "" || userID == caller.UserID {
		return caller.UserID, nil
	}
	if !caller.Role.Elevated() {
		return "", domain.ErrForbidden
	}
	return userID, nil
}
