package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"quiz-app-service/internal/app"
	"quiz-app-service/internal/domain"
	"quiz-app-service/internal/infra/memory"
)

type resultFixture struct {
	service *app.ResultService
	quizzes *memory.QuizStore
	users   *memory.UserStore
	results *memory.ResultStore
}

func newResultFixture(t *testing.T) resultFixture {
	t.Helper()
	ctx := context.Background()
	quizzes := memory.NewQuizStore()
	if _, err := quizzes.Create(ctx, capitalsQuiz()); err != nil {
		t.Fatalf("seed quiz: %v", err)
	}
	users := memory.NewUserStore()
	for _, u := range []domain.User{
		{ID: "alice", Email: "alice@example.com", Name: "Alice", Role: domain.RoleStudent},
		{ID: "bob", Email: "bob@example.com", Name: "Bob", Role: domain.RoleStudent},
		{ID: "tess", Email: "tess@example.com", Name: "Tess", Role: domain.RoleTeacher},
	} {
		if _, err := users.Create(ctx, u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	tick := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	results := memory.NewResultStoreWithClock(func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	})
	cache := memory.NewQuizCache(quizzes, time.Minute)
	return resultFixture{
		service: app.NewResultService(results, cache, users),
		quizzes: quizzes,
		users:   users,
		results: results,
	}
}

func seconds(v float64) *float64 { return &v }

func caller(id string, role domain.Role) domain.Caller {
	return domain.Caller{UserID: id, Role: role}
}

func TestSubmitRecordsScoredAttempt(t *testing.T) {
	f := newResultFixture(t)
	receipt, err := f.service.Submit(context.Background(), caller("alice", domain.RoleStudent), app.Submission{
		QuizID:    "quiz-1",
		Answers:   []domain.SubmittedAnswer{{QuestionIndex: 0, UserAnswer: " PARIS "}},
		TimeTaken: seconds(33),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	r := receipt.Result
	if r.ID == "" || r.UserID != "alice" || r.QuizID != "quiz-1" || r.CompletedAt.IsZero() {
		t.Fatalf("unexpected record %+v", r)
	}
	if r.Score != 1 || r.TotalQuestions != 2 || r.PercentageScore != 50 || r.TimeTaken != 33 {
		t.Fatalf("unexpected score %+v", r)
	}
	if len(receipt.Unanswered) != 1 || receipt.Unanswered[0] != 1 {
		t.Fatalf("expected question 1 unanswered, got %v", receipt.Unanswered)
	}
}

func TestSubmitValidation(t *testing.T) {
	f := newResultFixture(t)
	ctx := context.Background()
	alice := caller("alice", domain.RoleStudent)

	cases := []struct {
		name string
		sub  app.Submission
		want error
	}{
		{"missing quiz", app.Submission{Answers: []domain.SubmittedAnswer{}, TimeTaken: seconds(1)}, domain.ErrValidation},
		{"missing answers", app.Submission{QuizID: "quiz-1", TimeTaken: seconds(1)}, domain.ErrValidation},
		{"missing time", app.Submission{QuizID: "quiz-1", Answers: []domain.SubmittedAnswer{}}, domain.ErrValidation},
		{"negative time", app.Submission{QuizID: "quiz-1", Answers: []domain.SubmittedAnswer{}, TimeTaken: seconds(-1)}, domain.ErrValidation},
		{"negative answer time", app.Submission{QuizID: "quiz-1", Answers: []domain.SubmittedAnswer{{QuestionIndex: 0, TimeTaken: seconds(-2)}}, TimeTaken: seconds(1)}, domain.ErrValidation},
		{"unknown quiz", app.Submission{QuizID: "nope", Answers: []domain.SubmittedAnswer{}, TimeTaken: seconds(1)}, domain.ErrNotFound},
		{"out of range", app.Submission{QuizID: "quiz-1", Answers: []domain.SubmittedAnswer{{QuestionIndex: 2}}, TimeTaken: seconds(1)}, domain.ErrOutOfRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.service.Submit(ctx, alice, tc.sub); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	stats, err := f.service.UserStats(ctx, alice, "")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalQuizzes != 0 {
		t.Fatalf("rejected submissions must not be recorded, got %+v", stats)
	}
}

type failingResults struct{}

func (failingResults) Record(context.Context, domain.QuizResult) (domain.QuizResult, error) {
	return domain.QuizResult{}, errors.New("connection refused")
}
func (failingResults) ListByUser(context.Context, string) ([]domain.QuizResult, error) {
	return nil, errors.New("connection refused")
}
func (failingResults) ListByQuiz(context.Context, string) ([]domain.QuizResult, error) {
	return nil, errors.New("connection refused")
}
func (failingResults) ListAll(context.Context) ([]domain.QuizResult, error) {
	return nil, errors.New("connection refused")
}

func TestStoreFailuresSurfaceAsPersistenceErrors(t *testing.T) {
	quizzes := memory.NewQuizStore()
	_, _ = quizzes.Create(context.Background(), capitalsQuiz())
	service := app.NewResultService(failingResults{}, memory.NewQuizCache(quizzes, 0), memory.NewUserStore())
	ctx := context.Background()
	alice := caller("alice", domain.RoleStudent)

	_, err := service.Submit(ctx, alice, app.Submission{QuizID: "quiz-1", Answers: []domain.SubmittedAnswer{}, TimeTaken: seconds(1)})
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("submit: expected persistence error, got %v", err)
	}
	if _, err := service.UserStats(ctx, alice, ""); !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("stats: expected persistence error, got %v", err)
	}
	if _, err := service.GlobalLeaderboard(ctx, 10); !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("global: expected persistence error, got %v", err)
	}
}

func TestUserResultsAttachQuizAndNewestFirst(t *testing.T) {
	f := newResultFixture(t)
	ctx := context.Background()
	alice := caller("alice", domain.RoleStudent)
	for _, answer := range []string{"Rome", "Paris"} {
		if _, err := f.service.Submit(ctx, alice, app.Submission{
			QuizID:    "quiz-1",
			Answers:   []domain.SubmittedAnswer{{QuestionIndex: 0, UserAnswer: answer}},
			TimeTaken: seconds(10),
		}); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	results, err := f.service.UserResults(ctx, alice, "")
	if err != nil {
		t.Fatalf("user results: %v", err)
	}
	if len(results) != 2 || results[0].Score != 1 || results[1].Score != 0 {
		t.Fatalf("expected newest first, got %+v", results)
	}
	if results[0].QuizTitle != capitalsQuiz().Title || results[0].QuizID != "quiz-1" {
		t.Fatalf("unexpected quiz details %+v", results[0])
	}

	if err := f.quizzes.Delete(ctx, "quiz-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	uncached := app.NewResultService(f.results, memory.NewQuizCache(f.quizzes, 0), f.users)
	results, err = uncached.UserResults(ctx, alice, "")
	if err != nil {
		t.Fatalf("user results after delete: %v", err)
	}
	if len(results) != 2 || results[0].QuizTitle != "" || results[0].QuizCategory != "" {
		t.Fatalf("expected empty quiz details for deleted quiz, got %+v", results[0])
	}
}

func TestUserViewsRequireTeacherForOthers(t *testing.T) {
	f := newResultFixture(t)
	ctx := context.Background()

	if _, err := f.service.UserResults(ctx, caller("bob", domain.RoleStudent), "alice"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("student reading peer: expected forbidden, got %v", err)
	}
	if _, err := f.service.UserStats(ctx, caller("p", domain.RoleParent), "alice"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("parent reading other user: expected forbidden, got %v", err)
	}
	if _, err := f.service.UserStats(ctx, caller("tess", domain.RoleTeacher), "alice"); err != nil {
		t.Fatalf("teacher: %v", err)
	}
	if _, err := f.service.UserStats(ctx, caller("alice", domain.RoleStudent), "alice"); err != nil {
		t.Fatalf("self by id: %v", err)
	}
}

func TestLeaderboardsResolveNames(t *testing.T) {
	f := newResultFixture(t)
	ctx := context.Background()
	submit := func(user string, answers []domain.SubmittedAnswer, secs float64) {
		t.Helper()
		if _, err := f.service.Submit(ctx, caller(user, domain.RoleStudent), app.Submission{QuizID: "quiz-1", Answers: answers, TimeTaken: seconds(secs)}); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	both := []domain.SubmittedAnswer{{QuestionIndex: 0, UserAnswer: "Paris"}, {QuestionIndex: 1, UserAnswer: "true"}}
	one := []domain.SubmittedAnswer{{QuestionIndex: 0, UserAnswer: "Paris"}}
	submit("alice", one, 120)
	submit("bob", one, 90)
	submit("alice", both, 200)
	submit("ghost", both, 10)

	board, err := f.service.QuizLeaderboard(ctx, "quiz-1", 3)
	if err != nil {
		t.Fatalf("quiz leaderboard: %v", err)
	}
	if len(board) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(board))
	}
	if board[0].UserID != "ghost" || board[0].UserName != "" {
		t.Fatalf("expected unknown user first without name, got %+v", board[0])
	}
	if board[1].UserName != "Alice" || board[1].Score != 2 || board[2].UserName != "Bob" {
		t.Fatalf("unexpected order %+v", board)
	}

	global, err := f.service.GlobalLeaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("global leaderboard: %v", err)
	}
	if len(global) != 2 {
		t.Fatalf("deleted users must be skipped, got %+v", global)
	}
	if global[0].UserName != "Alice" || global[0].TotalScore != 3 || global[0].QuizzesTaken != 2 || global[0].AverageScore != 75 {
		t.Fatalf("unexpected leader %+v", global[0])
	}

	if _, err := f.service.QuizLeaderboard(ctx, "missing", 10); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
