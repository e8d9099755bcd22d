package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"quiz-app-service/internal/domain"
)

func TestQuizStoreListFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	store := NewQuizStore()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	quizzes := []domain.Quiz{
		{ID: "old", Category: domain.CategoryHistorical, CreatedBy: "u1", IsPublic: true, CreatedAt: base},
		{ID: "new", Category: domain.CategoryHistorical, CreatedBy: "u2", IsPublic: true, CreatedAt: base.Add(time.Hour)},
		{ID: "private", Category: domain.CategoryHistorical, CreatedBy: "u1", IsPublic: false, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "other", Category: domain.CategoryCultural, CreatedBy: "u1", IsPublic: true, CreatedAt: base.Add(3 * time.Hour)},
	}
	for _, q := range quizzes {
		if _, err := store.Create(ctx, q); err != nil {
			t.Fatalf("create %s: %v", q.ID, err)
		}
	}

	got, err := store.List(ctx, domain.QuizFilter{Category: domain.CategoryHistorical})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != "new" || got[1].ID != "old" {
		t.Fatalf("expected [new old], got %+v", ids(got))
	}

	got, _ = store.List(ctx, domain.QuizFilter{CreatedBy: "u1"})
	if len(got) != 2 || got[0].ID != "other" || got[1].ID != "old" {
		t.Fatalf("expected [other old], got %+v", ids(got))
	}
}

func TestQuizStoreReplaceAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewQuizStore()
	quiz := sampleQuiz()
	if _, err := store.Create(ctx, quiz); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Create(ctx, quiz); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict on duplicate id, got %v", err)
	}

	quiz.Title = "Renamed"
	if _, err := store.Replace(ctx, quiz); err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, _ := store.Get(ctx, quiz.ID)
	if got.Title != "Renamed" {
		t.Fatalf("expected replaced title, got %q", got.Title)
	}

	got.Questions[0].CorrectAnswer = "Rome"
	again, _ := store.Get(ctx, quiz.ID)
	if again.Questions[0].CorrectAnswer != "Paris" {
		t.Fatalf("stored quiz mutated through returned copy")
	}

	if err := store.Delete(ctx, quiz.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, quiz.ID); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := store.Delete(ctx, quiz.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found deleting twice, got %v", err)
	}
}

func TestResultStoreOrdersByUserNewestFirst(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	store := NewResultStoreWithClock(func() time.Time {
		now = now.Add(time.Minute)
		return now
	})

	first, _ := store.Record(ctx, domain.QuizResult{UserID: "u1", QuizID: "quiz-1", Score: 1})
	second, _ := store.Record(ctx, domain.QuizResult{UserID: "u1", QuizID: "quiz-2", Score: 2})
	_, _ = store.Record(ctx, domain.QuizResult{UserID: "u2", QuizID: "quiz-1", Score: 3})

	if first.ID == "" || first.ID == second.ID {
		t.Fatalf("expected distinct generated ids, got %q and %q", first.ID, second.ID)
	}

	byUser, _ := store.ListByUser(ctx, "u1")
	if len(byUser) != 2 || byUser[0].ID != second.ID {
		t.Fatalf("expected newest first, got %+v", byUser)
	}
	byQuiz, _ := store.ListByQuiz(ctx, "quiz-1")
	if len(byQuiz) != 2 {
		t.Fatalf("expected 2 results for quiz-1, got %d", len(byQuiz))
	}
	all, _ := store.ListAll(ctx)
	if len(all) != 3 {
		t.Fatalf("expected 3 results, got %d", len(all))
	}
}

func TestUserStoreRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()
	user := domain.User{ID: "u1", Email: "a@example.com", Name: "Alice", Role: domain.RoleStudent}
	if _, err := store.Create(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}
	user.ID = "u2"
	if _, err := store.Create(ctx, user); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected user exists, got %v", err)
	}
	got, err := store.GetByEmail(ctx, "a@example.com")
	if err != nil || got.ID != "u1" {
		t.Fatalf("expected u1 by email, got %+v (%v)", got, err)
	}
	if _, err := store.GetByID(ctx, "nope"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
}

func TestRateLimiterFixedWindow(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiterWithClock(2, time.Minute, func() time.Time { return now })
	ctx := context.Background()

	for i, want := range []bool{true, true, false} {
		ok, _ := limiter.Allow(ctx, "u1")
		if ok != want {
			t.Fatalf("hit %d: expected %v, got %v", i, want, ok)
		}
	}
	if ok, _ := limiter.Allow(ctx, "u2"); !ok {
		t.Fatalf("expected other key to be independent")
	}

	now = now.Add(time.Minute)
	if ok, _ := limiter.Allow(ctx, "u1"); !ok {
		t.Fatalf("expected new window to allow")
	}
}

func ids(quizzes []domain.Quiz) []string {
	out := make([]string, len(quizzes))
	for i, q := range quizzes {
		out[i] = q.ID
	}
	return out
}
