package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"quiz-app-service/internal/app"
	"quiz-app-service/internal/domain"
	"quiz-app-service/internal/generate"
	"quiz-app-service/internal/infra/memory"
)

type quizFixture struct {
	service *app.QuizService
	store   *memory.QuizStore
	cache   *memory.QuizCache
	users   *memory.UserStore
}

func newQuizFixture(t *testing.T, gen app.QuestionGenerator, headlines app.HeadlineSource) quizFixture {
	t.Helper()
	store := memory.NewQuizStore()
	cache := memory.NewQuizCache(store, time.Hour)
	users := memory.NewUserStore()
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	seq := 0
	service := app.NewQuizServiceWithClock(store, cache, users, gen, headlines,
		func() time.Time {
			now = now.Add(time.Second)
			return now
		},
		func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		})
	return quizFixture{service: service, store: store, cache: cache, users: users}
}

func validInput() app.QuizInput {
	return app.QuizInput{
		Title:       "Capitals",
		Description: "European capitals",
		Category:    domain.CategoryGeneralKnowledge,
		Questions: []domain.Question{
			{QuestionText: "Capital of France?", QuestionType: domain.QuestionMultipleChoice, Options: []string{"Paris", "Rome"}, CorrectAnswer: "Paris"},
			{QuestionText: "Rome is in Italy.", QuestionType: domain.QuestionTrueFalse, Options: []string{"True", "False"}, CorrectAnswer: "True", Difficulty: domain.DifficultyEasy},
			{QuestionText: "2 + 2 = _____", QuestionType: domain.QuestionFillInBlank, Options: []string{"ignored"}, CorrectAnswer: "4"},
		},
	}
}

func TestCreateQuizNormalizesQuestions(t *testing.T) {
	f := newQuizFixture(t, generate.MockGenerator{}, generate.MockHeadlines{})
	quiz, err := f.service.Create(context.Background(), caller("p1", domain.RoleParent), validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if quiz.ID != "id-1" || quiz.CreatedBy != "p1" || !quiz.IsPublic {
		t.Fatalf("unexpected quiz %+v", quiz)
	}
	for i, q := range quiz.Questions {
		if q.ID == "" {
			t.Fatalf("question %d has no id", i)
		}
	}
	if quiz.Questions[0].Difficulty != domain.DifficultyMedium || quiz.Questions[1].Difficulty != domain.DifficultyEasy {
		t.Fatalf("unexpected difficulties %+v", quiz.Questions)
	}
	if quiz.Questions[1].Options != nil || quiz.Questions[2].Options != nil {
		t.Fatal("options are only kept for multiple choice")
	}
}

func TestCreateQuizValidation(t *testing.T) {
	f := newQuizFixture(t, generate.MockGenerator{}, generate.MockHeadlines{})
	ctx := context.Background()
	parent := caller("p1", domain.RoleParent)

	if _, err := f.service.Create(ctx, caller("s1", domain.RoleStudent), validInput()); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("student: expected forbidden, got %v", err)
	}

	zero := 0
	cases := map[string]func(*app.QuizInput){
		"missing title":        func(in *app.QuizInput) { in.Title = "" },
		"unknown category":     func(in *app.QuizInput) { in.Category = "astrology" },
		"no questions":         func(in *app.QuizInput) { in.Questions = []domain.Question{} },
		"answer not an option": func(in *app.QuizInput) { in.Questions[0].CorrectAnswer = "Berlin" },
		"one option":           func(in *app.QuizInput) { in.Questions[0].Options = []string{"Paris"} },
		"bad true-false":       func(in *app.QuizInput) { in.Questions[1].CorrectAnswer = "maybe" },
		"unknown type":         func(in *app.QuizInput) { in.Questions[2].QuestionType = "essay" },
		"zero time limit":      func(in *app.QuizInput) { in.TimeLimit = &zero },
		"duplicate ids": func(in *app.QuizInput) {
			in.Questions[0].ID = "same"
			in.Questions[1].ID = "same"
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			if _, err := f.service.Create(ctx, parent, in); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestUpdateInvalidatesCacheAndChecksOwner(t *testing.T) {
	f := newQuizFixture(t, generate.MockGenerator{}, generate.MockHeadlines{})
	ctx := context.Background()
	owner := caller("p1", domain.RoleParent)
	quiz, err := f.service.Create(ctx, owner, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.cache.GetQuiz(ctx, quiz.ID); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	if _, err := f.service.Update(ctx, caller("p2", domain.RoleParent), quiz.ID, app.QuizInput{Title: "Mine now"}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("other parent: expected forbidden, got %v", err)
	}

	private := false
	updated, err := f.service.Update(ctx, owner, quiz.ID, app.QuizInput{Title: "World Capitals", IsPublic: &private})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "World Capitals" || updated.IsPublic || updated.Description != "European capitals" {
		t.Fatalf("unexpected update %+v", updated)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Fatal("updatedAt should advance")
	}

	cached, err := f.cache.GetQuiz(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if cached.Title != "World Capitals" {
		t.Fatalf("cache still serves stale title %q", cached.Title)
	}

	listed, _ := f.service.List(ctx, domain.QuizFilter{})
	if len(listed) != 0 {
		t.Fatalf("private quiz must not be listed, got %d", len(listed))
	}
}

func TestDeleteByTeacher(t *testing.T) {
	f := newQuizFixture(t, generate.MockGenerator{}, generate.MockHeadlines{})
	ctx := context.Background()
	quiz, _ := f.service.Create(ctx, caller("p1", domain.RoleParent), validInput())
	_, _ = f.cache.GetQuiz(ctx, quiz.ID)

	if err := f.service.Delete(ctx, caller("t1", domain.RoleTeacher), quiz.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.cache.GetQuiz(ctx, quiz.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected deleted quiz to be gone from cache, got %v", err)
	}
	if err := f.service.Delete(ctx, caller("t1", domain.RoleTeacher), quiz.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second delete: expected not found, got %v", err)
	}
}

func TestGenerateFromBookWithMock(t *testing.T) {
	f := newQuizFixture(t, generate.MockGenerator{}, generate.MockHeadlines{})
	quiz, err := f.service.GenerateFromBook(context.Background(), caller("t1", domain.RoleTeacher), app.BookRequest{
		BookLink:    "https://example.com/book",
		Topic:       "Fractions",
		Title:       "Fractions",
		Description: "Chapter one",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(quiz.Questions) != 10 || quiz.Category != domain.CategoryCustom || quiz.Source != "https://example.com/book" {
		t.Fatalf("unexpected quiz %+v", quiz)
	}

	if _, err := f.service.GenerateFromBook(context.Background(), caller("t1", domain.RoleTeacher), app.BookRequest{
		BookLink: "x", Topic: "y", Title: "z", Description: "w", NumberOfQuestions: 500,
	}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for huge count, got %v", err)
	}
}

func TestGenerateFromNewsUsesFirstHeadline(t *testing.T) {
	f := newQuizFixture(t, generate.MockGenerator{}, generate.MockHeadlines{})
	quiz, err := f.service.GenerateFromNews(context.Background(), caller("t1", domain.RoleTeacher), 0)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if quiz.Title != "Current Affairs: Global Climate Summit Concludes with New Agreements" {
		t.Fatalf("unexpected title %q", quiz.Title)
	}
	if quiz.Category != domain.CategoryCurrentAffairs || quiz.Source != "https://example.com/climate" || len(quiz.Questions) != 5 {
		t.Fatalf("unexpected quiz %+v", quiz)
	}
}

type noHeadlines struct{}

func (noHeadlines) TopHeadlines(context.Context) ([]domain.Article, error) { return nil, nil }

type brokenGenerator struct {
	questions []domain.Question
	err       error
}

func (g brokenGenerator) FromBook(context.Context, string, string, int) ([]domain.Question, error) {
	return g.questions, g.err
}

func (g brokenGenerator) FromNews(context.Context, string, int) ([]domain.Question, error) {
	return g.questions, g.err
}

func TestGenerationFailures(t *testing.T) {
	ctx := context.Background()
	teacher := caller("t1", domain.RoleTeacher)
	book := app.BookRequest{BookLink: "x", Topic: "y", Title: "z", Description: "w"}

	f := newQuizFixture(t, generate.MockGenerator{}, noHeadlines{})
	if _, err := f.service.GenerateFromNews(ctx, teacher, 0); !errors.Is(err, domain.ErrNoArticles) || !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected no articles, got %v", err)
	}

	f = newQuizFixture(t, brokenGenerator{err: errors.New("503 from provider")}, generate.MockHeadlines{})
	if _, err := f.service.GenerateFromBook(ctx, teacher, book); !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}

	f = newQuizFixture(t, brokenGenerator{questions: []domain.Question{{QuestionText: "?", QuestionType: "essay", CorrectAnswer: "a"}}}, generate.MockHeadlines{})
	if _, err := f.service.GenerateFromBook(ctx, teacher, book); !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected invalid generated questions to be upstream errors, got %v", err)
	}
	if listed, _ := f.store.List(ctx, domain.QuizFilter{}); len(listed) != 0 {
		t.Fatalf("nothing should be stored on failure, got %d", len(listed))
	}
}

func TestBrowseAttachesCreators(t *testing.T) {
	f := newQuizFixture(t, generate.MockGenerator{}, generate.MockHeadlines{})
	ctx := context.Background()
	if _, err := f.users.Create(ctx, domain.User{ID: "p1", Email: "pat@example.com", Name: "Pat", Role: domain.RoleParent}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	owned, err := f.service.Create(ctx, caller("p1", domain.RoleParent), validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.service.Create(ctx, caller("gone", domain.RoleTeacher), validInput()); err != nil {
		t.Fatalf("create orphan: %v", err)
	}

	views, err := f.service.Browse(ctx, domain.QuizFilter{})
	if err != nil {
		t.Fatalf("browse: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected two quizzes, got %d", len(views))
	}
	for _, v := range views {
		switch v.CreatedBy {
		case "p1":
			if v.Creator == nil || v.Creator.Name != "Pat" || v.Creator.Email != "pat@example.com" {
				t.Fatalf("expected Pat as creator, got %+v", v.Creator)
			}
		case "gone":
			if v.Creator != nil {
				t.Fatalf("deleted author should have no creator, got %+v", v.Creator)
			}
		}
	}

	view, err := f.service.View(ctx, owned.ID)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if view.Creator == nil || view.Creator.Name != "Pat" {
		t.Fatalf("expected creator on view, got %+v", view.Creator)
	}
	if _, err := f.service.View(ctx, "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
}
