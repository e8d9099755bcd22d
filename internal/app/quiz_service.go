package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"quiz-app-service/internal/domain"
)

// QuizRepository abstracts how quizzes are stored (in-memory, Postgres).
type QuizRepository interface {
	Create(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error)
	Get(ctx context.Context, id string) (domain.Quiz, error)
	// List returns public quizzes matching the filter, newest first.
	List(ctx context.Context, filter domain.QuizFilter) ([]domain.Quiz, error)
	Replace(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error)
	Delete(ctx context.Context, id string) error
}

// QuizCache is a QuizReader that must be told when a quiz changes.
type QuizCache interface {
	QuizReader
	Invalidate(ctx context.Context, quizID string) error
}

// QuestionGenerator produces questions from source material (hosted model or mock).
type QuestionGenerator interface {
	FromBook(ctx context.Context, bookLink, topic string, n int) ([]domain.Question, error)
	FromNews(ctx context.Context, newsContent string, n int) ([]domain.Question, error)
}

// HeadlineSource supplies current news articles.
type HeadlineSource interface {
	TopHeadlines(ctx context.Context) ([]domain.Article, error)
}

const (
	defaultBookQuestions  = 10
	defaultNewsQuestions  = 5
	maxGeneratedQuestions = 50
)

// QuizInput carries the author-editable fields of a quiz.
type QuizInput struct {
	Title       string
	Description string
	Category    domain.Category
	Questions   []domain.Question
	TimeLimit   *int
	IsPublic    *bool
	Source      string
}

// BookRequest asks for a quiz generated from a book reference.
type BookRequest struct {
	BookLink          string
	Topic             string
	NumberOfQuestions int
	Title             string
	Description       string
}

// QuizService contains the quiz authoring use cases.
type QuizService struct {
	quizzes   QuizRepository
	cache     QuizCache
	users     UserLookup
	generator QuestionGenerator
	headlines HeadlineSource
	now       func() time.Time
	newID     func() string
}

func NewQuizService(quizzes QuizRepository, cache QuizCache, users UserLookup, generator QuestionGenerator, headlines HeadlineSource) *QuizService {
	return &QuizService{
		quizzes:   quizzes,
		cache:     cache,
		users:     users,
		generator: generator,
		headlines: headlines,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// NewQuizServiceWithClock is test-only for deterministic timestamps and IDs.
func NewQuizServiceWithClock(quizzes QuizRepository, cache QuizCache, users UserLookup, generator QuestionGenerator, headlines HeadlineSource, now func() time.Time, newID func() string) *QuizService {
	s := NewQuizService(quizzes, cache, users, generator, headlines)
	s.now = now
	s.newID = newID
	return s
}

// Create stores a new quiz owned by the caller.
func (s *QuizService) Create(ctx context.Context, caller domain.Caller, in QuizInput) (domain.Quiz, error) {
	if !caller.Role.CanAuthor() {
		return domain.Quiz{}, domain.ErrForbidden
	}
	if in.Title == "" || in.Description == "" || in.Category == "" || in.Questions == nil {
		return domain.Quiz{}, domain.Validationf("title, description, category and questions are required")
	}
	questions, err := s.normalizeQuestions(in.Questions)
	if err != nil {
		return domain.Quiz{}, err
	}
	if !in.Category.Valid() {
		return domain.Quiz{}, domain.Validationf("unknown category %q", in.Category)
	}
	if in.TimeLimit != nil && *in.TimeLimit <= 0 {
		return domain.Quiz{}, domain.Validationf("timeLimit must be positive")
	}

	now := s.now()
	quiz := domain.Quiz{
		ID:          s.newID(),
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		CreatedBy:   caller.UserID,
		Questions:   questions,
		TimeLimit:   in.TimeLimit,
		IsPublic:    in.IsPublic == nil || *in.IsPublic,
		Source:      in.Source,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	created, err := s.quizzes.Create(ctx, quiz)
	if err != nil {
		return domain.Quiz{}, domain.Persistence("create quiz", err)
	}
	return created, nil
}

// Get returns a quiz by ID.
func (s *QuizService) Get(ctx context.Context, id string) (domain.Quiz, error) {
	quiz, err := s.quizzes.Get(ctx, id)
	if err != nil {
		return domain.Quiz{}, domain.Persistence("get quiz", err)
	}
	return quiz, nil
}

// List returns public quizzes, newest first.
func (s *QuizService) List(ctx context.Context, filter domain.QuizFilter) ([]domain.Quiz, error) {
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, domain.Validationf("unknown category %q", filter.Category)
	}
	quizzes, err := s.quizzes.List(ctx, filter)
	if err != nil {
		return nil, domain.Persistence("list quizzes", err)
	}
	return quizzes, nil
}

// QuizView is a quiz with its author's display details attached.
// Creator is nil when the author account no longer exists.
type QuizView struct {
	domain.Quiz
	Creator *Creator
}

// Creator is the public part of a quiz author's account.
type Creator struct {
	Name  string
	Email string
}

// View is Get with the creator attached.
func (s *QuizService) View(ctx context.Context, id string) (QuizView, error) {
	quiz, err := s.Get(ctx, id)
	if err != nil {
		return QuizView{}, err
	}
	views, err := s.withCreators(ctx, []domain.Quiz{quiz})
	if err != nil {
		return QuizView{}, err
	}
	return views[0], nil
}

// Browse is List with creators attached.
func (s *QuizService) Browse(ctx context.Context, filter domain.QuizFilter) ([]QuizView, error) {
	quizzes, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.withCreators(ctx, quizzes)
}

func (s *QuizService) withCreators(ctx context.Context, quizzes []domain.Quiz) ([]QuizView, error) {
	creators := make(map[string]*Creator)
	out := make([]QuizView, len(quizzes))
	for i, quiz := range quizzes {
		creator, seen := creators[quiz.CreatedBy]
		if !seen {
			user, err := s.users.GetByID(ctx, quiz.CreatedBy)
			switch {
			case err == nil:
				creator = &Creator{Name: user.Name, Email: user.Email}
			case errors.Is(err, domain.ErrUserNotFound):
			default:
				return nil, domain.Persistence("lookup quiz creator", err)
			}
			creators[quiz.CreatedBy] = creator
		}
		out[i] = QuizView{Quiz: quiz, Creator: creator}
	}
	return out, nil
}

// Update replaces the editable fields of a quiz. Only the owner or a teacher may edit.
// Questions are replaced wholesale; recorded results keep their own snapshot.
func (s *QuizService) Update(ctx context.Context, caller domain.Caller, id string, in QuizInput) (domain.Quiz, error) {
	existing, err := s.ownedQuiz(ctx, caller, id)
	if err != nil {
		return domain.Quiz{}, err
	}

	if in.Title != "" {
		existing.Title = in.Title
	}
	if in.Description != "" {
		existing.Description = in.Description
	}
	if in.Category != "" {
		if !in.Category.Valid() {
			return domain.Quiz{}, domain.Validationf("unknown category %q", in.Category)
		}
		existing.Category = in.Category
	}
	if in.Questions != nil {
		questions, err := s.normalizeQuestions(in.Questions)
		if err != nil {
			return domain.Quiz{}, err
		}
		existing.Questions = questions
	}
	if in.TimeLimit != nil {
		if *in.TimeLimit <= 0 {
			return domain.Quiz{}, domain.Validationf("timeLimit must be positive")
		}
		existing.TimeLimit = in.TimeLimit
	}
	if in.IsPublic != nil {
		existing.IsPublic = *in.IsPublic
	}
	if in.Source != "" {
		existing.Source = in.Source
	}
	existing.UpdatedAt = s.now()

	updated, err := s.quizzes.Replace(ctx, existing)
	if err != nil {
		return domain.Quiz{}, domain.Persistence("replace quiz", err)
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		return domain.Quiz{}, domain.Persistence("invalidate quiz cache", err)
	}
	return updated, nil
}

// Delete removes a quiz. Only the owner or a teacher may delete.
func (s *QuizService) Delete(ctx context.Context, caller domain.Caller, id string) error {
	if _, err := s.ownedQuiz(ctx, caller, id); err != nil {
		return err
	}
	if err := s.quizzes.Delete(ctx, id); err != nil {
		return domain.Persistence("delete quiz", err)
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		return domain.Persistence("invalidate quiz cache", err)
	}
	return nil
}

// GenerateFromBook asks the question generator for a quiz about a book topic.
func (s *QuizService) GenerateFromBook(ctx context.Context, caller domain.Caller, req BookRequest) (domain.Quiz, error) {
	if !caller.Role.CanAuthor() {
		return domain.Quiz{}, domain.ErrForbidden
	}
	if req.BookLink == "" || req.Topic == "" || req.Title == "" || req.Description == "" {
		return domain.Quiz{}, domain.Validationf("book link, topic, title, and description are required")
	}
	n, err := questionCount(req.NumberOfQuestions, defaultBookQuestions)
	if err != nil {
		return domain.Quiz{}, err
	}

	questions, err := s.generator.FromBook(ctx, req.BookLink, req.Topic, n)
	if err != nil {
		return domain.Quiz{}, upstream("generate questions from book", err)
	}
	return s.createGenerated(ctx, caller, QuizInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    domain.CategoryCustom,
		Questions:   questions,
		Source:      req.BookLink,
	})
}

// GenerateFromNews builds a current-affairs quiz from the top headline.
func (s *QuizService) GenerateFromNews(ctx context.Context, caller domain.Caller, numberOfQuestions int) (domain.Quiz, error) {
	if !caller.Role.CanAuthor() {
		return domain.Quiz{}, domain.ErrForbidden
	}
	n, err := questionCount(numberOfQuestions, defaultNewsQuestions)
	if err != nil {
		return domain.Quiz{}, err
	}

	articles, err := s.headlines.TopHeadlines(ctx)
	if err != nil {
		return domain.Quiz{}, upstream("fetch headlines", err)
	}
	if len(articles) == 0 {
		return domain.Quiz{}, domain.ErrNoArticles
	}

	article := articles[0]
	content := article.Title + "\n" + article.Description + "\n" + article.Content
	questions, err := s.generator.FromNews(ctx, content, n)
	if err != nil {
		return domain.Quiz{}, upstream("generate questions from news", err)
	}

	description := article.Description
	if description == "" {
		description = "Quiz based on latest news"
	}
	return s.createGenerated(ctx, caller, QuizInput{
		Title:       "Current Affairs: " + article.Title,
		Description: description,
		Category:    domain.CategoryCurrentAffairs,
		Questions:   questions,
		Source:      article.URL,
	})
}

// createGenerated reports generator output that fails validation as an upstream
// failure rather than a client error.
func (s *QuizService) createGenerated(ctx context.Context, caller domain.Caller, in QuizInput) (domain.Quiz, error) {
	quiz, err := s.Create(ctx, caller, in)
	if errors.Is(err, domain.ErrValidation) {
		return domain.Quiz{}, fmt.Errorf("%w: generated questions rejected: %v", domain.ErrUpstream, err)
	}
	return quiz, err
}

func (s *QuizService) ownedQuiz(ctx context.Context, caller domain.Caller, id string) (domain.Quiz, error) {
	if !caller.Role.CanAuthor() {
		return domain.Quiz{}, domain.ErrForbidden
	}
	quiz, err := s.quizzes.Get(ctx, id)
	if err != nil {
		return domain.Quiz{}, domain.Persistence("get quiz", err)
	}
	if quiz.CreatedBy != caller.UserID && caller.Role != domain.RoleTeacher {
		return domain.Quiz{}, domain.ErrForbidden
	}
	return quiz, nil
}

// normalizeQuestions validates questions and fills defaults: a stable ID when the
// author gave none and medium difficulty. Options are kept only for multiple choice.
func (s *QuizService) normalizeQuestions(in []domain.Question) ([]domain.Question, error) {
	if len(in) == 0 {
		return nil, domain.Validationf("a quiz needs at least one question")
	}
	out := make([]domain.Question, len(in))
	seen := make(map[string]struct{}, len(in))
	for i, q := range in {
		if strings.TrimSpace(q.QuestionText) == "" {
			return nil, domain.Validationf("question %d: questionText is required", i)
		}
		if strings.TrimSpace(q.CorrectAnswer) == "" {
			return nil, domain.Validationf("question %d: correctAnswer is required", i)
		}

		switch q.QuestionType {
		case domain.QuestionMultipleChoice:
			if len(q.Options) < 2 {
				return nil, domain.Validationf("question %d: multiple-choice needs at least two options", i)
			}
			if !containsAnswer(q.Options, q.CorrectAnswer) {
				return nil, domain.Validationf("question %d: correctAnswer is not one of the options", i)
			}
		case domain.QuestionTrueFalse:
			if a := normalizeAnswer(q.CorrectAnswer); a != "true" && a != "false" {
				return nil, domain.Validationf("question %d: true-false answer must be True or False", i)
			}
			q.Options = nil
		case domain.QuestionFillInBlank:
			q.Options = nil
		default:
			return nil, domain.Validationf("question %d: unknown questionType %q", i, q.QuestionType)
		}

		switch q.Difficulty {
		case "":
			q.Difficulty = domain.DifficultyMedium
		case domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard:
		default:
			return nil, domain.Validationf("question %d: unknown difficulty %q", i, q.Difficulty)
		}

		if q.ID == "" {
			q.ID = s.newID()
		}
		if _, dup := seen[q.ID]; dup {
			return nil, domain.Validationf("question %d: duplicate id %q", i, q.ID)
		}
		seen[q.ID] = struct{}{}
		out[i] = q
	}
	return out, nil
}

func containsAnswer(options []string, answer string) bool {
	want := normalizeAnswer(answer)
	for _, o := range options {
		if normalizeAnswer(o) == want {
			return true
		}
	}
	return false
}

func questionCount(requested, fallback int) (int, error) {
	switch {
	case requested == 0:
		return fallback, nil
	case requested < 0 || requested > maxGeneratedQuestions:
		return 0, domain.Validationf("numberOfQuestions must be between 1 and %d", maxGeneratedQuestions)
	}
	return requested, nil
}

func upstream(op string, err error) error {
	if errors.Is(err, domain.ErrUpstream) || errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%s: %w: %v", op, domain.ErrUpstream, err)
}
