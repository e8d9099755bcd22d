package domain

import "time"

// Role is the account type of a user.
type Role string

const (
	RoleStudent Role = "student"
	RoleParent  Role = "parent"
	RoleTeacher Role = "teacher"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleParent, RoleTeacher:
		return true
	}
	return false
}

// CanAuthor reports whether the role may create, generate, edit or delete quizzes.
func (r Role) CanAuthor() bool {
	return r == RoleParent || r == RoleTeacher
}

// Elevated reports whether the role may read other users' results and stats.
func (r Role) Elevated() bool {
	return r == RoleTeacher
}

// User is a registered account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Caller is the authenticated identity a request acts as.
type Caller struct {
	UserID string
	Email  string
	Role   Role
}

type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple-choice"
	QuestionTrueFalse      QuestionType = "true-false"
	QuestionFillInBlank    QuestionType = "fill-in-blank"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Category groups quizzes in listings.
type Category string

const (
	CategoryGeneralKnowledge Category = "general-knowledge"
	CategoryCultural         Category = "cultural"
	CategoryPolitical        Category = "political"
	CategoryHistorical       Category = "historical"
	CategoryCurrentAffairs   Category = "current-affairs"
	CategoryCustom           Category = "custom"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryGeneralKnowledge, CategoryCultural, CategoryPolitical,
		CategoryHistorical, CategoryCurrentAffairs, CategoryCustom:
		return true
	}
	return false
}

// Question is addressed by its position in Quiz.Questions; ID survives reordering.
type Question struct {
	ID            string       `json:"id"`
	QuestionText  string       `json:"questionText"`
	QuestionType  QuestionType `json:"questionType"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correctAnswer"`
	Explanation   string       `json:"explanation,omitempty"`
	Difficulty    Difficulty   `json:"difficulty"`
}

// Quiz is owned by its creator. Edits replace the whole document.
type Quiz struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    Category   `json:"category"`
	CreatedBy   string     `json:"createdBy"`
	Questions   []Question `json:"questions"`
	TimeLimit   *int       `json:"timeLimit,omitempty"` // minutes
	IsPublic    bool       `json:"isPublic"`
	Source      string     `json:"source,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// QuizFilter narrows public quiz listings. Empty fields match everything.
type QuizFilter struct {
	Category  Category
	CreatedBy string
}

// SubmittedAnswer is one answer of an attempt as sent by the client.
type SubmittedAnswer struct {
	QuestionIndex int      `json:"questionIndex"`
	UserAnswer    string   `json:"userAnswer"`
	TimeTaken     *float64 `json:"timeTaken,omitempty"` // seconds
}

// ScoredAnswer is a SubmittedAnswer with its correctness frozen at submission time.
type ScoredAnswer struct {
	QuestionIndex int      `json:"questionIndex"`
	QuestionID    string   `json:"questionId,omitempty"`
	UserAnswer    string   `json:"userAnswer"`
	IsCorrect     bool     `json:"isCorrect"`
	TimeTaken     *float64 `json:"timeTaken,omitempty"`
}

// ScoredResult is the output of scoring one attempt, before it is recorded.
type ScoredResult struct {
	Answers         []ScoredAnswer
	Score           int
	TotalQuestions  int
	PercentageScore float64
	Unanswered      []int
}

// QuizResult is an immutable record of one scored attempt.
type QuizResult struct {
	ID              string         `json:"id"`
	UserID          string         `json:"userId"`
	QuizID          string         `json:"quizId"`
	Answers         []ScoredAnswer `json:"answers"`
	Score           int            `json:"score"`
	TotalQuestions  int            `json:"totalQuestions"`
	PercentageScore float64        `json:"percentageScore"`
	TimeTaken       float64        `json:"timeTaken"` // seconds
	CompletedAt     time.Time      `json:"completedAt"`
}

// QuizLeaderboardEntry is one row of a per-quiz leaderboard.
type QuizLeaderboardEntry struct {
	ResultID  string  `json:"resultId"`
	UserID    string  `json:"userId"`
	UserName  string  `json:"userName"`
	Score     int     `json:"score"`
	TimeTaken float64 `json:"timeTaken"`
}

// UserRanking is one row of the global leaderboard.
type UserRanking struct {
	UserID       string  `json:"userId"`
	UserName     string  `json:"userName"`
	TotalScore   int     `json:"totalScore"`
	QuizzesTaken int     `json:"quizzesTaken"`
	AverageScore float64 `json:"averageScore"`
}

// UserStats summarises every attempt of one user.
type UserStats struct {
	TotalQuizzes   int     `json:"totalQuizzes"`
	TotalScore     int     `json:"totalScore"`
	AverageScore   float64 `json:"averageScore"`
	TotalTimeTaken float64 `json:"totalTimeTaken"`
}

// Article is a news headline used as source material for generated quizzes.
type Article struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
	Source      string    `json:"source"`
}
