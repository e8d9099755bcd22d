package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the app layer wraps exactly one of these.
var (
	ErrValidation   = errors.New("validation failed")
	ErrOutOfRange   = errors.New("question index out of range")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("not authorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrRateLimited  = errors.New("rate limit exceeded")
	ErrUpstream     = errors.New("upstream provider failed")
	ErrPersistence  = errors.New("persistence failure")
)

var (
	// ErrQuizNotFound indicates the quiz could not be loaded.
	ErrQuizNotFound = fmt.Errorf("quiz %w", ErrNotFound)
	// ErrUserNotFound indicates the referenced user does not exist.
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)
	// ErrUserExists is returned when registering an email that is already taken.
	ErrUserExists = fmt.Errorf("user %w", ErrConflict)
	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
	// ErrEmptyQuiz is returned when scoring a quiz that has no questions.
	ErrEmptyQuiz = fmt.Errorf("quiz has no questions: %w", ErrValidation)
	// ErrDuplicateAnswer is returned when one submission answers the same question twice.
	ErrDuplicateAnswer = fmt.Errorf("question answered more than once: %w", ErrValidation)
	// ErrNoArticles is returned when the headline source has nothing to generate from.
	ErrNoArticles = fmt.Errorf("news articles %w", ErrNotFound)
)

// OutOfRangeError reports a submitted question index with no matching question.
type OutOfRangeError struct {
	Index int
	Total int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("question index %d out of range [0, %d)", e.Index, e.Total)
}

func (e *OutOfRangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

// Validationf builds an ErrValidation with a formatted reason.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Persistence wraps a store failure so callers can tell it apart from domain errors.
// Errors that already carry a kind are returned unchanged.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range []error{ErrNotFound, ErrConflict, ErrValidation, ErrPersistence} {
		if errors.Is(err, kind) {
			return err
		}
	}
	return fmt.Errorf("%s: %w: %v", op, ErrPersistence, err)
}
