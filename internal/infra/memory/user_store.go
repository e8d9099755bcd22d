package memory

import (
	"context"
	"sync"

	"quiz-app-service/internal/domain"
)

// UserStore is an in-memory implementation of app.UserRepository.
type UserStore struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	byEmail map[string]string
}

func NewUserStore() *UserStore {
	return &UserStore{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

func (s *UserStore) Create(_ context.Context, user domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[user.Email]; ok {
		return domain.User{}, domain.ErrUserExists
	}
	s.byID[user.ID] = user
	s.byEmail[user.Email] = user.ID
	return user, nil
}

func (s *UserStore) GetByID(_ context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return s.byID[id], nil
}
