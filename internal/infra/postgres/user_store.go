package postgres

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"quiz-app-service/internal/domain"
)

// UserStore persists accounts in the users table.
type UserStore struct {
	db *bun.DB
}

func NewUserStore(db *bun.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, user domain.User) (domain.User, error) {
	row := newUserRow(user)
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, domain.ErrUserExists
		}
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
	return row.toDomain(), nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (domain.User, error) {
	return s.getBy(ctx, "id", id)
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.getBy(ctx, "email", email)
}

func (s *UserStore) getBy(ctx context.Context, column, value string) (domain.User, error) {
	row := new(userRow)
	err := s.db.NewSelect().Model(row).Where("? = ?", bun.Ident(column), value).Limit(1).Scan(ctx)
	if isNoRows(err) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("select user by %s: %w", column, err)
	}
	return row.toDomain(), nil
}
