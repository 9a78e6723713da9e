package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bfcb/quizmerit-backend/internal/model"
)

// UserStore is the participant surface. *repository.UserRepository
// implements it.
type UserStore interface {
	GetByHandle(ctx context.Context, handle string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
}

// UserService registers participants. The handle is the dedup key: a known
// handle returns the existing record so the same person cannot register a
// second identity by re-submitting the form.
type UserService struct {
	users UserStore
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// Register returns the participant for the handle, creating one if needed.
func (s *UserService) Register(ctx context.Context, fullName, handle string) (*model.User, error) {
	existing, err := s.users.GetByHandle(ctx, handle)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", err)
	}

	u := &model.User{FullName: fullName, Handle: handle}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}
