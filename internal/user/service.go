package user

import (
	"context"
	"errors"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates an account with an already hashed password. Emails are
// compared case-insensitively.
func (s *Service) Register(ctx context.Context, a NewAccount) (User, error) {
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))

	_, err := s.repo.GetByEmail(ctx, a.Email)
	if err == nil {
		return User{}, ErrAlreadyExists
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	return s.repo.CreateWithProfile(ctx, a)
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}
