package profile

import (
	"context"
	"net/url"
	"strings"
	"unicode/utf8"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id string) (Profile, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies the non-nil fields of cmd. Text fields are trimmed and an
// empty value clears the field, except username which must stay at least
// three characters long.
func (s *Service) Update(ctx context.Context, id string, cmd UpdateCommand) (Profile, error) {
	updates := cmd.ToMap()

	for key, v := range updates {
		updates[key] = strings.TrimSpace(v.(string))
	}

	if username, ok := updates["username"].(string); ok {
		if utf8.RuneCountInString(username) < 3 {
			return Profile{}, ErrInvalidUsername
		}
	}

	if avatar, ok := updates["avatar_url"].(string); ok && avatar != "" {
		u, err := url.ParseRequestURI(avatar)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return Profile{}, ErrInvalidAvatar
		}
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return Profile{}, err
	}
	return s.repo.GetByID(ctx, id)
}

// Contacts lists every other member, for starting a conversation.
func (s *Service) Contacts(ctx context.Context, me string) ([]Profile, error) {
	return s.repo.ListExcept(ctx, me)
}
