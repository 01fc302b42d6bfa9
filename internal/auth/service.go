package auth

import (
	"context"
	"errors"
	"time"

	"bookshare/internal/platform/crypto"
	"bookshare/internal/user"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
)

const defaultTokenTTL = 24 * time.Hour

// Users is the account store the auth flow depends on.
type Users interface {
	Register(ctx context.Context, a user.NewAccount) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type Service struct {
	secret string
	ttl    time.Duration
	users  Users
}

func NewService(secret string, ttl time.Duration, users Users) *Service {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &Service{secret: secret, ttl: ttl, users: users}
}

// Token is an issued bearer token.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Register hashes password and creates the account and its profile.
func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (user.User, error) {
	hash, err := crypto.HashPassword(cmd.Password)
	if err != nil {
		return user.User{}, err
	}
	return s.users.Register(ctx, user.NewAccount{
		Email:        cmd.Email,
		PasswordHash: hash,
		Username:     cmd.Username,
		FullName:     cmd.FullName,
	})
}

// Login checks credentials and issues an access token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (Token, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Token{}, ErrUnauthorized
		}
		return Token{}, err
	}
	if !crypto.VerifyPassword(u.PasswordHash, password) {
		return Token{}, ErrUnauthorized
	}

	token, _, err := crypto.GenerateToken(s.secret, u.ID, s.ttl)
	if err != nil {
		return Token{}, err
	}
	return Token{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.ttl.Seconds()),
	}, nil
}
