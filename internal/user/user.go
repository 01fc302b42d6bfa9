package user

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("user already exists")
	ErrUsernameTaken = errors.New("username already taken")
)

// User is an account. The public face of a member lives in profile.Profile,
// which shares the same ID.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewAccount carries what registration writes: the account row and the
// initial profile row.
type NewAccount struct {
	Email        string
	PasswordHash string
	Username     string
	FullName     string
}
