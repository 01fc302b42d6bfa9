package profile

import (
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("profile not found")
	ErrInvalidUsername = errors.New("username must be at least 3 characters")
	ErrInvalidAvatar   = errors.New("avatar_url must be an http(s) URL")
	ErrUsernameTaken   = errors.New("username already taken")
)

// Profile is the public face of a member.
type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username,omitempty"`
	FullName  string    `json:"full_name,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpdateCommand is a partial update; nil fields are left unchanged.
type UpdateCommand struct {
	Username  *string `json:"username" validate:"omitempty,max=50"`
	FullName  *string `json:"full_name" validate:"omitempty,max=100"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,max=500"`
	Location  *string `json:"location" validate:"omitempty,max=100"`
}

func (c *UpdateCommand) ToMap() map[string]any {
	updates := make(map[string]any)
	if c.Username != nil {
		updates["username"] = *c.Username
	}
	if c.FullName != nil {
		updates["full_name"] = *c.FullName
	}
	if c.AvatarURL != nil {
		updates["avatar_url"] = *c.AvatarURL
	}
	if c.Location != nil {
		updates["location"] = *c.Location
	}
	return updates
}
