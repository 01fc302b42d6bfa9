package message

import (
	"errors"
	"time"
)

var (
	ErrEmptyContent = errors.New("message content is empty")
	ErrSelfMessage  = errors.New("cannot message yourself")
	ErrTooLong      = errors.New("message content is too long")
	// ErrUnknownReceiver is returned when the receiver does not exist.
	ErrUnknownReceiver = errors.New("receiver not found")
)

// MaxContentLength bounds a single message, in runes.
const MaxContentLength = 2000

type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

type SendCommand struct {
	ReceiverID string `json:"receiver_id" validate:"required"`
	Content    string `json:"content" validate:"required"`
}
