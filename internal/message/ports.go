package message

import "context"

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=message

type Repository interface {
	Create(ctx context.Context, m *Message) error
	// Conversation returns messages exchanged between a and b in either
	// direction, oldest first.
	Conversation(ctx context.Context, a, b string, limit int) ([]Message, error)
}
