package exchange

import (
	"context"

	"bookshare/internal/book"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=exchange

// Repository defines the contract for exchange storage.
type Repository interface {
	Create(ctx context.Context, e *Exchange) error
	GetByID(ctx context.Context, id string) (Exchange, error)
	Apply(ctx context.Context, t Transition) error
	ListBorrowed(ctx context.Context, borrowerID string) ([]WithBook, error)
	ListIncoming(ctx context.Context, ownerID string) ([]WithBook, error)
}

// Books is the read side of the book catalogue the workflow needs.
type Books interface {
	Get(ctx context.Context, id string) (book.Book, error)
}
