package book

import (
	"context"

	"bookshare/internal/lookup"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=book

// Repository defines the contract for book data storage.
type Repository interface {
	Create(ctx context.Context, b *Book) error
	GetByID(ctx context.Context, id string) (Book, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Book, error)
	ListAvailable(ctx context.Context, limit, offset int) ([]Book, int, error)
	// ListAvailableAfter returns up to limit available books older than
	// after, newest first.
	ListAvailableAfter(ctx context.Context, after Cursor, limit int) ([]Book, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}

// MetadataLookup resolves an ISBN to title, author, cover and description.
type MetadataLookup interface {
	Lookup(ctx context.Context, raw string) (lookup.Metadata, error)
}
