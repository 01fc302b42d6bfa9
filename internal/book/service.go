package book

import (
	"context"
	"log"

	"github.com/cockroachdb/errors"

	"bookshare/internal/isbn"
	"bookshare/internal/lookup"
)

// Service provides book-related business logic.
type Service struct {
	repo   Repository
	lookup MetadataLookup
}

// NewService creates a new book service.
func NewService(repo Repository, lookup MetadataLookup) *Service {
	return &Service{repo: repo, lookup: lookup}
}

// AddByISBN validates the identifier, fetches its metadata and lists the book
// for ownerID as available.
func (s *Service) AddByISBN(ctx context.Context, ownerID string, cmd AddCommand) (Book, error) {
	if !isbn.IsValid(cmd.ISBN) {
		return Book{}, ErrInvalidISBN
	}

	md, err := s.lookup.Lookup(ctx, cmd.ISBN)
	if err != nil {
		switch {
		case errors.Is(err, lookup.ErrInvalidISBN):
			return Book{}, ErrInvalidISBN
		case errors.Is(err, lookup.ErrNotFound):
			return Book{}, ErrMetadataNotFound
		case errors.Is(err, lookup.ErrUnavailable):
			log.Printf("book metadata lookup failed: owner_id=%s error=%v", ownerID, err)
			return Book{}, ErrMetadataUnavailable
		default:
			return Book{}, err
		}
	}

	isbn10, isbn13 := isbn.Columns(cmd.ISBN)
	b := &Book{
		OwnerID:     ownerID,
		Title:       md.Title,
		Author:      md.Author,
		Description: md.Description,
		CoverURL:    md.CoverURL,
		AgeRange:    cmd.AgeRange,
		Condition:   cmd.Condition,
		Status:      StatusAvailable,
		ISBN10:      isbn10,
		ISBN13:      isbn13,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return Book{}, err
	}
	return *b, nil
}

// Get returns a book by its ID.
func (s *Service) Get(ctx context.Context, id string) (Book, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByOwner returns every book listed by ownerID, whatever its status.
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Book, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// ListAvailable returns books open for borrowing, newest first.
func (s *Service) ListAvailable(ctx context.Context, limit, offset int) ([]Book, int, error) {
	return s.repo.ListAvailable(ctx, limit, offset)
}

// ListAvailableAfter pages through available books by keyset. cursor is
// empty for the first page; next is empty on the last one.
func (s *Service) ListAvailableAfter(ctx context.Context, cursor string, limit int) (books []Book, next string, err error) {
	after, err := DecodeCursor(cursor)
	if err != nil {
		return nil, "", err
	}
	books, err = s.repo.ListAvailableAfter(ctx, after, limit+1)
	if err != nil {
		return nil, "", err
	}
	if len(books) > limit {
		books = books[:limit]
		next = EncodeCursor(CursorAfter(books[limit-1]))
	}
	return books, next, nil
}

// SetStatus changes the status of a book owned by ownerID.
func (s *Service) SetStatus(ctx context.Context, ownerID, id, status string) (Book, error) {
	if err := ValidateStatus(status); err != nil {
		return Book{}, err
	}
	b, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return Book{}, err
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return Book{}, err
	}
	b.Status = status
	return b, nil
}

// ToggleAvailability flips an owned book between available and unavailable.
func (s *Service) ToggleAvailability(ctx context.Context, ownerID, id string) (Book, error) {
	b, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return Book{}, err
	}
	next := StatusAvailable
	if b.IsAvailable() {
		next = StatusUnavailable
	}
	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return Book{}, err
	}
	b.Status = next
	return b, nil
}

// Delete removes a book owned by ownerID.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) owned(ctx context.Context, ownerID, id string) (Book, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Book{}, err
	}
	if b.OwnerID != ownerID {
		return Book{}, ErrForbidden
	}
	return b, nil
}
