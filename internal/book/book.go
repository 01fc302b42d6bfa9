package book

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a book is not found.
	ErrNotFound = errors.New("book not found")
	// ErrForbidden is returned when a member acts on a book they do not own.
	ErrForbidden = errors.New("book belongs to another member")
	// ErrInvalidISBN is returned when the submitted identifier fails validation.
	ErrInvalidISBN = errors.New("invalid ISBN")
	// ErrMetadataNotFound is returned when no metadata exists for a valid ISBN.
	ErrMetadataNotFound = errors.New("no book found for ISBN")
	// ErrMetadataUnavailable is returned when the metadata service cannot be reached.
	ErrMetadataUnavailable = errors.New("book metadata service unavailable")
	// ErrOnLoan is returned when the owner changes or deletes a book that is lent out.
	ErrOnLoan = errors.New("book is on loan")
	// ErrInvalidCursor is returned for a malformed page cursor.
	ErrInvalidCursor = errors.New("invalid cursor")
)

const (
	StatusAvailable   = "available"
	StatusUnavailable = "unavailable"
)

func ValidateStatus(status string) error {
	switch status {
	case StatusAvailable, StatusUnavailable:
		return nil
	default:
		return fmt.Errorf("invalid status: %s", status)
	}
}

// Book is a physical copy listed by a member.
type Book struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Description string    `json:"description,omitempty"`
	CoverURL    string    `json:"cover_url,omitempty"`
	AgeRange    string    `json:"age_range,omitempty"`
	Condition   string    `json:"condition,omitempty"`
	Status      string    `json:"status"`
	ISBN10      string    `json:"isbn_10,omitempty"`
	ISBN13      string    `json:"isbn_13,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsAvailable reports whether the book can be requested for borrowing.
func (b Book) IsAvailable() bool {
	return b.Status == StatusAvailable
}

// AddCommand is the input for listing a new book by ISBN.
type AddCommand struct {
	ISBN      string `json:"isbn" validate:"required,isbn"`
	AgeRange  string `json:"age_range" validate:"max=50"`
	Condition string `json:"condition" validate:"max=50"`
}
