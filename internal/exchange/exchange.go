package exchange

import (
	"errors"
	"time"

	"bookshare/internal/book"
)

var (
	ErrNotFound          = errors.New("exchange not found")
	ErrForbidden         = errors.New("not a party to this exchange")
	ErrOwnBook           = errors.New("cannot borrow your own book")
	ErrBookUnavailable   = errors.New("book is not available")
	ErrAlreadyRequested  = errors.New("book already requested")
	ErrUnknownAction     = errors.New("unknown exchange action")
	ErrInvalidTransition = errors.New("invalid exchange transition")
	// ErrConflict is returned when the exchange changed state between read and write.
	ErrConflict = errors.New("exchange was modified concurrently")
)

const (
	StatusPending   = "pending"
	StatusActive    = "active"
	StatusReturned  = "returned"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
	ActionCancel  = "cancel"
	ActionReturn  = "return"
)

// Exchange is a borrow request for a book and its lifecycle.
type Exchange struct {
	ID         string     `json:"id"`
	BookID     string     `json:"book_id"`
	BorrowerID string     `json:"borrower_id"`
	Status     string     `json:"status"`
	BorrowDate *time.Time `json:"borrow_date,omitempty"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// WithBook is an exchange joined with the book it concerns.
type WithBook struct {
	Exchange
	Book book.Book `json:"book"`
}

// Transition is a single status change applied atomically with the matching
// book status update. BookStatus is empty when the book is left untouched.
type Transition struct {
	ExchangeID string
	BookID     string
	From       string
	To         string
	At         time.Time
	BookStatus string
}

type RequestCommand struct {
	BookID string `json:"book_id" validate:"required"`
}
