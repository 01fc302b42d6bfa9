package exchange

import (
	"context"
	"log"
	"time"

	"bookshare/internal/book"
)

// Service runs the borrow workflow between a book's owner and a borrower.
type Service struct {
	repo  Repository
	books Books
	now   func() time.Time
}

func NewService(repo Repository, books Books) *Service {
	return &Service{repo: repo, books: books, now: time.Now}
}

// Request opens a pending exchange for bookID on behalf of borrowerID.
func (s *Service) Request(ctx context.Context, borrowerID, bookID string) (Exchange, error) {
	b, err := s.books.Get(ctx, bookID)
	if err != nil {
		return Exchange{}, err
	}
	if b.OwnerID == borrowerID {
		return Exchange{}, ErrOwnBook
	}
	if !b.IsAvailable() {
		return Exchange{}, ErrBookUnavailable
	}

	e := &Exchange{
		BookID:     bookID,
		BorrowerID: borrowerID,
		Status:     StatusPending,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return Exchange{}, err
	}
	return *e, nil
}

func (s *Service) Approve(ctx context.Context, userID, id string) (Exchange, error) {
	return s.Act(ctx, userID, id, ActionApprove)
}

func (s *Service) Reject(ctx context.Context, userID, id string) (Exchange, error) {
	return s.Act(ctx, userID, id, ActionReject)
}

func (s *Service) Cancel(ctx context.Context, userID, id string) (Exchange, error) {
	return s.Act(ctx, userID, id, ActionCancel)
}

func (s *Service) Return(ctx context.Context, userID, id string) (Exchange, error) {
	return s.Act(ctx, userID, id, ActionReturn)
}

// Act applies action to exchange id on behalf of userID. Approving lends the
// book out and returning puts it back on the shelf, in the same write as the
// status change.
func (s *Service) Act(ctx context.Context, userID, id, action string) (Exchange, error) {
	if !knownAction(action) {
		return Exchange{}, ErrUnknownAction
	}
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Exchange{}, err
	}
	b, err := s.books.Get(ctx, e.BookID)
	if err != nil {
		return Exchange{}, err
	}
	if !allowed(action, userID, e, b) {
		return Exchange{}, ErrForbidden
	}

	next, err := Next(ctx, e.Status, action)
	if err != nil {
		return Exchange{}, err
	}

	now := s.now().UTC()
	t := Transition{
		ExchangeID: e.ID,
		BookID:     e.BookID,
		From:       e.Status,
		To:         next,
		At:         now,
	}
	switch next {
	case StatusActive:
		if !b.IsAvailable() {
			return Exchange{}, ErrBookUnavailable
		}
		t.BookStatus = book.StatusUnavailable
		e.BorrowDate = &now
	case StatusReturned:
		t.BookStatus = book.StatusAvailable
		e.ReturnDate = &now
	}

	if err := s.repo.Apply(ctx, t); err != nil {
		return Exchange{}, err
	}
	log.Printf("exchange transition: id=%s action=%s from=%s to=%s user_id=%s", e.ID, action, e.Status, next, userID)

	e.Status = next
	e.UpdatedAt = now
	return e, nil
}

// ListBorrowed returns the books userID currently has on loan.
func (s *Service) ListBorrowed(ctx context.Context, borrowerID string) ([]WithBook, error) {
	return s.repo.ListBorrowed(ctx, borrowerID)
}

// ListIncoming returns pending requests for books owned by ownerID.
func (s *Service) ListIncoming(ctx context.Context, ownerID string) ([]WithBook, error) {
	return s.repo.ListIncoming(ctx, ownerID)
}

func allowed(action, userID string, e Exchange, b book.Book) bool {
	switch action {
	case ActionApprove, ActionReject:
		return userID == b.OwnerID
	case ActionCancel:
		return userID == e.BorrowerID
	default:
		return userID == b.OwnerID || userID == e.BorrowerID
	}
}
