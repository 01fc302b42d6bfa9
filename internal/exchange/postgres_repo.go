package exchange

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookshare/internal/book"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

const exchangeColumns = `e.id, e.book_id, e.borrower_id, e.status, e.borrow_date, e.return_date, e.created_at, e.updated_at`

const joinedColumns = exchangeColumns + `,
	b.id, b.owner_id, b.title, b.author, COALESCE(b.description, ''), COALESCE(b.cover_url, ''),
	COALESCE(b.age_range, ''), COALESCE(b.condition, ''), b.status,
	COALESCE(b.isbn_10, ''), COALESCE(b.isbn_13, ''), b.created_at, b.updated_at`

func (r *PostgresRepo) Create(ctx context.Context, e *Exchange) error {
	const query = `
	INSERT INTO book_exchanges (book_id, borrower_id, status)
	VALUES ($1, $2, $3)
	RETURNING id, created_at, updated_at
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, e.BookID, e.BorrowerID, e.Status).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrAlreadyRequested
	}
	return err
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Exchange, error) {
	query := `SELECT ` + exchangeColumns + ` FROM book_exchanges e WHERE e.id = $1`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var e Exchange
	err := r.db.QueryRow(timeoutCtx, query, id).Scan(
		&e.ID, &e.BookID, &e.BorrowerID, &e.Status, &e.BorrowDate, &e.ReturnDate, &e.CreatedAt, &e.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
		return Exchange{}, ErrNotFound
	}
	return e, err
}

const activeLoanIndex = "uq_book_exchanges_active_loan"

// Apply moves the exchange from t.From to t.To and updates the book status
// in one transaction. ErrConflict is returned if the exchange is no longer in
// t.From. Starting a loan also requires the book to still be available and
// without another active exchange, else ErrBookUnavailable.
func (r *PostgresRepo) Apply(ctx context.Context, t Transition) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(timeoutCtx)
	if err != nil {
		return err
	}
	defer tx.Rollback(timeoutCtx)

	const exchangeSQL = `
	UPDATE book_exchanges SET
		status = $3,
		borrow_date = CASE WHEN $3 = 'active' THEN $4 ELSE borrow_date END,
		return_date = CASE WHEN $3 = 'returned' THEN $4 ELSE return_date END,
		updated_at = $4
	WHERE id = $1 AND status = $2
	`
	tag, err := tx.Exec(timeoutCtx, exchangeSQL, t.ExchangeID, t.From, t.To, t.At)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == activeLoanIndex {
			return ErrBookUnavailable
		}
		return fmt.Errorf("update exchange: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}

	if t.To == StatusActive {
		const lendSQL = `UPDATE books SET status = 'unavailable', updated_at = $2 WHERE id = $1 AND status = 'available'`
		tag, err := tx.Exec(timeoutCtx, lendSQL, t.BookID, t.At)
		if err != nil {
			return fmt.Errorf("lend book: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrBookUnavailable
		}
	} else if t.BookStatus != "" {
		const bookSQL = `UPDATE books SET status = $2, updated_at = $3 WHERE id = $1`
		if _, err := tx.Exec(timeoutCtx, bookSQL, t.BookID, t.BookStatus, t.At); err != nil {
			return fmt.Errorf("update book status: %w", err)
		}
	}

	return tx.Commit(timeoutCtx)
}

func (r *PostgresRepo) ListBorrowed(ctx context.Context, borrowerID string) ([]WithBook, error) {
	query := `
	SELECT ` + joinedColumns + `
	FROM book_exchanges e
	JOIN books b ON b.id = e.book_id
	WHERE e.borrower_id = $1 AND e.status = 'active'
	ORDER BY e.borrow_date DESC
	`
	return r.listJoined(ctx, query, borrowerID)
}

func (r *PostgresRepo) ListIncoming(ctx context.Context, ownerID string) ([]WithBook, error) {
	query := `
	SELECT ` + joinedColumns + `
	FROM book_exchanges e
	JOIN books b ON b.id = e.book_id
	WHERE b.owner_id = $1 AND e.status = 'pending'
	ORDER BY e.created_at ASC
	`
	return r.listJoined(ctx, query, ownerID)
}

func (r *PostgresRepo) listJoined(ctx context.Context, query string, arg string) ([]WithBook, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(timeoutCtx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]WithBook, 0)
	for rows.Next() {
		var w WithBook
		e, b := &w.Exchange, &w.Book
		if err := rows.Scan(
			&e.ID, &e.BookID, &e.BorrowerID, &e.Status, &e.BorrowDate, &e.ReturnDate, &e.CreatedAt, &e.UpdatedAt,
			&b.ID, &b.OwnerID, &b.Title, &b.Author, &b.Description, &b.CoverURL,
			&b.AgeRange, &b.Condition, &b.Status, &b.ISBN10, &b.ISBN13, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

var _ Repository = (*PostgresRepo)(nil)
var _ Books = (*book.Service)(nil)

// isInvalidText reports a malformed id, such as a non-UUID path segment.
func isInvalidText(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}
