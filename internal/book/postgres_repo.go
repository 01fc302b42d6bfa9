package book

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
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

const bookColumns = `
	id, owner_id, title, author, COALESCE(description, ''), COALESCE(cover_url, ''),
	COALESCE(age_range, ''), COALESCE(condition, ''), COALESCE(status, 'available'),
	COALESCE(isbn_10, ''), COALESCE(isbn_13, ''), created_at, updated_at`

func scanBook(row pgx.Row) (Book, error) {
	var b Book
	err := row.Scan(
		&b.ID, &b.OwnerID, &b.Title, &b.Author, &b.Description, &b.CoverURL,
		&b.AgeRange, &b.Condition, &b.Status,
		&b.ISBN10, &b.ISBN13, &b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

func (r *PostgresRepo) Create(ctx context.Context, b *Book) error {
	const query = `
		INSERT INTO books (owner_id, title, author, description, cover_url, age_range, condition,
		                   status, isbn_10, isbn_13)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''),
		        $8, NULLIF($9, ''), NULLIF($10, ''))
		RETURNING id, created_at, updated_at`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.db.QueryRow(timeoutCtx, query,
		b.OwnerID, b.Title, b.Author, b.Description, b.CoverURL, b.AgeRange, b.Condition,
		b.Status, b.ISBN10, b.ISBN13,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	b, err := scanBook(r.db.QueryRow(timeoutCtx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) ListByOwner(ctx context.Context, ownerID string) ([]Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE owner_id = $1 ORDER BY created_at DESC`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) ListAvailable(ctx context.Context, limit, offset int) ([]Book, int, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var total int
	if err := r.db.QueryRow(timeoutCtx, `SELECT COUNT(*) FROM books WHERE status = $1`, StatusAvailable).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + bookColumns + `
		FROM books
		WHERE status = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(timeoutCtx, query, StatusAvailable, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func (r *PostgresRepo) ListAvailableAfter(ctx context.Context, after Cursor, limit int) ([]Book, error) {
	query := `SELECT ` + bookColumns + `
		FROM books
		WHERE status = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`
	args := []any{StatusAvailable, limit}
	if !after.IsZero() {
		query = `SELECT ` + bookColumns + `
		FROM books
		WHERE status = $1 AND (created_at, id) < ($3, $4)
		ORDER BY created_at DESC, id DESC
		LIMIT $2`
		args = append(args, after.CreatedAt, after.AfterID)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, args...)
	if err != nil {
		if isInvalidText(err) {
			return nil, ErrInvalidCursor
		}
		return nil, err
	}
	defer rows.Close()

	out := []Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		if isInvalidText(err) {
			return nil, ErrInvalidCursor
		}
		return nil, err
	}
	return out, nil
}

// notOnLoan restricts an owner write to books without an active exchange.
const notOnLoan = `NOT EXISTS (SELECT 1 FROM book_exchanges WHERE book_id = books.id AND status = 'active')`

// UpdateStatus sets the status of a book that is not lent out.
func (r *PostgresRepo) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE books SET status = $1, updated_at = NOW() WHERE id = $2 AND ` + notOnLoan

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, query, status, id)
	if err != nil {
		if isInvalidText(err) {
			return ErrNotFound
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.missingOrOnLoan(timeoutCtx, id)
	}
	return nil
}

// Delete removes a book that is not lent out.
func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, `DELETE FROM books WHERE id = $1 AND `+notOnLoan, id)
	if err != nil {
		if isInvalidText(err) {
			return ErrNotFound
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.missingOrOnLoan(timeoutCtx, id)
	}
	return nil
}

func (r *PostgresRepo) missingOrOnLoan(ctx context.Context, id string) error {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM books WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrOnLoan
}

// isInvalidText reports a malformed id, such as a non-UUID path segment.
func isInvalidText(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}
