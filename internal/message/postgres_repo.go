package message

import (
	"context"
	"errors"
	"fmt"
	"time"

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

const receiverForeignKey = "messages_receiver_id_fkey"

func (r *PostgresRepo) Create(ctx context.Context, m *Message) error {
	const query = `
	INSERT INTO messages (sender_id, receiver_id, content)
	VALUES ($1, $2, $3)
	RETURNING id, created_at
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, m.SenderID, m.ReceiverID, m.Content).Scan(&m.ID, &m.CreatedAt)
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23503" && pgErr.ConstraintName == receiverForeignKey:
			return ErrUnknownReceiver
		case pgErr.Code == "22P02":
			return ErrUnknownReceiver
		}
	}
	return fmt.Errorf("insert message: %w", err)
}

// Conversation keeps the newest limit messages and returns them oldest first.
func (r *PostgresRepo) Conversation(ctx context.Context, a, b string, limit int) ([]Message, error) {
	const query = `
	SELECT id, sender_id, receiver_id, content, created_at FROM (
		SELECT id, sender_id, receiver_id, content, created_at
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	) recent
	ORDER BY created_at ASC, id ASC
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(timeoutCtx, query, a, b, limit)
	if err != nil {
		if isInvalidText(err) {
			return []Message{}, nil
		}
		return nil, err
	}
	defer rows.Close()

	out := make([]Message, 0)
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		if isInvalidText(err) {
			return []Message{}, nil
		}
		return nil, err
	}
	return out, nil
}

var _ Repository = (*PostgresRepo)(nil)

// isInvalidText reports a malformed id, such as a non-UUID path segment.
func isInvalidText(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}
