package messages

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-advisory/meridian/internal/shared"
)

// RepositoryPort defines data access methods for messages.
type RepositoryPort interface {
	Create(ctx context.Context, senderUserID, recipientUserID int64, body string) (Message, error)
	Conversation(ctx context.Context, userA, userB int64) ([]Message, error)
	ListInbox(ctx context.Context, userID int64) ([]Message, error)
	MarkRead(ctx context.Context, id, recipientUserID int64) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const messageColumns = `id, sender_user_id, recipient_user_id, body, read_at, created_at`

// Create inserts a message.
func (r *Repository) Create(ctx context.Context, senderUserID, recipientUserID int64, body string) (Message, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO messages (sender_user_id, recipient_user_id, body) VALUES ($1, $2, $3) RETURNING `+messageColumns,
		senderUserID, recipientUserID, body)
	return scanMessage(row)
}

// Conversation returns the message history between two users, oldest first.
func (r *Repository) Conversation(ctx context.Context, userA, userB int64) ([]Message, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+messageColumns+` FROM messages
		 WHERE (sender_user_id = $1 AND recipient_user_id = $2)
		    OR (sender_user_id = $2 AND recipient_user_id = $1)
		 ORDER BY created_at, id`,
		userA, userB)
	if err != nil {
		return nil, err
	}
	return collectMessages(rows)
}

// ListInbox returns messages addressed to a user, newest first.
func (r *Repository) ListInbox(ctx context.Context, userID int64) ([]Message, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE recipient_user_id = $1 ORDER BY created_at DESC, id DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	return collectMessages(rows)
}

// MarkRead stamps a message as read. Only the recipient may mark it.
func (r *Repository) MarkRead(ctx context.Context, id, recipientUserID int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE messages SET read_at = NOW() WHERE id = $1 AND recipient_user_id = $2 AND read_at IS NULL`,
		id, recipientUserID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func collectMessages(rows pgx.Rows) ([]Message, error) {
	defer rows.Close()
	var out []Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanMessage(row pgx.Row) (Message, error) {
	var m Message
	err := row.Scan(&m.ID, &m.SenderUserID, &m.RecipientUserID, &m.Body, &m.ReadAt, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Message{}, shared.ErrNotFound
		}
		return Message{}, err
	}
	return m, nil
}

var _ RepositoryPort = (*Repository)(nil)
