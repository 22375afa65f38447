package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/messagely/apiserver/types"
)

// MessageRepository handles persistence for messages.
type MessageRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db, now: time.Now}
}

// Create inserts a message with SentAt set to now and no ReadAt.
func (r *MessageRepository) Create(ctx context.Context, message types.Message) (types.Message, error) {
	const query = `
		INSERT INTO messages (from_username, to_username, body, sent_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, from_username, to_username, body, sent_at`
	var created types.Message
	err := r.db.QueryRowContext(
		ctx,
		query,
		message.FromUsername,
		message.ToUsername,
		message.Body,
		r.now().UTC(),
	).Scan(
		&created.ID,
		&created.FromUsername,
		&created.ToUsername,
		&created.Body,
		&created.SentAt,
	)
	if err != nil {
		return types.Message{}, translate(err)
	}
	return created, nil
}

// Get returns the message with both parties' profiles.
func (r *MessageRepository) Get(ctx context.Context, id int64) (types.MessageDetail, error) {
	const query = `
		SELECT m.id, m.body, m.sent_at, m.read_at,
		       f.username, f.first_name, f.last_name, f.phone,
		       t.username, t.first_name, t.last_name, t.phone
		FROM messages AS m
		JOIN users AS f ON m.from_username = f.username
		JOIN users AS t ON m.to_username = t.username
		WHERE m.id = $1`
	var detail types.MessageDetail
	var readAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&detail.ID,
		&detail.Body,
		&detail.SentAt,
		&readAt,
		&detail.FromUser.Username,
		&detail.FromUser.FirstName,
		&detail.FromUser.LastName,
		&detail.FromUser.Phone,
		&detail.ToUser.Username,
		&detail.ToUser.FirstName,
		&detail.ToUser.LastName,
		&detail.ToUser.Phone,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.MessageDetail{}, ErrNotFound
		}
		return types.MessageDetail{}, err
	}
	detail.ReadAt = nullTimePtr(readAt)
	return detail, nil
}

// MarkRead stamps read_at. A message that is already read keeps its
// original read_at.
func (r *MessageRepository) MarkRead(ctx context.Context, id int64) (types.MessageReceipt, error) {
	const query = `
		UPDATE messages
		SET read_at = COALESCE(read_at, $1)
		WHERE id = $2
		RETURNING id, read_at`
	var receipt types.MessageReceipt
	err := r.db.QueryRowContext(ctx, query, r.now().UTC(), id).Scan(&receipt.ID, &receipt.ReadAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.MessageReceipt{}, ErrNotFound
		}
		return types.MessageReceipt{}, err
	}
	return receipt, nil
}
