package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/messagely/apiserver/types"
)

// UserRepository handles persistence for users.
type UserRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db, now: time.Now}
}

// Create inserts a new user. JoinAt and LastLoginAt are both set to the
// current time. The caller supplies an already hashed password.
func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	now := r.now().UTC()

	const query = `
		INSERT INTO users (username, password, first_name, last_name, phone, join_at, last_login_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING username, password, first_name, last_name, phone, join_at, last_login_at`
	var created types.User
	err := r.db.QueryRowContext(
		ctx,
		query,
		user.Username,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Phone,
		now,
	).Scan(
		&created.Username,
		&created.PasswordHash,
		&created.FirstName,
		&created.LastName,
		&created.Phone,
		&created.JoinAt,
		&created.LastLoginAt,
	)
	if err != nil {
		return types.User{}, translate(err)
	}
	return created, nil
}

// GetPasswordHash returns the stored bcrypt hash for username.
func (r *UserRepository) GetPasswordHash(ctx context.Context, username string) (string, error) {
	const query = `SELECT password FROM users WHERE username = $1`
	var hash string
	if err := r.db.QueryRowContext(ctx, query, username).Scan(&hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return hash, nil
}

func (r *UserRepository) UpdateLoginTimestamp(ctx context.Context, username string) error {
	const query = `UPDATE users SET last_login_at = $1 WHERE username = $2`
	result, err := r.db.ExecContext(ctx, query, r.now().UTC(), username)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]types.UserProfile, error) {
	const query = `
		SELECT username, first_name, last_name, phone
		FROM users
		ORDER BY join_at, username`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]types.UserProfile, 0)
	for rows.Next() {
		var u types.UserProfile
		if err := rows.Scan(&u.Username, &u.FirstName, &u.LastName, &u.Phone); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) Get(ctx context.Context, username string) (types.User, error) {
	const query = `
		SELECT username, first_name, last_name, phone, join_at, last_login_at
		FROM users
		WHERE username = $1`
	var user types.User
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.Phone,
		&user.JoinAt,
		&user.LastLoginAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

// MessagesFrom returns the outbox of username, each entry joined with the
// recipient's profile.
func (r *UserRepository) MessagesFrom(ctx context.Context, username string) ([]types.SentMessage, error) {
	const query = `
		SELECT m.id, m.to_username, u.first_name, u.last_name, u.phone,
		       m.body, m.sent_at, m.read_at
		FROM messages AS m
		JOIN users AS u ON m.to_username = u.username
		WHERE m.from_username = $1
		ORDER BY m.id`
	rows, err := r.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]types.SentMessage, 0)
	for rows.Next() {
		var m types.SentMessage
		var readAt sql.NullTime
		if err := rows.Scan(
			&m.ID,
			&m.ToUser.Username,
			&m.ToUser.FirstName,
			&m.ToUser.LastName,
			&m.ToUser.Phone,
			&m.Body,
			&m.SentAt,
			&readAt,
		); err != nil {
			return nil, err
		}
		m.ReadAt = nullTimePtr(readAt)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// MessagesTo returns the inbox of username, each entry joined with the
// sender's profile.
func (r *UserRepository) MessagesTo(ctx context.Context, username string) ([]types.ReceivedMessage, error) {
	const query = `
		SELECT m.id, m.from_username, u.first_name, u.last_name, u.phone,
		       m.body, m.sent_at, m.read_at
		FROM messages AS m
		JOIN users AS u ON m.from_username = u.username
		WHERE m.to_username = $1
		ORDER BY m.id`
	rows, err := r.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]types.ReceivedMessage, 0)
	for rows.Next() {
		var m types.ReceivedMessage
		var readAt sql.NullTime
		if err := rows.Scan(
			&m.ID,
			&m.FromUser.Username,
			&m.FromUser.FirstName,
			&m.FromUser.LastName,
			&m.FromUser.Phone,
			&m.Body,
			&m.SentAt,
			&readAt,
		); err != nil {
			return nil, err
		}
		m.ReadAt = nullTimePtr(readAt)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
