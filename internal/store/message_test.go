package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/messagely/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMessageRepoWithMock(t *testing.T) (*MessageRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewMessageRepository(db)
	repo.now = func() time.Time { return fixedNow }
	return repo, mock
}

func TestMessageRepository_Create(t *testing.T) {
	repo, mock := newMessageRepoWithMock(t)

	mock.ExpectQuery(`INSERT INTO messages \(from_username, to_username, body, sent_at\)`).
		WithArgs("alice", "bob", "hi", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "from_username", "to_username", "body", "sent_at"}).
			AddRow(7, "alice", "bob", "hi", fixedNow))

	msg, err := repo.Create(context.Background(), types.Message{FromUsername: "alice", ToUsername: "bob", Body: "hi"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), msg.ID)
	assert.Equal(t, fixedNow, msg.SentAt)
	assert.Nil(t, msg.ReadAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepository_Create_UnknownRecipient(t *testing.T) {
	repo, mock := newMessageRepoWithMock(t)

	mock.ExpectQuery(`INSERT INTO messages`).
		WillReturnError(&pq.Error{Code: "23503", Message: "violates foreign key constraint"})

	_, err := repo.Create(context.Background(), types.Message{FromUsername: "alice", ToUsername: "ghost", Body: "hi"})
	assert.ErrorIs(t, err, ErrForeignKeyViolation)
}

func TestMessageRepository_Get(t *testing.T) {
	repo, mock := newMessageRepoWithMock(t)

	mock.ExpectQuery(`JOIN users AS f ON m.from_username = f.username\s+JOIN users AS t ON m.to_username = t.username\s+WHERE m.id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "body", "sent_at", "read_at",
			"f_username", "f_first_name", "f_last_name", "f_phone",
			"t_username", "t_first_name", "t_last_name", "t_phone",
		}).AddRow(7, "hi", fixedNow, nil, "alice", "Alice", "Liddell", "1", "bob", "Bob", "Builder", "2"))

	detail, err := repo.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "alice", detail.FromUser.Username)
	assert.Equal(t, "bob", detail.ToUser.Username)
	assert.Equal(t, "Builder", detail.ToUser.LastName)
	assert.Nil(t, detail.ReadAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepository_Get_NotFound(t *testing.T) {
	repo, mock := newMessageRepoWithMock(t)

	mock.ExpectQuery(`FROM messages AS m`).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMessageRepository_MarkRead(t *testing.T) {
	repo, mock := newMessageRepoWithMock(t)

	mock.ExpectQuery(`UPDATE messages\s+SET read_at = COALESCE\(read_at, \$1\)\s+WHERE id = \$2\s+RETURNING id, read_at`).
		WithArgs(sqlmock.AnyArg(), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "read_at"}).AddRow(7, fixedNow))
	mock.ExpectQuery(`UPDATE messages`).
		WithArgs(sqlmock.AnyArg(), int64(8)).
		WillReturnError(sql.ErrNoRows)

	receipt, err := repo.MarkRead(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), receipt.ID)
	assert.Equal(t, fixedNow, receipt.ReadAt)

	_, err = repo.MarkRead(context.Background(), 8)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
