// Package memory is an in-process implementation of the user and message
// repositories. It mirrors the SQL store's semantics (unique usernames,
// foreign keys, join results) and is meant for tests and local demos.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/messagely/apiserver/internal/store"
	"github.com/messagely/apiserver/types"
)

// Store holds the shared tables behind the two repositories.
type Store struct {
	mu       sync.RWMutex
	now      func() time.Time
	users    map[string]types.User
	order    []string
	messages map[int64]types.Message
	nextID   int64
}

func New() *Store {
	return &Store{
		now:      time.Now,
		users:    make(map[string]types.User),
		messages: make(map[int64]types.Message),
	}
}

// SetClock replaces the time source. Intended for tests.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Users() *UserRepository {
	return &UserRepository{s: s}
}

func (s *Store) Messages() *MessageRepository {
	return &MessageRepository{s: s}
}

type UserRepository struct {
	s *Store
}

func (r *UserRepository) Create(_ context.Context, user types.User) (types.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.users[user.Username]; exists {
		return types.User{}, store.ErrDuplicateKey
	}
	now := r.s.now().UTC()
	user.JoinAt = now
	user.LastLoginAt = now
	r.s.users[user.Username] = user
	r.s.order = append(r.s.order, user.Username)
	return user, nil
}

func (r *UserRepository) GetPasswordHash(_ context.Context, username string) (string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[username]
	if !ok {
		return "", store.ErrNotFound
	}
	return user.PasswordHash, nil
}

func (r *UserRepository) UpdateLoginTimestamp(_ context.Context, username string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[username]
	if !ok {
		return store.ErrNotFound
	}
	user.LastLoginAt = r.s.now().UTC()
	r.s.users[username] = user
	return nil
}

func (r *UserRepository) List(_ context.Context) ([]types.UserProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := make([]types.UserProfile, 0, len(r.s.order))
	for _, username := range r.s.order {
		users = append(users, r.s.users[username].UserProfile)
	}
	return users, nil
}

func (r *UserRepository) Get(_ context.Context, username string) (types.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[username]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	user.PasswordHash = ""
	return user, nil
}

func (r *UserRepository) MessagesFrom(_ context.Context, username string) ([]types.SentMessage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]types.SentMessage, 0)
	for _, m := range r.s.sortedMessages() {
		if m.FromUsername != username {
			continue
		}
		out = append(out, types.SentMessage{
			ID:     m.ID,
			ToUser: r.s.users[m.ToUsername].UserProfile,
			Body:   m.Body,
			SentAt: m.SentAt,
			ReadAt: copyTime(m.ReadAt),
		})
	}
	return out, nil
}

func (r *UserRepository) MessagesTo(_ context.Context, username string) ([]types.ReceivedMessage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]types.ReceivedMessage, 0)
	for _, m := range r.s.sortedMessages() {
		if m.ToUsername != username {
			continue
		}
		out = append(out, types.ReceivedMessage{
			ID:       m.ID,
			FromUser: r.s.users[m.FromUsername].UserProfile,
			Body:     m.Body,
			SentAt:   m.SentAt,
			ReadAt:   copyTime(m.ReadAt),
		})
	}
	return out, nil
}

type MessageRepository struct {
	s *Store
}

func (r *MessageRepository) Create(_ context.Context, message types.Message) (types.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[message.FromUsername]; !ok {
		return types.Message{}, store.ErrForeignKeyViolation
	}
	if _, ok := r.s.users[message.ToUsername]; !ok {
		return types.Message{}, store.ErrForeignKeyViolation
	}

	r.s.nextID++
	message.ID = r.s.nextID
	message.SentAt = r.s.now().UTC()
	message.ReadAt = nil
	r.s.messages[message.ID] = message
	return message, nil
}

func (r *MessageRepository) Get(_ context.Context, id int64) (types.MessageDetail, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.messages[id]
	if !ok {
		return types.MessageDetail{}, store.ErrNotFound
	}
	return types.MessageDetail{
		ID:       m.ID,
		Body:     m.Body,
		SentAt:   m.SentAt,
		ReadAt:   copyTime(m.ReadAt),
		FromUser: r.s.users[m.FromUsername].UserProfile,
		ToUser:   r.s.users[m.ToUsername].UserProfile,
	}, nil
}

func (r *MessageRepository) MarkRead(_ context.Context, id int64) (types.MessageReceipt, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.messages[id]
	if !ok {
		return types.MessageReceipt{}, store.ErrNotFound
	}
	if m.ReadAt == nil {
		now := r.s.now().UTC()
		m.ReadAt = &now
		r.s.messages[id] = m
	}
	return types.MessageReceipt{ID: m.ID, ReadAt: *m.ReadAt}, nil
}

// sortedMessages must be called with mu held.
func (s *Store) sortedMessages() []types.Message {
	out := make([]types.Message, 0, len(s.messages))
	for _, m := range s.messages {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
