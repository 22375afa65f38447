package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/messagely/apiserver/internal/store/memory"
	"github.com/messagely/apiserver/types"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// tickingClock advances one second on every call.
type tickingClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTickingClock() *tickingClock {
	return &tickingClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type fakePublisher struct {
	events []types.MessageEvent
	err    error
}

func (p *fakePublisher) PublishEvent(_ context.Context, evt types.MessageEvent) (string, error) {
	p.events = append(p.events, evt)
	if p.err != nil {
		return "", p.err
	}
	return evt.EventID, nil
}

type fixture struct {
	users    *UserService
	messages *MessageService
	events   *fakePublisher
	db       *memory.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memory.New()
	db.SetClock(newTickingClock().Now)
	events := &fakePublisher{}
	return &fixture{
		users:    NewUserService(db.Users(), bcrypt.MinCost),
		messages: NewMessageService(db.Messages(), events, zerolog.Nop()),
		events:   events,
		db:       db,
	}
}

func (f *fixture) register(t *testing.T, username string) types.Identity {
	t.Helper()
	_, err := f.users.Register(context.Background(), Registration{
		Username:  username,
		Password:  username + "-secret",
		FirstName: "First " + username,
		LastName:  "Last " + username,
		Phone:     "+15550000",
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return types.Identity{Username: username}
}

type archiveSink struct {
	key string
	doc any
	err error
}

func (s *archiveSink) PutJSON(_ context.Context, key string, v any) error {
	s.key = key
	s.doc = v
	return s.err
}

var errSink = errors.New("bucket unavailable")
