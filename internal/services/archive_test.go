package services

import (
	"context"
	"testing"
	"time"

	"github.com/messagely/apiserver/internal/store"
	"github.com/messagely/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveKey(t *testing.T) {
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	assert.Equal(t, "archives/alice/20260304T050607Z.json", ArchiveKey("alice", at))
	assert.Equal(t, "archives/%2E%2E%2Fx/20260304T050607Z.json", ArchiveKey("../x", at))
	assert.Equal(t, "archives/%2E%2E/20260304T050607Z.json", ArchiveKey("..", at))
	assert.Equal(t, "archives/a%20b/20260304T050607Z.json", ArchiveKey("a b", at))
}

func TestArchiveService_Export(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	ctx := context.Background()

	_, err := f.messages.Create(ctx, alice, NewMessage{ToUsername: "bob", Body: "hi"})
	require.NoError(t, err)
	_, err = f.messages.Create(ctx, bob, NewMessage{ToUsername: "alice", Body: "hey"})
	require.NoError(t, err)

	sink := &archiveSink{}
	svc := NewArchiveService(f.users, sink)
	svc.now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }

	key, err := svc.Export(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "archives/alice/20260304T050607Z.json", key)
	assert.Equal(t, key, sink.key)

	archive, ok := sink.doc.(types.Archive)
	require.True(t, ok)
	assert.Equal(t, "alice", archive.Username)
	require.Len(t, archive.Sent, 1)
	assert.Equal(t, "hi", archive.Sent[0].Body)
	require.Len(t, archive.Received, 1)
	assert.Equal(t, "bob", archive.Received[0].FromUser.Username)
}

func TestArchiveService_Errors(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice")

	_, err := NewArchiveService(f.users, &archiveSink{}).Export(context.Background(), "ghost")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = NewArchiveService(f.users, &archiveSink{err: errSink}).Export(context.Background(), "alice")
	assert.ErrorIs(t, err, errSink)
}
