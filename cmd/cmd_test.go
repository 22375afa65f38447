package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/messagely/apiserver/internal/mq"
	"github.com/messagely/apiserver/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderUsers(t *testing.T) {
	var buf bytes.Buffer
	renderUsers(&buf, []types.UserProfile{
		{Username: "alice", FirstName: "Alice", LastName: "Liddell", Phone: "555-0100"},
		{Username: "bob", FirstName: "Bob", LastName: "Builder", Phone: "555-0101"},
	})
	out := buf.String()
	assert.Contains(t, out, "USERNAME")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "Builder")
	assert.Contains(t, out, "TOTAL")
}

func TestLogEvent(t *testing.T) {
	var buf bytes.Buffer
	handler := logEvent(zerolog.New(&buf))

	data := []byte(`{"event_id":"evt-1","type":"message.created","message_id":3,"from_username":"alice","to_username":"bob","occurred_at":"2026-01-01T00:00:00Z"}`)
	require.NoError(t, handler(context.Background(), mq.Message{ID: "m1", Data: data}))
	assert.Contains(t, buf.String(), `"event_id":"evt-1"`)
	assert.Contains(t, buf.String(), `"from":"alice"`)
	assert.Contains(t, buf.String(), `"type":"message.created"`)

	buf.Reset()
	require.NoError(t, handler(context.Background(), mq.Message{ID: "m2", Data: []byte("nope")}))
	assert.Contains(t, buf.String(), "dropping malformed event")
}

func TestCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"server", "migrate", "notify", "archive", "users"} {
		assert.True(t, names[want], want)
	}
	assert.NotNil(t, serverCmd.Flags().Lookup("in-memory"))
	assert.NotNil(t, migrateDownCmd.Flags().Lookup("steps"))
}
