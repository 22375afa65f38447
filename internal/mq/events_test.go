package mq

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/messagely/apiserver/config"
	"github.com/messagely/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	channel string
	data    []byte
	attrs   map[string]string
}

type recordingBackend struct {
	published []published
	err       error
}

func (b *recordingBackend) Publish(_ context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if b.err != nil {
		return "", b.err
	}
	b.published = append(b.published, published{channel: channel, data: data, attrs: attrs})
	return "id-1", nil
}

func (b *recordingBackend) Subscribe(ctx context.Context, channel string, handler Handler) error {
	for _, p := range b.published {
		if p.channel != channel {
			continue
		}
		if err := handler(ctx, Message{ID: "id-1", Data: p.data, Attributes: p.attrs}); err != nil {
			return err
		}
	}
	return nil
}

func (b *recordingBackend) Close() error { return nil }

func TestPublishEvent_RoundTrip(t *testing.T) {
	backend := &recordingBackend{}
	bus := New(backend)
	evt := types.MessageEvent{
		EventID:      "evt-1",
		Type:         types.EventMessageRead,
		MessageID:    7,
		FromUsername: "alice",
		ToUsername:   "bob",
		OccurredAt:   time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
	}

	id, err := bus.PublishEvent(context.Background(), evt)
	require.NoError(t, err)
	assert.Equal(t, "id-1", id)
	require.Len(t, backend.published, 1)
	assert.Equal(t, ChannelMessageRead, backend.published[0].channel)
	assert.Equal(t, types.EventMessageRead, backend.published[0].attrs["event_type"])

	var got []types.MessageEvent
	err = bus.Subscribe(context.Background(), ChannelMessageRead, func(_ context.Context, msg Message) error {
		decoded, err := DecodeEvent(msg)
		if err != nil {
			return err
		}
		got = append(got, decoded)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, evt, got[0])
}

func TestPublishEvent_UnknownType(t *testing.T) {
	bus := New(&recordingBackend{})
	_, err := bus.PublishEvent(context.Background(), types.MessageEvent{Type: "message.deleted"})
	require.Error(t, err)
}

func TestPublishEvent_BackendError(t *testing.T) {
	bus := New(&recordingBackend{err: errors.New("broker down")})
	_, err := bus.PublishEvent(context.Background(), types.MessageEvent{Type: types.EventMessageCreated})
	assert.EqualError(t, err, "broker down")
}

func TestDecodeEvent_Invalid(t *testing.T) {
	_, err := DecodeEvent(Message{ID: "x", Data: []byte("{")})
	require.Error(t, err)
}

func TestOpen(t *testing.T) {
	_, err := Open(context.Background(), config.MQConfig{})
	assert.ErrorIs(t, err, ErrDisabled)

	_, err = Open(context.Background(), config.MQConfig{Backend: "kafka"})
	require.Error(t, err)

	_, err = Open(context.Background(), config.MQConfig{Backend: "rabbitmq"})
	assert.EqualError(t, err, "rabbitmq url is required")

	_, err = Open(context.Background(), config.MQConfig{Backend: "pubsub"})
	assert.EqualError(t, err, "pubsub project id is required")
}
