package mq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/messagely/apiserver/types"
)

// Channels carrying message events.
const (
	ChannelMessageCreated = "messages.created"
	ChannelMessageRead    = "messages.read"
)

const (
	attrEventType = "event_type"
	attrEventID   = "event_id"
)

// ChannelFor returns the channel an event type is published on.
func ChannelFor(eventType string) (string, error) {
	switch eventType {
	case types.EventMessageCreated:
		return ChannelMessageCreated, nil
	case types.EventMessageRead:
		return ChannelMessageRead, nil
	default:
		return "", fmt.Errorf("unknown event type %q", eventType)
	}
}

// PublishEvent encodes evt as JSON and publishes it on its channel.
func (m *MQ) PublishEvent(ctx context.Context, evt types.MessageEvent) (string, error) {
	channel, err := ChannelFor(evt.Type)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return "", fmt.Errorf("encode event: %w", err)
	}
	return m.Publish(ctx, channel, data, map[string]string{
		attrEventType: evt.Type,
		attrEventID:   evt.EventID,
	})
}

// DecodeEvent parses a message published by PublishEvent.
func DecodeEvent(msg Message) (types.MessageEvent, error) {
	var evt types.MessageEvent
	if err := json.Unmarshal(msg.Data, &evt); err != nil {
		return types.MessageEvent{}, fmt.Errorf("decode event %s: %w", msg.ID, err)
	}
	if evt.Type == "" {
		evt.Type = msg.Attributes[attrEventType]
	}
	return evt, nil
}
