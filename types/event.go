package types

import "time"

// Event types published on the message bus.
const (
	EventMessageCreated = "message.created"
	EventMessageRead    = "message.read"
)

// MessageEvent describes a state change of a message. It is published after
// the change is committed to the database.
type MessageEvent struct {
	// EventID uniquely identifies this event for consumers that deduplicate.
	EventID string `json:"event_id"`

	// Type is one of EventMessageCreated or EventMessageRead.
	Type string `json:"type"`

	MessageID    int64     `json:"message_id"`
	FromUsername string    `json:"from_username"`
	ToUsername   string    `json:"to_username"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Archive is a point-in-time export of a user's inbox and outbox.
type Archive struct {
	Username   string            `json:"username"`
	ExportedAt time.Time         `json:"exported_at"`
	Sent       []SentMessage     `json:"sent"`
	Received   []ReceivedMessage `json:"received"`
}
