package types

import "time"

// Message is a direct message row as stored in the messages table.
type Message struct {
	// ID is the unique identifier generated by the database.
	ID int64 `json:"id" db:"id"`

	// FromUsername references the sending user.
	FromUsername string `json:"from_username" db:"from_username"`

	// ToUsername references the receiving user.
	ToUsername string `json:"to_username" db:"to_username"`

	// Body is the message text.
	Body string `json:"body" db:"body"`

	// SentAt is set when the message is created and never changes.
	SentAt time.Time `json:"sent_at" db:"sent_at"`

	// ReadAt is nil until the recipient marks the message read.
	// Once set it is never cleared.
	ReadAt *time.Time `json:"read_at,omitempty" db:"read_at"`
}

// MessageDetail is a message joined with the profiles of both parties.
type MessageDetail struct {
	ID       int64       `json:"id"`
	Body     string      `json:"body"`
	SentAt   time.Time   `json:"sent_at"`
	ReadAt   *time.Time  `json:"read_at"`
	FromUser UserProfile `json:"from_user"`
	ToUser   UserProfile `json:"to_user"`
}

// MessageReceipt is returned after marking a message read.
type MessageReceipt struct {
	ID     int64     `json:"id"`
	ReadAt time.Time `json:"read_at"`
}

// SentMessage is an outbox entry: a message joined with its recipient.
type SentMessage struct {
	ID     int64       `json:"id"`
	ToUser UserProfile `json:"to_user"`
	Body   string      `json:"body"`
	SentAt time.Time   `json:"sent_at"`
	ReadAt *time.Time  `json:"read_at"`
}

// ReceivedMessage is an inbox entry: a message joined with its sender.
type ReceivedMessage struct {
	ID       int64       `json:"id"`
	FromUser UserProfile `json:"from_user"`
	Body     string      `json:"body"`
	SentAt   time.Time   `json:"sent_at"`
	ReadAt   *time.Time  `json:"read_at"`
}
