package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/messagely/apiserver/internal/authz"
	"github.com/messagely/apiserver/internal/metrics"
	"github.com/messagely/apiserver/types"
	"github.com/rs/zerolog"
)

// MessageRepository defines persistence operations for messages.
type MessageRepository interface {
	Create(ctx context.Context, message types.Message) (types.Message, error)
	Get(ctx context.Context, id int64) (types.MessageDetail, error)
	MarkRead(ctx context.Context, id int64) (types.MessageReceipt, error)
}

// EventPublisher hands message events to the bus. *mq.MQ implements it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, evt types.MessageEvent) (string, error)
}

// NewMessage is what a caller supplies to send a message. The sender is
// always the caller.
type NewMessage struct {
	ToUsername string
	Body       string
}

// MessageService loads, authorizes and mutates messages.
type MessageService struct {
	repo   MessageRepository
	events EventPublisher
	log    zerolog.Logger
	now    func() time.Time
}

// NewMessageService accepts a nil publisher, in which case no events are
// emitted.
func NewMessageService(repo MessageRepository, events EventPublisher, log zerolog.Logger) *MessageService {
	return &MessageService{
		repo:   repo,
		events: events,
		log:    log,
		now:    time.Now,
	}
}

// Get returns the message if caller is its sender or recipient.
func (s *MessageService) Get(ctx context.Context, caller types.Identity, id int64) (types.MessageDetail, error) {
	msg, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.MessageDetail{}, fmt.Errorf("get message %d: %w", id, err)
	}
	if err := authz.CanRead(caller, msg); err != nil {
		return types.MessageDetail{}, err
	}
	return msg, nil
}

// Create sends a message from caller. An unknown recipient surfaces as
// store.ErrForeignKeyViolation.
func (s *MessageService) Create(ctx context.Context, caller types.Identity, in NewMessage) (types.Message, error) {
	if err := authz.CanSend(caller); err != nil {
		return types.Message{}, err
	}

	msg, err := s.repo.Create(ctx, types.Message{
		FromUsername: caller.Username,
		ToUsername:   in.ToUsername,
		Body:         in.Body,
	})
	if err != nil {
		return types.Message{}, fmt.Errorf("create message: %w", err)
	}
	if msg.ID == 0 {
		return types.Message{}, ErrMessageNotCreated
	}

	metrics.MessagesCreated.Inc()
	s.publish(ctx, types.EventMessageCreated, msg.ID, msg.FromUsername, msg.ToUsername)
	return msg, nil
}

// MarkRead sets read_at on a message addressed to caller. Repeated calls
// return the original read_at and emit no further metric or event.
func (s *MessageService) MarkRead(ctx context.Context, caller types.Identity, id int64) (types.MessageReceipt, error) {
	msg, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.MessageReceipt{}, fmt.Errorf("get message %d: %w", id, err)
	}
	if err := authz.CanMarkRead(caller, msg); err != nil {
		return types.MessageReceipt{}, err
	}

	receipt, err := s.repo.MarkRead(ctx, id)
	if err != nil {
		return types.MessageReceipt{}, fmt.Errorf("mark message %d read: %w", id, err)
	}

	// Two concurrent first reads can both see a nil read_at; consumers
	// dedupe on message_id.
	if msg.ReadAt == nil {
		metrics.MessagesRead.Inc()
		s.publish(ctx, types.EventMessageRead, msg.ID, msg.FromUser.Username, msg.ToUser.Username)
	}
	return receipt, nil
}

// publish runs after the row is committed. Failures are logged only.
func (s *MessageService) publish(ctx context.Context, eventType string, id int64, from, to string) {
	if s.events == nil {
		return
	}
	evt := types.MessageEvent{
		EventID:      uuid.NewString(),
		Type:         eventType,
		MessageID:    id,
		FromUsername: from,
		ToUsername:   to,
		OccurredAt:   s.now().UTC(),
	}
	_, err := s.events.PublishEvent(ctx, evt)
	metrics.RecordEvent(eventType, err)
	if err != nil {
		s.log.Warn().Err(err).
			Str("event_id", evt.EventID).
			Str("type", eventType).
			Int64("message_id", id).
			Msg("publish message event")
	}
}
