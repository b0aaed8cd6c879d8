package messaging

import (
	"context"
	"testing"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/yazbox/yazbox-backend/pkg/db/models"
	"github.com/yazbox/yazbox-backend/pkg/events"
	"github.com/yazbox/yazbox-backend/pkg/logger"
)

type stubNotificationWriter struct {
	created   []*models.Notification
	createErr error
}

func (s *stubNotificationWriter) Create(ctx context.Context, notification *models.Notification) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, notification)
	return nil
}

func buildMessageEvent(t *testing.T, payload events.MessageSentEvent) *pubsub.Message {
	t.Helper()
	data, err := events.Wrap(events.TypeMessageSent, payload)
	if err != nil {
		t.Fatalf("wrap event: %v", err)
	}
	return &pubsub.Message{ID: "msg-1", Data: data}
}

func newTestConsumer(t *testing.T, writer *stubNotificationWriter) *Consumer {
	t.Helper()
	consumer, err := NewConsumer(writer, &pubsub.Subscriber{}, logger.New(logger.Options{ServiceName: "test"}), nil)
	if err != nil {
		t.Fatalf("new consumer: %v", err)
	}
	return consumer
}

func TestConsumerCreatesRecipientNotification(t *testing.T) {
	t.Parallel()

	writer := &stubNotificationWriter{}
	consumer := newTestConsumer(t, writer)

	recipientID := uuid.New()
	conversationID := uuid.New()
	msg := buildMessageEvent(t, events.MessageSentEvent{
		MessageID:      uuid.New(),
		ConversationID: conversationID,
		SenderID:       uuid.New(),
		RecipientID:    recipientID,
		SentAt:         time.Now().UTC(),
	})

	result := consumer.process(context.Background(), msg)
	if !result.ack || result.nack {
		t.Fatal("expected ack result")
	}
	if len(writer.created) != 1 {
		t.Fatalf("expected one notification, got %d", len(writer.created))
	}
	notification := writer.created[0]
	if notification.UserID != recipientID {
		t.Fatalf("expected notification for recipient, got %s", notification.UserID)
	}
	if notification.Link == nil || *notification.Link != "/messages/"+conversationID.String() {
		t.Fatalf("unexpected link %v", notification.Link)
	}
}

func TestConsumerAcksGarbagePayload(t *testing.T) {
	t.Parallel()

	writer := &stubNotificationWriter{}
	consumer := newTestConsumer(t, writer)

	result := consumer.process(context.Background(), &pubsub.Message{ID: "msg-1", Data: []byte("not json")})
	if !result.ack || result.nack {
		t.Fatal("expected ack result for undecodable payload")
	}
	if len(writer.created) != 0 {
		t.Fatal("expected no notification for garbage payload")
	}
}

func TestConsumerAcksMissingRecipient(t *testing.T) {
	t.Parallel()

	writer := &stubNotificationWriter{}
	consumer := newTestConsumer(t, writer)

	msg := buildMessageEvent(t, events.MessageSentEvent{
		MessageID:      uuid.New(),
		ConversationID: uuid.New(),
		SenderID:       uuid.New(),
	})

	result := consumer.process(context.Background(), msg)
	if !result.ack || result.nack {
		t.Fatal("expected ack result")
	}
	if len(writer.created) != 0 {
		t.Fatal("expected no notification without a recipient")
	}
}

func TestConsumerNacksTransientFailure(t *testing.T) {
	t.Parallel()

	writer := &stubNotificationWriter{createErr: context.DeadlineExceeded}
	consumer := newTestConsumer(t, writer)

	msg := buildMessageEvent(t, events.MessageSentEvent{
		MessageID:      uuid.New(),
		ConversationID: uuid.New(),
		SenderID:       uuid.New(),
		RecipientID:    uuid.New(),
		SentAt:         time.Now().UTC(),
	})

	result := consumer.process(context.Background(), msg)
	if !result.nack {
		t.Fatal("expected nack for transient failure")
	}
}
