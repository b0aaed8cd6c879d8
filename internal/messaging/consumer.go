package messaging

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/yazbox/yazbox-backend/pkg/db"
	"github.com/yazbox/yazbox-backend/pkg/db/models"
	"github.com/yazbox/yazbox-backend/pkg/events"
	"github.com/yazbox/yazbox-backend/pkg/logger"
	"github.com/yazbox/yazbox-backend/pkg/metrics"
)

const notificationConsumerName = "message-notifications"

type notificationWriter interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// Consumer turns message.sent events into in-app notifications for the
// recipient.
type Consumer struct {
	notifications notificationWriter
	subscription  *pubsub.Subscriber
	logg          *logger.Logger
	metrics       *metrics.ConsumerMetrics
	now           func() time.Time
}

// NewConsumer builds a message notification consumer.
func NewConsumer(notifications notificationWriter, subscription *pubsub.Subscriber, logg *logger.Logger, consumerMetrics *metrics.ConsumerMetrics) (*Consumer, error) {
	if notifications == nil {
		return nil, fmt.Errorf("notification writer required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("message subscription required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		notifications: notifications,
		subscription:  subscription,
		logg:          logg,
		metrics:       consumerMetrics,
		now:           time.Now,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		start := c.now()
		result := c.process(ctx, msg)
		c.metrics.ObserveDuration(notificationConsumerName, c.now().Sub(start))
		if result.nack {
			c.metrics.IncFailure(notificationConsumerName)
			msg.Nack()
			return
		}
		c.metrics.IncSuccess(notificationConsumerName)
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"consumer":   notificationConsumerName,
	})

	var payload events.MessageSentEvent
	envelope, err := events.Decode(msg.Data, &payload)
	if err != nil {
		c.logg.Error(logCtx, "failed to decode message event", err)
		return processResult{ack: true}
	}
	if envelope.Type != events.TypeMessageSent {
		c.logg.Info(logCtx, "skipping unrelated event")
		return processResult{ack: true}
	}
	if payload.RecipientID == uuid.Nil || payload.MessageID == uuid.Nil {
		c.logg.Warn(logCtx, "message event missing identifiers")
		return processResult{ack: true}
	}

	link := fmt.Sprintf("/messages/%s", payload.ConversationID)
	notification := &models.Notification{
		UserID:  payload.RecipientID,
		Message: "You have a new message",
		Link:    &link,
	}
	if err := c.notifications.Create(ctx, notification); err != nil {
		if db.IsUniqueViolation(err) {
			c.logg.Info(logCtx, "notification already recorded")
			return processResult{ack: true}
		}
		if isTransientDBError(err) {
			c.logg.Error(logCtx, "transient failure storing notification", err)
			return processResult{nack: true}
		}
		c.logg.Error(logCtx, "failed to store notification", err)
		return processResult{ack: true}
	}

	return processResult{ack: true}
}

func isTransientDBError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
