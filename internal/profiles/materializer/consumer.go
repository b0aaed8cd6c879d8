package materializer

import (
	"context"
	"errors"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/yazbox/yazbox-backend/pkg/db"
	"github.com/yazbox/yazbox-backend/pkg/db/models"
	"github.com/yazbox/yazbox-backend/pkg/enums"
	"github.com/yazbox/yazbox-backend/pkg/events"
	"github.com/yazbox/yazbox-backend/pkg/logger"
	"github.com/yazbox/yazbox-backend/pkg/metrics"
)

const consumerName = "profile-materializer"

type repository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// Consumer materializes profile rows from signup events. Signup commits the
// auth identity and publishes; the profile row appears asynchronously here,
// which is why session establishment retries its profile fetch.
type Consumer struct {
	repo         repository
	subscription *pubsub.Subscriber
	logg         *logger.Logger
	metrics      *metrics.ConsumerMetrics
	now          func() time.Time
}

// NewConsumer constructs a consumer that watches the signup subscription.
func NewConsumer(repo repository, subscription *pubsub.Subscriber, logg *logger.Logger, m *metrics.ConsumerMetrics) (*Consumer, error) {
	if repo == nil {
		return nil, errors.New("profiles repository is required")
	}
	if subscription == nil {
		return nil, errors.New("signup subscription is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		logg:         logg,
		metrics:      m,
		now:          time.Now,
	}, nil
}

// Run processes messages until the context is canceled or the subscription errors.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		started := c.now()
		result := c.process(ctx, msg)
		c.metrics.ObserveDuration(consumerName, c.now().Sub(started))
		if result.nack {
			c.metrics.IncFailure(consumerName)
			msg.Nack()
			return
		}
		c.metrics.IncSuccess(consumerName)
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	var payload events.UserSignedUpEvent
	env, err := events.Decode(msg.Data, &payload)
	if err != nil {
		c.logg.Error(c.logg.WithField(ctx, "message_id", msg.ID), "failed to decode signup event", err)
		return processResult{ack: true}
	}

	fields := map[string]any{
		"message_id": msg.ID,
		"event_id":   env.EventID,
		"user_id":    payload.UserID.String(),
	}
	logCtx := c.logg.WithFields(ctx, fields)

	if payload.UserID == uuid.Nil {
		c.logg.Error(logCtx, "signup event missing user id", errors.New("empty user_id"))
		return processResult{ack: true}
	}

	role := payload.Role
	if !role.IsValid() {
		role = enums.ProfileRoleBuyer
	}

	profile := &models.Profile{
		ID:       payload.UserID,
		FullName: payload.FullName,
		Role:     role,
	}
	if err := c.repo.Create(ctx, profile); err != nil {
		if db.IsUniqueViolation(err) {
			c.logg.Info(logCtx, "profile already materialized")
			return processResult{ack: true}
		}
		c.logg.Error(logCtx, "profile persistence error", err)
		if isTransientDBError(err) {
			return processResult{nack: true}
		}
		return processResult{ack: true}
	}

	c.logg.Info(logCtx, "profile materialized")
	return processResult{ack: true}
}

func isTransientDBError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
