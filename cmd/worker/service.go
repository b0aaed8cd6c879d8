package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/yazbox/yazbox-backend/internal/messaging"
	"github.com/yazbox/yazbox-backend/internal/profiles/materializer"
	"github.com/yazbox/yazbox-backend/pkg/config"
	"github.com/yazbox/yazbox-backend/pkg/db"
	"github.com/yazbox/yazbox-backend/pkg/logger"
	"github.com/yazbox/yazbox-backend/pkg/pubsub"
	"github.com/yazbox/yazbox-backend/pkg/redis"
)

// ServiceParams bundles everything the worker runs with.
type ServiceParams struct {
	Config               *config.Config
	Logger               *logger.Logger
	DB                   *db.Client
	Redis                *redis.Client
	PubSub               *pubsub.Client
	ProfileConsumer      *materializer.Consumer
	NotificationConsumer *messaging.Consumer
}

// Service supervises the event consumers that materialize signup profiles
// and fan out message notifications.
type Service struct {
	cfg                  *config.Config
	logg                 *logger.Logger
	db                   *db.Client
	redis                *redis.Client
	pubsub               *pubsub.Client
	profileConsumer      *materializer.Consumer
	notificationConsumer *messaging.Consumer
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Config == nil {
		return nil, errors.New("config is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.DB == nil {
		return nil, errors.New("database client is required")
	}
	if params.Redis == nil {
		return nil, errors.New("redis client is required")
	}
	if params.PubSub == nil {
		return nil, errors.New("pubsub client is required")
	}
	if params.ProfileConsumer == nil {
		return nil, errors.New("profile consumer is required")
	}
	if params.NotificationConsumer == nil {
		return nil, errors.New("notification consumer is required")
	}

	return &Service{
		cfg:                  params.Config,
		logg:                 params.Logger,
		db:                   params.DB,
		redis:                params.Redis,
		pubsub:               params.PubSub,
		profileConsumer:      params.ProfileConsumer,
		notificationConsumer: params.NotificationConsumer,
	}, nil
}

func (s *Service) ensureReadiness(ctx context.Context) error {
	if err := pingDependency(ctx, s.logg, "database", s.db.Ping); err != nil {
		return err
	}
	if err := pingDependency(ctx, s.logg, "redis", s.redis.Ping); err != nil {
		return err
	}
	if err := pingDependency(ctx, s.logg, "pubsub", s.pubsub.Ping); err != nil {
		return err
	}
	s.logg.Info(ctx, "all worker dependencies are ready")
	return nil
}

func pingDependency(ctx context.Context, logg *logger.Logger, name string, fn func(context.Context) error) error {
	if err := fn(ctx); err != nil {
		logg.Error(ctx, fmt.Sprintf("%s ping failed", name), err)
		return fmt.Errorf("%s ping failed: %w", name, err)
	}
	return nil
}

// Run blocks until the context is canceled or a consumer fails. Both
// consumers are stopped before it returns and their errors are combined.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := s.ensureReadiness(ctx); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- s.profileConsumer.Run(runCtx)
	}()
	go func() {
		errCh <- s.notificationConsumer.Run(runCtx)
	}()

	first := <-errCh
	cancel()
	second := <-errCh

	var combined error
	for _, err := range []error{first, second} {
		if err != nil && !errors.Is(err, context.Canceled) {
			combined = multierr.Append(combined, err)
		}
	}
	if combined != nil {
		s.logg.Error(ctx, "consumer stopped unexpectedly", combined)
		return combined
	}
	return ctx.Err()
}
