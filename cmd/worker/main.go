package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yazbox/yazbox-backend/internal/messaging"
	"github.com/yazbox/yazbox-backend/internal/notifications"
	"github.com/yazbox/yazbox-backend/internal/profiles"
	"github.com/yazbox/yazbox-backend/internal/profiles/materializer"
	"github.com/yazbox/yazbox-backend/pkg/config"
	"github.com/yazbox/yazbox-backend/pkg/db"
	"github.com/yazbox/yazbox-backend/pkg/logger"
	"github.com/yazbox/yazbox-backend/pkg/metrics"
	"github.com/yazbox/yazbox-backend/pkg/pubsub"
	"github.com/yazbox/yazbox-backend/pkg/redis"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer redisClient.Close()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer pubsubClient.Close()

	consumerMetrics := metrics.NewConsumerMetrics(prometheus.DefaultRegisterer)

	profileConsumer, err := materializer.NewConsumer(
		profiles.NewRepository(dbClient.DB()),
		pubsubClient.SignupSubscription(),
		logg,
		consumerMetrics,
	)
	requireResource(ctx, logg, "profile consumer", err)

	notificationConsumer, err := messaging.NewConsumer(
		notifications.NewRepository(dbClient.DB()),
		pubsubClient.MessageSubscription(),
		logg,
		consumerMetrics,
	)
	requireResource(ctx, logg, "notification consumer", err)

	service, err := NewService(ServiceParams{
		Config:               cfg,
		Logger:               logg,
		DB:                   dbClient,
		Redis:                redisClient,
		PubSub:               pubsubClient,
		ProfileConsumer:      profileConsumer,
		NotificationConsumer: notificationConsumer,
	})
	requireResource(ctx, logg, "worker service", err)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{"env": cfg.App.Env})
	logg.Info(runCtx, "worker ready")

	if err := service.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(context.Background(), "worker shut down")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
