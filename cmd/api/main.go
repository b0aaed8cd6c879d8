package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yazbox/yazbox-backend/api/controllers"
	"github.com/yazbox/yazbox-backend/api/routes"
	"github.com/yazbox/yazbox-backend/internal/auth"
	"github.com/yazbox/yazbox-backend/internal/cart"
	"github.com/yazbox/yazbox-backend/internal/catalog"
	"github.com/yazbox/yazbox-backend/internal/messaging"
	"github.com/yazbox/yazbox-backend/internal/notifications"
	"github.com/yazbox/yazbox-backend/internal/orders"
	"github.com/yazbox/yazbox-backend/internal/profiles"
	"github.com/yazbox/yazbox-backend/internal/sellers"
	sessionsync "github.com/yazbox/yazbox-backend/internal/session"
	"github.com/yazbox/yazbox-backend/internal/toasts"
	"github.com/yazbox/yazbox-backend/pkg/auth/session"
	"github.com/yazbox/yazbox-backend/pkg/config"
	"github.com/yazbox/yazbox-backend/pkg/db"
	"github.com/yazbox/yazbox-backend/pkg/events"
	"github.com/yazbox/yazbox-backend/pkg/logger"
	"github.com/yazbox/yazbox-backend/pkg/metrics"
	"github.com/yazbox/yazbox-backend/pkg/migrate"
	"github.com/yazbox/yazbox-backend/pkg/pubsub"
	"github.com/yazbox/yazbox-backend/pkg/redis"
	"github.com/yazbox/yazbox-backend/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub", err)
		}
	}()

	gcsClient, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap gcs", err)
		os.Exit(1)
	}
	defer func() {
		if err := gcsClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing gcs", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(ctx, "failed to create session manager", err)
		os.Exit(1)
	}

	profileFetcher, err := profiles.NewFetcher(profiles.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(ctx, "failed to create profile fetcher", err)
		os.Exit(1)
	}
	sessionRegistry, err := sessionsync.NewRegistry(profileFetcher, sessionManager, logg,
		sessionsync.WithMetrics(metrics.NewSessionMetrics(prometheus.DefaultRegisterer)))
	if err != nil {
		logg.Error(ctx, "failed to create session registry", err)
		os.Exit(1)
	}
	toastFeed := toasts.NewRegistry()

	signupPublisher, err := events.NewPublisher(pubsubClient.SignupPublisher())
	if err != nil {
		logg.Error(ctx, "failed to create signup publisher", err)
		os.Exit(1)
	}
	messagePublisher, err := events.NewPublisher(pubsubClient.MessagePublisher())
	if err != nil {
		logg.Error(ctx, "failed to create message publisher", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       auth.NewUserRepository(dbClient.DB()),
		ProfileRepo:    profiles.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(ctx, "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		Publisher:      signupPublisher,
		Logger:         logg,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(ctx, "failed to create register service", err)
		os.Exit(1)
	}

	catalogRepo := catalog.NewRepository(dbClient.DB())
	catalogService, err := catalog.NewService(catalogRepo, dbClient, gcsClient)
	if err != nil {
		logg.Error(ctx, "failed to create catalog service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.NewRepository(dbClient.DB()), dbClient, catalogRepo)
	if err != nil {
		logg.Error(ctx, "failed to create orders service", err)
		os.Exit(1)
	}

	messagingService, err := messaging.NewService(messaging.NewRepository(dbClient.DB()), messagePublisher, logg)
	if err != nil {
		logg.Error(ctx, "failed to create messaging service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(ctx, "failed to create notifications service", err)
		os.Exit(1)
	}

	sellersService, err := sellers.NewService(sellers.NewRepository(dbClient.DB()), profiles.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		logg.Error(ctx, "failed to create sellers service", err)
		os.Exit(1)
	}

	cartStorage, err := cart.NewRedisStorage(redisClient, cfg.Cart.TTL)
	if err != nil {
		logg.Error(ctx, "failed to create cart storage", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.RouterParams{
		Config:          cfg,
		Logger:          logg,
		SessionChecker:  sessionManager,
		ReadinessDeps:   controllers.ReadinessDeps(dbClient, redisClient, pubsubClient, gcsClient),
		Sessions:        sessionRegistry,
		Toasts:          toastFeed,
		AuthService:     authService,
		RegisterService: registerService,
		CatalogService:  catalogService,
		CartStorage:     cartStorage,
		OrdersService:   ordersService,
		MessagingSvc:    messagingService,
		Notifications:   notificationsService,
		SellersService:  sellersService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	startCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(startCtx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "api server shutdown failed", err)
			os.Exit(1)
		}
		logg.Info(context.Background(), "api server stopped")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(startCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	}
}
