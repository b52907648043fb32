package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stackit-qa/stackit/backend/internal/auth"
	"github.com/stackit-qa/stackit/backend/internal/config"
	"github.com/stackit-qa/stackit/backend/internal/database"
	"github.com/stackit-qa/stackit/backend/internal/events"
	"github.com/stackit-qa/stackit/backend/internal/handlers"
	"github.com/stackit-qa/stackit/backend/internal/ratelimit"
	"github.com/stackit-qa/stackit/backend/internal/realtime"
	"github.com/stackit-qa/stackit/backend/internal/repository"
	"github.com/stackit-qa/stackit/backend/internal/repository/memory"
	"github.com/stackit-qa/stackit/backend/internal/repository/postgres"
	"github.com/stackit-qa/stackit/backend/internal/server"
	"github.com/stackit-qa/stackit/backend/internal/service"
	"github.com/stackit-qa/stackit/backend/internal/storage"
	"github.com/stackit-qa/stackit/backend/internal/validation"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}
	configureLogger(logger, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, store, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	publisher := buildPublisher(cfg, logger)
	defer publisher.Close()

	storageSvc, err := buildStorage(ctx, cfg)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}

	hub := realtime.NewHub(logger)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	v := validation.New()

	votes := service.NewVoteService(store.Answers, store.Votes, publisher, logger)
	services := handlers.Services{
		Auth:          service.NewAuthService(store.Users, tokens, v, logger),
		Questions:     service.NewQuestionService(store, votes, v, logger),
		Answers:       service.NewAnswerService(store, hub, publisher, v, logger),
		Votes:         votes,
		Notifications: service.NewNotificationService(store.Notifications),
	}

	var limiter *ratelimit.KeyedRateLimiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		defer limiter.Stop()
	}

	gin.SetMode(gin.ReleaseMode)
	srv := server.NewServer(server.New(server.Options{
		Config: cfg,
		DB:     db,
		Handler: handlers.NewHandler(handlers.Deps{
			Services: services,
			Hub:      hub,
			Storage:  storageSvc,
			Config:   cfg,
			Logger:   logger,
		}),
		Auth:    services.Auth,
		Storage: storageSvc,
		Limiter: limiter,
		Logger:  logger,
	}))

	go func() {
		logger.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Hijacked WebSocket connections are not tracked by Shutdown, so the hub
	// closes them itself.
	hub.Shutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

func configureLogger(logger *logrus.Logger, cfg config.Config) {
	level, _ := logrus.ParseLevel(cfg.Log.Level)
	logger.SetLevel(level)
	if cfg.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
}

func openStore(cfg config.Config, logger *logrus.Logger) (database.Service, *repository.Store, error) {
	if cfg.Database.Driver == "memory" {
		logger.Warn("using the in-memory store; data is lost on restart")
		return database.Memory{}, memory.NewStore(), nil
	}

	db, err := database.New(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return db, postgres.NewStore(db.GetDB()), nil
}

// buildPublisher falls back to a no-op publisher when no broker is
// configured or reachable.
func buildPublisher(cfg config.Config, logger *logrus.Logger) events.Publisher {
	if cfg.Events.RabbitURL == "" {
		return events.NopPublisher{}
	}
	pub, err := events.NewAMQPPublisher(cfg.Events.RabbitURL, cfg.Events.Exchange)
	if err != nil {
		logger.WithError(err).Warn("event broker unavailable, events disabled")
		return events.NopPublisher{}
	}
	logger.WithField("exchange", cfg.Events.Exchange).Info("publishing events to rabbitmq")
	return pub
}

func buildStorage(ctx context.Context, cfg config.Config) (storage.Service, error) {
	if cfg.Storage.Driver == "s3" {
		return storage.NewS3Service(ctx, storage.S3Config{
			Bucket:    cfg.Storage.Bucket,
			KeyPrefix: cfg.Storage.KeyPrefix,
			Region:    cfg.Storage.Region,
			Endpoint:  cfg.Storage.Endpoint,
			Profile:   cfg.AWS.Profile,
		})
	}
	return storage.NewLocalService(cfg.Storage.LocalDir, "/images", cfg.Storage.PublicBaseURL)
}
