package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/queue-info-api/internal/api/http"
	"github.com/spec-kit/queue-info-api/internal/api/http/handlers"
	"github.com/spec-kit/queue-info-api/internal/auth"
	"github.com/spec-kit/queue-info-api/internal/config"
	"github.com/spec-kit/queue-info-api/internal/events"
	"github.com/spec-kit/queue-info-api/internal/observability"
	"github.com/spec-kit/queue-info-api/internal/persistence"
	"github.com/spec-kit/queue-info-api/internal/repository"
	"github.com/spec-kit/queue-info-api/internal/service"
	"github.com/spec-kit/queue-info-api/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	itemRepo := repository.NewItemRepository(pool)
	metricRepo := repository.NewMetricRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()

	authService, err := service.NewAuthService(cfg, userRepo, dispatcher)
	if err != nil {
		logger.Fatal("failed to init auth service", zap.Error(err))
	}
	itemService := service.NewItemService(itemRepo)
	metricService := service.NewMetricService(metricRepo, redis)

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.SMTP)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewMiddleware(authService.Codec(), userRepo)
	stats := observability.NewStatsRecorder(cfg.Stats, redis)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, stats, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		APIPrefix:      cfg.App.APIPrefix,
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService, cfg.Auth.RefreshTokenTTL()),
		Users:          handlers.NewUsersHandler(authService),
		Items:          handlers.NewItemsHandler(itemService),
		Metrics:        handlers.NewMetricsHandler(metricService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
