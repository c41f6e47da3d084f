package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/admin-service/internal/api/http"
	"github.com/spec-kit/admin-service/internal/api/http/handlers"
	"github.com/spec-kit/admin-service/internal/auth"
	"github.com/spec-kit/admin-service/internal/config"
	"github.com/spec-kit/admin-service/internal/events"
	"github.com/spec-kit/admin-service/internal/observability"
	"github.com/spec-kit/admin-service/internal/persistence"
	"github.com/spec-kit/admin-service/internal/ratelimit"
	"github.com/spec-kit/admin-service/internal/repository"
	"github.com/spec-kit/admin-service/internal/service"
	"github.com/spec-kit/admin-service/internal/worker"
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
	resetRepo := repository.NewPasswordResetRepository(pool)
	verifyRepo := repository.NewEmailVerificationRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:              userRepo,
		PasswordResetRepo:     resetRepo,
		EmailVerificationRepo: verifyRepo,
		Dispatcher:            dispatcher,
	})
	userService := service.NewUserService(*cfg, userRepo, dispatcher)

	authorizer := auth.NewSessionAuthorizer(authService.TokenManager(), userRepo)
	authMiddleware := auth.NewMiddleware(authorizer)

	var limiter ratelimit.Limiter
	if cfg.RateLimit.Store == "redis" {
		limiter = ratelimit.NewRedisLimiter(redis.Client, logger)
	} else {
		limiter = ratelimit.NewMemoryLimiter()
	}

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	authHandler := handlers.NewAuthHandler(authService)
	usersHandler := handlers.NewUsersHandler(userService, authService)
	statsHandler := handlers.NewStatsHandler(metrics)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Auth:           authHandler,
		Users:          usersHandler,
		Stats:          statsHandler,
		AuthMiddleware: authMiddleware,
		Limiter:        limiter,
		Limits:         cfg.RateLimit,
		Metrics:        metrics,
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
