package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/civic-report/internal/api/http"
	"github.com/spec-kit/civic-report/internal/api/http/handlers"
	"github.com/spec-kit/civic-report/internal/auth"
	"github.com/spec-kit/civic-report/internal/config"
	"github.com/spec-kit/civic-report/internal/events"
	"github.com/spec-kit/civic-report/internal/observability"
	"github.com/spec-kit/civic-report/internal/persistence"
	"github.com/spec-kit/civic-report/internal/service"
	"github.com/spec-kit/civic-report/internal/worker"
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

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	dispatcher := events.NewInMemoryDispatcher(logger)
	repos := openRepositories(pg, redis)
	if repos.reporterClearer != nil {
		worker.StartReporterCleanup(dispatcher, repos.reporterClearer)
	}

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	accountService := service.NewAccountService(cfg.Auth, service.AccountDependencies{
		AccountRepo:  repos.accounts,
		Revocations:  repos.revocations,
		TokenManager: tokens,
	}, logger)
	adminService := service.NewAdminService(repos.accounts, dispatcher, logger)
	issueService := service.NewIssueService(service.IssueDependencies{
		IssueRepo:   repos.issues,
		HistoryRepo: repos.history,
		Dispatcher:  dispatcher,
	}, logger)
	themeService := service.NewThemeService(repos.themes)
	weatherService := service.NewWeatherService(cfg.Weather, logger)
	if cfg.Weather.APIKey == "" {
		logger.Warn("OPENWEATHER_API_KEY not set; weather endpoints will report not configured")
	}

	metrics := observability.NewMetrics()
	app := httptransport.NewApp(cfg.App.Name, logger, metrics)
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Logger:         logger,
		Metrics:        metrics,
		FrontendURL:    cfg.App.FrontendURL,
		RequestTimeout: cfg.App.RequestTimeout(),
	})
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:    handlers.NewAuthHandler(accountService),
		Admin:   handlers.NewAdminHandler(adminService, issueService),
		Issues:  handlers.NewIssuesHandler(issueService),
		Theme:   handlers.NewThemeHandler(themeService),
		Weather: handlers.NewWeatherHandler(weatherService),
		Gate:    auth.NewGate(tokens, repos.accounts, repos.revocations, logger),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
