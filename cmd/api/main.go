package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-service/internal/api/http"
	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/audit"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/classifier"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
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

	var repos repository.Set
	if pg.Enabled() {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		repos = repository.NewPostgresSet(pg.Pool)
	} else {
		repos = memory.NewStore().Set()
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, redis, logger, cfg.Notification))

	cls := classifier.FromConfig(cfg.Classifier, logger)
	logger.Info("classifier ready", zap.String("mode", string(cls.Status().Mode)))

	assignments := service.NewAssignmentService(service.AssignmentDependencies{
		UserRepo: repos.Users,
		Logger:   logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  repos.Tickets,
		TagRepo:     repos.Tags,
		AuditRepo:   repos.Audit,
		Recorder:    audit.NewRecorder(repos.Audit, repos.Users),
		Assignments: assignments,
		Classifier:  cls,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	authService := service.NewAuthService(cfg.Auth, repos.Users)
	actorMiddleware := auth.NewActorMiddleware(authService.TokenManager(), cfg.Support.DefaultActorID)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	health := handlers.HealthDependencies{
		ServiceName: cfg.App.Name,
		Version:     cfg.App.Version,
		Classifier:  cls,
		Metrics:     metrics,
	}
	if pg.Enabled() {
		health.Postgres = pg
	}
	if redis.Enabled() {
		health.Redis = redis
	}

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler(health),
		Tickets:         handlers.NewTicketsHandler(ticketService),
		Audit:           handlers.NewAuditHandler(ticketService),
		Users:           handlers.NewUsersHandler(authService, assignments),
		ActorMiddleware: actorMiddleware,
	})

	go func() {
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
