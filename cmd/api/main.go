package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/civicdesk/issue-service/internal/api/http"
	"github.com/civicdesk/issue-service/internal/api/http/handlers"
	"github.com/civicdesk/issue-service/internal/auth"
	"github.com/civicdesk/issue-service/internal/config"
	"github.com/civicdesk/issue-service/internal/events"
	"github.com/civicdesk/issue-service/internal/observability"
	"github.com/civicdesk/issue-service/internal/persistence"
	"github.com/civicdesk/issue-service/internal/repository"
	"github.com/civicdesk/issue-service/internal/service"
	"github.com/civicdesk/issue-service/internal/sla"
	"github.com/civicdesk/issue-service/internal/worker"
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

	critical, high, medium, low := cfg.SLA.Windows()
	policy, err := sla.NewPolicy(sla.Durations{Critical: critical, High: high, Medium: medium, Low: low})
	if err != nil {
		logger.Fatal("invalid sla configuration", zap.Error(err))
	}

	pool := pg.PoolHandle()
	issueRepo := repository.NewIssueRepository(pool)
	profileRepo := repository.NewProfileRepository(pool)
	activityRepo := repository.NewActivityLogRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	promotionRepo := repository.NewPromotionRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	marker := persistence.NewSweepMarker(redis, cfg.Sweep.Cooldown())

	authService := service.NewAuthService(*cfg, profileRepo)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), profileRepo)

	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		IssueRepo:    issueRepo,
		ProfileRepo:  profileRepo,
		ActivityRepo: activityRepo,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	issueService := service.NewIssueService(service.IssueDependencies{
		IssueRepo:    issueRepo,
		CommentRepo:  commentRepo,
		ActivityRepo: activityRepo,
		Policy:       policy,
		Assigner:     assignmentService,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	escalationService := service.NewEscalationService(service.EscalationDependencies{
		IssueRepo:    issueRepo,
		ActivityRepo: activityRepo,
		CommentRepo:  commentRepo,
		Marker:       marker,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		IssueRepo:   issueRepo,
		CommentRepo: commentRepo,
		Marker:      marker,
		Dispatcher:  dispatcher,
		Logger:      logger,
		Window:      cfg.Sweep.NotifyWindow(),
	})
	slaService := service.NewSLAService(issueRepo)
	directoryService := service.NewDirectoryService(*cfg, service.DirectoryDependencies{
		ProfileRepo:   profileRepo,
		PromotionRepo: promotionRepo,
	})

	alertService := service.NewAlertService(dispatcher, logger, cfg.Alert)
	worker.StartAlertWorker(alertService)

	if sweeper := worker.NewSweepWorker(escalationService, notificationService, cfg.Sweep.Interval(), logger); sweeper != nil {
		sweeper.Start(ctx)
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Issues:         handlers.NewIssuesHandler(issueService),
		Admin:          handlers.NewAdminHandler(directoryService, issueService),
		SLA:            handlers.NewSLAHandler(escalationService, notificationService, slaService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)
	cancel()

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
