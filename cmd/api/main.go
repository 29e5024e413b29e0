package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/debtor-registry/internal/api/http"
	"github.com/spec-kit/debtor-registry/internal/api/http/handlers"
	"github.com/spec-kit/debtor-registry/internal/auth"
	"github.com/spec-kit/debtor-registry/internal/config"
	"github.com/spec-kit/debtor-registry/internal/documents"
	"github.com/spec-kit/debtor-registry/internal/events"
	"github.com/spec-kit/debtor-registry/internal/observability"
	"github.com/spec-kit/debtor-registry/internal/persistence"
	"github.com/spec-kit/debtor-registry/internal/repository"
	"github.com/spec-kit/debtor-registry/internal/service"
	"github.com/spec-kit/debtor-registry/internal/worker"
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

	rdb := persistence.NewRedis(cfg.Redis, logger)
	defer rdb.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	requestRepo := repository.NewRequestRepository(pool)
	debtorRepo := repository.NewDebtorRepository(pool)
	transactor := repository.NewTransactor(pool)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{UserRepo: userRepo})
	workflowService := service.NewWorkflowService(cfg.Workflow, service.WorkflowDependencies{
		RequestRepo: requestRepo,
		DebtorRepo:  debtorRepo,
		Transactor:  transactor,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	debtorService := service.NewDebtorService(debtorRepo, rdb.ClientHandle(), cfg.Workflow.DebtorCacheTTL(), logger)
	subscriptionService := service.NewSubscriptionService(userRepo, logger)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)

	documentStore, err := documents.NewStore(cfg.Documents, logger)
	if err != nil {
		logger.Fatal("failed to init document storage", zap.Error(err))
	}

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.App.RequestTimeout(),
		WriteTimeout: cfg.App.RequestTimeout(),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, rdb),
		Users:          handlers.NewUsersHandler(authService),
		Requests:       handlers.NewRequestsHandler(workflowService),
		Admin:          handlers.NewAdminHandler(workflowService, debtorService),
		Debtors:        handlers.NewDebtorsHandler(debtorService),
		Documents:      handlers.NewDocumentsHandler(documentStore),
		AuthMiddleware: authMiddleware,
	})

	worker.StartNotificationWorker(notificationService)
	worker.StartSubscriptionWorker(ctx, subscriptionService, cfg.Subscription.SweepInterval(), logger)

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
