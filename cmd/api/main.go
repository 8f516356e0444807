package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httptransport "github.com/spec-kit/queue-service/internal/api/http"
	"github.com/spec-kit/queue-service/internal/api/http/handlers"
	"github.com/spec-kit/queue-service/internal/auth"
	"github.com/spec-kit/queue-service/internal/config"
	"github.com/spec-kit/queue-service/internal/notify"
	"github.com/spec-kit/queue-service/internal/observability"
	"github.com/spec-kit/queue-service/internal/persistence"
	"github.com/spec-kit/queue-service/internal/realtime"
	"github.com/spec-kit/queue-service/internal/repository"
	"github.com/spec-kit/queue-service/internal/service"
	"github.com/spec-kit/queue-service/internal/worker"
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

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
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
	repos := repository.New(pool)
	uow := persistence.NewUnitOfWork(pool)
	metrics := observability.NewMetrics()

	var transport notify.Transport
	if cfg.Telegram.BotToken != "" {
		transport = notify.NewTelegramTransport(cfg.Telegram)
	} else {
		logger.Warn("no telegram bot token configured, messages will be logged only")
		transport = notify.NewLogTransport(logger)
	}
	announcer := realtime.NewAnnouncer(redis.Client, cfg.Realtime.NowServingChannel, logger)

	auditService := service.NewAuditService(repos.Audit, logger)
	notificationService := service.NewNotificationService(logger)
	workdayService := service.NewWorkdayService(uow, repos, auditService, cfg.Workday, logger)
	queueService := service.NewQueueService(repos)
	ticketService := service.NewTicketService(uow, repos, workdayService, queueService, notificationService, auditService, cfg.Scheduler, logger)
	assignmentService := service.NewAssignmentService(uow, notificationService, auditService, announcer, metrics, logger)
	staffService := service.NewStaffService(uow, repos, auditService, cfg.Auth.BcryptCost, logger)
	dashboardService := service.NewDashboardService(repos, queueService, staffService)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authService := service.NewAuthService(repos.Staff, tokenManager)
	authMiddleware := auth.NewAuthMiddleware(tokenManager, repos.Staff)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Staff:          handlers.NewStaffHandler(staffService, ticketService, authService),
		Workdays:       handlers.NewWorkdaysHandler(workdayService),
		Dashboard:      handlers.NewDashboardHandler(dashboardService),
		AuthMiddleware: authMiddleware,
	})

	nearTurnWatcher := worker.NewNearTurnWatcher(repos, notificationService, cfg.Scheduler.PreArrivalPosition, metrics, logger)
	deliveryWorker := worker.NewDeliveryWorker(
		repos.Outbox,
		transport,
		auditService,
		metrics,
		cfg.Scheduler.DeliveryMaxAttempts,
		cfg.Scheduler.DeliveryBackoff(),
		cfg.Scheduler.DeliveryBatchSize,
		logger,
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(worker.NewRunner("assignment", cfg.Scheduler.AssignInterval(), assignmentService.RunTick, logger).RunWith(groupCtx))
	group.Go(worker.NewRunner("near_turn", cfg.Scheduler.NearTurnInterval(), nearTurnWatcher.RunTick, logger).RunWith(groupCtx))
	group.Go(worker.NewRunner("delivery", cfg.Scheduler.DeliveryInterval(), deliveryWorker.RunTick, logger).RunWith(groupCtx))

	group.Go(func() error {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		return app.Listen(cfg.App.Addr())
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down http server")
		return app.Shutdown()
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("service stopped with error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("service stopped")
}
