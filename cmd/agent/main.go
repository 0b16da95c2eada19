package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/voice-support-agent/internal/api/http"
	"github.com/spec-kit/voice-support-agent/internal/api/http/handlers"
	"github.com/spec-kit/voice-support-agent/internal/assistant"
	"github.com/spec-kit/voice-support-agent/internal/bridge"
	"github.com/spec-kit/voice-support-agent/internal/config"
	"github.com/spec-kit/voice-support-agent/internal/events"
	"github.com/spec-kit/voice-support-agent/internal/observability"
	"github.com/spec-kit/voice-support-agent/internal/persistence"
	"github.com/spec-kit/voice-support-agent/internal/realtime"
	"github.com/spec-kit/voice-support-agent/internal/repository"
	"github.com/spec-kit/voice-support-agent/internal/service"
	"github.com/spec-kit/voice-support-agent/internal/worker"
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

	dataBridge := bridge.New(cfg.Bridge, logger)
	if dataBridge.Enabled() {
		if err := dataBridge.Start(ctx); err != nil {
			logger.Fatal("failed to start bridge", zap.Error(err))
		}
		defer dataBridge.Stop()
	}

	pool := pg.PoolHandle()
	dispatcher := events.NewInMemoryDispatcher()

	supportService := service.NewSupportService(service.SupportDependencies{
		CustomerRepo: repository.NewCustomerRepository(pool),
		OrderRepo:    repository.NewOrderRepository(pool),
		TicketRepo:   repository.NewTicketRepository(pool),
		CommentRepo:  repository.NewCommentRepository(pool),
		AgentRepo:    repository.NewAgentRepository(pool),
		Dispatcher:   dispatcher,
		Logger:       logger,
	})

	notificationService := service.NewNotificationService(dispatcher, redis, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	metrics := observability.NewMetrics()
	registry := assistant.NewRegistry(logger, metrics)
	assistant.RegisterSupportTools(registry, supportService, assistant.NewWttrClient(cfg.Weather), time.Now)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, dataBridge),
		Tools:   handlers.NewToolsHandler(registry),
		Tickets: handlers.NewTicketsHandler(supportService),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()
	logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))

	var session *realtime.Session
	if cfg.Realtime.Enabled {
		session = realtime.NewSession(cfg.Realtime, registry, logger)
		if err := session.Connect(ctx); err != nil {
			logger.Fatal("failed to connect realtime session", zap.Error(err))
		}
		logger.Info("realtime session connected", zap.String("model", cfg.Realtime.Model))
	}

	waitForShutdown(logger, session)

	if session != nil {
		_ = session.Close()
	}
	_ = app.Shutdown()
}

// waitForShutdown blocks until a termination signal arrives or the realtime
// session ends on its own.
func waitForShutdown(logger *zap.Logger, session *realtime.Session) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var sessionDone <-chan struct{}
	if session != nil {
		sessionDone = session.Done()
	}

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case <-sessionDone:
		if err := session.Err(); err != nil {
			logger.Error("realtime session ended", zap.Error(err))
		} else {
			logger.Info("realtime session ended")
		}
	}
}
