package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/chatventas/commerce-service/internal/api/http"
	"github.com/chatventas/commerce-service/internal/api/http/handlers"
	"github.com/chatventas/commerce-service/internal/auth"
	"github.com/chatventas/commerce-service/internal/config"
	"github.com/chatventas/commerce-service/internal/delegation"
	"github.com/chatventas/commerce-service/internal/erp"
	"github.com/chatventas/commerce-service/internal/events"
	"github.com/chatventas/commerce-service/internal/notify"
	"github.com/chatventas/commerce-service/internal/observability"
	"github.com/chatventas/commerce-service/internal/persistence"
	"github.com/chatventas/commerce-service/internal/repository"
	"github.com/chatventas/commerce-service/internal/sequence"
	"github.com/chatventas/commerce-service/internal/service"
	"github.com/chatventas/commerce-service/internal/worker"
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

	metrics := observability.NewMetrics()

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
	conversationRepo := repository.NewConversationRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)

	// Identifier allocation must survive restarts; Redis is the counter of
	// record and the in-memory store only backs single-instance dev setups.
	var counterStore sequence.CounterStore
	if redis.Ping(ctx) == nil {
		counterStore = sequence.NewRedisCounterStore(redis.Client, cfg.Sequence.CounterTTL())
	} else {
		logger.Warn("redis unreachable, using in-memory sequence counters")
		counterStore = sequence.NewMemoryCounterStore()
	}
	allocator := sequence.NewAllocator(counterStore, logger)

	erpClient := erp.NewClient(erp.ClientConfig{
		Addr:            cfg.Erp.Addr(),
		System:          cfg.Erp.System,
		Service:         cfg.Erp.Service,
		Program:         cfg.Erp.Program,
		DialTimeout:     cfg.Erp.DialTimeout(),
		ResponseTimeout: cfg.Erp.ResponseTimeout(),
	}, logger)
	erpLookup := erp.NewInstrumentedClient(erpClient, metrics)

	agents, err := config.LoadAgents(cfg.Router.AgentsFile)
	if err != nil {
		logger.Fatal("failed to load agent roster", zap.Error(err))
	}
	graph, err := delegation.NewGraph(agents)
	if err != nil {
		logger.Fatal("invalid delegation graph", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()
	router := delegation.NewRouter(graph, erpLookup, nil, dispatcher, delegation.RouterConfig{
		MaxTermsPerMessage: cfg.Router.MaxTermsPerMessage,
		MaxParallelLookups: cfg.Router.MaxParallelLookups,
		LookupTimeout:      cfg.Router.LookupTimeout(),
	}, logger)

	hub := notify.NewHub(logger, metrics)
	var broadcaster service.Broadcaster = hub
	if redis.Ping(ctx) == nil {
		bridge := notify.NewRedisBridge(redis.Client, hub, logger)
		bridge.Start(ctx)
		broadcaster = bridge
	}

	chatService := service.NewChatService(conversationRepo, router, logger)
	orderService := service.NewOrderService(service.OrderDependencies{
		OrderRepo:   orderRepo,
		Allocator:   allocator,
		Dispatcher:  dispatcher,
		OrderPrefix: cfg.Sequence.OrderPrefix,
	}, logger)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:   ticketRepo,
		Allocator:    allocator,
		Dispatcher:   dispatcher,
		TicketPrefix: cfg.Sequence.TicketPrefix,
	}, logger)
	notificationService := service.NewNotificationService(dispatcher, broadcaster, logger)
	worker.StartNotificationWorker(notificationService)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTokenTTL())
	sessionMiddleware := auth.NewSessionMiddleware(tokenManager)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:            handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Sessions:          handlers.NewSessionsHandler(chatService, tokenManager),
		Chat:              handlers.NewChatHandler(chatService, hub, tokenManager, dispatcher, logger),
		Orders:            handlers.NewOrdersHandler(orderService),
		Tickets:           handlers.NewTicketsHandler(ticketService),
		SessionMiddleware: sessionMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()
	logger.Info("service started", zap.String("addr", cfg.App.Addr()))

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
