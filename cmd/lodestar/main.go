package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/lodestar-crm/lodestar-crm/internal/app"
	"github.com/lodestar-crm/lodestar-crm/internal/auth"
	"github.com/lodestar-crm/lodestar-crm/internal/authz"
	"github.com/lodestar-crm/lodestar-crm/internal/comms"
	"github.com/lodestar-crm/lodestar-crm/internal/customers"
	"github.com/lodestar-crm/lodestar-crm/internal/dashboard"
	"github.com/lodestar-crm/lodestar-crm/internal/leads"
	"github.com/lodestar-crm/lodestar-crm/internal/observability"
	"github.com/lodestar-crm/lodestar-crm/internal/platform/cache"
	"github.com/lodestar-crm/lodestar-crm/internal/platform/db"
	"github.com/lodestar-crm/lodestar-crm/internal/shared"
	"github.com/lodestar-crm/lodestar-crm/internal/users"
	"github.com/lodestar-crm/lodestar-crm/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "lodestar_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authzMiddleware := authz.Middleware{
		Resolver: authService,
		Logger:   logger,
	}
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager, authzMiddleware)

	auditLogger := shared.NewAuditLogger(dbpool)

	leadsRepo := leads.NewRepository(dbpool)
	leadsService := leads.NewService(leadsRepo, auditLogger)
	leadsHandler := leads.NewHandler(logger, leadsService, authzMiddleware)

	customersRepo := customers.NewRepository(dbpool)
	customersService := customers.NewService(customersRepo, auditLogger)
	customersHandler := customers.NewHandler(logger, customersService, authzMiddleware)

	commsRepo := comms.NewRepository(dbpool)
	commsService := comms.NewService(commsRepo)
	commsHandler := comms.NewHandler(logger, commsService, authzMiddleware)

	dashboardRepo := dashboard.NewRepository(dbpool)
	dashboardService := dashboard.NewService(dashboardRepo, redisClient, cfg.DashboardCacheTTL, auditLogger)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService, authzMiddleware)

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService, authzMiddleware)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		AuthzMW:          authzMiddleware,
		AuthHandler:      authHandler,
		LeadsHandler:     leadsHandler,
		CustomersHandler: customersHandler,
		CommsHandler:     commsHandler,
		DashboardHandler: dashboardHandler,
		UsersHandler:     usersHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
