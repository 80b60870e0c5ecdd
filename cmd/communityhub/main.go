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
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/communityhub/communityhub/internal/amenities"
	"github.com/communityhub/communityhub/internal/app"
	"github.com/communityhub/communityhub/internal/auth"
	"github.com/communityhub/communityhub/internal/billing"
	"github.com/communityhub/communityhub/internal/bulkops"
	"github.com/communityhub/communityhub/internal/community"
	"github.com/communityhub/communityhub/internal/dashboard"
	"github.com/communityhub/communityhub/internal/directory"
	"github.com/communityhub/communityhub/internal/expenses"
	"github.com/communityhub/communityhub/internal/helpdesk"
	"github.com/communityhub/communityhub/internal/maintenance"
	"github.com/communityhub/communityhub/internal/notices"
	"github.com/communityhub/communityhub/internal/observability"
	"github.com/communityhub/communityhub/internal/setup"
	"github.com/communityhub/communityhub/internal/shared"
	"github.com/communityhub/communityhub/internal/view"
	"github.com/communityhub/communityhub/internal/visitors"
	"github.com/communityhub/communityhub/jobs"
	"github.com/communityhub/communityhub/report"
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

	dbpool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "communityhub_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	auditLogger := shared.NewAuditLogger(dbpool)
	approvalRecorder := shared.NewApprovalRecorder(dbpool, logger)
	idempotencyStore := shared.NewIdempotencyStore(dbpool)
	onboardingLock := shared.NewRedisLock(redisClient, cfg.OnboardingLockTTL)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, templates, sessionManager, csrfManager)

	communityRepo := community.NewRepository(dbpool)
	communityService := community.NewService(communityRepo, auditLogger)
	setupHandler := setup.NewHandler(logger, communityService, templates, csrfManager)

	noticesService := notices.NewService(notices.NewRepository(dbpool))
	noticesHandler := notices.NewHandler(logger, noticesService, templates, csrfManager)

	helpdeskService := helpdesk.NewService(helpdesk.NewRepository(dbpool))
	helpdeskHandler := helpdesk.NewHandler(logger, helpdeskService, templates, csrfManager)

	visitorsService := visitors.NewService(visitors.NewRepository(dbpool))
	visitorsHandler := visitors.NewHandler(logger, visitorsService, templates, csrfManager)

	amenitiesService := amenities.NewService(amenities.NewRepository(dbpool))
	amenitiesHandler := amenities.NewHandler(logger, amenitiesService, templates, csrfManager)

	directoryService := directory.NewService(directory.NewRepository(dbpool))
	directoryHandler := directory.NewHandler(logger, directoryService, templates, csrfManager)

	reportClient := report.NewClient(cfg.GotenbergURL)
	reportHandler := report.NewHandler(reportClient, logger)

	maintenanceService := maintenance.NewService(maintenance.NewRepository(dbpool), idempotencyStore)
	maintenanceHandler := maintenance.NewHandler(logger, maintenanceService, reportClient, communityService, templates, csrfManager)

	expensesService := expenses.NewService(expenses.NewRepository(dbpool), approvalRecorder)
	expensesHandler := expenses.NewHandler(logger, expensesService, templates, csrfManager)

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	bulkopsService := bulkops.NewService(bulkops.NewRepository(dbpool), onboardingLock, jobsClient, cfg.AppBaseURL)
	bulkopsHandler := bulkops.NewHandler(logger, bulkopsService, communityService, templates, csrfManager)

	billingService := billing.NewService(billing.NewRepository(dbpool))
	billingHandler := billing.NewHandler(logger, billingService, templates, csrfManager)

	dashboardService := dashboard.NewService(logger, noticesService, helpdeskService, visitorsService, amenitiesService, maintenanceService, expensesService)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService, templates, csrfManager)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		Templates:          templates,
		SessionManager:     sessionManager,
		CSRFManager:        csrfManager,
		Actors:             authService,
		Metrics:            metrics,
		AuthHandler:        authHandler,
		SetupHandler:       setupHandler,
		DashboardHandler:   dashboardHandler,
		NoticesHandler:     noticesHandler,
		HelpdeskHandler:    helpdeskHandler,
		VisitorsHandler:    visitorsHandler,
		AmenitiesHandler:   amenitiesHandler,
		DirectoryHandler:   directoryHandler,
		MaintenanceHandler: maintenanceHandler,
		ExpensesHandler:    expensesHandler,
		BulkOpsHandler:     bulkopsHandler,
		BillingHandler:     billingHandler,
		ReportHandler:      reportHandler,
		JobHandler:         jobHandler,
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
