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

	"github.com/vantage-dms/vantage-dms/internal/app"
	"github.com/vantage-dms/vantage-dms/internal/audit"
	"github.com/vantage-dms/vantage-dms/internal/auth"
	"github.com/vantage-dms/vantage-dms/internal/compliance"
	"github.com/vantage-dms/vantage-dms/internal/enrich"
	"github.com/vantage-dms/vantage-dms/internal/payroll"
	"github.com/vantage-dms/vantage-dms/internal/platform/cache"
	"github.com/vantage-dms/vantage-dms/internal/platform/db"
	"github.com/vantage-dms/vantage-dms/internal/rbac"
	"github.com/vantage-dms/vantage-dms/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	catalog := rbac.DefaultCatalog()
	if cfg.RoleCatalogPath != "" {
		catalog, err = rbac.LoadCatalogFile(cfg.RoleCatalogPath)
		if err != nil {
			// A malformed or cyclic role graph is fatal at startup; it must
			// never surface on a request path.
			logger.Error("load role catalog", slog.Any("error", err))
			os.Exit(1)
		}
	}
	resolver := rbac.NewResolver(catalog)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, report caching disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
	}()

	thresholds := audit.Thresholds{
		WindowHours:          cfg.AuditWindowHours,
		HourlyLoginLimit:     cfg.AuditHourlyLoginLimit,
		DistinctCountryLimit: cfg.AuditCountryLimit,
		RelocationWindow:     cfg.AuditRelocationWindow,
	}
	auditRepo := audit.NewRepository(dbpool)
	auditCache := audit.NewCache(redisClient, cfg.SuspicionCacheTTL)
	auditService := audit.NewService(auditRepo, auditCache, thresholds)
	auditHandler := audit.NewHandler(logger, auditService)

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Warn("asynq close", slog.Any("error", err))
		}
	}()

	issuer := auth.NewTokenIssuer(cfg.TokenSecret, cfg.TokenIssuer, cfg.TokenTTL)
	authRepo := auth.NewRepository(dbpool)
	geoResolver := enrich.NewStaticGeoResolver(nil)
	authService := auth.NewService(authRepo, issuer, jobs.NewRecorder(asynqClient), geoResolver, logger)
	authHandler := auth.NewHandler(logger, authService, authRepo)

	complianceEngine := compliance.NewEngine(compliance.DefaultRuleSet())
	complianceRepo := compliance.NewRepository(dbpool)
	complianceHandler := compliance.NewHandler(logger, complianceEngine, complianceRepo)

	payrollHandler := payroll.NewHandler(logger)
	rolesHandler := rbac.NewHandler(logger, catalog, resolver)
	rbacMiddleware := rbac.Middleware{Resolver: resolver, Logger: logger}

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		TokenIssuer:       issuer,
		RBACMiddleware:    rbacMiddleware,
		AuthHandler:       authHandler,
		RolesHandler:      rolesHandler,
		AuditHandler:      auditHandler,
		ComplianceHandler: complianceHandler,
		PayrollHandler:    payrollHandler,
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
