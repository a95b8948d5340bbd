package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/vantage-dms/vantage-dms/internal/app"
	"github.com/vantage-dms/vantage-dms/internal/audit"
	"github.com/vantage-dms/vantage-dms/internal/platform/cache"
	"github.com/vantage-dms/vantage-dms/internal/platform/db"
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

	thresholds := audit.Thresholds{
		WindowHours:          cfg.AuditWindowHours,
		HourlyLoginLimit:     cfg.AuditHourlyLoginLimit,
		DistinctCountryLimit: cfg.AuditCountryLimit,
		RelocationWindow:     cfg.AuditRelocationWindow,
	}
	auditRepo := audit.NewRepository(dbpool)
	auditCache := audit.NewCache(redisClient, cfg.SuspicionCacheTTL)
	auditService := audit.NewService(auditRepo, auditCache, thresholds)

	recordJob := jobs.NewLoginRecordJob(auditService, logger)
	scanJob := jobs.NewSuspicionScanJob(auditService, logger)

	scanTask, err := jobs.NewSuspicionScanTask(jobs.SuspicionScanPayload{})
	if err != nil {
		logger.Error("build scan task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskAuditLoginRecord, Handler: recordJob.Handle},
			{Type: jobs.TaskAuditSuspicionScan, Handler: scanJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 * * * *", Task: scanTask, Options: []asynq.Option{asynq.Queue(jobs.QueueDefault)}},
		},
	})
	if err != nil {
		logger.Error("build worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker shut down")
}
