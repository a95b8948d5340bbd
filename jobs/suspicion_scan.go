package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/vantage-dms/vantage-dms/internal/audit"
)

// SuspicionScanJob sweeps the recently active principals and logs every
// flagged suspicion report. Advisory only; nothing is blocked.
type SuspicionScanJob struct {
	Service *audit.Service
	Logger  *slog.Logger
	clock   func() time.Time
}

// NewSuspicionScanJob initialises the scan handler.
func NewSuspicionScanJob(service *audit.Service, logger *slog.Logger) *SuspicionScanJob {
	return &SuspicionScanJob{
		Service: service,
		Logger:  logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes one sweep.
func (j *SuspicionScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("suspicion scan: handler not configured")
	}
	var payload SuspicionScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	start := j.now()
	logger := j.logger()
	logger.Info("starting suspicion scan")

	principals, err := j.Service.ActivePrincipalsWindow(ctx, payload.WindowHours)
	if err != nil {
		logger.Error("list active principals", slog.Any("error", err))
		return err
	}

	flagged := 0
	for _, principalID := range principals {
		report, err := j.Service.AnalyzeWindow(ctx, principalID, payload.WindowHours)
		if err != nil {
			logger.Error("analyze principal",
				slog.Int64("principal_id", principalID),
				slog.Any("error", err),
			)
			continue
		}
		if !report.Flagged {
			continue
		}
		flagged++
		logger.Warn("suspicious login activity",
			slog.Int64("principal_id", principalID),
			slog.Int("events", len(report.Events)),
			slog.Any("reasons", report.Reasons),
		)
	}

	logger.Info("completed suspicion scan",
		slog.Int("principals", len(principals)),
		slog.Int("flagged", flagged),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func (j *SuspicionScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskAuditSuspicionScan))
	}
	return slog.Default().With(slog.String("job", TaskAuditSuspicionScan))
}

func (j *SuspicionScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
