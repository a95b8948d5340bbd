package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/vantage-dms/vantage-dms/internal/audit"
)

// LoginRecordJob appends enqueued login events to the audit store.
type LoginRecordJob struct {
	Service *audit.Service
	Logger  *slog.Logger
}

// NewLoginRecordJob initialises the login record handler.
func NewLoginRecordJob(service *audit.Service, logger *slog.Logger) *LoginRecordJob {
	return &LoginRecordJob{Service: service, Logger: logger}
}

// Handle executes one record task. A malformed payload is dropped rather
// than retried; store errors are retried by asynq.
func (j *LoginRecordJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("login record: handler not configured")
	}
	var event audit.LoginEvent
	if err := json.Unmarshal(t.Payload(), &event); err != nil {
		return asynq.SkipRetry
	}
	if err := j.Service.Record(ctx, event); err != nil {
		j.logger().Warn("record login event",
			slog.Int64("principal_id", event.PrincipalID),
			slog.Any("error", err),
		)
		return err
	}
	return nil
}

func (j *LoginRecordJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskAuditLoginRecord))
	}
	return slog.Default().With(slog.String("job", TaskAuditLoginRecord))
}
