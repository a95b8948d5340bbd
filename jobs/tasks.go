package jobs

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/vantage-dms/vantage-dms/internal/audit"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAuditLoginRecord appends one login event to the audit log.
	TaskAuditLoginRecord = "audit:login_record"
	// TaskAuditSuspicionScan analyzes every recently active principal.
	TaskAuditSuspicionScan = "audit:suspicion_scan"
)

// NewLoginRecordTask constructs the task that records one login event.
func NewLoginRecordTask(event audit.LoginEvent) (*asynq.Task, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditLoginRecord, data), nil
}

// SuspicionScanPayload tunes one scan run. Zero values fall back to the
// service's configured thresholds.
type SuspicionScanPayload struct {
	WindowHours int `json:"window_hours,omitempty"`
}

// NewSuspicionScanTask constructs the periodic scan task.
func NewSuspicionScanTask(payload SuspicionScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditSuspicionScan, data), nil
}

// Recorder enqueues login events for asynchronous recording. It implements
// the auth service's LoginRecorder; enqueueing keeps the login path free of
// audit-store latency.
type Recorder struct {
	client *asynq.Client
}

// NewRecorder constructs a Recorder over the asynq client.
func NewRecorder(client *asynq.Client) *Recorder {
	return &Recorder{client: client}
}

// RecordLogin enqueues the event on the default queue.
func (r *Recorder) RecordLogin(ctx context.Context, event audit.LoginEvent) error {
	task, err := NewLoginRecordTask(event)
	if err != nil {
		return err
	}
	_, err = r.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
	return err
}
