package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/vantage-dms/vantage-dms/internal/audit"
)

type memoryEventStore struct {
	events []audit.LoginEvent
}

func (s *memoryEventStore) Append(_ context.Context, event audit.LoginEvent) error {
	s.events = append(s.events, event)
	return nil
}

func (s *memoryEventStore) EventsSince(_ context.Context, principalID int64, since time.Time) ([]audit.LoginEvent, error) {
	var out []audit.LoginEvent
	for _, event := range s.events {
		if event.PrincipalID == principalID && !event.At.Before(since) {
			out = append(out, event)
		}
	}
	return out, nil
}

func (s *memoryEventStore) ActivePrincipals(_ context.Context, since time.Time) ([]int64, error) {
	seen := make(map[int64]struct{})
	var out []int64
	for _, event := range s.events {
		if event.At.Before(since) {
			continue
		}
		if _, ok := seen[event.PrincipalID]; ok {
			continue
		}
		seen[event.PrincipalID] = struct{}{}
		out = append(out, event.PrincipalID)
	}
	return out, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoginRecordJobPersistsEvent(t *testing.T) {
	store := &memoryEventStore{}
	service := audit.NewService(store, nil, audit.DefaultThresholds())
	job := NewLoginRecordJob(service, quietLogger())

	task, err := NewLoginRecordTask(audit.LoginEvent{
		PrincipalID: 7,
		IP:          "10.0.0.1",
		Country:     "MX",
	})
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	require.Len(t, store.events, 1)
	require.Equal(t, int64(7), store.events[0].PrincipalID)
	require.False(t, store.events[0].At.IsZero())
}

func TestLoginRecordJobDropsMalformedPayload(t *testing.T) {
	store := &memoryEventStore{}
	service := audit.NewService(store, nil, audit.DefaultThresholds())
	job := NewLoginRecordJob(service, quietLogger())

	task := asynq.NewTask(TaskAuditLoginRecord, []byte("not json"))
	err := job.Handle(context.Background(), task)
	require.True(t, errors.Is(err, asynq.SkipRetry))
	require.Empty(t, store.events)
}

func TestSuspicionScanJobSweepsActivePrincipals(t *testing.T) {
	store := &memoryEventStore{}
	now := time.Now().UTC()
	for i := 0; i < 11; i++ {
		store.events = append(store.events, audit.LoginEvent{
			PrincipalID: 1,
			At:          now.Truncate(time.Hour).Add(time.Duration(i) * time.Minute),
			Country:     "MX",
		})
	}
	service := audit.NewService(store, nil, audit.DefaultThresholds())
	job := NewSuspicionScanJob(service, quietLogger())

	task, err := NewSuspicionScanTask(SuspicionScanPayload{})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	task, err = NewSuspicionScanTask(SuspicionScanPayload{WindowHours: 48})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
}
