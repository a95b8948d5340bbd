package audit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type memoryAuditRepo struct {
	events []LoginEvent
}

func (r *memoryAuditRepo) Append(_ context.Context, event LoginEvent) error {
	r.events = append(r.events, event)
	return nil
}

func (r *memoryAuditRepo) EventsSince(_ context.Context, principalID int64, since time.Time) ([]LoginEvent, error) {
	var out []LoginEvent
	for _, event := range r.events {
		if event.PrincipalID == principalID && !event.At.Before(since) {
			out = append(out, event)
		}
	}
	return out, nil
}

func (r *memoryAuditRepo) ActivePrincipals(_ context.Context, since time.Time) ([]int64, error) {
	seen := make(map[int64]struct{})
	var out []int64
	for _, event := range r.events {
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

var _ Repository = (*memoryAuditRepo)(nil)

var analysisNow = time.Date(2026, 5, 12, 18, 0, 0, 0, time.UTC)

func newTestAuditService(repo Repository) *Service {
	return NewService(repo, nil, DefaultThresholds()).
		WithClock(func() time.Time { return analysisNow })
}

func event(principalID int64, at time.Time, country string) LoginEvent {
	return LoginEvent{
		ID:          uuid.New(),
		PrincipalID: principalID,
		At:          at,
		IP:          "10.0.0.1",
		Country:     country,
	}
}

func TestRecordFillsIDAndTimestamp(t *testing.T) {
	repo := &memoryAuditRepo{}
	svc := newTestAuditService(repo)

	err := svc.Record(context.Background(), LoginEvent{PrincipalID: 1})
	require.NoError(t, err)
	require.Len(t, repo.events, 1)
	require.NotEqual(t, uuid.Nil, repo.events[0].ID)
	require.Equal(t, analysisNow, repo.events[0].At)
}

func TestRecordRequiresPrincipal(t *testing.T) {
	svc := newTestAuditService(&memoryAuditRepo{})
	require.Error(t, svc.Record(context.Background(), LoginEvent{}))
}

func TestAnalyzeQuietHistoryNotFlagged(t *testing.T) {
	repo := &memoryAuditRepo{}
	base := analysisNow.Add(-10 * time.Hour)
	for i := 0; i < 3; i++ {
		repo.events = append(repo.events, event(1, base.Add(time.Duration(i)*2*time.Hour), "MX"))
	}
	svc := newTestAuditService(repo)

	report, err := svc.Analyze(context.Background(), 1)
	require.NoError(t, err)
	require.False(t, report.Flagged)
	require.Empty(t, report.Reasons)
	require.Len(t, report.Events, 3)
}

func TestAnalyzeBurstRate(t *testing.T) {
	repo := &memoryAuditRepo{}
	// 11 logins inside hour 09 UTC; the threshold is 10.
	hourStart := time.Date(2026, 5, 12, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 11; i++ {
		repo.events = append(repo.events, event(1, hourStart.Add(time.Duration(i)*3*time.Minute), "MX"))
	}
	svc := newTestAuditService(repo)

	report, err := svc.Analyze(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, report.Flagged)
	require.Len(t, report.Reasons, 1)
	require.Contains(t, report.Reasons[0], "excess logins in hour 09:00")
}

func TestAnalyzeBurstRateAtThresholdNotFlagged(t *testing.T) {
	repo := &memoryAuditRepo{}
	hourStart := time.Date(2026, 5, 12, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		repo.events = append(repo.events, event(1, hourStart.Add(time.Duration(i)*3*time.Minute), "MX"))
	}
	svc := newTestAuditService(repo)

	report, err := svc.Analyze(context.Background(), 1)
	require.NoError(t, err)
	require.False(t, report.Flagged)
}

func TestAnalyzeGeographicSpread(t *testing.T) {
	repo := &memoryAuditRepo{}
	base := analysisNow.Add(-20 * time.Hour)
	for i, country := range []string{"MX", "US", "BR", "DE"} {
		repo.events = append(repo.events, event(1, base.Add(time.Duration(i)*5*time.Hour), country))
	}
	svc := newTestAuditService(repo)

	report, err := svc.Analyze(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, report.Flagged)

	var found bool
	for _, reason := range report.Reasons {
		if reason == "logins from 4 distinct countries (limit 3)" {
			found = true
		}
	}
	require.True(t, found, "geographic spread reason missing: %v", report.Reasons)
}

func TestAnalyzeEmptyCountryIgnoredForSpread(t *testing.T) {
	repo := &memoryAuditRepo{}
	base := analysisNow.Add(-20 * time.Hour)
	for i, country := range []string{"MX", "US", "BR", ""} {
		repo.events = append(repo.events, event(1, base.Add(time.Duration(i)*5*time.Hour), country))
	}
	svc := newTestAuditService(repo)

	report, err := svc.Analyze(context.Background(), 1)
	require.NoError(t, err)
	require.False(t, report.Flagged)
}

func TestAnalyzeVelocity(t *testing.T) {
	repo := &memoryAuditRepo{}
	base := analysisNow.Add(-5 * time.Hour)
	repo.events = append(repo.events,
		event(1, base, "MX"),
		event(1, base.Add(30*time.Minute), "DE"),
	)
	svc := newTestAuditService(repo)

	report, err := svc.Analyze(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, report.Flagged)
	require.Contains(t, report.Reasons, "rapid relocation from MX to DE in 30 minutes")
}

func TestAnalyzeVelocitySlowTravelNotFlagged(t *testing.T) {
	repo := &memoryAuditRepo{}
	base := analysisNow.Add(-5 * time.Hour)
	repo.events = append(repo.events,
		event(1, base, "MX"),
		event(1, base.Add(90*time.Minute), "DE"),
	)
	svc := newTestAuditService(repo)

	report, err := svc.Analyze(context.Background(), 1)
	require.NoError(t, err)
	require.False(t, report.Flagged)
}

func TestAnalyzeVelocityBuriedMidWindow(t *testing.T) {
	repo := &memoryAuditRepo{}
	base := analysisNow.Add(-12 * time.Hour)
	// The rapid hop is in the middle; later events are quiet.
	repo.events = append(repo.events,
		event(1, base, "MX"),
		event(1, base.Add(2*time.Hour), "MX"),
		event(1, base.Add(2*time.Hour+20*time.Minute), "US"),
		event(1, base.Add(8*time.Hour), "US"),
	)
	svc := newTestAuditService(repo)

	report, err := svc.Analyze(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, report.Flagged)
	require.Contains(t, report.Reasons, "rapid relocation from MX to US in 20 minutes")
}

func TestAnalyzeIgnoresEventsOutsideWindow(t *testing.T) {
	repo := &memoryAuditRepo{}
	repo.events = append(repo.events,
		event(1, analysisNow.Add(-30*time.Hour), "MX"),
		event(1, analysisNow.Add(-29*time.Hour), "DE"),
	)
	svc := newTestAuditService(repo)

	report, err := svc.Analyze(context.Background(), 1)
	require.NoError(t, err)
	require.False(t, report.Flagged)
	require.Empty(t, report.Events)
}

func TestAnalyzeWindowOverride(t *testing.T) {
	repo := &memoryAuditRepo{}
	base := analysisNow.Add(-30 * time.Hour)
	repo.events = append(repo.events,
		event(1, base, "MX"),
		event(1, base.Add(30*time.Minute), "DE"),
	)
	svc := newTestAuditService(repo)

	report, err := svc.Analyze(context.Background(), 1)
	require.NoError(t, err)
	require.False(t, report.Flagged, "events outside the default window")

	report, err = svc.AnalyzeWindow(context.Background(), 1, 48)
	require.NoError(t, err)
	require.True(t, report.Flagged)
	require.Contains(t, report.Reasons, "rapid relocation from MX to DE in 30 minutes")

	report, err = svc.AnalyzeWindow(context.Background(), 1, 0)
	require.NoError(t, err)
	require.False(t, report.Flagged, "non-positive override falls back to the configured window")
}

func TestAnalyzeCustomThresholds(t *testing.T) {
	repo := &memoryAuditRepo{}
	base := analysisNow.Add(-5 * time.Hour)
	repo.events = append(repo.events,
		event(1, base, "MX"),
		event(1, base.Add(100*time.Minute), "DE"),
	)
	thresholds := DefaultThresholds()
	thresholds.RelocationWindow = 3 * time.Hour
	svc := NewService(repo, nil, thresholds).
		WithClock(func() time.Time { return analysisNow })

	report, err := svc.Analyze(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, report.Flagged)
	require.Contains(t, report.Reasons, "rapid relocation from MX to DE in 100 minutes")
}

func TestActivePrincipalsWindow(t *testing.T) {
	repo := &memoryAuditRepo{}
	repo.events = append(repo.events,
		event(1, analysisNow.Add(-2*time.Hour), "MX"),
		event(2, analysisNow.Add(-30*time.Hour), "MX"),
	)
	svc := newTestAuditService(repo)

	ids, err := svc.ActivePrincipals(context.Background())
	require.NoError(t, err)
	require.Equal(t, []int64{1}, ids)

	ids, err = svc.ActivePrincipalsWindow(context.Background(), 48)
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2}, ids)
}

func TestThresholdsNormalization(t *testing.T) {
	svc := NewService(&memoryAuditRepo{}, nil, Thresholds{})
	require.Equal(t, DefaultThresholds(), svc.Thresholds())
}
