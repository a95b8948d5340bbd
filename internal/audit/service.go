package audit

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Service records login events and evaluates the anomaly heuristics. It is a
// stateless evaluator over the event window and safe for concurrent use.
type Service struct {
	repo       Repository
	cache      *Cache
	thresholds Thresholds
	group      singleflight.Group
	clock      func() time.Time
}

// NewService constructs an audit service. A nil cache disables report caching.
func NewService(repo Repository, cache *Cache, thresholds Thresholds) *Service {
	return &Service{
		repo:       repo,
		cache:      cache,
		thresholds: thresholds.normalized(),
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// WithClock overrides the time source. Test hook.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// Thresholds returns the effective heuristic settings.
func (s *Service) Thresholds() Thresholds {
	return s.thresholds
}

// Record appends a login event. Missing id/timestamp are filled in; each call
// is a new fact, there is no dedup.
func (s *Service) Record(ctx context.Context, event LoginEvent) error {
	if s.repo == nil {
		return fmt.Errorf("audit: repository not configured")
	}
	if event.PrincipalID == 0 {
		return fmt.Errorf("audit: event requires principal id")
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.At.IsZero() {
		event.At = s.clock()
	}
	if err := s.repo.Append(ctx, event); err != nil {
		return err
	}
	// Stale by at most the cache TTL anyway; dropping it keeps reports fresh
	// after a burst.
	_ = s.cache.Invalidate(ctx, event.PrincipalID, s.thresholds.WindowHours)
	return nil
}

// Events returns the principal's raw login history within the trailing window.
func (s *Service) Events(ctx context.Context, principalID int64) ([]LoginEvent, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("audit: repository not configured")
	}
	since := s.clock().Add(-time.Duration(s.thresholds.WindowHours) * time.Hour)
	return s.repo.EventsSince(ctx, principalID, since)
}

// ActivePrincipals lists principals seen within the trailing window.
func (s *Service) ActivePrincipals(ctx context.Context) ([]int64, error) {
	return s.ActivePrincipalsWindow(ctx, 0)
}

// ActivePrincipalsWindow lists principals seen within a caller-supplied
// trailing window. A non-positive windowHours falls back to the configured one.
func (s *Service) ActivePrincipalsWindow(ctx context.Context, windowHours int) ([]int64, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("audit: repository not configured")
	}
	since := s.clock().Add(-time.Duration(s.windowHours(windowHours)) * time.Hour)
	return s.repo.ActivePrincipals(ctx, since)
}

// Analyze evaluates the three heuristics over the principal's trailing window
// and returns the advisory report. Concurrent callers for the same principal
// share one computation.
func (s *Service) Analyze(ctx context.Context, principalID int64) (SuspicionReport, error) {
	return s.AnalyzeWindow(ctx, principalID, 0)
}

// AnalyzeWindow runs the heuristics over a caller-supplied trailing window.
// A non-positive windowHours falls back to the configured one; distinct
// windows cache and coalesce independently.
func (s *Service) AnalyzeWindow(ctx context.Context, principalID int64, windowHours int) (SuspicionReport, error) {
	hours := s.windowHours(windowHours)
	key := keySuspicion(principalID, hours)
	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		var report SuspicionReport
		err := s.cache.FetchJSON(ctx, key, &report, func(ctx context.Context) (interface{}, error) {
			return s.analyze(ctx, principalID, hours)
		})
		return report, err
	})
	if err != nil {
		return SuspicionReport{}, err
	}
	return result.(SuspicionReport), nil
}

func (s *Service) windowHours(override int) int {
	if override > 0 {
		return override
	}
	return s.thresholds.WindowHours
}

func (s *Service) analyze(ctx context.Context, principalID int64, windowHours int) (SuspicionReport, error) {
	if s.repo == nil {
		return SuspicionReport{}, fmt.Errorf("audit: repository not configured")
	}
	now := s.clock()
	since := now.Add(-time.Duration(windowHours) * time.Hour)
	events, err := s.repo.EventsSince(ctx, principalID, since)
	if err != nil {
		return SuspicionReport{}, err
	}

	report := SuspicionReport{
		PrincipalID: principalID,
		Events:      events,
		WindowStart: since,
		WindowEnd:   now,
	}
	report.Reasons = append(report.Reasons, s.burstReasons(events)...)
	report.Reasons = append(report.Reasons, s.geographicReasons(events)...)
	report.Reasons = append(report.Reasons, s.velocityReasons(events)...)
	report.Flagged = len(report.Reasons) > 0
	return report, nil
}

// burstReasons flags any hour-of-day bucket exceeding the hourly login limit.
func (s *Service) burstReasons(events []LoginEvent) []string {
	var buckets [24]int
	for _, event := range events {
		buckets[event.At.UTC().Hour()]++
	}
	var reasons []string
	for hour, count := range buckets {
		if count > s.thresholds.HourlyLoginLimit {
			reasons = append(reasons, fmt.Sprintf("excess logins in hour %02d:00 UTC: %d events (limit %d)",
				hour, count, s.thresholds.HourlyLoginLimit))
		}
	}
	return reasons
}

// geographicReasons flags too many distinct non-empty countries in the window.
func (s *Service) geographicReasons(events []LoginEvent) []string {
	countries := make(map[string]struct{})
	for _, event := range events {
		if event.Country != "" {
			countries[event.Country] = struct{}{}
		}
	}
	if len(countries) <= s.thresholds.DistinctCountryLimit {
		return nil
	}
	return []string{fmt.Sprintf("logins from %d distinct countries (limit %d)",
		len(countries), s.thresholds.DistinctCountryLimit)}
}

// velocityReasons flags country changes faster than the relocation window.
// Every consecutive pair in the sorted sequence is considered; a rapid hop
// buried mid-window must not be masked by later events.
func (s *Service) velocityReasons(events []LoginEvent) []string {
	sorted := make([]LoginEvent, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].At.Before(sorted[j].At) })

	var reasons []string
	for i := 1; i < len(sorted); i++ {
		prev, curr := sorted[i-1], sorted[i]
		if prev.Country == "" || curr.Country == "" || prev.Country == curr.Country {
			continue
		}
		elapsed := curr.At.Sub(prev.At)
		if elapsed < s.thresholds.RelocationWindow {
			reasons = append(reasons, fmt.Sprintf("rapid relocation from %s to %s in %d minutes",
				prev.Country, curr.Country, int(elapsed.Minutes())))
		}
	}
	return reasons
}
