package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/vantage-dms/vantage-dms/internal/audit"
	"github.com/vantage-dms/vantage-dms/internal/enrich"
	"github.com/vantage-dms/vantage-dms/internal/shared"
)

// LoginRecorder forwards a login event to the audit log. Implementations are
// expected to be fast; recording is best-effort and never fails a login.
type LoginRecorder interface {
	RecordLogin(ctx context.Context, event audit.LoginEvent) error
}

// Service wraps authentication business rules.
type Service struct {
	repo     Repository
	issuer   *TokenIssuer
	recorder LoginRecorder
	geo      enrich.GeoResolver
	logger   *slog.Logger
}

// NewService constructs a new Service. recorder and geo may be nil; login
// history is then simply not enriched or recorded.
func NewService(repo Repository, issuer *TokenIssuer, recorder LoginRecorder, geo enrich.GeoResolver, logger *slog.Logger) *Service {
	return &Service{repo: repo, issuer: issuer, recorder: recorder, geo: geo, logger: logger}
}

// Authenticate validates identifier/secret credentials. The identifier may be
// an email or an employee number. A mismatch increments the failed-attempt
// counter exactly once; success resets it. The lockout threshold itself is
// the caller's policy, not this layer's.
func (s *Service) Authenticate(ctx context.Context, identifier, secret string) (*Principal, error) {
	principal, err := s.repo.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if principal.IsLocked || !principal.IsActive {
		return nil, shared.ErrAccountLocked
	}
	if err := bcrypt.CompareHashAndPassword([]byte(principal.PasswordHash), []byte(secret)); err != nil {
		if incErr := s.repo.IncrementFailedAttempts(ctx, principal.ID); incErr != nil {
			s.warn("increment failed attempts", incErr)
		}
		return nil, shared.ErrInvalidCredentials
	}
	if err := s.repo.ResetFailedAttempts(ctx, principal.ID); err != nil {
		s.warn("reset failed attempts", err)
	}
	return principal, nil
}

// IssueToken signs a bearer token for the principal.
func (s *Service) IssueToken(principal *Principal) (string, time.Time, error) {
	return s.issuer.Issue(principal)
}

// Login authenticates, issues a token and forwards the login event to the
// audit log. Recording failures are logged and swallowed.
func (s *Service) Login(ctx context.Context, identifier, secret, ip, userAgent string) (string, time.Time, *Principal, error) {
	principal, err := s.Authenticate(ctx, identifier, secret)
	if err != nil {
		return "", time.Time{}, nil, err
	}
	token, expiresAt, err := s.issuer.Issue(principal)
	if err != nil {
		return "", time.Time{}, nil, err
	}
	s.notifyAudit(ctx, principal.ID, ip, userAgent)
	return token, expiresAt, principal, nil
}

func (s *Service) notifyAudit(ctx context.Context, principalID int64, ip, userAgent string) {
	if s.recorder == nil {
		return
	}
	event := audit.LoginEvent{
		PrincipalID: principalID,
		IP:          ip,
		UserAgent:   userAgent,
	}
	if s.geo != nil {
		if loc, err := s.geo.Lookup(ctx, ip); err == nil {
			event.Country = loc.Country
			event.City = loc.City
		} else {
			s.warn("geo lookup", err)
		}
	}
	fp := enrich.ParseUserAgent(userAgent)
	event.Browser = fp.Browser
	event.Device = fp.Device
	event.OS = fp.OS

	if err := s.recorder.RecordLogin(ctx, event); err != nil {
		s.warn("record login event", err)
	}
}

func (s *Service) warn(msg string, err error) {
	if s.logger != nil {
		s.logger.Warn(msg, slog.Any("error", err))
	}
}
