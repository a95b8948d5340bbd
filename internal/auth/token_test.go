package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", "vantage-test", time.Hour)
	principal := &Principal{ID: 42, RoleID: 3}

	token, expiresAt, err := issuer.Issue(principal)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, int64(42), claims.PrincipalID)
	require.Equal(t, int64(3), claims.RoleID)
}

func TestTokenRejectedAfterExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer("test-secret", "vantage-test", time.Hour).
		WithClock(func() time.Time { return now })

	token, _, err := issuer.Issue(&Principal{ID: 7, RoleID: 1})
	require.NoError(t, err)

	// Still valid just before expiry.
	issuer.WithClock(func() time.Time { return now.Add(59 * time.Minute) })
	_, err = issuer.Verify(token)
	require.NoError(t, err)

	issuer.WithClock(func() time.Time { return now.Add(61 * time.Minute) })
	_, err = issuer.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsForeignSignature(t *testing.T) {
	issuer := NewTokenIssuer("secret-a", "vantage-test", time.Hour)
	other := NewTokenIssuer("secret-b", "vantage-test", time.Hour)

	token, _, err := other.Issue(&Principal{ID: 1, RoleID: 1})
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsWrongIssuer(t *testing.T) {
	minted := NewTokenIssuer("shared-secret", "someone-else", time.Hour)
	verifier := NewTokenIssuer("shared-secret", "vantage-test", time.Hour)

	token, _, err := minted.Issue(&Principal{ID: 1, RoleID: 1})
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsGarbage(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", "vantage-test", time.Hour)
	_, err := issuer.Verify("not.a.token")
	require.ErrorIs(t, err, ErrInvalidToken)
}
