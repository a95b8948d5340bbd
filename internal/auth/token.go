package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers malformed, expired and foreign tokens.
var ErrInvalidToken = errors.New("auth: invalid token")

// Claims is the self-contained payload of an issued bearer token. Verifying
// it requires no database round-trip.
type Claims struct {
	PrincipalID int64 `json:"pid"`
	RoleID      int64 `json:"rid"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies HS256 signed bearer tokens.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	clock  func() time.Time
}

// NewTokenIssuer constructs a TokenIssuer.
func NewTokenIssuer(secret, issuer string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// WithClock overrides the time source. Test hook.
func (i *TokenIssuer) WithClock(clock func() time.Time) *TokenIssuer {
	i.clock = clock
	return i
}

// TTL returns the configured token lifetime.
func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs a bearer token carrying the principal and its resolved role.
func (i *TokenIssuer) Issue(principal *Principal) (string, time.Time, error) {
	if principal == nil {
		return "", time.Time{}, errors.New("auth: principal required")
	}
	now := i.clock()
	expiresAt := now.Add(i.ttl)
	claims := Claims{
		PrincipalID: principal.ID,
		RoleID:      principal.RoleID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   fmt.Sprintf("%d", principal.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify parses and validates a bearer token, returning its claims.
func (i *TokenIssuer) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(i.issuer),
		jwt.WithTimeFunc(i.clock),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
