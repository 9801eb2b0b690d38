package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// CookieName is the name of the session cookie mirroring the bearer token
	CookieName = "summa-token-cc"

	sessionAudience = "summa-session"
)

// SessionCookies mints and verifies long-lived session cookie values. A value
// is only minted from an already verified identity.
type SessionCookies struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionCookies creates a cookie signer
func NewSessionCookies(secret string, ttl time.Duration) *SessionCookies {
	return &SessionCookies{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL returns how long minted cookies stay valid
func (s *SessionCookies) TTL() time.Duration {
	return s.ttl
}

// Create returns a cookie value for identity and the time it expires
func (s *SessionCookies) Create(identity *Identity) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := &identityClaims{
		Email:   identity.Email,
		Name:    identity.Name,
		Picture: identity.Picture,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   identity.UID,
			Audience:  jwt.ClaimStrings{sessionAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	value, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session cookie: %w", err)
	}
	return value, expiresAt, nil
}

// Verify checks a cookie value and returns the identity it was minted for
func (s *SessionCookies) Verify(value string) (*Identity, error) {
	claims := &identityClaims{}
	tok, err := jwt.ParseWithClaims(value, claims, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(sessionAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims.identity(), nil
}
