// Package token implements the two token families used by the account
// service: opaque single-use tokens stored against an account (email
// verification, password reset) and stateless signed session tokens.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken covers every session-token verification failure: bad
// signature, expired, malformed. The cases are not distinguishable externally.
var ErrInvalidToken = errors.New("invalid or expired token")

const opaqueEntropyBytes = 32

// NewOpaque returns a fresh URL-safe opaque token with 32 bytes of entropy
// from the system CSPRNG. Possession of the exact string is the only proof.
func NewOpaque() (string, error) {
	buf := make([]byte, opaqueEntropyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

type SessionClaims struct {
	jwt.RegisteredClaims
}

// SessionCodec issues and verifies signed session tokens binding a subject
// (the account email) to an absolute expiry. The signing secret and default
// TTL are fixed at construction and never change afterwards.
type SessionCodec struct {
	secret     []byte
	defaultTTL time.Duration
}

func NewSessionCodec(secret string, defaultTTL time.Duration) *SessionCodec {
	return &SessionCodec{
		secret:     []byte(secret),
		defaultTTL: defaultTTL,
	}
}

// Issue signs a session token for the subject using the codec's default TTL.
func (c *SessionCodec) Issue(subject string) (string, error) {
	return c.IssueWithTTL(subject, c.defaultTTL)
}

// IssueWithTTL signs a session token with an explicit TTL. A non-positive TTL
// falls back to the codec default.
func (c *SessionCodec) IssueWithTTL(subject string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	now := time.Now()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(c.secret)
}

// Verify parses and validates a session token and returns its subject. Any
// failure collapses to ErrInvalidToken.
func (c *SessionCodec) Verify(raw string) (string, error) {
	tok, err := jwt.ParseWithClaims(raw, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return "", ErrInvalidToken
	}

	claims, ok := tok.Claims.(*SessionClaims)
	if !ok || !tok.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}

// TTL returns the codec's default session lifetime.
func (c *SessionCodec) TTL() time.Duration {
	return c.defaultTTL
}
