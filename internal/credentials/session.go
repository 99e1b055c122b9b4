package credentials

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session describes what the stored token claims about itself. It is for
// display only; the server remains the sole judge of validity.
type Session struct {
	Subject   string
	ExpiresAt time.Time
	Opaque    bool // token is not a JWT, nothing could be read from it
}

// Expired reports whether the token's exp claim lies before now. Opaque
// tokens and tokens without exp never expire client-side.
func (s Session) Expired(now time.Time) bool {
	if s.Opaque || s.ExpiresAt.IsZero() {
		return false
	}
	return s.ExpiresAt.Before(now)
}

// Inspect reads the subject and expiry from token without verifying the
// signature.
func Inspect(token string) (Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, fmt.Errorf("token is empty")
	}
	if strings.Count(token, ".") != 2 {
		return Session{Opaque: true}, nil
	}

	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := &jwt.RegisteredClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return Session{}, fmt.Errorf("parse token: %w", err)
	}

	session := Session{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}
