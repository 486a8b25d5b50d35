// Package token inspects the backend-issued access tokens.
//
// The client never verifies token signatures (it has no key material and the
// server is the authority); it only decodes the claims to check expiry and to
// read the embedded identity before making a network call.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/quizhub/quizctl/internal/dependencies/clock"
	"github.com/quizhub/quizctl/internal/model"
)

// Claims is the payload the backend embeds in access tokens
type Claims struct {
	UserID model.UserID `json:"user_id"`
	Role   model.Role   `json:"role"`
	Type   string       `json:"type,omitempty"` // "refresh" on refresh tokens
	jwt.RegisteredClaims
}

// Decode parses the token payload without verifying the signature.
// It fails on anything that is not three base64url segments with a
// JSON object in the middle.
func Decode(raw string) (*Claims, error) {
	if raw == "" {
		return nil, errors.New("empty token")
	}

	parser := jwt.NewParser()
	claims := &Claims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("malformed token: %w", err)
	}
	return claims, nil
}

// IsValid reports whether the token decodes cleanly and its exp claim,
// if present, is still in the future
func IsValid(raw string, clk clock.Clock) bool {
	claims, err := Decode(raw)
	if err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		// The backend always sets exp; a token without one is not trusted
		return false
	}
	return clk.Now().Before(claims.ExpiresAt.Time)
}

// ExpiresAt returns the token's expiry time, or the zero time when
// the token cannot be decoded or carries no exp claim
func ExpiresAt(raw string) time.Time {
	claims, err := Decode(raw)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
