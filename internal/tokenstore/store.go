// Package tokenstore persists the opaque bearer token between runs.
package tokenstore

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Store holds at most one live token. An absent token reads as "".
type Store interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string, expiresAt time.Time) error
	ClearToken(ctx context.Context) error
}

// Expiry returns the exp claim of a JWT without verifying its signature.
// Zero time means the token is not a JWT or carries no exp.
func Expiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// ResolveExpiry prefers the backend supplied RFC3339 expiry and falls
// back to the token's own exp claim.
func ResolveExpiry(token, reported string) time.Time {
	if reported != "" {
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
			if t, err := time.Parse(layout, reported); err == nil {
				return t
			}
		}
	}
	return Expiry(token)
}
