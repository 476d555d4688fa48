package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken is returned when a token's payload segment cannot
// be decoded. Callers treat it as "not authenticated", never as a
// distinct user-facing failure.
var ErrMalformedToken = errors.New("malformed token")

// Claims is the decoded payload of a server-issued access token.
//
// The signature is NOT verified here. Tokens only ever come from the
// server over TLS, and these claims drive UI hints and request routing;
// every real authorization decision is re-checked server-side.
type Claims struct {
	UserID    int64
	Email     string
	Role      string
	ExpiresAt time.Time
}

// DecodeClaims parses the payload segment of a JWT without verifying
// its signature.
func DecodeClaims(token string) (*Claims, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrMalformedToken
	}

	claims := &Claims{}

	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if role, ok := mapClaims["role"].(string); ok {
		claims.Role = role
	}
	if email, ok := mapClaims["email"].(string); ok {
		claims.Email = email
	}
	if id, ok := mapClaims["user_id"].(float64); ok {
		claims.UserID = int64(id)
	}

	return claims, nil
}

// IsExpiredAt reports whether the token is expired at the given time.
// A token that cannot be decoded, or that carries no exp claim, counts
// as expired (fail-closed).
func IsExpiredAt(token string, now time.Time) bool {
	claims, err := DecodeClaims(token)
	if err != nil {
		return true
	}
	if claims.ExpiresAt.IsZero() {
		return true
	}
	return !now.Before(claims.ExpiresAt)
}

// IsExpired reports whether the token is expired right now.
func IsExpired(token string) bool {
	return IsExpiredAt(token, time.Now())
}

// RoleOf returns the role claim, or "" when the token cannot be
// decoded. Advisory only: it picks dashboards and gates commands in
// the UI, it does not grant anything.
func RoleOf(token string) string {
	claims, err := DecodeClaims(token)
	if err != nil {
		return ""
	}
	return claims.Role
}
