package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of token claims the client cares about.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// ParseClaims reads the claims of a JWT without verifying its signature.
// The signing key lives on the server; the client only needs the expiry to
// avoid sending a dead credential. Opaque tokens return ok=false.
func ParseClaims(token string) (Claims, bool) {
	if token == "" {
		return Claims{}, false
	}

	var registered jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &registered); err != nil {
		return Claims{}, false
	}

	claims := Claims{Subject: registered.Subject}
	if registered.ExpiresAt != nil {
		claims.ExpiresAt = registered.ExpiresAt.Time
	}
	return claims, true
}
