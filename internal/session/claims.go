package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the subset of access-token claims the portal reads.
type TokenClaims struct {
	Subject   string
	Email     string
	ExpiresAt time.Time
}

// DecodeClaims decodes the payload of a JWT without verifying its
// signature. The portal never validates tokens cryptographically; the real
// check happens server-side. Any malformed input yields ok=false rather
// than an error.
func DecodeClaims(token string) (TokenClaims, bool) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return TokenClaims{}, false
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return TokenClaims{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return TokenClaims{}, false
	}

	out := TokenClaims{ExpiresAt: exp.Time}
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if email, ok := claims["email"].(string); ok {
		out.Email = email
	}
	return out, true
}
