package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// The session cookie does not carry identity itself — it carries the id
// of a server-side session record. Signing the cookie as an HS256 JWT
// makes it tamper-evident: a client can delete its cookie but cannot
// forge a session id that verifies.

// SessionClaims is the payload of the session cookie token.
type SessionClaims struct {
	SessionID uuid.UUID `json:"sid"`
	jwt.RegisteredClaims
}

// GenerateCookieToken wraps a session id in a signed token. The token's
// expiry mirrors the Redis TTL of the record it points at, so a cookie
// never outlives its session by more than clock skew.
func GenerateCookieToken(sessionID uuid.UUID, secret string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "apoll",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// ParseCookieToken validates a cookie value and extracts the session id.
// It verifies the signature, the expiry, and that the signing method is
// HMAC (rejects algorithm-switching tokens).
func ParseCookieToken(tokenString, secret string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		},
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return uuid.Nil, fmt.Errorf("invalid token claims")
	}
	if claims.SessionID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("token has no session id")
	}

	return claims.SessionID, nil
}
