// Package jwtmw はブラウザセッションを識別する署名付きトークンとGinミドルウェアを提供します。
package jwtmw

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken はトークンの署名・期限・クレームが不正な場合に返されます。
var ErrInvalidToken = errors.New("invalid session token")

// Generator defines the interface for session token generation and verification.
type Generator interface {
	// GenerateToken creates a signed token whose subject is the session ID.
	GenerateToken(sessionID string) (string, error)
	// Verify checks the token and returns the session ID it carries.
	Verify(token string) (string, error)
	// Expiration returns the lifetime of issued tokens.
	Expiration() time.Duration
}

// generator implements the Generator interface.
type generator struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewGenerator creates a new generator with the provided secret and expiration duration.
// An empty secret is replaced with random bytes, so tokens do not survive a restart.
func NewGenerator(secret string, expiration time.Duration) Generator {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		_, _ = rand.Read(key)
	}
	return &generator{
		secret:     key,
		expiration: expiration,
		now:        time.Now,
	}
}

// GenerateToken creates a signed HS256 token with standard claims.
func (g *generator) GenerateToken(sessionID string) (string, error) {
	now := g.now()
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		ExpiresAt: jwt.NewNumericDate(now.Add(g.expiration)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify parses the token, checks the signature and expiry, and returns the subject.
func (g *generator) Verify(tokenStr string) (string, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		// HMAC以外の署名方式は拒否する
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return g.secret, nil
	}, jwt.WithTimeFunc(g.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}

func (g *generator) Expiration() time.Duration {
	return g.expiration
}
