// Package jwt reads the claims of a credibuy access token for display.
//
// Signatures are not verified: the console holds no key and never makes
// routing decisions from these values.
package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var ErrEmptyToken = errors.New("empty token")

// Claims are the fields issued by the API in its access tokens.
type Claims struct {
	UserID    string
	TokenType string
	JTI       string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether exp has passed at now. A token without exp never expires.
func (c *Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

type accessClaims struct {
	jwtlib.RegisteredClaims
	UserID    any    `json:"user_id"`
	TokenType string `json:"token_type"`
}

// Parse decodes rawToken without checking its signature.
func Parse(rawToken string) (*Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, ErrEmptyToken
	}

	var ac accessClaims
	if _, _, err := jwtlib.NewParser().ParseUnverified(rawToken, &ac); err != nil {
		return nil, fmt.Errorf("jwt.Parse: %w", err)
	}

	claims := &Claims{
		TokenType: ac.TokenType,
		JTI:       ac.ID,
	}
	switch id := ac.UserID.(type) {
	case string:
		claims.UserID = id
	case float64:
		claims.UserID = fmt.Sprintf("%.0f", id)
	case nil:
		claims.UserID = ac.Subject
	}
	if ac.IssuedAt != nil {
		claims.IssuedAt = ac.IssuedAt.Time
	}
	if ac.ExpiresAt != nil {
		claims.ExpiresAt = ac.ExpiresAt.Time
	}
	return claims, nil
}
