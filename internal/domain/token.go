package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType discriminates access and refresh tokens
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// AccessClaims is the payload of a short-lived access token
type AccessClaims struct {
	UserID string    `json:"userId"`
	Email  string    `json:"email"`
	Type   TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a long-lived refresh token
type RefreshClaims struct {
	UserID string    `json:"userId"`
	Type   TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// IssuedToken is a signed token with its lifetime
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
	TTL       time.Duration
}

// TokenPair is what registration and login hand to the transport
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}
