// Package auth issues and revokes the access and refresh tokens behind a login.
package auth

import (
	"context"
	"errors"
	"time"

	"bookreviews/internal/session"
	"bookreviews/internal/user"
)

const (
	AccessTokenTTL       = 15 * time.Minute
	RefreshTokenTTL      = 30 * 24 * time.Hour
	RememberMeTTL        = 90 * 24 * time.Hour
	refreshTokenBytes    = 32
	blacklistFallbackTTL = 24 * time.Hour
)

var ErrUnauthorized = errors.New("unauthorized")

// Tokens is the credential pair handed to a client after login or refresh.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// Client describes where a login came from.
type Client struct {
	UserAgent string
	IPAddress string
}

type UserFinder interface {
	GetByUsername(ctx context.Context, username string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
}

type SessionStore interface {
	Create(ctx context.Context, s *session.Session) error
	GetByTokenHash(ctx context.Context, hash string) (session.Session, error)
	DeleteByTokenHash(ctx context.Context, hash string) error
	AddToBlacklist(ctx context.Context, jti, userID string, expiresAt time.Time) error
}
