package session

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("session not found")

// Session is one refresh-token login. Only the SHA-256 of the refresh token is stored.
type Session struct {
	ID               string    `json:"id"`
	UserID           string    `json:"-"`
	RefreshTokenHash string    `json:"-"`
	UserAgent        string    `json:"user_agent"`
	IPAddress        string    `json:"ip_address"`
	RememberMe       bool      `json:"remember_me"`
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
	LastUsedAt       time.Time `json:"last_used_at"`
}
