package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"bookreviews/internal/platform/crypto"
	"bookreviews/internal/session"
)

type Service struct {
	secret   string
	users    UserFinder
	sessions SessionStore
	now      func() time.Time
}

func NewService(secret string, users UserFinder, sessions SessionStore) *Service {
	return &Service{
		secret:   secret,
		users:    users,
		sessions: sessions,
		now:      time.Now,
	}
}

// HashToken is the form in which refresh tokens are stored.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

func (s *Service) Login(ctx context.Context, username, password string, rememberMe bool, client Client) (Tokens, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil || !crypto.VerifyPassword(u.Password, password) {
		return Tokens{}, ErrUnauthorized
	}

	sess := session.Session{
		UserID:     u.ID,
		UserAgent:  client.UserAgent,
		IPAddress:  client.IPAddress,
		RememberMe: rememberMe,
	}
	return s.issue(ctx, u.ID, u.Role, sess)
}

// RefreshToken rotates a refresh token: the presented one is consumed and a new pair is issued.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (Tokens, error) {
	tokenHash := HashToken(refreshToken)
	sess, err := s.sessions.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return Tokens{}, ErrUnauthorized
		}
		return Tokens{}, fmt.Errorf("lookup session: %w", err)
	}

	u, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		return Tokens{}, ErrUnauthorized
	}

	// Only the caller that actually deletes the session may rotate it.
	if err := s.sessions.DeleteByTokenHash(ctx, tokenHash); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return Tokens{}, ErrUnauthorized
		}
		return Tokens{}, fmt.Errorf("revoke session: %w", err)
	}

	next := session.Session{
		UserID:     u.ID,
		UserAgent:  sess.UserAgent,
		IPAddress:  sess.IPAddress,
		RememberMe: sess.RememberMe,
	}
	return s.issue(ctx, u.ID, u.Role, next)
}

// Logout blacklists the access token until it would have expired and,
// when given, drops the session behind refreshToken.
func (s *Service) Logout(ctx context.Context, accessToken, refreshToken string) error {
	claims, err := crypto.ParseToken(s.secret, accessToken)
	if err != nil {
		return ErrUnauthorized
	}

	expiresAt := s.now().Add(blacklistFallbackTTL)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := s.sessions.AddToBlacklist(ctx, claims.ID, claims.Sub, expiresAt); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}

	if refreshToken != "" {
		err := s.sessions.DeleteByTokenHash(ctx, HashToken(refreshToken))
		if err != nil && !errors.Is(err, session.ErrNotFound) {
			return fmt.Errorf("revoke session: %w", err)
		}
	}
	return nil
}

func (s *Service) issue(ctx context.Context, userID, role string, sess session.Session) (Tokens, error) {
	accessToken, _, err := crypto.GenerateToken(s.secret, userID, role, AccessTokenTTL)
	if err != nil {
		return Tokens{}, err
	}

	refreshToken, err := crypto.RandomToken(refreshTokenBytes)
	if err != nil {
		return Tokens{}, fmt.Errorf("generate refresh token: %w", err)
	}

	ttl := RefreshTokenTTL
	if sess.RememberMe {
		ttl = RememberMeTTL
	}
	sess.RefreshTokenHash = HashToken(refreshToken)
	sess.ExpiresAt = s.now().Add(ttl)
	if err := s.sessions.Create(ctx, &sess); err != nil {
		return Tokens{}, fmt.Errorf("create session: %w", err)
	}

	return Tokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(AccessTokenTTL.Seconds()),
		TokenType:    "Bearer",
	}, nil
}
