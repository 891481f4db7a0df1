package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/carisaa/customer-portal/internal/domain"
	"github.com/carisaa/customer-portal/internal/storage"
	"github.com/carisaa/customer-portal/pkg/logger"
)

const (
	accessTokenKeyPrefix  = "session:access_token:"
	refreshTokenKeyPrefix = "session:refresh_token:"
	userKeyPrefix         = "session:user:"
)

// Store is the single source of truth for a browser session's credentials
// and cached profile. Every mutating operation writes through to the
// injected Storage synchronously, so a full page reload observes the same
// state. Malformed persisted data reads as "no session".
type Store struct {
	storage storage.Storage
	log     *logger.Logger
}

// NewStore creates a Store on top of the given Storage.
func NewStore(st storage.Storage, log *logger.Logger) *Store {
	return &Store{storage: st, log: log}
}

// SetTokens overwrites both tokens for the session. The pair is replaced
// atomically from the caller's point of view: the access token is only
// readable once both writes succeeded.
func (s *Store) SetTokens(ctx context.Context, sessionID, accessToken, refreshToken string) error {
	if err := s.storage.Set(ctx, refreshTokenKeyPrefix+sessionID, refreshToken, 0); err != nil {
		return fmt.Errorf("persist refresh token: %w", err)
	}
	if err := s.storage.Set(ctx, accessTokenKeyPrefix+sessionID, accessToken, 0); err != nil {
		return fmt.Errorf("persist access token: %w", err)
	}
	return nil
}

// SetUser overwrites the cached profile for the session.
func (s *Store) SetUser(ctx context.Context, sessionID string, user *domain.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	if err := s.storage.Set(ctx, userKeyPrefix+sessionID, string(data), 0); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}
	return nil
}

// AccessToken returns the stored access token, or "" when absent.
func (s *Store) AccessToken(ctx context.Context, sessionID string) string {
	val, err := s.storage.Get(ctx, accessTokenKeyPrefix+sessionID)
	if err != nil {
		return ""
	}
	return val
}

// RefreshToken returns the stored refresh token, or "" when absent.
func (s *Store) RefreshToken(ctx context.Context, sessionID string) string {
	val, err := s.storage.Get(ctx, refreshTokenKeyPrefix+sessionID)
	if err != nil {
		return ""
	}
	return val
}

// User returns the cached profile, or nil when absent or malformed.
func (s *Store) User(ctx context.Context, sessionID string) *domain.User {
	val, err := s.storage.Get(ctx, userKeyPrefix+sessionID)
	if err != nil {
		return nil
	}
	var user domain.User
	if err := json.Unmarshal([]byte(val), &user); err != nil {
		s.log.Warnw("Discarding malformed cached user", "error", err, "sessionID", sessionID)
		return nil
	}
	return &user
}

// IsAuthenticated reports whether an access token is present. Presence does
// not imply validity.
func (s *Store) IsAuthenticated(ctx context.Context, sessionID string) bool {
	return s.AccessToken(ctx, sessionID) != ""
}

// IsTokenValid decodes the access token's expiry claim and compares it to
// the current time. This is a client-side hint, not a security boundary:
// the signature is never verified and any decode failure reads as invalid.
func (s *Store) IsTokenValid(ctx context.Context, sessionID string) bool {
	token := s.AccessToken(ctx, sessionID)
	if token == "" {
		return false
	}
	claims, ok := DecodeClaims(token)
	if !ok {
		return false
	}
	return time.Now().Before(claims.ExpiresAt)
}

// ClearTokens wipes both tokens and the cached profile. Used on logout and
// on irrecoverable refresh failure.
func (s *Store) ClearTokens(ctx context.Context, sessionID string) error {
	var firstErr error
	for _, key := range []string{
		accessTokenKeyPrefix + sessionID,
		refreshTokenKeyPrefix + sessionID,
		userKeyPrefix + sessionID,
	} {
		if err := s.storage.Delete(ctx, key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
