package backend

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/carisaa/customer-portal/internal/domain"
	"github.com/carisaa/customer-portal/internal/metrics"
	"github.com/carisaa/customer-portal/internal/session"
	"github.com/carisaa/customer-portal/internal/storage"
	"github.com/carisaa/customer-portal/pkg/logger"
)

const resendCooldownKeyPrefix = "resend_cooldown:"

// AuthClient drives all authentication state transitions against the
// backend. Per browser session it moves through:
//
//	Anonymous -> Registered(unverified) -> Verified(authenticated) -> Anonymous
//
// The terminal transition happens only on explicit logout or an
// irrecoverable refresh failure.
type AuthClient struct {
	api            *Client
	sessions       *session.Store
	storage        storage.Storage
	metrics        metrics.PortalMetrics
	resendCooldown time.Duration
	log            *logger.Logger
}

// NewAuthClient creates an AuthClient.
func NewAuthClient(api *Client, sessions *session.Store, st storage.Storage, m metrics.PortalMetrics, resendCooldown time.Duration, log *logger.Logger) *AuthClient {
	if resendCooldown == 0 {
		resendCooldown = 60 * time.Second
	}
	return &AuthClient{
		api:            api,
		sessions:       sessions,
		storage:        st,
		metrics:        m,
		resendCooldown: resendCooldown,
		log:            log,
	}
}

// Sessions exposes the session store backing this client.
func (a *AuthClient) Sessions() *session.Store {
	return a.sessions
}

// Register submits the signup fields and returns the pending-verification
// acknowledgment. The account stays unusable until the email is verified.
func (a *AuthClient) Register(ctx context.Context, data domain.RegisterData) (*domain.RegisterAck, error) {
	resp, err := a.api.do(ctx, http.MethodPost, "/auth/register", "", data)
	if err != nil {
		a.metrics.IncRegistration("network_error")
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusConflict:
		a.metrics.IncRegistration("conflict")
		return nil, domain.NewConflictError(errorMessage(resp))
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		a.metrics.IncRegistration("rejected")
		return nil, domain.NewValidationError(errorMessage(resp))
	case resp.StatusCode >= 300:
		a.metrics.IncRegistration("error")
		return nil, fmt.Errorf("registration failed: %s", errorMessage(resp))
	}

	ack, err := decodeJSON[domain.RegisterAck](resp)
	if err != nil {
		return nil, err
	}
	a.metrics.IncRegistration("ok")
	a.log.Infow("User registered, verification pending", "email", ack.Email)
	return &ack, nil
}

// Login authenticates and stores the token pair and user atomically via the
// session store, strictly before the caller navigates anywhere.
func (a *AuthClient) Login(ctx context.Context, sessionID, email, password string) (*domain.AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	resp, err := a.api.do(ctx, http.MethodPost, "/auth/login", "", body)
	if err != nil {
		a.metrics.IncLogin("network_error")
		return nil, err
	}

	if resp.StatusCode >= 300 {
		a.metrics.IncLogin("rejected")
		return nil, domain.NewAuthError(errorMessage(resp), nil)
	}

	auth, err := decodeJSON[domain.AuthResponse](resp)
	if err != nil {
		a.metrics.IncLogin("error")
		return nil, err
	}

	if err := a.storeAuth(ctx, sessionID, &auth); err != nil {
		a.metrics.IncLogin("error")
		return nil, err
	}
	a.metrics.IncLogin("ok")
	a.log.Infow("User logged in", "sessionID", sessionID)
	return &auth, nil
}

// VerifyEmail submits the 6-digit code. First-time activation may return a
// fresh token pair, which is stored.
func (a *AuthClient) VerifyEmail(ctx context.Context, sessionID, email, code string) (*domain.AuthResponse, error) {
	body := map[string]string{"email": email, "code": code}
	resp, err := a.api.do(ctx, http.MethodPost, "/auth/verify-email", "", body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 300 {
		return nil, domain.NewValidationError(errorMessage(resp))
	}

	auth, err := decodeJSON[domain.AuthResponse](resp)
	if err != nil {
		return nil, err
	}

	if auth.AccessToken != "" && auth.RefreshToken != "" {
		if err := a.storeAuth(ctx, sessionID, &auth); err != nil {
			return nil, err
		}
		a.log.Infow("Email verified, session activated", "sessionID", sessionID)
	}
	return &auth, nil
}

// ResendVerificationCode requests code reissuance, throttled client-side to
// one request per cooldown window per email. The throttle is a UI nicety,
// not a server contract.
func (a *AuthClient) ResendVerificationCode(ctx context.Context, email string) error {
	cooldownKey := resendCooldownKeyPrefix + email
	if _, err := a.storage.Get(ctx, cooldownKey); err == nil {
		return domain.ErrResendCooldown
	}

	resp, err := a.api.do(ctx, http.MethodPost, "/auth/resend-verification", "", map[string]string{"email": email})
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return domain.NewValidationError(errorMessage(resp))
	}
	resp.Body.Close()

	if err := a.storage.Set(ctx, cooldownKey, "1", a.resendCooldown); err != nil {
		a.log.Warnw("Failed to persist resend cooldown", "error", err, "email", email)
	}
	return nil
}

// RefreshAccessToken exchanges the stored refresh token for a new pair. Any
// failure clears the session: callers must treat the returned AuthError as
// "session ended".
func (a *AuthClient) RefreshAccessToken(ctx context.Context, sessionID string) (*domain.AuthResponse, error) {
	refreshToken := a.sessions.RefreshToken(ctx, sessionID)
	if refreshToken == "" {
		a.metrics.IncTokenRefresh("no_token")
		a.clearSession(ctx, sessionID)
		return nil, domain.NewAuthError("no refresh token available", domain.ErrNoSession)
	}

	resp, err := a.api.do(ctx, http.MethodPost, "/auth/refresh", "", map[string]string{"refreshToken": refreshToken})
	if err != nil {
		a.metrics.IncTokenRefresh("network_error")
		a.clearSession(ctx, sessionID)
		return nil, domain.NewAuthError("token refresh failed", err)
	}

	if resp.StatusCode >= 300 {
		a.metrics.IncTokenRefresh("rejected")
		a.clearSession(ctx, sessionID)
		return nil, domain.NewAuthError("token refresh failed: "+errorMessage(resp), nil)
	}

	auth, err := decodeJSON[domain.AuthResponse](resp)
	if err != nil {
		a.metrics.IncTokenRefresh("error")
		a.clearSession(ctx, sessionID)
		return nil, domain.NewAuthError("token refresh failed", err)
	}

	if err := a.storeAuth(ctx, sessionID, &auth); err != nil {
		a.metrics.IncTokenRefresh("error")
		return nil, err
	}
	a.metrics.IncTokenRefresh("ok")
	a.log.Debugw("Access token refreshed", "sessionID", sessionID)
	return &auth, nil
}

// GetMe fetches the current profile. On a 401 it performs exactly one
// transparent refresh-and-retry; it never retries a second time, so an
// expired refresh token cannot cause a refresh loop.
func (a *AuthClient) GetMe(ctx context.Context, sessionID string) (*domain.User, error) {
	token := a.sessions.AccessToken(ctx, sessionID)
	if token == "" {
		return nil, domain.NewAuthError("not authenticated", domain.ErrNoSession)
	}

	user, status, err := a.fetchMe(ctx, sessionID, token)
	if err != nil {
		return nil, err
	}
	if status != http.StatusUnauthorized {
		return user, nil
	}

	auth, err := a.RefreshAccessToken(ctx, sessionID)
	if err != nil {
		// Tokens are already cleared; surface the original failure mode.
		return nil, err
	}

	user, status, err = a.fetchMe(ctx, sessionID, auth.AccessToken)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		return nil, domain.NewAuthError("profile fetch rejected after refresh", nil)
	}
	return user, nil
}

// fetchMe performs a single profile fetch. A 401 is reported through the
// status return, all other failures as errors.
func (a *AuthClient) fetchMe(ctx context.Context, sessionID, token string) (*domain.User, int, error) {
	resp, err := a.api.do(ctx, http.MethodGet, "/auth/me", token, nil)
	if err != nil {
		return nil, 0, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		return nil, http.StatusUnauthorized, nil
	}
	if resp.StatusCode >= 300 {
		return nil, resp.StatusCode, fmt.Errorf("failed to get user data: %s", errorMessage(resp))
	}

	user, err := decodeJSON[domain.User](resp)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	if err := a.sessions.SetUser(ctx, sessionID, &user); err != nil {
		return nil, resp.StatusCode, err
	}
	return &user, resp.StatusCode, nil
}

// Logout performs a best-effort server-side invalidation, then always
// clears the local session.
func (a *AuthClient) Logout(ctx context.Context, sessionID string) error {
	if token := a.sessions.AccessToken(ctx, sessionID); token != "" {
		resp, err := a.api.do(ctx, http.MethodPost, "/auth/logout", token, nil)
		if err != nil {
			a.log.Warnw("Server-side logout failed, clearing local session anyway", "error", err)
		} else {
			resp.Body.Close()
		}
	}
	return a.sessions.ClearTokens(ctx, sessionID)
}

// RestoreAuthState rebuilds the authenticated state after a full page
// reload: refresh an expired token, then return the cached profile or fetch
// a fresh one. Any failure leaves the session anonymous.
func (a *AuthClient) RestoreAuthState(ctx context.Context, sessionID string) *domain.User {
	if !a.sessions.IsAuthenticated(ctx, sessionID) {
		return nil
	}

	if !a.sessions.IsTokenValid(ctx, sessionID) {
		if _, err := a.RefreshAccessToken(ctx, sessionID); err != nil {
			return nil
		}
	}

	if user := a.sessions.User(ctx, sessionID); user != nil {
		return user
	}

	user, err := a.GetMe(ctx, sessionID)
	if err != nil {
		a.log.Debugw("Failed to restore auth state", "error", err, "sessionID", sessionID)
		a.clearSession(ctx, sessionID)
		return nil
	}
	return user
}

// storeAuth persists the token pair first and the user second so a
// concurrent page load observes a consistent pair or neither.
func (a *AuthClient) storeAuth(ctx context.Context, sessionID string, auth *domain.AuthResponse) error {
	if err := a.sessions.SetTokens(ctx, sessionID, auth.AccessToken, auth.RefreshToken); err != nil {
		return err
	}
	if auth.User != nil {
		if err := a.sessions.SetUser(ctx, sessionID, auth.User); err != nil {
			return err
		}
	}
	return nil
}

func (a *AuthClient) clearSession(ctx context.Context, sessionID string) {
	if err := a.sessions.ClearTokens(ctx, sessionID); err != nil {
		a.log.Warnw("Failed to clear session", "error", err, "sessionID", sessionID)
	}
}
