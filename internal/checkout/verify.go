package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/carisaa/customer-portal/internal/domain"
	"github.com/carisaa/customer-portal/internal/integration/backend"
	"github.com/carisaa/customer-portal/internal/metrics"
	"github.com/carisaa/customer-portal/pkg/logger"
)

var errSubscriptionNotReady = errors.New("subscription not yet materialized")

// Verifier confirms that a payment the provider reported as successful has
// actually produced a subscription on the backend. The backend creates the
// record asynchronously from the provider's webhook, so right after the
// redirect it may not exist yet; the verifier polls at a fixed interval
// with a hard upper bound on attempts instead of looping forever.
type Verifier struct {
	auth     *backend.AuthClient
	subs     *backend.SubscriptionClient
	metrics  metrics.PortalMetrics
	interval time.Duration
	maxTries uint
	log      *logger.Logger
}

// NewVerifier creates a Verifier polling every interval, at most maxTries
// times.
func NewVerifier(auth *backend.AuthClient, subs *backend.SubscriptionClient, m metrics.PortalMetrics, interval time.Duration, maxTries int, log *logger.Logger) *Verifier {
	if interval == 0 {
		interval = 2 * time.Second
	}
	if maxTries <= 0 {
		maxTries = 10
	}
	return &Verifier{
		auth:     auth,
		subs:     subs,
		metrics:  m,
		interval: interval,
		maxTries: uint(maxTries),
		log:      log,
	}
}

// VerifyPayment refreshes the caller's profile (renewing the token if
// needed) and polls until the subscription appears. It returns the
// subscription, or an error when the caller is not authenticated or the
// poll budget runs out.
func (v *Verifier) VerifyPayment(ctx context.Context, sessionID string) (*domain.Subscription, error) {
	if !v.auth.Sessions().IsAuthenticated(ctx, sessionID) {
		return nil, domain.NewAuthError("no access token available", domain.ErrNoSession)
	}

	// Refresh the profile so the dashboard reflects the new subscription;
	// this also transparently renews an expired token.
	if _, err := v.auth.GetMe(ctx, sessionID); err != nil {
		return nil, err
	}

	sub, err := backoff.Retry(ctx, func() (*domain.Subscription, error) {
		token := v.auth.Sessions().AccessToken(ctx, sessionID)
		current, err := v.subs.GetCurrentSubscription(ctx, token)
		if err != nil {
			// Transient backend trouble: keep polling within the budget.
			v.metrics.IncVerificationPoll("error")
			return nil, err
		}
		if current == nil {
			v.metrics.IncVerificationPoll("pending")
			return nil, errSubscriptionNotReady
		}
		v.metrics.IncVerificationPoll("ok")
		return current, nil
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(v.interval)),
		backoff.WithMaxTries(v.maxTries),
	)
	if err != nil {
		v.log.Warnw("Payment verification gave up", "error", err, "sessionID", sessionID)
		return nil, fmt.Errorf("payment verification: %w", err)
	}

	v.log.Infow("Payment verified", "sessionID", sessionID, "subscriptionID", sub.ID, "status", sub.Status)
	return sub, nil
}
