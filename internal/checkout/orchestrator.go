package checkout

import (
	"context"
	"encoding/json"
	"time"

	"github.com/carisaa/customer-portal/internal/domain"
	"github.com/carisaa/customer-portal/internal/integration/backend"
	"github.com/carisaa/customer-portal/internal/metrics"
	"github.com/carisaa/customer-portal/internal/session"
	"github.com/carisaa/customer-portal/internal/storage"
	"github.com/carisaa/customer-portal/pkg/logger"
)

const pendingPaymentKeyPrefix = "pending_payment:"

// sessionIDPlaceholder is substituted by the payment provider itself when
// it redirects back to the success URL.
const sessionIDPlaceholder = "{CHECKOUT_SESSION_ID}"

// Orchestrator turns a plan selection into a provider-hosted checkout
// session and reports the URL the browser must be handed off to. It never
// performs navigation or login redirects itself; missing credentials are
// reported upward as AuthError.
type Orchestrator struct {
	subs       *backend.SubscriptionClient
	sessions   *session.Store
	storage    storage.Storage
	metrics    metrics.PortalMetrics
	publicURL  string
	pendingTTL time.Duration
	log        *logger.Logger
}

// NewOrchestrator creates an Orchestrator. publicURL is the portal's
// externally visible origin, used to compute the success/cancel callbacks.
func NewOrchestrator(subs *backend.SubscriptionClient, sessions *session.Store, st storage.Storage, m metrics.PortalMetrics, publicURL string, pendingTTL time.Duration, log *logger.Logger) *Orchestrator {
	if pendingTTL == 0 {
		pendingTTL = 30 * time.Minute
	}
	return &Orchestrator{
		subs:       subs,
		sessions:   sessions,
		storage:    st,
		metrics:    m,
		publicURL:  publicURL,
		pendingTTL: pendingTTL,
		log:        log,
	}
}

// Options describes one checkout attempt. Failures are reported through
// OnError instead of a returned error, so presentation code can recover
// inline without special-casing.
type Options struct {
	PlanID       string
	BillingCycle domain.BillingCycle
	OnError      func(error)
}

// Start requests a checkout session for the selection and returns the
// provider URL to redirect to, or "" when the attempt failed (the failure
// has then been reported through opts.OnError). A pending-payment
// breadcrumb is written before the URL is handed back, so the success page
// can recognize the returning browser.
func (o *Orchestrator) Start(ctx context.Context, sessionID string, opts Options) string {
	report := opts.OnError
	if report == nil {
		report = func(err error) {
			o.log.Errorw("Unhandled checkout error", "error", err)
		}
	}

	token := o.sessions.AccessToken(ctx, sessionID)
	if token == "" {
		o.metrics.IncCheckoutSession("unauthenticated")
		report(domain.NewAuthError("no access token available", domain.ErrNoSession))
		return ""
	}

	checkoutSession, err := o.subs.CreateCheckoutSession(ctx, token, backend.CreateCheckoutSessionRequest{
		PlanID:       opts.PlanID,
		BillingCycle: opts.BillingCycle,
		SuccessURL:   o.publicURL + "/payment-success?session_id=" + sessionIDPlaceholder,
		CancelURL:    o.publicURL + "/payment-cancelled",
	})
	if err != nil {
		o.metrics.IncCheckoutSession("error")
		report(err)
		return ""
	}

	if checkoutSession.URL == "" {
		o.metrics.IncCheckoutSession("no_url")
		report(domain.NewCheckoutError("no checkout URL received", nil))
		return ""
	}

	o.writePendingPayment(ctx, sessionID, opts.PlanID, opts.BillingCycle)
	o.metrics.IncCheckoutSession("ok")
	o.log.Infow("Checkout session created",
		"sessionID", sessionID, "planID", opts.PlanID, "billingCycle", opts.BillingCycle)
	return checkoutSession.URL
}

// PendingPayment returns the breadcrumb written before the provider
// hand-off, or nil when none exists or it has expired.
func (o *Orchestrator) PendingPayment(ctx context.Context, sessionID string) *domain.PendingPayment {
	val, err := o.storage.Get(ctx, pendingPaymentKeyPrefix+sessionID)
	if err != nil {
		return nil
	}
	var pending domain.PendingPayment
	if err := json.Unmarshal([]byte(val), &pending); err != nil {
		return nil
	}
	return &pending
}

// ClearPendingPayment removes the breadcrumb once the payment outcome is
// known.
func (o *Orchestrator) ClearPendingPayment(ctx context.Context, sessionID string) {
	if err := o.storage.Delete(ctx, pendingPaymentKeyPrefix+sessionID); err != nil {
		o.log.Warnw("Failed to clear pending payment marker", "error", err, "sessionID", sessionID)
	}
}

// writePendingPayment records the breadcrumb with a TTL so an abandoned
// checkout does not leave a stale marker behind. Failure to write it is
// logged but does not block the hand-off.
func (o *Orchestrator) writePendingPayment(ctx context.Context, sessionID, planID string, cycle domain.BillingCycle) {
	data, err := json.Marshal(domain.PendingPayment{
		PlanID:       planID,
		BillingCycle: cycle,
		Timestamp:    time.Now().UnixMilli(),
	})
	if err != nil {
		return
	}
	if err := o.storage.Set(ctx, pendingPaymentKeyPrefix+sessionID, string(data), o.pendingTTL); err != nil {
		o.log.Warnw("Failed to persist pending payment marker", "error", err, "sessionID", sessionID)
	}
}
