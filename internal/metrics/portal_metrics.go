package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/carisaa/customer-portal/pkg/logger"
)

// PortalMetrics counts the funnel-relevant events of the portal.
type PortalMetrics interface {
	IncRegistration(outcome string)
	IncLogin(outcome string)
	IncTokenRefresh(outcome string)
	IncCheckoutSession(outcome string)
	IncVerificationPoll(outcome string)
	IncSubscriptionCancel(outcome string)
}

type portalMetrics struct {
	registrations     *prometheus.CounterVec
	logins            *prometheus.CounterVec
	tokenRefreshes    *prometheus.CounterVec
	checkoutSessions  *prometheus.CounterVec
	verificationPolls *prometheus.CounterVec
	cancellations     *prometheus.CounterVec
}

// NewPortalMetrics registers the portal counters on the given registry.
func NewPortalMetrics(registry *prometheus.Registry, log *logger.Logger) PortalMetrics {
	log.Debugw("Registering portal metrics")
	return &portalMetrics{
		registrations: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_registrations_total",
				Help: "The total number of registration attempts by outcome",
			},
			[]string{"outcome"},
		),
		logins: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_logins_total",
				Help: "The total number of login attempts by outcome",
			},
			[]string{"outcome"},
		),
		tokenRefreshes: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_token_refreshes_total",
				Help: "The total number of access-token refreshes by outcome",
			},
			[]string{"outcome"},
		),
		checkoutSessions: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_checkout_sessions_total",
				Help: "The total number of checkout sessions requested by outcome",
			},
			[]string{"outcome"},
		),
		verificationPolls: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_verification_polls_total",
				Help: "The total number of post-payment subscription polls by outcome",
			},
			[]string{"outcome"},
		),
		cancellations: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_subscription_cancels_total",
				Help: "The total number of cancellation requests by outcome",
			},
			[]string{"outcome"},
		),
	}
}

func (m *portalMetrics) IncRegistration(outcome string)       { m.registrations.WithLabelValues(outcome).Inc() }
func (m *portalMetrics) IncLogin(outcome string)              { m.logins.WithLabelValues(outcome).Inc() }
func (m *portalMetrics) IncTokenRefresh(outcome string)       { m.tokenRefreshes.WithLabelValues(outcome).Inc() }
func (m *portalMetrics) IncCheckoutSession(outcome string)    { m.checkoutSessions.WithLabelValues(outcome).Inc() }
func (m *portalMetrics) IncVerificationPoll(outcome string)   { m.verificationPolls.WithLabelValues(outcome).Inc() }
func (m *portalMetrics) IncSubscriptionCancel(outcome string) { m.cancellations.WithLabelValues(outcome).Inc() }
