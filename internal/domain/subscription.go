package domain

import "time"

// SubscriptionStatus is the backend-owned subscription state.
type SubscriptionStatus string

const (
	SubscriptionStatusPending   SubscriptionStatus = "PENDING"
	SubscriptionStatusActive    SubscriptionStatus = "ACTIVE"
	SubscriptionStatusCancelled SubscriptionStatus = "CANCELLED"
	SubscriptionStatusExpired   SubscriptionStatus = "EXPIRED"
	SubscriptionStatusSuspended SubscriptionStatus = "SUSPENDED"
	SubscriptionStatusPastDue   SubscriptionStatus = "PAST_DUE"
)

// Subscription is owned by the backend; the portal only reads it. ACTIVE is
// the only status that unlocks plan-feature display and hides the subscribe
// calls-to-action.
type Subscription struct {
	ID                   string             `json:"id"`
	UserID               string             `json:"userId"`
	PlanID               string             `json:"planId"`
	Status               SubscriptionStatus `json:"status"`
	StripeCustomerID     string             `json:"stripeCustomerId,omitempty"`
	StripeSubscriptionID string             `json:"stripeSubscriptionId,omitempty"`
	CurrentPeriodEnd     *time.Time         `json:"currentPeriodEnd,omitempty"`
	BillingCycle         BillingCycle       `json:"billingCycle"`
	Plan                 *Plan              `json:"plan,omitempty"`
}

// IsActive reports whether the subscription unlocks paid features.
func (s *Subscription) IsActive() bool {
	return s != nil && s.Status == SubscriptionStatusActive
}

// PendingPayment is the breadcrumb written to session-scoped storage right
// before the browser is handed off to the provider's hosted checkout.
type PendingPayment struct {
	PlanID       string       `json:"planId"`
	BillingCycle BillingCycle `json:"billingCycle"`
	Timestamp    int64        `json:"timestamp"`
}

// CheckoutSession is the provider-hosted checkout handle the backend
// creates for us.
type CheckoutSession struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}
