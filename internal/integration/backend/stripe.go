package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/carisaa/customer-portal/internal/domain"
	"github.com/carisaa/customer-portal/pkg/logger"
)

// SubscriptionClient reads and manages the authenticated user's
// subscription and brokers the provider-hosted checkout and portal
// hand-offs through the backend. The portal never talks to the payment
// provider directly.
type SubscriptionClient struct {
	api *Client
	log *logger.Logger
}

// NewSubscriptionClient creates a SubscriptionClient.
func NewSubscriptionClient(api *Client, log *logger.Logger) *SubscriptionClient {
	return &SubscriptionClient{api: api, log: log}
}

// CreateCheckoutSessionRequest is the payload for checkout session
// creation. The success URL contains a session-id placeholder the provider
// substitutes itself.
type CreateCheckoutSessionRequest struct {
	PlanID       string              `json:"planId"`
	BillingCycle domain.BillingCycle `json:"billingCycle"`
	SuccessURL   string              `json:"successUrl,omitempty"`
	CancelURL    string              `json:"cancelUrl,omitempty"`
}

// CreateCheckoutSession asks the backend for a provider-hosted checkout
// session.
func (s *SubscriptionClient) CreateCheckoutSession(ctx context.Context, token string, req CreateCheckoutSessionRequest) (*domain.CheckoutSession, error) {
	resp, err := s.api.do(ctx, http.MethodPost, "/stripe/create-checkout-session", token, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, domain.NewCheckoutError(errorMessage(resp), nil)
	}
	session, err := decodeJSON[domain.CheckoutSession](resp)
	if err != nil {
		return nil, domain.NewCheckoutError("malformed checkout session response", err)
	}
	return &session, nil
}

// GetCurrentSubscription returns the user's current subscription, or nil
// when none exists yet. A 404 and a malformed or empty body both mean "not
// yet created" — the backend materializes the record asynchronously after
// the provider's webhook lands.
func (s *SubscriptionClient) GetCurrentSubscription(ctx context.Context, token string) (*domain.Subscription, error) {
	resp, err := s.api.do(ctx, http.MethodGet, "/subscriptions/current", token, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, nil
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to fetch subscription: %s", errorMessage(resp))
	}

	defer resp.Body.Close()
	var sub domain.Subscription
	if err := json.NewDecoder(resp.Body).Decode(&sub); err != nil {
		s.log.Debugw("Treating unreadable subscription body as none", "error", err)
		return nil, nil
	}
	if sub.ID == "" {
		return nil, nil
	}
	return &sub, nil
}

// ListSubscriptions returns the user's subscription history.
func (s *SubscriptionClient) ListSubscriptions(ctx context.Context, token string) ([]domain.Subscription, error) {
	resp, err := s.api.do(ctx, http.MethodGet, "/subscriptions", token, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to list subscriptions: %s", errorMessage(resp))
	}
	return decodeJSON[[]domain.Subscription](resp)
}

// CancelSubscription requests cancellation of the given subscription.
func (s *SubscriptionClient) CancelSubscription(ctx context.Context, token, subscriptionID string) error {
	resp, err := s.api.do(ctx, http.MethodPost, "/stripe/cancel-subscription/"+subscriptionID, token, nil)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return domain.NewSubscriptionError(errorMessage(resp), subscriptionID, resp.StatusCode, nil)
	}
	resp.Body.Close()
	s.log.Infow("Subscription cancellation requested", "subscriptionID", subscriptionID)
	return nil
}

// CreateCustomerPortal returns the provider-hosted self-service portal URL.
// The caller navigates the browser there.
func (s *SubscriptionClient) CreateCustomerPortal(ctx context.Context, token string) (string, error) {
	resp, err := s.api.do(ctx, http.MethodPost, "/stripe/create-portal-session", token, nil)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("failed to create portal session: %s", errorMessage(resp))
	}
	payload, err := decodeJSON[struct {
		URL string `json:"url"`
	}](resp)
	if err != nil {
		return "", err
	}
	return payload.URL, nil
}

// CheckSession asks the backend for the state of a provider checkout
// session after the success redirect.
func (s *SubscriptionClient) CheckSession(ctx context.Context, token, checkoutSessionID string) (*domain.Subscription, error) {
	resp, err := s.api.do(ctx, http.MethodGet, "/stripe/check-session/"+checkoutSessionID, token, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, nil
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to check session: %s", errorMessage(resp))
	}
	sub, err := decodeJSON[domain.Subscription](resp)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// HasActiveSubscription is a convenience predicate for feature gating. It
// fails closed: any underlying error reads as "no active subscription".
func (s *SubscriptionClient) HasActiveSubscription(ctx context.Context, token string) bool {
	sub, err := s.GetCurrentSubscription(ctx, token)
	if err != nil {
		s.log.Debugw("Treating subscription lookup failure as inactive", "error", err)
		return false
	}
	return sub.IsActive()
}
