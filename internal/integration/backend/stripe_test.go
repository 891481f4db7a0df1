package backend

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carisaa/customer-portal/internal/domain"
	"github.com/carisaa/customer-portal/pkg/logger"
)

func newTestSubscriptionClient(t *testing.T, handler http.Handler) (*SubscriptionClient, func()) {
	t.Helper()
	srv := httptest.NewServer(handler)
	log := logger.NewNop()
	api := NewClient(Config{BaseURL: srv.URL, Timeout: 5 * time.Second}, log)
	return NewSubscriptionClient(api, log), srv.Close
}

func TestCreateCheckoutSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /stripe/create-checkout-session", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access", r.Header.Get("Authorization"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), `"planId":"plan-pro"`)
		assert.Contains(t, string(body), `"billingCycle":"MONTHLY"`)
		assert.Contains(t, string(body), "{CHECKOUT_SESSION_ID}")
		writeJSON(w, http.StatusOK, domain.CheckoutSession{SessionID: "cs_123", URL: "https://pay.example.com/cs_123"})
	})
	client, stop := newTestSubscriptionClient(t, mux)
	defer stop()

	session, err := client.CreateCheckoutSession(context.Background(), "access", CreateCheckoutSessionRequest{
		PlanID:       "plan-pro",
		BillingCycle: domain.BillingCycleMonthly,
		SuccessURL:   "http://localhost:8080/payment-success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:    "http://localhost:8080/payment-cancelled",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/cs_123", session.URL)
}

func TestCreateCheckoutSessionRejected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /stripe/create-checkout-session", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "unknown plan"})
	})
	client, stop := newTestSubscriptionClient(t, mux)
	defer stop()

	_, err := client.CreateCheckoutSession(context.Background(), "access", CreateCheckoutSessionRequest{PlanID: "nope"})
	require.Error(t, err)
	var cerr *domain.CheckoutError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "unknown plan", cerr.Message)
}

func TestGetCurrentSubscriptionNotFoundMeansNone(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /subscriptions/current", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "no subscription"})
	})
	client, stop := newTestSubscriptionClient(t, mux)
	defer stop()

	sub, err := client.GetCurrentSubscription(context.Background(), "access")
	require.NoError(t, err)
	assert.Nil(t, sub)
}

func TestGetCurrentSubscriptionEmptyBodyMeansNone(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /subscriptions/current", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	client, stop := newTestSubscriptionClient(t, mux)
	defer stop()

	sub, err := client.GetCurrentSubscription(context.Background(), "access")
	require.NoError(t, err)
	assert.Nil(t, sub)
}

func TestGetCurrentSubscriptionEmptyRecordMeansNone(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /subscriptions/current", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{})
	})
	client, stop := newTestSubscriptionClient(t, mux)
	defer stop()

	sub, err := client.GetCurrentSubscription(context.Background(), "access")
	require.NoError(t, err)
	assert.Nil(t, sub)
}

func TestGetCurrentSubscription(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /subscriptions/current", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, domain.Subscription{
			ID:           "sub-1",
			PlanID:       "plan-pro",
			Status:       domain.SubscriptionStatusActive,
			BillingCycle: domain.BillingCycleYearly,
		})
	})
	client, stop := newTestSubscriptionClient(t, mux)
	defer stop()

	sub, err := client.GetCurrentSubscription(context.Background(), "access")
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, "sub-1", sub.ID)
	assert.True(t, sub.IsActive())
}

func TestListSubscriptions(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /subscriptions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, []domain.Subscription{
			{ID: "sub-2", PlanID: "plan-pro", Status: domain.SubscriptionStatusActive},
			{ID: "sub-1", PlanID: "plan-starter", Status: domain.SubscriptionStatusExpired},
		})
	})
	client, stop := newTestSubscriptionClient(t, mux)
	defer stop()

	subs, err := client.ListSubscriptions(context.Background(), "access")
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, domain.SubscriptionStatusExpired, subs[1].Status)
}

func TestCancelSubscriptionRejected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /stripe/cancel-subscription/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "already cancelled"})
	})
	client, stop := newTestSubscriptionClient(t, mux)
	defer stop()

	err := client.CancelSubscription(context.Background(), "access", "sub-1")
	require.Error(t, err)
	var serr *domain.SubscriptionError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "sub-1", serr.SubscriptionID)
	assert.Equal(t, http.StatusConflict, serr.StatusCode)
}

func TestHasActiveSubscriptionFailsClosed(t *testing.T) {
	status := http.StatusInternalServerError
	var sub *domain.Subscription
	mux := http.NewServeMux()
	mux.HandleFunc("GET /subscriptions/current", func(w http.ResponseWriter, r *http.Request) {
		if sub == nil {
			writeJSON(w, status, map[string]string{"message": "boom"})
			return
		}
		writeJSON(w, http.StatusOK, sub)
	})
	client, stop := newTestSubscriptionClient(t, mux)
	defer stop()

	ctx := context.Background()
	assert.False(t, client.HasActiveSubscription(ctx, "access"), "backend failure must read as inactive")

	sub = &domain.Subscription{ID: "sub-1", Status: domain.SubscriptionStatusPending}
	assert.False(t, client.HasActiveSubscription(ctx, "access"), "only ACTIVE unlocks features")

	sub.Status = domain.SubscriptionStatusActive
	assert.True(t, client.HasActiveSubscription(ctx, "access"))
}

func TestCreateCustomerPortal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /stripe/create-portal-session", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"url": "https://billing.example.com/p/1"})
	})
	client, stop := newTestSubscriptionClient(t, mux)
	defer stop()

	url, err := client.CreateCustomerPortal(context.Background(), "access")
	require.NoError(t, err)
	assert.Equal(t, "https://billing.example.com/p/1", url)
}

func TestCheckSessionNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /stripe/check-session/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "unknown session"})
	})
	client, stop := newTestSubscriptionClient(t, mux)
	defer stop()

	sub, err := client.CheckSession(context.Background(), "access", "cs_unknown")
	require.NoError(t, err)
	assert.Nil(t, sub)
}
