package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carisaa/customer-portal/internal/api/rest/middleware"
	"github.com/carisaa/customer-portal/internal/checkout"
	"github.com/carisaa/customer-portal/internal/domain"
	"github.com/carisaa/customer-portal/internal/integration/backend"
	"github.com/carisaa/customer-portal/internal/metrics"
	"github.com/carisaa/customer-portal/internal/plans"
	"github.com/carisaa/customer-portal/internal/session"
	"github.com/carisaa/customer-portal/pkg/logger"
	"github.com/carisaa/customer-portal/pkg/res"
)

// BillingHandler exposes the plan-selection and checkout actions. Like the
// auth actions, each endpoint serves both HTML forms (redirect answers) and
// JSON callers.
type BillingHandler struct {
	orchestrator *checkout.Orchestrator
	subs         *backend.SubscriptionClient
	sessions     *session.Store
	planStore    *plans.Store
	metrics      metrics.PortalMetrics
	log          *logger.Logger
}

// NewBillingHandler creates a BillingHandler.
func NewBillingHandler(orchestrator *checkout.Orchestrator, subs *backend.SubscriptionClient, sessions *session.Store, planStore *plans.Store, m metrics.PortalMetrics, log *logger.Logger) *BillingHandler {
	return &BillingHandler{
		orchestrator: orchestrator,
		subs:         subs,
		sessions:     sessions,
		planStore:    planStore,
		metrics:      m,
		log:          log,
	}
}

type selectPlanRequest struct {
	PlanID       string              `form:"planId" json:"planId" binding:"required"`
	BillingCycle domain.BillingCycle `form:"billingCycle" json:"billingCycle" binding:"required"`
}

// SelectPlan stores the pending plan choice for the session and continues
// the funnel: checkout for an authenticated user, signup otherwise.
// Selecting again overwrites the previous choice entirely.
func (h *BillingHandler) SelectPlan(c *gin.Context) {
	var req selectPlanRequest
	if err := c.ShouldBind(&req); err != nil || !req.BillingCycle.Valid() {
		rejectInvalid(c, "/pricing", "Invalid plan selection")
		return
	}

	ctx := c.Request.Context()
	sessionID := middleware.SessionID(c)
	sel := domain.SelectedPlan{
		PlanID:       req.PlanID,
		BillingCycle: req.BillingCycle,
		Plan:         h.planStore.PlanByID(ctx, req.PlanID),
	}
	if err := h.planStore.SetSelectedPlan(ctx, sessionID, sel); err != nil {
		h.log.Errorw("Failed to persist plan selection", "error", err, "sessionID", sessionID)
		if isFormPost(c) {
			backWithError(c, "/pricing", "Could not save your selection")
			return
		}
		res.Error(c, http.StatusInternalServerError, "Could not save your selection")
		return
	}

	redirect := "/signup"
	if h.sessions.IsAuthenticated(ctx, sessionID) {
		redirect = "/checkout"
	}
	if isFormPost(c) {
		seeOther(c, redirect)
		return
	}
	res.OK(c, gin.H{"redirect": redirect})
}

// CreateCheckout turns the pending selection into a provider checkout
// session and hands the browser off to it. The selection is cleared once
// the session exists.
func (h *BillingHandler) CreateCheckout(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := middleware.SessionID(c)

	sel := h.planStore.SelectedPlan(ctx, sessionID)
	if sel == nil {
		if isFormPost(c) {
			seeOther(c, "/pricing")
			return
		}
		res.Error(c, http.StatusBadRequest, "No plan selected")
		return
	}

	var checkoutErr error
	url := h.orchestrator.Start(ctx, sessionID, checkout.Options{
		PlanID:       sel.PlanID,
		BillingCycle: sel.BillingCycle,
		OnError:      func(err error) { checkoutErr = err },
	})
	if url == "" {
		h.writeBillingError(c, "/checkout", checkoutErr)
		return
	}

	if err := h.planStore.ClearSelectedPlan(ctx, sessionID); err != nil {
		h.log.Warnw("Failed to clear plan selection after checkout", "error", err, "sessionID", sessionID)
	}
	if isFormPost(c) {
		// Off to the provider-hosted checkout page.
		seeOther(c, url)
		return
	}
	res.OK(c, gin.H{"url": url})
}

// CurrentSubscription returns the session's subscription, or null when the
// backend has not created one.
func (h *BillingHandler) CurrentSubscription(c *gin.Context) {
	ctx := c.Request.Context()
	token := h.sessions.AccessToken(ctx, middleware.SessionID(c))
	if token == "" {
		res.Error(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	sub, err := h.subs.GetCurrentSubscription(ctx, token)
	if err != nil {
		h.writeBillingError(c, "/dashboard", err)
		return
	}
	res.OK(c, sub)
}

// CancelSubscription requests cancellation of the given subscription.
func (h *BillingHandler) CancelSubscription(c *gin.Context) {
	ctx := c.Request.Context()
	token := h.sessions.AccessToken(ctx, middleware.SessionID(c))
	if token == "" {
		h.rejectUnauthenticated(c)
		return
	}

	subscriptionID := c.Param("id")
	if err := h.subs.CancelSubscription(ctx, token, subscriptionID); err != nil {
		h.metrics.IncSubscriptionCancel("error")
		h.writeBillingError(c, "/dashboard", err)
		return
	}
	h.metrics.IncSubscriptionCancel("ok")
	if isFormPost(c) {
		seeOther(c, "/dashboard")
		return
	}
	res.OK(c, gin.H{"message": "Subscription cancellation requested"})
}

// CustomerPortal hands the browser off to the provider's self-service
// portal.
func (h *BillingHandler) CustomerPortal(c *gin.Context) {
	ctx := c.Request.Context()
	token := h.sessions.AccessToken(ctx, middleware.SessionID(c))
	if token == "" {
		h.rejectUnauthenticated(c)
		return
	}

	url, err := h.subs.CreateCustomerPortal(ctx, token)
	if err != nil {
		h.writeBillingError(c, "/dashboard", err)
		return
	}
	if isFormPost(c) {
		seeOther(c, url)
		return
	}
	res.OK(c, gin.H{"url": url})
}

func (h *BillingHandler) rejectUnauthenticated(c *gin.Context) {
	if isFormPost(c) {
		seeOther(c, "/login")
		return
	}
	res.Error(c, http.StatusUnauthorized, "Not authenticated")
}

func (h *BillingHandler) writeBillingError(c *gin.Context, backTo string, err error) {
	status, message := billingErrorStatus(err)
	if status == http.StatusInternalServerError {
		h.log.Errorw("Unexpected billing failure", "error", err)
	}
	if isFormPost(c) {
		if status == http.StatusUnauthorized {
			seeOther(c, "/login")
			return
		}
		backWithError(c, backTo, message)
		return
	}
	res.Error(c, status, message)
}

func billingErrorStatus(err error) (int, string) {
	var (
		authErr     *domain.AuthError
		checkoutErr *domain.CheckoutError
		subErr      *domain.SubscriptionError
		networkErr  *domain.NetworkError
	)
	switch {
	case err == nil:
		return http.StatusInternalServerError, "Something went wrong"
	case errors.As(err, &authErr):
		return http.StatusUnauthorized, authErr.Message
	case errors.As(err, &checkoutErr):
		return http.StatusBadGateway, checkoutErr.Message
	case errors.As(err, &subErr):
		status := subErr.StatusCode
		if status < 400 {
			status = http.StatusBadGateway
		}
		return status, subErr.Message
	case errors.As(err, &networkErr):
		return http.StatusBadGateway, "The billing service is temporarily unreachable"
	default:
		return http.StatusInternalServerError, "Something went wrong"
	}
}
