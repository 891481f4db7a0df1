package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carisaa/customer-portal/internal/api/rest/middleware"
	"github.com/carisaa/customer-portal/internal/checkout"
	"github.com/carisaa/customer-portal/internal/domain"
	"github.com/carisaa/customer-portal/internal/integration/backend"
	"github.com/carisaa/customer-portal/internal/plans"
	"github.com/carisaa/customer-portal/pkg/logger"
)

// PagesHandler renders the marketing and portal pages. Marketing pages are
// public; portal pages restore the session first and bounce unauthenticated
// visitors to login.
type PagesHandler struct {
	auth         *backend.AuthClient
	subs         *backend.SubscriptionClient
	planStore    *plans.Store
	orchestrator *checkout.Orchestrator
	verifier     *checkout.Verifier
	log          *logger.Logger
}

// NewPagesHandler creates a PagesHandler.
func NewPagesHandler(auth *backend.AuthClient, subs *backend.SubscriptionClient, planStore *plans.Store, orchestrator *checkout.Orchestrator, verifier *checkout.Verifier, log *logger.Logger) *PagesHandler {
	return &PagesHandler{
		auth:         auth,
		subs:         subs,
		planStore:    planStore,
		orchestrator: orchestrator,
		verifier:     verifier,
		log:          log,
	}
}

// pageData is the common template payload; Nav drives the shared navbar.
type pageData struct {
	Nav   string
	User  *domain.User
	Plans []domain.Plan
	Extra gin.H
}

func (h *PagesHandler) render(c *gin.Context, template, nav string, extra gin.H) {
	sessionID := middleware.SessionID(c)
	user := h.auth.Sessions().User(c.Request.Context(), sessionID)
	c.HTML(http.StatusOK, template, pageData{Nav: nav, User: user, Extra: extra})
}

// Home renders the landing page with the pricing section inline.
func (h *PagesHandler) Home(c *gin.Context) {
	catalog, err := h.planStore.Plans(c.Request.Context())
	if err != nil {
		h.log.Warnw("Rendering home without plan catalog", "error", err)
	}
	sessionID := middleware.SessionID(c)
	c.HTML(http.StatusOK, "home.html", pageData{
		Nav:   "home",
		User:  h.auth.Sessions().User(c.Request.Context(), sessionID),
		Plans: catalog,
	})
}

// Features renders the features page.
func (h *PagesHandler) Features(c *gin.Context) {
	h.render(c, "features.html", "features", nil)
}

// Pricing renders the standalone pricing page.
func (h *PagesHandler) Pricing(c *gin.Context) {
	catalog, err := h.planStore.Plans(c.Request.Context())
	if err != nil {
		h.log.Warnw("Rendering pricing without plan catalog", "error", err)
	}
	sessionID := middleware.SessionID(c)
	c.HTML(http.StatusOK, "pricing.html", pageData{
		Nav:   "pricing",
		User:  h.auth.Sessions().User(c.Request.Context(), sessionID),
		Plans: catalog,
		Extra: gin.H{"Error": c.Query("error")},
	})
}

// About renders the about page.
func (h *PagesHandler) About(c *gin.Context) {
	h.render(c, "about.html", "about", nil)
}

// Blog renders the blog index.
func (h *PagesHandler) Blog(c *gin.Context) {
	h.render(c, "blog.html", "blog", nil)
}

// Signup renders the registration form.
func (h *PagesHandler) Signup(c *gin.Context) {
	sel := h.planStore.SelectedPlan(c.Request.Context(), middleware.SessionID(c))
	h.render(c, "signup.html", "", gin.H{"SelectedPlan": sel, "Error": c.Query("error")})
}

// Login renders the login form.
func (h *PagesHandler) Login(c *gin.Context) {
	h.render(c, "login.html", "", gin.H{"Error": c.Query("error")})
}

// VerifyEmail renders the code-entry form.
func (h *PagesHandler) VerifyEmail(c *gin.Context) {
	h.render(c, "verify_email.html", "", gin.H{"Email": c.Query("email"), "Error": c.Query("error")})
}

// Checkout renders the order summary. The visitor must be authenticated and
// verified with a plan selected; otherwise they are sent to the step they
// are missing.
func (h *PagesHandler) Checkout(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := middleware.SessionID(c)

	user := h.auth.RestoreAuthState(ctx, sessionID)
	if user == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	if !user.EmailVerified {
		c.Redirect(http.StatusFound, verifyEmailPath(user.Email))
		return
	}

	sel := h.planStore.SelectedPlan(ctx, sessionID)
	if sel == nil {
		c.Redirect(http.StatusFound, "/pricing")
		return
	}

	plan := sel.Plan
	if plan == nil {
		plan = h.planStore.PlanByID(ctx, sel.PlanID)
	}
	c.HTML(http.StatusOK, "checkout.html", pageData{
		Nav:  "",
		User: user,
		Extra: gin.H{
			"Selection": sel,
			"Plan":      plan,
			"Error":     c.Query("error"),
		},
	})
}

// Dashboard renders the account page with the current subscription and the
// subscription history. Subscribe calls-to-action are hidden only for an
// ACTIVE subscription.
func (h *PagesHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := middleware.SessionID(c)

	user := h.auth.RestoreAuthState(ctx, sessionID)
	if user == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	token := h.auth.Sessions().AccessToken(ctx, sessionID)
	sub, err := h.subs.GetCurrentSubscription(ctx, token)
	if err != nil {
		h.log.Warnw("Rendering dashboard without subscription", "error", err)
	}
	history, err := h.subs.ListSubscriptions(ctx, token)
	if err != nil {
		h.log.Warnw("Rendering dashboard without subscription history", "error", err)
	}

	c.HTML(http.StatusOK, "dashboard.html", pageData{
		Nav:  "dashboard",
		User: user,
		Extra: gin.H{
			"Subscription": sub,
			"HasActive":    sub.IsActive(),
			"History":      history,
			"Error":        c.Query("error"),
		},
	})
}

// PaymentSuccess receives the provider's success callback: it confirms the
// session is still authenticated, polls until the subscription appears and
// renders the outcome. The backend materializes the record from the
// provider webhook, so "still processing" is a normal transient answer.
func (h *PagesHandler) PaymentSuccess(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := middleware.SessionID(c)

	if !h.auth.Sessions().IsAuthenticated(ctx, sessionID) {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	sub, err := h.verifier.VerifyPayment(ctx, sessionID)
	if err != nil {
		h.log.Warnw("Payment verification incomplete", "error", err, "sessionID", sessionID)
		c.HTML(http.StatusOK, "payment_success.html", pageData{
			User:  h.auth.Sessions().User(ctx, sessionID),
			Extra: gin.H{"Processing": true},
		})
		return
	}

	h.orchestrator.ClearPendingPayment(ctx, sessionID)
	c.HTML(http.StatusOK, "payment_success.html", pageData{
		User:  h.auth.Sessions().User(ctx, sessionID),
		Extra: gin.H{"Subscription": sub},
	})
}

// PaymentCancelled receives the provider's cancel callback and drops the
// pending-payment breadcrumb. The plan selection is kept so the user can
// retry without picking again.
func (h *PagesHandler) PaymentCancelled(c *gin.Context) {
	sessionID := middleware.SessionID(c)
	h.orchestrator.ClearPendingPayment(c.Request.Context(), sessionID)
	h.render(c, "payment_cancelled.html", "", nil)
}
