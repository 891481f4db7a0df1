package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carisaa/customer-portal/internal/api/rest/middleware"
	"github.com/carisaa/customer-portal/internal/domain"
	"github.com/carisaa/customer-portal/internal/integration/backend"
	"github.com/carisaa/customer-portal/internal/plans"
	"github.com/carisaa/customer-portal/pkg/logger"
	"github.com/carisaa/customer-portal/pkg/res"
)

// AuthHandler exposes the portal's authentication actions. It drives the
// auth client and decides where the funnel sends the browser next; tokens
// themselves never leave the server. Each action accepts both its own HTML
// form and a JSON body: forms are answered with redirects, JSON callers
// with a redirect hint in the body.
type AuthHandler struct {
	auth      *backend.AuthClient
	plansAPI  *backend.PlansClient
	planStore *plans.Store
	log       *logger.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(auth *backend.AuthClient, plansAPI *backend.PlansClient, planStore *plans.Store, log *logger.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, plansAPI: plansAPI, planStore: planStore, log: log}
}

type registerRequest struct {
	FullName    string `form:"fullName" json:"fullName" binding:"required"`
	CompanyName string `form:"companyName" json:"companyName"`
	Email       string `form:"email" json:"email" binding:"required,email"`
	Password    string `form:"password" json:"password" binding:"required,min=8"`
}

// Register creates the account. A plan selection made before signup rides
// along as the plan intent.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		rejectInvalid(c, "/signup", "Invalid registration data")
		return
	}

	sessionID := middleware.SessionID(c)
	data := domain.RegisterData{
		FullName:    req.FullName,
		CompanyName: req.CompanyName,
		Email:       req.Email,
		Password:    req.Password,
	}
	if sel := h.planStore.SelectedPlan(c.Request.Context(), sessionID); sel != nil {
		data.PlanID = sel.PlanID
		data.BillingCycle = sel.BillingCycle
	}

	ack, err := h.auth.Register(c.Request.Context(), data)
	if err != nil {
		h.writeAuthError(c, "/signup", err)
		return
	}

	redirect := verifyEmailPath(ack.Email)
	if isFormPost(c) {
		seeOther(c, redirect)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":  ack.Message,
		"email":    ack.Email,
		"redirect": redirect,
	})
}

type loginRequest struct {
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required"`
}

// Login authenticates and reports where the funnel continues: checkout when
// a plan is already selected, verification when the email is unverified,
// the dashboard otherwise.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		rejectInvalid(c, "/login", "Invalid credentials payload")
		return
	}

	ctx := c.Request.Context()
	sessionID := middleware.SessionID(c)
	auth, err := h.auth.Login(ctx, sessionID, req.Email, req.Password)
	if err != nil {
		h.writeAuthError(c, "/login", err)
		return
	}

	redirect := "/dashboard"
	if auth.User != nil && !auth.User.EmailVerified {
		redirect = verifyEmailPath(auth.User.Email)
	} else if sel := h.planStore.SelectedPlan(ctx, sessionID); sel != nil {
		// Record the plan intent on the account now that we have a token.
		if err := h.plansAPI.UpdateSelectedPlan(ctx, auth.AccessToken, sel.PlanID); err != nil {
			h.log.Warnw("Failed to record selected plan on account", "error", err)
		}
		redirect = "/checkout"
	}

	if isFormPost(c) {
		seeOther(c, redirect)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": auth.User, "redirect": redirect})
}

type verifyEmailRequest struct {
	Email string `form:"email" json:"email" binding:"required,email"`
	Code  string `form:"code" json:"code" binding:"required,len=6"`
}

// VerifyEmail submits the 6-digit code and continues the funnel.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req verifyEmailRequest
	if err := c.ShouldBind(&req); err != nil {
		rejectInvalid(c, verifyEmailPath(c.PostForm("email")), "Invalid verification payload")
		return
	}

	ctx := c.Request.Context()
	sessionID := middleware.SessionID(c)
	auth, err := h.auth.VerifyEmail(ctx, sessionID, req.Email, req.Code)
	if err != nil {
		h.writeAuthError(c, verifyEmailPath(req.Email), err)
		return
	}

	redirect := "/dashboard"
	if h.planStore.SelectedPlan(ctx, sessionID) != nil {
		redirect = "/checkout"
	}
	if isFormPost(c) {
		seeOther(c, redirect)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": auth.User, "redirect": redirect})
}

type resendRequest struct {
	Email string `form:"email" json:"email" binding:"required,email"`
}

// ResendCode requests verification-code reissuance, throttled to one
// request per minute per email.
func (h *AuthHandler) ResendCode(c *gin.Context) {
	var req resendRequest
	if err := c.ShouldBind(&req); err != nil {
		rejectInvalid(c, verifyEmailPath(c.PostForm("email")), "Invalid resend payload")
		return
	}

	if err := h.auth.ResendVerificationCode(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, domain.ErrResendCooldown) {
			if isFormPost(c) {
				backWithError(c, verifyEmailPath(req.Email), "Please wait before requesting another code")
				return
			}
			res.Error(c, http.StatusTooManyRequests, "Please wait before requesting another code")
			return
		}
		h.writeAuthError(c, verifyEmailPath(req.Email), err)
		return
	}
	if isFormPost(c) {
		seeOther(c, verifyEmailPath(req.Email))
		return
	}
	res.OK(c, gin.H{"message": "Verification code sent"})
}

// Logout ends the session. It always succeeds locally, even when the
// server-side invalidation call fails.
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID := middleware.SessionID(c)
	if err := h.auth.Logout(c.Request.Context(), sessionID); err != nil {
		h.log.Warnw("Local session cleanup failed", "error", err, "sessionID", sessionID)
	}
	if isFormPost(c) {
		seeOther(c, "/")
		return
	}
	res.OK(c, gin.H{"message": "Logged out", "redirect": "/"})
}

// Me returns the current profile, refreshing the token once when needed.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.GetMe(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		h.writeAuthError(c, "/login", err)
		return
	}
	res.OK(c, user)
}

// writeAuthError maps the error taxonomy onto HTTP statuses for JSON
// callers and sends form submissions back to their page with the message
// inline; nothing here is fatal to the page.
func (h *AuthHandler) writeAuthError(c *gin.Context, backTo string, err error) {
	status, message := authErrorStatus(err)
	if status == http.StatusInternalServerError {
		h.log.Errorw("Unexpected auth failure", "error", err)
	}
	if isFormPost(c) {
		backWithError(c, backTo, message)
		return
	}
	res.Error(c, status, message)
}

func authErrorStatus(err error) (int, string) {
	var (
		authErr     *domain.AuthError
		validateErr *domain.ValidationError
		conflictErr *domain.ConflictError
		networkErr  *domain.NetworkError
	)
	switch {
	case errors.As(err, &authErr):
		return http.StatusUnauthorized, authErr.Message
	case errors.As(err, &validateErr):
		return http.StatusUnprocessableEntity, validateErr.Message
	case errors.As(err, &conflictErr):
		return http.StatusConflict, conflictErr.Message
	case errors.As(err, &networkErr):
		return http.StatusBadGateway, "The service is temporarily unreachable"
	default:
		return http.StatusInternalServerError, "Something went wrong"
	}
}
