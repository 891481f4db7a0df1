package rest

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/carisaa/customer-portal/internal/api/rest/handlers"
	"github.com/carisaa/customer-portal/internal/api/rest/middleware"
	"github.com/carisaa/customer-portal/pkg/logger"
)

// Handlers bundles the constructed handlers the router wires up.
type Handlers struct {
	Pages   *handlers.PagesHandler
	Auth    *handlers.AuthHandler
	Billing *handlers.BillingHandler
}

// SetupRouter configures the gin router with middleware and all portal
// routes. secureCookies must be true when the portal is served over HTTPS.
func SetupRouter(h Handlers, registry *prometheus.Registry, templateGlob string, secureCookies bool, log *logger.Logger) *gin.Engine {
	r := gin.New()

	r.Use(middleware.LoggerMiddleware(log))
	r.Use(gin.Recovery())
	r.Use(cors.Default())
	r.Use(middleware.SessionMiddleware(secureCookies))

	if templateGlob != "" {
		r.LoadHTMLGlob(templateGlob)
	}

	r.GET("/health", handlers.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Marketing pages
	r.GET("/", h.Pages.Home)
	r.GET("/features", h.Pages.Features)
	r.GET("/pricing", h.Pages.Pricing)
	r.GET("/about", h.Pages.About)
	r.GET("/blog", h.Pages.Blog)

	// Portal pages
	r.GET("/signup", h.Pages.Signup)
	r.GET("/login", h.Pages.Login)
	r.GET("/verify-email", h.Pages.VerifyEmail)
	r.GET("/checkout", h.Pages.Checkout)
	r.GET("/dashboard", h.Pages.Dashboard)
	r.GET("/payment-success", h.Pages.PaymentSuccess)
	r.GET("/payment-cancelled", h.Pages.PaymentCancelled)

	// Authentication actions
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/verify-email", h.Auth.VerifyEmail)
		auth.POST("/resend-verification", h.Auth.ResendCode)
		auth.POST("/logout", h.Auth.Logout)
		auth.GET("/me", h.Auth.Me)
	}

	// Billing actions
	billing := r.Group("/billing")
	{
		billing.POST("/select-plan", h.Billing.SelectPlan)
		billing.POST("/checkout", h.Billing.CreateCheckout)
		billing.GET("/subscription", h.Billing.CurrentSubscription)
		billing.POST("/cancel/:id", h.Billing.CancelSubscription)
		billing.POST("/portal", h.Billing.CustomerPortal)
	}

	return r
}
