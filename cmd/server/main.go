package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/carisaa/customer-portal/internal/api/rest"
	"github.com/carisaa/customer-portal/internal/api/rest/handlers"
	"github.com/carisaa/customer-portal/internal/checkout"
	"github.com/carisaa/customer-portal/internal/config"
	"github.com/carisaa/customer-portal/internal/integration/backend"
	"github.com/carisaa/customer-portal/internal/metrics"
	"github.com/carisaa/customer-portal/internal/plans"
	"github.com/carisaa/customer-portal/internal/session"
	"github.com/carisaa/customer-portal/internal/storage"
	"github.com/carisaa/customer-portal/pkg/logger"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log := logger.New(cfg.App.Env)
	defer log.Sync()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Prometheus
	promRegistry := prometheus.NewRegistry()
	portalMetrics := metrics.NewPortalMetrics(promRegistry, log)

	// Durable client-side storage
	store, err := storage.NewRedisStorage(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
	if err != nil {
		log.Fatalw("Failed to connect to storage", "error", err)
	}
	defer store.Close()

	// Remote backend API clients
	apiClient := backend.NewClient(backend.Config{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.BackendTimeout(),
	}, log)
	sessions := session.NewStore(store, log)
	authClient := backend.NewAuthClient(apiClient, sessions, store, portalMetrics, cfg.ResendCooldown(), log)
	plansClient := backend.NewPlansClient(apiClient, log)
	subsClient := backend.NewSubscriptionClient(apiClient, log)

	// Stores and orchestration
	planStore := plans.NewStore(store, plansClient, log)
	orchestrator := checkout.NewOrchestrator(subsClient, sessions, store, portalMetrics, cfg.App.PublicURL, cfg.PendingTTL(), log)
	verifier := checkout.NewVerifier(authClient, subsClient, portalMetrics, cfg.PollInterval(), cfg.Checkout.PollMaxTries, log)

	// HTTP surface
	router := rest.SetupRouter(rest.Handlers{
		Pages:   handlers.NewPagesHandler(authClient, subsClient, planStore, orchestrator, verifier, log),
		Auth:    handlers.NewAuthHandler(authClient, plansClient, planStore, log),
		Billing: handlers.NewBillingHandler(orchestrator, subsClient, sessions, planStore, portalMetrics, log),
	}, promRegistry, "web/templates/*.html", strings.HasPrefix(cfg.App.PublicURL, "https://"), log)

	server := rest.NewServer(router, cfg, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalw("Server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownTimeout := time.Duration(cfg.App.ShutdownTimeout) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalw("Server forced to shutdown", "error", err)
	}
	log.Infow("Server stopped gracefully")
}
