package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/territory-leads/internal/api/router"
	"github.com/wolfman30/territory-leads/internal/app/bootstrap"
	"github.com/wolfman30/territory-leads/internal/auth"
	"github.com/wolfman30/territory-leads/internal/compliance"
	appconfig "github.com/wolfman30/territory-leads/internal/config"
	"github.com/wolfman30/territory-leads/internal/leads"
	"github.com/wolfman30/territory-leads/internal/observability/metrics"
	"github.com/wolfman30/territory-leads/internal/places"
	"github.com/wolfman30/territory-leads/internal/ratelimit"
	"github.com/wolfman30/territory-leads/internal/users"
	"github.com/wolfman30/territory-leads/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting territory-leads API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"rate_limit_backend", cfg.RateLimitBackend,
	)
	if cfg.PlacesWebServiceKey == "" {
		logger.Warn("GOOGLE_PLACES_WEB_SERVICE_KEY not set; place lookups will fail")
	}
	if cfg.SessionSecret == "" {
		logger.Warn("SESSION_SECRET not set; authenticated routes will answer 401")
	}

	ctx := context.Background()

	// Initialize repositories and services
	pool, err := bootstrap.ConnectPostgresPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		defer pool.Close()
	}
	stores := bootstrap.BuildStores(pool, logger)
	if err := seedInMemoryUsers(ctx, cfg, stores, logger); err != nil {
		logger.Error("failed to seed development users", "error", err)
		os.Exit(1)
	}

	auditDB, err := bootstrap.OpenAuditDB(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open audit database", "error", err)
		os.Exit(1)
	}
	if auditDB != nil {
		defer func() { _ = auditDB.Close() }()
	}

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}
	limiter := bootstrap.BuildRateLimiter(cfg, redisClient, logger)

	metricsHandler, discoveryMetrics := setupMetrics()

	// Setup router
	r := router.New(buildRouterConfig(cfg, stores, auditDB, limiter, metricsHandler, discoveryMetrics, logger))

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// seedInMemoryUsers loads the development logins when repositories are
// in-memory, since cmd/seed only targets Postgres.
func seedInMemoryUsers(ctx context.Context, cfg *appconfig.Config, stores bootstrap.Stores, logger *logging.Logger) error {
	if cfg.UsesDatabase() {
		return nil
	}
	seeded, err := bootstrap.SeedUsers(ctx, stores.Users, bootstrap.DefaultAccounts)
	if err != nil {
		return err
	}
	for _, u := range seeded {
		logger.Warn("seeded in-memory development user", "email", u.Email, "role", u.Role)
	}
	return nil
}

// setupMetrics builds a dedicated registry so tests can construct it more than once.
func setupMetrics() (http.Handler, *metrics.DiscoveryMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewDiscoveryMetrics(reg)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), m
}

func buildRouterConfig(
	cfg *appconfig.Config,
	stores bootstrap.Stores,
	auditDB *sql.DB,
	limiter *ratelimit.Limiter,
	metricsHandler http.Handler,
	m *metrics.DiscoveryMetrics,
	logger *logging.Logger,
) *router.Config {
	tokens := auth.NewTokenService(cfg.SessionSecret, cfg.SessionTTL)
	audit := compliance.NewAuditService(auditDB)

	var placesOpts []places.Option
	if cfg.PlacesBaseURL != "" {
		placesOpts = append(placesOpts, places.WithBaseURL(cfg.PlacesBaseURL))
	}
	if cfg.PlacesTimeout > 0 {
		placesOpts = append(placesOpts, places.WithTimeout(cfg.PlacesTimeout))
	}
	gateway := places.NewClient(cfg.PlacesWebServiceKey, logger, placesOpts...)

	return &router.Config{
		Logger:             logger,
		Sessions:           tokens,
		RateLimiter:        limiter,
		Metrics:            m,
		AuthHandler:        auth.NewHandler(auth.NewAuthenticator(stores.Users, tokens), logger),
		PlacesHandler:      places.NewHandler(gateway, audit, m, logger),
		LeadsHandler:       leads.NewHandler(stores.Leads, audit, m, logger),
		UsersHandler:       users.NewHandler(stores.Users, logger),
		ComplianceHandler:  compliance.NewHandler(audit, logger),
		MetricsHandler:     metricsHandler,
		MapsBrowserKey:     cfg.MapsBrowserKey,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
}
