// Package main is the entrypoint for the Prepjet API server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/prepjet/prepjet/internal/billing"
	"github.com/prepjet/prepjet/internal/cache"
	"github.com/prepjet/prepjet/internal/config"
	"github.com/prepjet/prepjet/internal/database"
	"github.com/prepjet/prepjet/internal/events"
	"github.com/prepjet/prepjet/internal/handler"
	"github.com/prepjet/prepjet/internal/identity"
	"github.com/prepjet/prepjet/internal/metrics"
	"github.com/prepjet/prepjet/internal/middleware"
	"github.com/prepjet/prepjet/internal/repository"
	"github.com/prepjet/prepjet/internal/server"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Run database migrations
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		logger.Error(
			"failed to run migrations",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("migrations applied")

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// Initialize metrics
	var (
		metricsRecorder metrics.Recorder
		metricsHandler  http.Handler
	)
	if cfg.MetricsPrometheusEnabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metricsRecorder = metrics.NewPrometheus(registry)
		metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	} else {
		inMemory := metrics.NewInMemory()
		metricsRecorder = inMemory
		metricsHandler = http.HandlerFunc(handler.NewMetricsHandler(inMemory).Metrics)
	}

	// Initialize billing
	apiClient := billing.NewAPIClient(cfg.PaddleAPIBase, cfg.PaddleAPIKey, logger)
	gateway := billing.NewAPIGateway(apiClient, logger)
	source := billing.NewRemoteSource(apiClient, gateway, logger)
	bootstrap := billing.NewBootstrap(source, billing.Config{
		ClientToken: cfg.PaddleClientToken,
		Environment: cfg.PaddleEnvironment,
		PriceID:     cfg.PaddlePriceID,
	}, logger)
	bootstrap.Mount()
	source.Start(ctx)

	// Initialize checkout event pipeline
	publisher := events.NewPublisher(cacheClient.Client(), logger, metricsRecorder)

	workerCtx, workerCancel := context.WithCancel(ctx)
	defer workerCancel()

	var worker *events.Worker
	if cfg.EventsWorkerEnabled {
		checkoutRepo := repository.NewCheckoutEventRepository(repo)
		worker = events.NewWorker(cacheClient.Client(), checkoutRepo, logger, events.NewConsumerID(), metricsRecorder)
		go func() {
			if err := worker.Run(workerCtx); err != nil && workerCtx.Err() == nil {
				logger.Error("checkout event worker stopped", "error", err)
			}
		}()
	}

	// Initialize identity
	verifier := identity.NewVerifier(cfg.SessionJWTSecret)

	// Initialize handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	contentHandler := handler.NewContentHandler(cfg.PaddlePriceID)
	billingHandler := handler.NewBillingHandler(bootstrap, apiClient, publisher, metricsRecorder, logger)
	dashboardHandler := handler.NewDashboardHandler(repo, cacheClient, verifier, logger)
	webhookHandler := handler.NewWebhookHandler(repo, cfg.IdentityWebhookSecret, metricsRecorder, logger)
	adminHandler := handler.NewAdminHandler(repo, repo, repository.NewCheckoutEventRepository(repo), logger)
	apiKeyHandler := handler.NewAPIKeyHandler(logger, repo)

	// Setup router
	deps := routerDeps{
		base:      h,
		health:    healthHandler,
		content:   contentHandler,
		billing:   billingHandler,
		dashboard: dashboardHandler,
		webhook:   webhookHandler,
		admin:     adminHandler,
		apiKeys:   apiKeyHandler,
		verifier:  verifier,
		metrics:   metricsHandler,
		recorder:  metricsRecorder,
	}
	r := setupRouter(deps, repo, cacheClient, cfg, logger)

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	if worker != nil {
		srv.OnShutdown("checkout_event_worker", func(ctx context.Context) error {
			workerCancel()
			return worker.Shutdown(ctx)
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.BaseURL,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routerDeps struct {
	base      *handler.Handler
	health    *handler.HealthHandler
	content   *handler.ContentHandler
	billing   *handler.BillingHandler
	dashboard *handler.DashboardHandler
	webhook   *handler.WebhookHandler
	admin     *handler.AdminHandler
	apiKeys   *handler.APIKeyHandler
	verifier  *identity.Verifier
	metrics   http.Handler
	recorder  metrics.Recorder
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	deps routerDeps,
	repo *repository.Repository,
	cacheClient *cache.Cache,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.DefaultSecurityConfig()))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	// Health endpoints (no auth required)
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)

	// Metrics exposition
	r.Method("GET", "/metrics", deps.metrics)

	// Session middleware configuration (optional session on public routes)
	sessionCfg := middleware.SessionConfig{
		Logger:   logger,
		Verifier: deps.verifier,
		Cache:    cacheClient,
		Metrics:  deps.recorder,
		CacheTTL: cfg.SessionCacheTTL,
	}

	// Rate limit middleware configuration
	rateLimitCfg := middleware.RateLimitConfig{
		Logger:         logger,
		Cache:          cacheClient,
		APIEnabled:     cfg.RateLimitAPIEnabled,
		BillingEnabled: cfg.RateLimitBillingEnabled,
		BillingRPS:     cfg.RateLimitBillingRPS,
		BillingBurst:   cfg.RateLimitBillingBurst,
	}

	// Public marketing content
	r.Get("/", deps.content.Landing)
	r.Get("/api/v1/content/pricing", deps.content.Pricing)

	// Billing endpoints: optional session, IP rate limited
	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(sessionCfg))
		r.Use(middleware.RateLimitIP(rateLimitCfg))
		r.Get("/api/v1/billing/client-token", deps.billing.ClientToken)
		r.Post("/api/v1/billing/checkout", deps.billing.Checkout)
	})

	// Session-facing pages
	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(sessionCfg))
		r.Get("/dashboard", deps.dashboard.Dashboard)
		r.Post("/logout", deps.dashboard.Logout)
		r.With(middleware.RequireSession()).Get("/api/v1/me", deps.dashboard.Me)
	})

	// Identity provider sync webhook (HMAC authenticated)
	r.Post("/api/v1/webhooks/identity", deps.webhook.IdentitySync)

	// Auth middleware configuration (service API keys)
	authCfg := middleware.AuthConfig{
		Logger:     logger,
		Repository: repo,
		Cache:      cacheClient,
	}

	// Admin operations (require API key authentication, admin scope)
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(middleware.Auth(authCfg))
		r.Use(middleware.RateLimitAPI(rateLimitCfg))
		r.Use(middleware.RequireAdmin())
		r.Get("/users", deps.admin.ListUsers)
		r.Get("/api-keys", deps.admin.ListAPIKeysByOwner)
		r.Get("/checkout-stats", deps.admin.CheckoutStats)
		r.Get("/stats", deps.admin.Stats)
	})

	// API key management (requires admin scope for mutations)
	r.Route("/api/v1/api-keys", func(r chi.Router) {
		r.Use(middleware.Auth(authCfg))
		r.Use(middleware.RateLimitAPI(rateLimitCfg))
		r.With(middleware.RequireRead()).Get("/", deps.apiKeys.ListAPIKeys)
		r.With(middleware.RequireAdmin()).Post("/", deps.apiKeys.CreateAPIKey)
		r.With(middleware.RequireAdmin()).Delete("/{key_id}", deps.apiKeys.RevokeAPIKey)
		r.With(middleware.RequireAdmin()).Post("/{key_id}/rotate", deps.apiKeys.RotateAPIKey)
	})

	// 404 and 405 handlers
	r.NotFound(deps.base.NotFound)
	r.MethodNotAllowed(deps.base.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
