// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Public base URL of the site (e.g., https://prepjet.io)
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// Billing provider (Paddle)
	PaddleAPIKey  string `env:"PADDLE_API_KEY,required"`
	PaddleAPIBase string `env:"PADDLE_API_BASE" envDefault:"https://sandbox-api.paddle.com"`
	// Client token and price ID are intentionally not required: their absence
	// is handled at runtime by the checkout bootstrap, not at startup.
	PaddleClientToken string `env:"PADDLE_CLIENT_TOKEN"`
	PaddleEnvironment string `env:"PADDLE_ENVIRONMENT" envDefault:"sandbox"`
	PaddlePriceID     string `env:"PADDLE_PRICE_ID"`

	// Identity provider
	SessionJWTSecret      string        `env:"SESSION_JWT_SECRET,required"`
	IdentityWebhookSecret string        `env:"IDENTITY_WEBHOOK_SECRET,required"`
	SessionCacheTTL       time.Duration `env:"SESSION_CACHE_TTL" envDefault:"5m"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Rate limiting
	RateLimitAPIEnabled     bool `env:"RATE_LIMIT_API_ENABLED" envDefault:"true"`
	RateLimitBillingEnabled bool `env:"RATE_LIMIT_BILLING_ENABLED" envDefault:"true"`
	RateLimitBillingRPS     int  `env:"RATE_LIMIT_BILLING_RPS" envDefault:"10"`
	RateLimitBillingBurst   int  `env:"RATE_LIMIT_BILLING_BURST" envDefault:"20"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://prepjet.io,https://app.prepjet.io")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`

	// Checkout event pipeline
	EventsWorkerEnabled bool `env:"EVENTS_WORKER_ENABLED" envDefault:"true"`

	// Metrics exposition. When disabled, /metrics serves a plain-text
	// snapshot of in-memory counters instead of the Prometheus registry.
	MetricsPrometheusEnabled bool `env:"METRICS_PROMETHEUS_ENABLED" envDefault:"true"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
