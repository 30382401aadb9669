// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server    ServerConfig
	Limits    LimitsConfig
	Rate      RateLimitConfig
	Security  SecurityConfig
	Logging   LoggingConfig
	Reconcile ReconcileConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080). PORT is honoured for PaaS deployments.
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading the request, body included (default: 30s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`

	// WriteTimeout is the maximum duration for writing the response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// LimitsConfig bounds the work a single caller can ask of the server.
type LimitsConfig struct {
	// MaxBodyBytes caps a request body (default: 32MB)
	MaxBodyBytes int64 `env:"LIMIT_MAX_BODY_BYTES" default:"33554432"`

	// MaxRowsPerSide caps each dataset of a reconciliation (default: 200000)
	MaxRowsPerSide int `env:"LIMIT_MAX_ROWS" default:"200000"`

	// MaxConcurrentRuns is the number of reconciliations run in parallel (default: 4)
	MaxConcurrentRuns int `env:"LIMIT_MAX_CONCURRENT_RUNS" default:"4"`

	// MaxWaitTime is how long a request waits for a run slot (default: 10s)
	MaxWaitTime time.Duration `env:"LIMIT_MAX_WAIT_TIME" default:"10s"`

	// RunTTL is how long results stay available for review (default: 1h)
	RunTTL time.Duration `env:"RUN_TTL" default:"1h"`

	// JanitorInterval is how often expired runs are dropped (default: 1m)
	JanitorInterval time.Duration `env:"RUN_JANITOR_INTERVAL" default:"1m"`
}

// RateLimitConfig holds per-client rate limiting settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the sustained rate allowed per client IP (default: 120)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`

	// Burst is how many requests a client may make at once (default: 20)
	Burst int `env:"RATE_LIMIT_BURST" default:"20"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// RequireAPIKey rejects /api requests without a configured key (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// CORSOrigins is a comma-separated list of browser origins allowed to call /api.
	// Empty disables CORS.
	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// ReconcileConfig holds engine defaults.
type ReconcileConfig struct {
	// DefaultStrategy applies when a mapping omits duplicateHandling (default: FLAG)
	DefaultStrategy string `env:"RECONCILE_DEFAULT_STRATEGY" default:"FLAG"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
