package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds all client configuration, loaded from the environment with
// ADS_-prefixed variables. Every field has a usable default.
type Config struct {
	API     APIConfig     `env:",prefix=ADS_API_"`
	Cache   CacheConfig   `env:",prefix=ADS_CACHE_"`
	Session SessionConfig `env:",prefix=ADS_SESSION_"`
	App     AppConfig     `env:",prefix=ADS_APP_"`
}

// APIConfig configures the outbound gateway client. A single primary
// endpoint only; there is no automatic failover to a backup host.
type APIConfig struct {
	BaseURL    string        `env:"BASE_URL,default=https://api.instantllycards.com"`
	Timeout    time.Duration `env:"TIMEOUT,default=15s"`
	MaxRetries int           `env:"MAX_RETRIES,default=2"`
	RetryDelay time.Duration `env:"RETRY_DELAY,default=1s"`
	RateLimit  float64       `env:"RATE_LIMIT,default=10"`
	RateBurst  int           `env:"RATE_BURST,default=20"`
}

// CacheConfig configures the stale-while-revalidate store and the pending
// queue poller.
type CacheConfig struct {
	StaleTTL            time.Duration `env:"STALE_TTL,default=30s"`
	PendingPollInterval time.Duration `env:"PENDING_POLL_INTERVAL,default=30s"`
	RefreshTimeout      time.Duration `env:"REFRESH_TIMEOUT,default=30s"`
}

// SessionConfig configures the persisted bearer-token slot. An empty
// TokenPath resolves to a file under the user config directory.
type SessionConfig struct {
	TokenPath string `env:"TOKEN_PATH"`
}

// AppConfig holds environment-level settings.
type AppConfig struct {
	Environment string `env:"ENVIRONMENT,default=development"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
}

// Load reads .env if present and resolves the configuration from the
// environment.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	return &cfg, nil
}

// ResolveTokenPath returns the configured token slot path, falling back to
// <user config dir>/instantlly-ads-admin/token.
func (c *SessionConfig) ResolveTokenPath() (string, error) {
	if c.TokenPath != "" {
		return c.TokenPath, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user config dir: %w", err)
	}
	return filepath.Join(dir, "instantlly-ads-admin", "token"), nil
}

// IsProduction returns true if running in production environment.
func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

// NewLogger builds a zap logger matching the app environment and log level.
func NewLogger(app AppConfig) (*zap.Logger, error) {
	var zcfg zap.Config
	if app.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(app.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	log, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return log, nil
}
