package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// DevMasterKey is the development placeholder for the credential master
// secret. Production deployments must set APP_MASTER_KEY; startup refuses a
// production posture without it.
const DevMasterKey = "landing-dev-master-key-not-for-production"

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	MasterKey          string
	CORSAllowedOrigins []string
	GatewayTimeout     time.Duration
	PageCacheTTL       time.Duration
	CheckoutRateMax    int
	CheckoutRateWindow time.Duration
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		MasterKey:          strings.TrimSpace(k.String("APP_MASTER_KEY")),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		GatewayTimeout:     parseDuration(k.String("GATEWAY_TIMEOUT"), "30s"),
		PageCacheTTL:       parseDuration(k.String("PAGE_CACHE_TTL"), "5m"),
		CheckoutRateMax:    parseInt(k.String("CHECKOUT_RATE_MAX"), 30),
		CheckoutRateWindow: parseDuration(k.String("CHECKOUT_RATE_WINDOW"), "1m"),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.MasterKey == "" {
		if cfg.IsProduction() {
			return nil, errors.New("APP_MASTER_KEY is required in production")
		}
		cfg.MasterKey = DevMasterKey
	}

	return cfg, nil
}

// IsProduction reports whether the process runs in a production posture.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.AppEnv), "production")
}

// UsingDevMasterKey reports whether the development placeholder secret is in
// use, so startup can log a loud warning.
func (c *Config) UsingDevMasterKey() bool {
	return c.MasterKey == DevMasterKey
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	var n int
	if _, err := fmt.Sscanf(trimmed, "%d", &n); err != nil || n <= 0 {
		return fallback
	}
	return n
}
