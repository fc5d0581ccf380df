// Package config loads engine and service configuration from environment
// variables, with fallback to a local .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/marketsentry/marketsentry/internal/secrets"
)

// AuthMode represents the authentication mode for the Data API
type AuthMode string

const (
	AuthModeNone   AuthMode = "none"
	AuthModeBearer AuthMode = "bearer"
	AuthModeAPIKey AuthMode = "api_key"
)

// Config holds all application configuration
type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseDSN         string
	DatabaseMaxConns    int
	DatabaseMaxIdleTime time.Duration

	// Data API (trades + wallet activity; the authoritative wallet-age source)
	DataAPIBaseURL     string
	DataAPIAuthMode    AuthMode
	DataAPIBearerToken string
	DataAPIAPIKey      string

	// Gamma API (market metadata + resolutions)
	GammaAPIBaseURL string

	// Ingestion
	FetchMinUSD      float64 // minimum notional to fetch from the Data API
	PollIntervalSec  int
	IngestWorkers    int
	ResolutionPeriod time.Duration // how often the resolution tracker runs

	// Fresh-wallet detector
	FreshWalletMaxAgeHours float64
	FreshWalletMinUSD      float64

	// Hammer (order structuring) detector
	HammerLookback     time.Duration
	HammerMinTrades    int
	HammerMinVolumeUSD float64

	// Unusual-sizing detector
	UnusualSizingMultiplier float64

	// Position sizing
	DefaultBankrollUSD float64
	MaxPositionPct     float64

	// Engine caches
	StatsCacheTTL   time.Duration
	CacheMaxEntries int

	// Rate limits (requests per second)
	DataAPITradesRPS   float64
	DataAPIActivityRPS float64
	GammaAPIMarketsRPS float64

	// Alerts
	AlertCooldown     time.Duration
	AlertMode         string // log, discord, smtp (comma-separated for multi)
	DiscordWebhookURL string
	SMTPHost          string
	SMTPPort          int
	SMTPUser          string
	SMTPPassword      string
	SMTPFrom          string
	SMTPTo            []string

	// Metrics/Health
	HealthPort int
}

// Load reads configuration from environment variables.
// Priority order: environment variables > .env file > defaults.
func Load() (*Config, error) {
	// A missing .env file is not an error
	_ = godotenv.Load()

	cfg := &Config{
		Environment:         getEnv("ENVIRONMENT", "production"),
		DatabaseDSN:         getEnv("DATABASE_DSN", "marketsentry:marketsentry@tcp(mysql:3306)/marketsentry?parseTime=true"),
		DatabaseMaxConns:    getEnvInt("DATABASE_MAX_CONNS", 25),
		DatabaseMaxIdleTime: time.Duration(getEnvInt("DATABASE_MAX_IDLE_TIME_MINS", 5)) * time.Minute,

		DataAPIBaseURL:     getEnv("DATA_API_BASE_URL", "https://data-api.polymarket.com"),
		DataAPIAuthMode:    AuthMode(getEnv("DATA_API_AUTH_MODE", "none")),
		DataAPIBearerToken: secrets.GetOptionalSecret("DATA_API_BEARER_TOKEN", ""),
		DataAPIAPIKey:      secrets.GetOptionalSecret("DATA_API_API_KEY", ""),
		GammaAPIBaseURL:    getEnv("GAMMA_API_BASE_URL", "https://gamma-api.polymarket.com"),

		FetchMinUSD:      getEnvFloat("FETCH_MIN_USD", 500.0),
		PollIntervalSec:  getEnvInt("POLL_INTERVAL_SEC", 30),
		IngestWorkers:    getEnvInt("INGEST_WORKERS", 5),
		ResolutionPeriod: time.Duration(getEnvInt("RESOLUTION_PERIOD_MINS", 60)) * time.Minute,

		FreshWalletMaxAgeHours: getEnvFloat("FRESH_WALLET_HOURS", 72.0),
		FreshWalletMinUSD:      getEnvFloat("FRESH_WALLET_MIN_USD", 1000.0),

		HammerLookback:     time.Duration(getEnvInt("HAMMER_LOOKBACK_MINS", 60)) * time.Minute,
		HammerMinTrades:    getEnvInt("HAMMER_MIN_TRADES", 4),
		HammerMinVolumeUSD: getEnvFloat("HAMMER_MIN_VOLUME_USD", 2000.0),

		UnusualSizingMultiplier: getEnvFloat("UNUSUAL_SIZING_MULTIPLIER", 3.0),

		DefaultBankrollUSD: getEnvFloat("DEFAULT_BANKROLL_USD", 10000.0),
		MaxPositionPct:     getEnvFloat("MAX_POSITION_PCT", 0.10),

		StatsCacheTTL:   time.Duration(getEnvInt("STATS_CACHE_TTL_SEC", 300)) * time.Second,
		CacheMaxEntries: getEnvInt("CACHE_MAX_ENTRIES", 4096),

		DataAPITradesRPS:   getEnvFloat("DATA_API_TRADES_RPS", 2.0),
		DataAPIActivityRPS: getEnvFloat("DATA_API_ACTIVITY_RPS", 1.0),
		GammaAPIMarketsRPS: getEnvFloat("GAMMA_API_MARKETS_RPS", 5.0),

		AlertCooldown:     time.Duration(getEnvInt("ALERT_COOLDOWN_MINS", 60)) * time.Minute,
		AlertMode:         getEnv("ALERT_MODE", "log"),
		DiscordWebhookURL: secrets.GetOptionalSecret("DISCORD_WEBHOOK_URL", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getEnvInt("SMTP_PORT", 587),
		SMTPUser:          getEnv("SMTP_USER", ""),
		SMTPPassword:      secrets.GetOptionalSecret("SMTP_PASSWORD", ""),
		SMTPFrom:          getEnv("SMTP_FROM", "marketsentry@example.com"),

		HealthPort: getEnvInt("HEALTH_PORT", 8080),
	}

	if smtpTo := getEnv("SMTP_TO", ""); smtpTo != "" {
		for _, addr := range strings.Split(smtpTo, ",") {
			if trimmed := strings.TrimSpace(addr); trimmed != "" {
				cfg.SMTPTo = append(cfg.SMTPTo, trimmed)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks configuration for errors
func (c *Config) Validate() error {
	if c.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN is required")
	}

	switch c.DataAPIAuthMode {
	case AuthModeNone:
	case AuthModeBearer:
		if c.DataAPIBearerToken == "" {
			return fmt.Errorf("DATA_API_BEARER_TOKEN is required when AUTH_MODE is bearer")
		}
	case AuthModeAPIKey:
		if c.DataAPIAPIKey == "" {
			return fmt.Errorf("DATA_API_API_KEY is required when AUTH_MODE is api_key")
		}
	default:
		return fmt.Errorf("invalid DATA_API_AUTH_MODE: %s (must be none, bearer, or api_key)", c.DataAPIAuthMode)
	}

	if c.MaxPositionPct <= 0 || c.MaxPositionPct > 1 {
		return fmt.Errorf("MAX_POSITION_PCT must be in (0, 1], got %v", c.MaxPositionPct)
	}
	if c.DefaultBankrollUSD <= 0 {
		return fmt.Errorf("DEFAULT_BANKROLL_USD must be positive, got %v", c.DefaultBankrollUSD)
	}

	hasDiscord := false
	hasSMTP := false
	for _, mode := range strings.Split(c.AlertMode, ",") {
		switch strings.TrimSpace(mode) {
		case "log":
		case "discord":
			hasDiscord = true
		case "smtp":
			hasSMTP = true
		default:
			return fmt.Errorf("invalid ALERT_MODE value: %s (valid values: log, discord, smtp)", mode)
		}
	}
	if hasDiscord && c.DiscordWebhookURL == "" {
		return fmt.Errorf("DISCORD_WEBHOOK_URL is required when discord is in ALERT_MODE")
	}
	if hasSMTP {
		if c.SMTPHost == "" {
			return fmt.Errorf("SMTP_HOST is required when smtp is in ALERT_MODE")
		}
		if len(c.SMTPTo) == 0 {
			return fmt.Errorf("SMTP_TO is required when smtp is in ALERT_MODE")
		}
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
