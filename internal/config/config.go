package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	PublicBaseURL string

	// Upstream barbershop-management API
	UpstreamBaseURL string
	UpstreamTimeout time.Duration

	// Redis (wizard sessions + monthly availability cache)
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Customer session tokens
	CustomerJWTSecret string
	CustomerTokenTTL  time.Duration

	// Availability core
	MonthlyCacheTTL   time.Duration
	SearchHorizonDays int

	// Holiday calendar (dormant by default; the upstream already folds
	// holidays into unavailable days server-side)
	HolidaysEnabled bool

	SessionTTL time.Duration

	// OTPRatePerMinute throttles per-IP OTP requests; each one sends a
	// WhatsApp message upstream. Zero disables the limiter.
	OTPRatePerMinute int

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),

		UpstreamBaseURL: getEnv("UPSTREAM_BASE_URL", "https://api.barberflow.app"),
		UpstreamTimeout: getEnvAsDuration("UPSTREAM_TIMEOUT", 15*time.Second),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		CustomerJWTSecret: getEnv("CUSTOMER_JWT_SECRET", ""),
		CustomerTokenTTL:  getEnvAsDuration("CUSTOMER_TOKEN_TTL", 30*24*time.Hour),

		MonthlyCacheTTL:   getEnvAsDuration("MONTHLY_CACHE_TTL", 60*time.Second),
		SearchHorizonDays: getEnvAsInt("SEARCH_HORIZON_DAYS", 90),

		HolidaysEnabled: getEnvAsBool("HOLIDAYS_ENABLED", false),

		SessionTTL: getEnvAsDuration("SESSION_TTL", 2*time.Hour),

		OTPRatePerMinute: getEnvAsInt("OTP_RATE_PER_MINUTE", 5),

		CORSAllowedOrigins: splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
