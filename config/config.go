// ABOUTME: Configuration loader for the portal BFF service
// ABOUTME: Loads settings from environment variables with defaults and validation

package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultAPIBaseURL is the upstream credential API origin used when
// API_BASE_URL is not set. It matches the platform's local development setup.
const DefaultAPIBaseURL = "http://localhost:5500"

type Config struct {
	// Server
	Port               string
	CacheTTL           int      // seconds, default for general cache
	DashboardTTL       int      // seconds, for aggregated dashboard data (default 30s)
	CORSAllowedOrigins []string // allowed CORS origins (empty = block all cross-origin)
	CookieSecure       bool     // Set Secure flag on session cookies (default: true)

	// Session
	SessionTTL int // seconds a session stays valid, default 86400 (24h)

	// Upstream credential API
	APIBaseURL           string
	APITimeout           int    // seconds per upstream request, default 15
	APISkipSSLValidation bool   // explicit opt-in for insecure connections
	APIProxy             string // optional ssh+socks5:// tunnel to reach the API

	// Rate Limiting
	RateLimitEnabled bool // Enable rate limiting (default: true)
	RateLimitAuth    int  // Requests per minute for auth endpoints (default: 5)
	RateLimitVerify  int  // Requests per minute for public verification (default: 20)
	RateLimitDefault int  // Requests per minute for all other endpoints (default: 100)
}

func Load() (*Config, error) {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		CacheTTL:           getEnvInt("CACHE_TTL", 300),
		DashboardTTL:       getEnvInt("DASHBOARD_CACHE_TTL", 30),
		CORSAllowedOrigins: getEnvStringList("CORS_ALLOWED_ORIGINS"),
		CookieSecure:       getEnvBool("COOKIE_SECURE", true),

		SessionTTL: getEnvInt("SESSION_TTL", 86400),

		APIBaseURL:           ensureScheme(getEnv("API_BASE_URL", DefaultAPIBaseURL)),
		APITimeout:           getEnvInt("API_TIMEOUT", 15),
		APISkipSSLValidation: getEnvBool("API_SKIP_SSL_VALIDATION", false),
		APIProxy:             os.Getenv("ALL_PROXY"),

		RateLimitEnabled: getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitAuth:    getEnvInt("RATE_LIMIT_AUTH", 5),
		RateLimitVerify:  getEnvInt("RATE_LIMIT_VERIFY", 20),
		RateLimitDefault: getEnvInt("RATE_LIMIT_DEFAULT", 100),
	}

	if _, err := url.ParseRequestURI(cfg.APIBaseURL); err != nil {
		return nil, fmt.Errorf("API_BASE_URL is not a valid URL: %w", err)
	}

	if cfg.APITimeout < 1 || cfg.APITimeout > 300 {
		return nil, fmt.Errorf("API_TIMEOUT must be between 1 and 300 seconds, got %d", cfg.APITimeout)
	}

	if cfg.SessionTTL < 60 {
		return nil, fmt.Errorf("SESSION_TTL must be at least 60 seconds, got %d", cfg.SessionTTL)
	}

	// Validate rate limit values
	for _, rl := range []struct {
		name  string
		value int
	}{
		{"RATE_LIMIT_AUTH", cfg.RateLimitAuth},
		{"RATE_LIMIT_VERIFY", cfg.RateLimitVerify},
		{"RATE_LIMIT_DEFAULT", cfg.RateLimitDefault},
	} {
		if rl.value < 1 || rl.value > 10000 {
			return nil, fmt.Errorf("%s must be between 1 and 10000, got %d", rl.name, rl.value)
		}
	}

	return cfg, nil
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

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvStringList(key string) []string {
	value := os.Getenv(key)
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

// ensureScheme adds http:// prefix if the URL has no scheme. Local deployments
// commonly set API_BASE_URL without one.
func ensureScheme(u string) string {
	if u == "" {
		return u
	}
	if !strings.Contains(u, "://") {
		return "http://" + u
	}
	return u
}
