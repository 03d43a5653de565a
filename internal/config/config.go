package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Rate limit backends.
const (
	RateLimitBackendMemory = "memory"
	RateLimitBackendRedis  = "redis"
)

// Config holds application configuration
type Config struct {
	Port        string
	Env         string
	LogLevel    string
	DatabaseURL string

	// Places directory
	PlacesWebServiceKey string
	MapsBrowserKey      string
	PlacesBaseURL       string
	PlacesTimeout       time.Duration

	// Sessions
	SessionSecret string
	SessionTTL    time.Duration

	// Rate limiting
	RateLimitBackend string
	RateLimitMaxKeys int
	RedisAddr        string
	RedisPassword    string
	RedisTLS         bool

	CORSAllowedOrigins []string
}

// Load reads configuration from the environment. A missing places key is not
// an error here; the gateway reports it on first use.
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		PlacesWebServiceKey: strings.TrimSpace(getEnv("GOOGLE_PLACES_WEB_SERVICE_KEY", "")),
		MapsBrowserKey:      strings.TrimSpace(getEnv("GOOGLE_MAPS_BROWSER_KEY", "")),
		PlacesBaseURL:       getEnv("PLACES_BASE_URL", "https://maps.googleapis.com/maps/api/place"),
		PlacesTimeout:       clampDuration(getEnvAsDuration("PLACES_TIMEOUT", 10*time.Second), 10*time.Second),

		SessionSecret: getEnv("SESSION_SECRET", ""),
		SessionTTL:    getEnvAsDuration("SESSION_TTL", 12*time.Hour),

		RateLimitBackend: parseBackend(getEnv("RATE_LIMIT_BACKEND", RateLimitBackendMemory)),
		RateLimitMaxKeys: getEnvAsInt("RATE_LIMIT_MAX_KEYS", 10000),
		RedisAddr:        getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisTLS:         getEnvAsBool("REDIS_TLS", false),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
	}
}

// UsesDatabase reports whether repositories should be Postgres-backed.
func (c *Config) UsesDatabase() bool {
	return strings.TrimSpace(c.DatabaseURL) != ""
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

// getEnvAsList splits a comma separated variable, dropping blanks.
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func clampDuration(d, max time.Duration) time.Duration {
	if d <= 0 || d > max {
		return max
	}
	return d
}

func parseBackend(raw string) string {
	if strings.EqualFold(strings.TrimSpace(raw), RateLimitBackendRedis) {
		return RateLimitBackendRedis
	}
	return RateLimitBackendMemory
}
