// Package config loads application configuration from environment variables.
package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DBPath string

	// Settlement currency for all prices and valuations (TRY, USD or EUR).
	BaseCurrency string

	// Price refresh
	RequestTimeout time.Duration
	RefreshCron    string
	RefreshEnabled bool
	GoldAPIKey     string

	// Report cache
	CacheTTL time.Duration

	// Optional API key guarding mutating endpoints. Empty disables the guard.
	APIKey string
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		DBPath:         getEnv("DB_PATH", "portfolyo.db"),
		BaseCurrency:   strings.ToUpper(getEnv("BASE_CURRENCY", "TRY")),
		RefreshCron:    getEnv("REFRESH_CRON", "*/30 * * * *"),
		RefreshEnabled: getEnv("REFRESH_ENABLED", "true") == "true",
		GoldAPIKey:     getEnv("GOLDAPI_KEY", ""),
		APIKey:         getEnv("API_KEY", ""),
	}

	config.RequestTimeout = parseDuration("REQUEST_TIMEOUT", 10*time.Second)
	config.CacheTTL = parseDuration("CACHE_TTL", time.Minute)

	switch config.BaseCurrency {
	case "TRY", "USD", "EUR":
	default:
		log.Printf("Warning: unsupported BASE_CURRENCY %q, falling back to TRY\n", config.BaseCurrency)
		config.BaseCurrency = "TRY"
	}

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// parseDuration reads a duration env var, falling back to a default on
// missing or malformed values.
func parseDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s value %q, falling back to %v\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
