package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port        string
	Environment string

	// Database
	DatabaseDriver string
	DatabaseURL    string

	// JWT
	JWTSecret          string
	JWTExpirationHours int

	// Seeded administrator
	AdminUsername string
	AdminPassword string

	// Storage
	StoragePath string

	// Background Workers
	WorkerCount int

	// CORS
	AllowedOrigins []string

	// Email (Resend)
	ResendAPIKey string
	FromEmail    string
	AlertEmail   string

	// Sentry
	SentryDSN string

	// Business identity printed on statements and reports
	BusinessName    string
	BusinessAddress string
	CurrencyPrefix  string

	// Inventory
	StockAlertThreshold   int
	LowStockCheckInterval int // hours
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:                  getEnv("PORT", "8080"),
		Environment:           getEnv("ENVIRONMENT", "development"),
		DatabaseDriver:        strings.ToLower(getEnv("DATABASE_DRIVER", DriverPostgres)),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		JWTSecret:             getEnv("JWT_SECRET", ""),
		JWTExpirationHours:    getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		AdminUsername:         getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:         getEnv("ADMIN_PASSWORD", ""),
		StoragePath:           getEnv("STORAGE_PATH", "./storage"),
		WorkerCount:           getEnvAsInt("WORKER_COUNT", 5),
		AllowedOrigins:        getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
		ResendAPIKey:          getEnv("RESEND_API_KEY", ""),
		FromEmail:             getEnv("FROM_EMAIL", ""),
		AlertEmail:            getEnv("ALERT_EMAIL", ""),
		SentryDSN:             getEnv("SENTRY_DSN", ""),
		BusinessName:          getEnv("BUSINESS_NAME", "Alpha CJ Solar"),
		BusinessAddress:       getEnv("BUSINESS_ADDRESS", ""),
		CurrencyPrefix:        getEnv("CURRENCY_PREFIX", "PHP"),
		StockAlertThreshold:   getEnvAsInt("STOCK_ALERT_THRESHOLD", 1),
		LowStockCheckInterval: getEnvAsInt("LOW_STOCK_CHECK_HOURS", 6),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Set default JWT secret for development
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-in-production"
	}

	return cfg, nil
}

// Validate checks required settings and driver-specific defaults
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
	case DriverSQLite:
		if c.DatabaseURL == "" {
			c.DatabaseURL = "solarstock.db"
		}
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q (use %s or %s)", c.DatabaseDriver, DriverPostgres, DriverSQLite)
	}

	if c.JWTSecret == "" && c.Environment == "production" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}

	if c.StockAlertThreshold < 0 {
		return fmt.Errorf("STOCK_ALERT_THRESHOLD must not be negative")
	}

	return nil
}

// EmailEnabled reports whether outgoing mail can be sent
func (c *Config) EmailEnabled() bool {
	return c.ResendAPIKey != "" && c.FromEmail != ""
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as integer
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsSlice reads an environment variable as comma-separated slice
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
