// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// RedisConfig provides settings for the shared Redis instance.
type RedisConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
}

// CatalogCacheConfig provides settings for the catalog read-through cache.
type CatalogCacheConfig interface {
	RedisConfig
	GetCatalogCacheTTL() time.Duration
	IsCatalogCacheEnabled() bool
}

// SchedulerConfig provides settings for the asynq client and worker.
type SchedulerConfig interface {
	RedisConfig
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// PricingAPIConfig provides settings for the booking pricing backend.
type PricingAPIConfig interface {
	GetPricingAPIURL() string
	GetPricingAPIKey() string
	GetPricingAPITimeout() time.Duration
}

// BookingConfig provides settings for booking form sessions.
type BookingConfig interface {
	GetBookingSessionTTL() time.Duration
	GetBookingWizardFlowsPath() string
	GetPhoneDefaultRegion() string
}

// SMTPConfig provides settings for confirmation email delivery.
type SMTPConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetSMTPFromName() string
	GetSMTPFromAddress() string
	IsSMTPEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env               string
	HTTPAddr          string
	DatabaseURL       string
	JWTAccessSecret   string
	CORSAllowAll      bool
	CORSOrigins       []string
	CORSAllowCreds    bool
	RedisURL          string
	RedisTLSInsecure  bool
	AsynqQueueName    string
	AsynqConcurrency  int
	CatalogCacheTTL   time.Duration
	PricingAPIURL     string
	PricingAPIKey     string
	PricingAPITimeout time.Duration
	BookingSessionTTL time.Duration
	WizardFlowsPath   string
	PhoneRegion       string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
	SMTPFromName      string
	SMTPFromAddress   string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// RedisConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }

// CatalogCacheConfig implementation
func (c *Config) GetCatalogCacheTTL() time.Duration { return c.CatalogCacheTTL }
func (c *Config) IsCatalogCacheEnabled() bool {
	return c.RedisURL != "" && c.CatalogCacheTTL > 0
}

// SchedulerConfig implementation
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// PricingAPIConfig implementation
func (c *Config) GetPricingAPIURL() string            { return c.PricingAPIURL }
func (c *Config) GetPricingAPIKey() string            { return c.PricingAPIKey }
func (c *Config) GetPricingAPITimeout() time.Duration { return c.PricingAPITimeout }

// BookingConfig implementation
func (c *Config) GetBookingSessionTTL() time.Duration { return c.BookingSessionTTL }
func (c *Config) GetBookingWizardFlowsPath() string   { return c.WizardFlowsPath }
func (c *Config) GetPhoneDefaultRegion() string       { return c.PhoneRegion }

// SMTPConfig implementation
func (c *Config) GetSMTPHost() string        { return c.SMTPHost }
func (c *Config) GetSMTPPort() int           { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string    { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string    { return c.SMTPPassword }
func (c *Config) GetSMTPFromName() string    { return c.SMTPFromName }
func (c *Config) GetSMTPFromAddress() string { return c.SMTPFromAddress }
func (c *Config) IsSMTPEnabled() bool        { return c.SMTPHost != "" && c.SMTPFromAddress != "" }

// Load reads configuration for the API server from environment variables.
func Load() (*Config, error) {
	cfg := load()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWorker reads configuration for the background worker, which only
// needs Redis and SMTP.
func LoadWorker() (*Config, error) {
	cfg := load()
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}
	if cfg.AsynqConcurrency < 1 {
		return nil, fmt.Errorf("ASYNQ_CONCURRENCY must be a positive integer")
	}
	return cfg, nil
}

func load() *Config {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:               getEnv("APP_ENV", "development"),
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		JWTAccessSecret:   getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:      corsAllowAll,
		CORSOrigins:       corsOrigins,
		CORSAllowCreds:    strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		RedisURL:          getEnv("REDIS_URL", ""),
		RedisTLSInsecure:  strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:    getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:  mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		CatalogCacheTTL:   mustDuration(getEnv("CATALOG_CACHE_TTL", "5m")),
		PricingAPIURL:     strings.TrimRight(getEnv("PRICING_API_URL", ""), "/"),
		PricingAPIKey:     getEnv("PRICING_API_KEY", ""),
		PricingAPITimeout: mustDuration(getEnv("PRICING_API_TIMEOUT", "10s")),
		BookingSessionTTL: mustDuration(getEnv("BOOKING_SESSION_TTL", "2h")),
		WizardFlowsPath:   getEnv("BOOKING_WIZARD_FLOWS", ""),
		PhoneRegion:       strings.ToUpper(getEnv("PHONE_DEFAULT_REGION", "NL")),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
		SMTPFromName:      getEnv("SMTP_FROM_NAME", "Fleet Console"),
		SMTPFromAddress:   getEnv("SMTP_FROM_ADDRESS", ""),
	}
	return cfg
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTAccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if c.PricingAPIURL == "" {
		return fmt.Errorf("PRICING_API_URL is required")
	}
	if c.PricingAPITimeout <= 0 {
		return fmt.Errorf("PRICING_API_TIMEOUT must be a positive duration")
	}
	if c.BookingSessionTTL <= 0 {
		return fmt.Errorf("BOOKING_SESSION_TTL must be a positive duration")
	}
	if c.CORSAllowAll && c.CORSAllowCreds {
		return fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
