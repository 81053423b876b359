package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultJWTSecret is the development secret; Validate rejects it in production
const DefaultJWTSecret = "your-secret-key-change-in-production"

const (
	minJWTExpiry  = time.Minute
	maxJWTExpiry  = 30 * 24 * time.Hour
	maxLoginDelay = 10 * time.Second
	minSecretLen  = 32
)

type Config struct {
	Environment string
	ListenAddr  string

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	JWTExpiry   time.Duration

	LoginDelay       time.Duration
	AdminPassword    string
	EmployeePassword string

	SeedPath      string
	EnableMetrics bool
	EnableSwagger bool
	CORSOrigin    string

	LogLevel  string
	LogFormat string

	// parse failures found by Load, reported by Validate
	errs []error
}

func Load() *Config {
	config := &Config{
		Environment:      getEnv("ENVIRONMENT", "development"),
		ListenAddr:       getEnv("LISTEN_ADDR", ":8080"),
		JWTSecret:        getEnv("JWT_SECRET", DefaultJWTSecret),
		JWTIssuer:        getEnv("JWT_ISS", "asset-angel-api"),
		JWTAudience:      getEnv("JWT_AUD", "asset-angel-dashboard"),
		JWTExpiry:        24 * time.Hour, // Default to 24 hours
		LoginDelay:       800 * time.Millisecond,
		AdminPassword:    getEnv("ADMIN_PASSWORD", "admin123"),
		EmployeePassword: getEnv("EMPLOYEE_PASSWORD", "employee123"),
		SeedPath:         os.Getenv("SEED_PATH"),
		CORSOrigin:       getEnv("CORS_ORIGIN", "http://localhost:5173"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
	}

	config.JWTExpiry = config.duration("JWT_EXPIRY", config.JWTExpiry)
	config.LoginDelay = config.duration("LOGIN_DELAY", config.LoginDelay)
	config.EnableMetrics = config.boolean("ENABLE_METRICS")
	config.EnableSwagger = config.boolean("ENABLE_SWAGGER")

	return config
}

// LoadAndValidate loads the configuration from the environment and validates it
func LoadAndValidate() (*Config, error) {
	cfg := Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether ENVIRONMENT is production
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Validate checks every setting and reports all problems at once
func (c *Config) Validate() error {
	errs := append([]error{}, c.errs...)

	switch {
	case c.JWTSecret == "":
		errs = append(errs, errors.New("JWT_SECRET is required"))
	case len(c.JWTSecret) < minSecretLen:
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d characters", minSecretLen))
	case c.IsProduction() && c.JWTSecret == DefaultJWTSecret:
		errs = append(errs, errors.New("JWT_SECRET must be changed from the default in production"))
	}
	if c.JWTIssuer == "" {
		errs = append(errs, errors.New("JWT_ISS is required"))
	}
	if c.JWTAudience == "" {
		errs = append(errs, errors.New("JWT_AUD is required"))
	}
	if c.JWTExpiry < minJWTExpiry || c.JWTExpiry > maxJWTExpiry {
		errs = append(errs, fmt.Errorf("JWT_EXPIRY must be between %v and %v, got %v", minJWTExpiry, maxJWTExpiry, c.JWTExpiry))
	}
	if c.LoginDelay < 0 || c.LoginDelay > maxLoginDelay {
		errs = append(errs, fmt.Errorf("LOGIN_DELAY must be between 0 and %v, got %v", maxLoginDelay, c.LoginDelay))
	}
	if c.AdminPassword == "" {
		errs = append(errs, errors.New("ADMIN_PASSWORD must not be empty"))
	}
	if c.EmployeePassword == "" {
		errs = append(errs, errors.New("EMPLOYEE_PASSWORD must not be empty"))
	}
	if c.ListenAddr == "" {
		errs = append(errs, errors.New("LISTEN_ADDR is required"))
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

func (c *Config) duration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		c.errs = append(c.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return d
}

func (c *Config) boolean(key string) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return false
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		c.errs = append(c.errs, fmt.Errorf("%s: %w", key, err))
		return false
	}
	return b
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
