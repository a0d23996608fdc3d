// Package config reads server settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mmynk/tandem/internal/invite"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	// devJWTSecret signs sessions when JWT_SECRET is unset in development.
	devJWTSecret = "tandem-dev-secret-do-not-use-in-production"

	minJWTSecretLen = 32
)

type Config struct {
	// Environment is "development" or "production".
	Environment string

	// HTTP Server
	Port       string
	AppBaseURL string

	// Database
	DBPath string

	// Auth
	JWTSecret    string
	TokenTTL     time.Duration
	MagicLinkTTL time.Duration

	// Groups
	InviteCodeLength int

	LogLevel string
}

// Load reads .env when present, then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Ignoring unreadable .env file", "error", err)
	}

	cfg := &Config{
		Environment: strings.ToLower(getEnv("APP_ENV", EnvDevelopment)),

		Port:       getEnv("PORT", "8080"),
		AppBaseURL: getEnv("APP_BASE_URL", "http://localhost:8080"),

		DBPath: getEnv("DB_PATH", "./data/tandem.db"),

		JWTSecret:    getEnv("JWT_SECRET", ""),
		TokenTTL:     getEnvDuration("TOKEN_TTL", 24*time.Hour),
		MagicLinkTTL: getEnvDuration("MAGIC_LINK_TTL", 15*time.Minute),

		InviteCodeLength: getEnvInt("INVITE_CODE_LENGTH", invite.DefaultLength),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if cfg.JWTSecret == "" && cfg.Environment == EnvDevelopment {
		cfg.JWTSecret = devJWTSecret
	}
	return cfg
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var errors []string

	if c.Environment != EnvDevelopment && c.Environment != EnvProduction {
		errors = append(errors, fmt.Sprintf("invalid APP_ENV '%s': must be %s or %s", c.Environment, EnvDevelopment, EnvProduction))
	}

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if u, err := url.Parse(c.AppBaseURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errors = append(errors, fmt.Sprintf("invalid APP_BASE_URL '%s': must be an absolute http(s) URL", c.AppBaseURL))
	}

	if c.DBPath == "" {
		errors = append(errors, "database path cannot be empty")
	}

	switch {
	case c.JWTSecret == "":
		errors = append(errors, "JWT_SECRET is required outside development")
	case c.Environment == EnvProduction && c.JWTSecret == devJWTSecret:
		errors = append(errors, "JWT_SECRET must not be the development secret in production")
	case c.Environment == EnvProduction && len(c.JWTSecret) < minJWTSecretLen:
		errors = append(errors, fmt.Sprintf("JWT_SECRET must be at least %d characters in production", minJWTSecretLen))
	}

	if c.TokenTTL <= 0 {
		errors = append(errors, fmt.Sprintf("invalid TOKEN_TTL %s: must be positive", c.TokenTTL))
	}
	if c.MagicLinkTTL <= 0 {
		errors = append(errors, fmt.Sprintf("invalid MAGIC_LINK_TTL %s: must be positive", c.MagicLinkTTL))
	}

	if c.InviteCodeLength < invite.MinLength || c.InviteCodeLength > invite.MaxLength {
		errors = append(errors, fmt.Sprintf("invalid INVITE_CODE_LENGTH %d: must be between %d and %d",
			c.InviteCodeLength, invite.MinLength, invite.MaxLength))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid LOG_LEVEL '%s': must be debug, info, warn or error", c.LogLevel))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}
	return nil
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		slog.Warn("Ignoring non-integer environment value", "key", key, "value", value)
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		slog.Warn("Ignoring malformed duration", "key", key, "value", value)
	}
	return fallback
}
