package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Environment:      EnvProduction,
		Port:             "8080",
		AppBaseURL:       "https://tandem.example",
		DBPath:           "./data/tandem.db",
		JWTSecret:        strings.Repeat("s", 32),
		TokenTTL:         24 * time.Hour,
		MagicLinkTTL:     15 * time.Minute,
		InviteCodeLength: 10,
		LogLevel:         "info",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errorString string
	}{
		{
			name:   "valid production config",
			mutate: func(*Config) {},
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "relative base URL",
			mutate:      func(c *Config) { c.AppBaseURL = "/app" },
			wantErr:     true,
			errorString: "invalid APP_BASE_URL '/app'",
		},
		{
			name:        "missing JWT secret",
			mutate:      func(c *Config) { c.JWTSecret = "" },
			wantErr:     true,
			errorString: "JWT_SECRET is required outside development",
		},
		{
			name:        "short JWT secret in production",
			mutate:      func(c *Config) { c.JWTSecret = "short" },
			wantErr:     true,
			errorString: "JWT_SECRET must be at least 32 characters in production",
		},
		{
			name:        "development secret in production",
			mutate:      func(c *Config) { c.JWTSecret = devJWTSecret },
			wantErr:     true,
			errorString: "must not be the development secret",
		},
		{
			name: "short JWT secret in development",
			mutate: func(c *Config) {
				c.Environment = EnvDevelopment
				c.JWTSecret = "short"
			},
		},
		{
			name:        "non-positive token TTL",
			mutate:      func(c *Config) { c.TokenTTL = 0 },
			wantErr:     true,
			errorString: "invalid TOKEN_TTL",
		},
		{
			name:        "invite code too short",
			mutate:      func(c *Config) { c.InviteCodeLength = 4 },
			wantErr:     true,
			errorString: "invalid INVITE_CODE_LENGTH 4: must be between 6 and 32",
		},
		{
			name:        "unknown log level",
			mutate:      func(c *Config) { c.LogLevel = "verbose" },
			wantErr:     true,
			errorString: "invalid LOG_LEVEL 'verbose'",
		},
		{
			name:        "unknown environment",
			mutate:      func(c *Config) { c.Environment = "staging" },
			wantErr:     true,
			errorString: "invalid APP_ENV 'staging'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.errorString)
				}
				if !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("expected error containing %q, got %q", tt.errorString, err.Error())
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestConfig_ValidateAggregatesErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "abc"
	cfg.LogLevel = "loud"
	cfg.DBPath = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"invalid port", "invalid LOG_LEVEL", "database path cannot be empty"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err.Error(), want)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "PORT", "APP_BASE_URL", "DB_PATH", "JWT_SECRET", "TOKEN_TTL", "MAGIC_LINK_TTL", "INVITE_CODE_LENGTH", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Environment != EnvDevelopment {
		t.Errorf("Environment = %q, want %q", cfg.Environment, EnvDevelopment)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.DBPath != "./data/tandem.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.TokenTTL != 24*time.Hour || cfg.MagicLinkTTL != 15*time.Minute {
		t.Errorf("TTLs = %s / %s", cfg.TokenTTL, cfg.MagicLinkTTL)
	}
	if cfg.InviteCodeLength != 10 {
		t.Errorf("InviteCodeLength = %d, want 10", cfg.InviteCodeLength)
	}
	if cfg.JWTSecret != devJWTSecret {
		t.Errorf("expected development secret fallback")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "Production")
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", strings.Repeat("k", 40))
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("MAGIC_LINK_TTL", "not-a-duration")
	t.Setenv("INVITE_CODE_LENGTH", "12")

	cfg := Load()

	if cfg.Environment != EnvProduction {
		t.Errorf("Environment = %q", cfg.Environment)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.TokenTTL != 2*time.Hour {
		t.Errorf("TokenTTL = %s", cfg.TokenTTL)
	}
	if cfg.MagicLinkTTL != 15*time.Minute {
		t.Errorf("malformed MAGIC_LINK_TTL should fall back, got %s", cfg.MagicLinkTTL)
	}
	if cfg.InviteCodeLength != 12 {
		t.Errorf("InviteCodeLength = %d", cfg.InviteCodeLength)
	}
}
