// Copyright (c) 2026 EduStream. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A local '.env' file is
loaded first (if present) through 'joho/godotenv' so developers do not have to
export every variable by hand.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, Storage, Tokens) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// # Configuration Schema

// Config holds all runtime configuration for the EduStream API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Token signing. Access and refresh tokens use distinct secrets so a leaked
	// access secret cannot mint long-lived sessions.
	JWTSecret        string        `env:"JWT_SECRET,required,notEmpty"`
	JWTAccessTTL     time.Duration `env:"JWT_ACCESS_TTL"     envDefault:"1h"`
	JWTRefreshSecret string        `env:"JWT_REFRESH_SECRET,required,notEmpty"`
	JWTRefreshTTL    time.Duration `env:"JWT_REFRESH_TTL"    envDefault:"168h"`

	// PasswordResetTTL bounds how long a forgot-password token stays redeemable.
	PasswordResetTTL time.Duration `env:"PASSWORD_RESET_TTL" envDefault:"10m"`

	// ExposeResetToken echoes the raw reset token in the forgot-password
	// response. Local testing only; it is not tied to ENVIRONMENT.
	ExposeResetToken bool `env:"EXPOSE_RESET_TOKEN" envDefault:"false"`

	// Object Storage (Google Cloud Storage)
	GCSBucket          string `env:"GCS_BUCKET,required"`
	GCSCredentialsFile string `env:"GCS_CREDENTIALS_FILE"`

	// Content delivery (Cloud CDN signed URLs). Empty values fall back to
	// bucket-signed URLs.
	CDNBaseURL    string `env:"CDN_BASE_URL"`
	CDNKeyName    string `env:"CDN_KEY_NAME"`
	CDNSigningKey string `env:"CDN_SIGNING_KEY"`

	PlaybackURLTTL time.Duration `env:"PLAYBACK_URL_TTL" envDefault:"3600s"`
	UploadURLTTL   time.Duration `env:"UPLOAD_URL_TTL"   envDefault:"3600s"`
	MaxUploadBytes int64         `env:"MAX_UPLOAD_BYTES" envDefault:"2147483648"`

	// CourseCacheTTL is how long a course detail stays in Redis.
	CourseCacheTTL time.Duration `env:"COURSE_CACHE_TTL" envDefault:"5m"`

	// Cross-Origin Resource Sharing
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	// Rate limiting per client IP
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS"   envDefault:"100"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"150"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
//
// A '.env' file in the working directory is applied first. Variables already
// present in the process environment take precedence over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env file: %w", err)
	}

	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	for i, origin := range cfg.AllowedOrigins {
		cfg.AllowedOrigins[i] = strings.TrimSpace(origin)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsOriginAllowed reports whether a browser origin may call the API.
// Development accepts every origin.
func (c *Config) IsOriginAllowed(origin string) bool {
	if c.IsDevelopment() {
		return true
	}
	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// CDNEnabled reports whether playback URLs should be signed for the CDN.
func (c *Config) CDNEnabled() bool {
	return c.CDNBaseURL != "" && c.CDNKeyName != "" && c.CDNSigningKey != ""
}
