// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. Before parsing, optional
dotenv files are layered into the process environment with 'joho/godotenv'.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, cache, auth) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// # Configuration Schema

// Config holds all runtime configuration for the PIMS API server and CLI.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	// Empty means the migrations embedded in the binary are used.
	MigrationPath string `env:"MIGRATION_PATH"`

	// AutoMigrate applies pending migrations at API startup.
	AutoMigrate bool `env:"AUTO_MIGRATE" envDefault:"true"`

	// Dashboard cache. An empty RedisURL selects the in-process cache.
	RedisURL string        `env:"REDIS_URL"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"60s"`

	// Token signing for the admin and editor accounts
	JWTSecret string        `env:"JWT_SECRET,required,notEmpty"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"12h"`

	// Accounts lists "name:role:bcrypt-hash" triples.
	Accounts []string `env:"PIMS_ACCOUNTS" envSeparator:","`

	// Cross-Origin Resource Sharing (comma separated origins, production only)
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	// Per-IP rate limiting
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS"   envDefault:"20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`

	// TrustedProxies lists the reverse proxies (addresses or CIDR networks)
	// whose X-Forwarded-For and X-Real-IP headers are believed. Empty means
	// the connection's peer address is the client.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
}

// # Configuration Loading

// Load layers the dotenv files into the environment and parses it into a [Config].
func Load() (*Config, error) {
	loadDotEnv(os.Getenv("ENVIRONMENT"))
	return Parse()
}

// Parse maps the current process environment to a [Config] without touching dotenv files.
func Parse() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("config: JWT_SECRET must be at least 32 characters")
	}

	return cfg, nil
}

// DatabaseConfig is the subset of [Config] the pimsctl tool needs. It does not
// require the API secrets.
type DatabaseConfig struct {
	DatabaseURL   string `env:"DATABASE_URL,required,notEmpty"`
	MigrationPath string `env:"MIGRATION_PATH"`
}

// LoadDatabase layers the dotenv files and parses only the database settings.
func LoadDatabase() (*DatabaseConfig, error) {
	loadDotEnv(os.Getenv("ENVIRONMENT"))

	cfg := &DatabaseConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}
	return cfg, nil
}

// loadDotEnv loads dotenv files from most to least specific. godotenv never
// overrides a variable that is already set, so earlier files win.
func loadDotEnv(environment string) {
	if environment == "" {
		environment = "development"
	}

	for _, name := range []string{
		".env." + environment + ".local",
		".env.local",
		".env." + environment,
		".env",
	} {
		// Missing files are expected outside local development.
		_ = godotenv.Load(name)
	}
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowsOrigin reports whether origin is listed in ALLOWED_ORIGINS.
func (c *Config) AllowsOrigin(origin string) bool {
	for _, allowed := range c.AllowedOrigins {
		if strings.EqualFold(strings.TrimSpace(allowed), origin) {
			return true
		}
	}
	return false
}
