// Copyright (c) 2026 PMR Atlas. All rights reserved.

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A local .env file is
read first when present, so development setups need no exported variables.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Once loaded, configuration is read-only and passed to components via constructors.
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

// Config holds all runtime configuration for the content API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL). Empty selects the in-memory store.
	DatabaseURL string `env:"DATABASE_URL"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Translation cache (Redis). Empty disables caching.
	RedisURL string `env:"REDIS_URL"`

	// Identity verification. Tokens are issued elsewhere; only the public key is needed.
	JWTPubKeyPath string `env:"JWT_PUBLIC_KEY_PATH,required"`
	JWTIssuer     string `env:"JWT_ISSUER" envDefault:"pmr-atlas.app"`

	// Machine translation
	AnthropicAPIKey     string        `env:"ANTHROPIC_API_KEY"`
	TranslatorModel     string        `env:"TRANSLATOR_MODEL"      envDefault:"claude-haiku-4-5-20251001"`
	TranslatorMaxTokens int64         `env:"TRANSLATOR_MAX_TOKENS" envDefault:"4096"`
	TranslatorRPS       float64       `env:"TRANSLATOR_RPS"        envDefault:"2"`
	TranslatorParallel  int           `env:"TRANSLATOR_PARALLEL"   envDefault:"2"`
	TranslationCacheTTL time.Duration `env:"TRANSLATION_CACHE_TTL" envDefault:"720h"`

	// Cross-Origin Resource Sharing. Comma-separated origin suffixes allowed outside development.
	AllowedOrigins string `env:"ALLOWED_ORIGINS" envDefault:"pmr-atlas.app"`
}

// # Configuration Loading

// Load reads an optional .env file and parses environment variables into a [Config].
func Load() (*Config, error) {

	// Variables already set in the environment win over the .env file.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env file: %w", err)
	}

	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.TranslatorParallel < 1 {
		cfg.TranslatorParallel = 1
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

// UsesPostgres reports whether a database is configured.
func (c *Config) UsesPostgres() bool {
	return c.DatabaseURL != ""
}

// UsesRedis reports whether the translation cache is configured.
func (c *Config) UsesRedis() bool {
	return c.RedisURL != ""
}

// TranslatorEnabled reports whether machine translation credentials exist.
func (c *Config) TranslatorEnabled() bool {
	return c.AnthropicAPIKey != ""
}

// OriginSuffixes returns the configured CORS origin suffixes.
func (c *Config) OriginSuffixes() []string {
	var suffixes []string
	for _, part := range strings.Split(c.AllowedOrigins, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			suffixes = append(suffixes, trimmed)
		}
	}
	return suffixes
}
