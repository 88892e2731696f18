// Chirp - Minimal Social Network API
// Copyright 2026 Chirp Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chirp-social/chirp

// Package config provides centralized configuration management for Chirp.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	db, err := database.New(&cfg.Database)
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds all application configuration loaded from environment
// variables and config files.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Storage  StorageConfig  `koanf:"storage"`
	Upload   UploadConfig   `koanf:"upload"`
	API      APIConfig      `koanf:"api"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig holds DuckDB settings
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = use runtime.NumCPU()
}

// AuthConfig holds bearer-token verification settings.
//
// Mode selects the verifier backing:
//   - "oidc": RS256 tokens validated against the issuer's JWKS
//     (IssuerURL required)
//   - "hmac": HS256 tokens validated with a shared secret
//     (HMACSecret required; intended for development and tests)
type AuthConfig struct {
	Mode         string        `koanf:"mode"`
	IssuerURL    string        `koanf:"issuer_url"`
	Audience     string        `koanf:"audience"`
	JWKSCacheTTL time.Duration `koanf:"jwks_cache_ttl"`
	HMACSecret   string        `koanf:"hmac_secret"`
}

// StorageConfig holds blob store settings. The store speaks a
// Supabase-Storage-compatible HTTP API: objects are uploaded to
// buckets and served from stable public URLs.
type StorageConfig struct {
	URL          string        `koanf:"url"`
	APIKey       string        `koanf:"api_key"`
	TweetBucket  string        `koanf:"tweet_bucket"`
	AvatarBucket string        `koanf:"avatar_bucket"`
	Timeout      time.Duration `koanf:"timeout"`
}

// UploadConfig holds media upload constraints
type UploadConfig struct {
	// MaxFileSize is the upload size ceiling in bytes.
	MaxFileSize int64 `koanf:"max_file_size"`
	// AllowedTypes is the MIME whitelist for media uploads.
	AllowedTypes []string `koanf:"allowed_types"`
}

// APIConfig holds API pagination settings
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// SecurityConfig holds CORS settings
type SecurityConfig struct {
	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`
	// Format is the output format: json or console.
	Format string `koanf:"format"`
	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// Load loads the configuration from defaults, an optional config file,
// and environment variables, then validates it.
func Load() (*Config, error) {
	return loadWithKoanf()
}

// Validate checks the configuration for inconsistent or missing settings.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateAuth(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateUpload(); err != nil {
		return err
	}
	if err := c.validateAPI(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}
	return nil
}

func (c *Config) validateAuth() error {
	switch c.Auth.Mode {
	case "oidc":
		if c.Auth.IssuerURL == "" {
			return fmt.Errorf("auth issuer_url is required when auth mode is oidc")
		}
		if _, err := url.ParseRequestURI(c.Auth.IssuerURL); err != nil {
			return fmt.Errorf("auth issuer_url is not a valid URL: %w", err)
		}
	case "hmac":
		if len(c.Auth.HMACSecret) < 32 {
			return fmt.Errorf("auth hmac_secret must be at least 32 characters")
		}
	default:
		return fmt.Errorf("auth mode must be \"oidc\" or \"hmac\", got %q", c.Auth.Mode)
	}
	return nil
}

func (c *Config) validateStorage() error {
	if c.Storage.URL == "" {
		return fmt.Errorf("storage url is required")
	}
	if _, err := url.ParseRequestURI(c.Storage.URL); err != nil {
		return fmt.Errorf("storage url is not a valid URL: %w", err)
	}
	if c.Storage.TweetBucket == "" || c.Storage.AvatarBucket == "" {
		return fmt.Errorf("storage bucket names must not be empty")
	}
	return nil
}

func (c *Config) validateUpload() error {
	if c.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("upload max_file_size must be positive, got %d", c.Upload.MaxFileSize)
	}
	if len(c.Upload.AllowedTypes) == 0 {
		return fmt.Errorf("upload allowed_types must not be empty")
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.DefaultPageSize < 1 {
		return fmt.Errorf("api default_page_size must be at least 1, got %d", c.API.DefaultPageSize)
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("api max_page_size (%d) must not be smaller than default_page_size (%d)",
			c.API.MaxPageSize, c.API.DefaultPageSize)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "", "trace", "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return fmt.Errorf("logging level %q is not valid", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging format %q is not valid (json or console)", c.Logging.Format)
	}
	return nil
}
