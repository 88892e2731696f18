// Chirp - Minimal Social Network API
// Copyright 2026 Chirp Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chirp-social/chirp

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/chirp/config.yaml",
	"/etc/chirp/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Path:      "/data/chirp.duckdb",
			MaxMemory: "1GB",
			Threads:   0, // 0 = use runtime.NumCPU()
		},
		Auth: AuthConfig{
			Mode:         "oidc",
			IssuerURL:    "",
			Audience:     "",
			JWKSCacheTTL: time.Hour,
			HMACSecret:   "",
		},
		Storage: StorageConfig{
			URL:          "",
			APIKey:       "",
			TweetBucket:  "tweet-media",
			AvatarBucket: "profile-pictures",
			Timeout:      30 * time.Second,
		},
		Upload: UploadConfig{
			MaxFileSize: 2 << 20, // 2MB
			AllowedTypes: []string{
				"image/jpeg",
				"image/png",
				"image/gif",
				"image/webp",
				"video/mp4",
				"video/quicktime",
			},
		},
		API: APIConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
		Security: SecurityConfig{
			CORSOrigins: []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// loadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// Precedence: ENV > File > Defaults.
func loadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// SERVER_PORT -> server.port, STORAGE_API_KEY -> storage.api_key
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envMappings maps environment variable names (lowercased) to koanf paths
// for variables whose section prefix does not line up with a simple
// single-underscore split.
var envMappings = map[string]string{
	"server_host":             "server.host",
	"server_port":             "server.port",
	"server_read_timeout":     "server.read_timeout",
	"server_write_timeout":    "server.write_timeout",
	"server_shutdown_timeout": "server.shutdown_timeout",

	"database_path":       "database.path",
	"database_max_memory": "database.max_memory",
	"database_threads":    "database.threads",

	"auth_mode":           "auth.mode",
	"auth_issuer_url":     "auth.issuer_url",
	"auth_audience":       "auth.audience",
	"auth_jwks_cache_ttl": "auth.jwks_cache_ttl",
	"auth_hmac_secret":    "auth.hmac_secret",

	"storage_url":           "storage.url",
	"storage_api_key":       "storage.api_key",
	"storage_tweet_bucket":  "storage.tweet_bucket",
	"storage_avatar_bucket": "storage.avatar_bucket",
	"storage_timeout":       "storage.timeout",

	"upload_max_file_size": "upload.max_file_size",
	"upload_allowed_types": "upload.allowed_types",

	"api_default_page_size": "api.default_page_size",
	"api_max_page_size":     "api.max_page_size",

	"cors_origins": "security.cors_origins",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envPrefix is the optional namespace prefix for Chirp environment
// variables. CHIRP_AUTH_MODE and AUTH_MODE both map to auth.mode; the
// prefixed form avoids collisions with other processes' environment.
const envPrefix = "chirp_"

// envTransformFunc maps environment variable names to koanf config paths,
// with or without the CHIRP_ prefix. Unknown variables return empty
// string and are ignored, so unrelated process environment never leaks
// into the configuration.
func envTransformFunc(key string) string {
	name := strings.TrimPrefix(strings.ToLower(key), envPrefix)
	if path, ok := envMappings[name]; ok {
		return path
	}
	return ""
}

// sliceConfigPaths defines which config paths should be parsed as
// comma-separated slices when supplied via environment variables.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"upload.allowed_types",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields. Env vars come in as plain strings, but the config
// struct expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		raw := k.Get(path)
		s, ok := raw.(string)
		if !ok {
			continue // already a slice (from defaults or a yaml file)
		}

		parts := strings.Split(s, ",")
		values := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				values = append(values, trimmed)
			}
		}

		if err := k.Set(path, values); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}
