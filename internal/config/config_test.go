// Chirp - Minimal Social Network API
// Copyright 2026 Chirp Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chirp-social/chirp

package config

import (
	"strings"
	"testing"
)

// validConfig returns a configuration that passes Validate().
func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Auth.Mode = "hmac"
	cfg.Auth.HMACSecret = strings.Repeat("s", 32)
	cfg.Storage.URL = "http://localhost:54321/storage/v1"
	return cfg
}

func TestValidateAcceptsValidConfig(t *testing.T) {
	t.Parallel()

	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate() on valid config returned error: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{
			name:    "port zero",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantSub: "port",
		},
		{
			name:    "port too high",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantSub: "port",
		},
		{
			name:    "unknown auth mode",
			mutate:  func(c *Config) { c.Auth.Mode = "basic" },
			wantSub: "auth mode",
		},
		{
			name: "oidc without issuer",
			mutate: func(c *Config) {
				c.Auth.Mode = "oidc"
				c.Auth.IssuerURL = ""
			},
			wantSub: "issuer_url",
		},
		{
			name: "hmac secret too short",
			mutate: func(c *Config) {
				c.Auth.Mode = "hmac"
				c.Auth.HMACSecret = "short"
			},
			wantSub: "hmac_secret",
		},
		{
			name:    "missing storage url",
			mutate:  func(c *Config) { c.Storage.URL = "" },
			wantSub: "storage url",
		},
		{
			name:    "empty bucket name",
			mutate:  func(c *Config) { c.Storage.TweetBucket = "" },
			wantSub: "bucket",
		},
		{
			name:    "zero max file size",
			mutate:  func(c *Config) { c.Upload.MaxFileSize = 0 },
			wantSub: "max_file_size",
		},
		{
			name:    "empty mime whitelist",
			mutate:  func(c *Config) { c.Upload.AllowedTypes = nil },
			wantSub: "allowed_types",
		},
		{
			name:    "zero default page size",
			mutate:  func(c *Config) { c.API.DefaultPageSize = 0 },
			wantSub: "default_page_size",
		},
		{
			name: "max page below default",
			mutate: func(c *Config) {
				c.API.DefaultPageSize = 50
				c.API.MaxPageSize = 10
			},
			wantSub: "max_page_size",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantSub: "logging level",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantSub: "logging format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantSub)
			}
		})
	}
}

func TestDefaultConfigValues(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()

	if cfg.Server.Port != 3000 {
		t.Errorf("default port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.Upload.MaxFileSize != 2<<20 {
		t.Errorf("default max file size = %d, want %d", cfg.Upload.MaxFileSize, 2<<20)
	}
	if cfg.API.DefaultPageSize != 20 {
		t.Errorf("default page size = %d, want 20", cfg.API.DefaultPageSize)
	}
	if len(cfg.Upload.AllowedTypes) != 6 {
		t.Errorf("default MIME whitelist has %d entries, want 6", len(cfg.Upload.AllowedTypes))
	}
	if cfg.Storage.TweetBucket != "tweet-media" || cfg.Storage.AvatarBucket != "profile-pictures" {
		t.Errorf("unexpected default buckets: %q, %q", cfg.Storage.TweetBucket, cfg.Storage.AvatarBucket)
	}
}

func TestLoadWithPrefixedEnvVars(t *testing.T) {
	t.Setenv("CHIRP_AUTH_MODE", "hmac")
	t.Setenv("CHIRP_AUTH_HMAC_SECRET", strings.Repeat("s", 32))
	t.Setenv("CHIRP_STORAGE_URL", "http://localhost:54321/storage/v1")
	t.Setenv("CHIRP_SERVER_PORT", "4000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with CHIRP_-prefixed env vars failed: %v", err)
	}
	if cfg.Auth.Mode != "hmac" {
		t.Errorf("auth mode = %q, want hmac", cfg.Auth.Mode)
	}
	if cfg.Server.Port != 4000 {
		t.Errorf("server port = %d, want 4000", cfg.Server.Port)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env  string
		want string
	}{
		{"SERVER_PORT", "server.port"},
		{"DATABASE_PATH", "database.path"},
		{"AUTH_ISSUER_URL", "auth.issuer_url"},
		{"STORAGE_API_KEY", "storage.api_key"},
		{"UPLOAD_MAX_FILE_SIZE", "upload.max_file_size"},
		{"CORS_ORIGINS", "security.cors_origins"},
		{"LOG_LEVEL", "logging.level"},
		{"CHIRP_SERVER_PORT", "server.port"},
		{"CHIRP_AUTH_MODE", "auth.mode"},
		{"CHIRP_AUTH_HMAC_SECRET", "auth.hmac_secret"},
		{"CHIRP_STORAGE_URL", "storage.url"},
		{"PATH", ""},
		{"HOME", ""},
		{"CHIRP_UNKNOWN_KNOB", ""},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			if got := envTransformFunc(tt.env); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}
