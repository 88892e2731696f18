// Chirp - Minimal Social Network API
// Copyright 2026 Chirp Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chirp-social/chirp

// Package main is the entry point for the Chirp API server.
//
// Chirp is a minimal social-network backend: registered users post short
// tweets (optionally with one image or video attachment), like them, and
// follow each other. Authentication is delegated to an external identity
// provider; Chirp verifies bearer tokens and maps them to local users.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Load settings from environment variables and config files (Koanf v2)
//  2. Database: Initialize DuckDB and run schema migrations
//  3. Blob storage: HTTP client for the media object store, wrapped in a circuit breaker
//  4. Authentication: OIDC (JWKS) or HMAC token verifier per AUTH_MODE
//  5. HTTP Server: Chi router with the REST API, health check, and Prometheus metrics
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (CHIRP_ prefix)
//   - Config file (config.yaml)
//   - Built-in defaults
//
// For OIDC authentication (default):
//   - CHIRP_AUTH_ISSUER_URL: identity provider base URL
//   - CHIRP_AUTH_AUDIENCE: expected token audience (optional)
//
// For HMAC authentication (development and tests):
//   - CHIRP_AUTH_MODE=hmac
//   - CHIRP_AUTH_HMAC_SECRET: 32+ character shared secret
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (shutdown timeout, 10s default)
//   - Checkpoints and closes the database
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chirp-social/chirp/internal/api"
	"github.com/chirp-social/chirp/internal/auth"
	"github.com/chirp-social/chirp/internal/config"
	"github.com/chirp-social/chirp/internal/database"
	"github.com/chirp-social/chirp/internal/logging"
	"github.com/chirp-social/chirp/internal/storage"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("auth_mode", cfg.Auth.Mode).
		Str("storage_url", cfg.Storage.URL).
		Msg("Configuration loaded")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	store := storage.New(&cfg.Storage)

	verifier, err := auth.NewVerifier(context.Background(), &cfg.Auth)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize token verifier")
	}
	logging.Info().Str("mode", cfg.Auth.Mode).Msg("Token verifier initialized")

	handler := api.NewHandler(db, store, cfg)
	router := api.NewRouter(handler, auth.NewMiddleware(verifier, db), cfg)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-serverErr:
		logging.Error().Err(err).Msg("HTTP server error")
		if closeErr := db.Close(); closeErr != nil {
			logging.Error().Err(closeErr).Msg("Error closing database")
		}
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("HTTP server shutdown error")
	}

	logging.Info().Msg("Application stopped gracefully")
}
