// Chirp - Minimal Social Network API
// Copyright 2026 Chirp Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chirp-social/chirp

// Package api provides the HTTP handlers and chi routing for the
// public REST surface.
//
// Handler methods are split across files:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_auth.go: registration and current-user endpoints
//   - handlers_tweets.go: feed, tweet creation, like toggle
//   - handlers_users.go: profiles, follows, profile pictures
//   - handlers_health.go: health endpoint
package api

import (
	"time"

	"github.com/chirp-social/chirp/internal/config"
	"github.com/chirp-social/chirp/internal/database"
	"github.com/chirp-social/chirp/internal/storage"
)

// Handler contains dependencies for API handlers.
type Handler struct {
	db        *database.DB
	storage   *storage.Client
	config    *config.Config
	startTime time.Time
}

// NewHandler creates a new API handler.
func NewHandler(db *database.DB, store *storage.Client, cfg *config.Config) *Handler {
	return &Handler{
		db:        db,
		storage:   store,
		config:    cfg,
		startTime: time.Now(),
	}
}
