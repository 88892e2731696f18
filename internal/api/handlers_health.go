// Chirp - Minimal Social Network API
// Copyright 2026 Chirp Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chirp-social/chirp

package api

import (
	"net/http"

	"github.com/chirp-social/chirp/internal/models"
)

// Health handles GET /api/health. The database is pinged so a wedged
// store shows up in orchestrator probes instead of only in 500s.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := models.HealthResponse{Status: "ok", Database: "ok"}
	status := http.StatusOK

	if err := h.db.Ping(r.Context()); err != nil {
		resp.Status = "degraded"
		resp.Database = "unreachable"
		status = http.StatusServiceUnavailable
	}

	respondJSON(w, status, resp)
}
