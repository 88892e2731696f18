// Chirp - Minimal Social Network API
// Copyright 2026 Chirp Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chirp-social/chirp

package api

import (
	"net/http"

	"github.com/chirp-social/chirp/internal/auth"
	"github.com/chirp-social/chirp/internal/logging"
	"github.com/chirp-social/chirp/internal/validation"
)

// RegisterUser handles POST /api/auth/user: create-or-get the local
// user record for an externally authenticated identity. Idempotent by
// user_id; repeat calls return the existing record unchanged.
func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req RegisterUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondError(w, http.StatusBadRequest, verr.Message())
		return
	}

	user, err := h.db.GetOrCreateUser(r.Context(), req.UserID, req.Email)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("user_id", sanitizeLogValue(req.UserID)).Msg("Registration failed")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// Me handles GET /api/auth/me: the authenticated user, verbatim.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	respondJSON(w, http.StatusOK, user)
}
