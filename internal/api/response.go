// Chirp - Minimal Social Network API
// Copyright 2026 Chirp Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chirp-social/chirp

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/chirp-social/chirp/internal/database"
	"github.com/chirp-social/chirp/internal/logging"
	"github.com/chirp-social/chirp/internal/models"
)

// sanitizeLogValue removes control characters from strings to prevent
// log injection. Newlines and other control characters could otherwise
// forge log entries.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response with proper headers. Bodies are
// the domain objects directly, no envelope.
func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(body)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondError sends the standard {"message": ...} error body.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, models.ErrorResponse{Message: message})
}

// respondStoreError maps database sentinel errors onto the API's
// status codes; anything unexpected becomes an opaque 500.
func respondStoreError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg, duplicateMsg string) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		respondError(w, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, database.ErrDuplicate):
		respondError(w, http.StatusBadRequest, duplicateMsg)
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Store operation failed")
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads a request body into dst. Unknown fields are
// tolerated; malformed JSON is the caller's 400.
func decodeJSON(r *http.Request, dst interface{}) error {
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(dst)
}
