// Chirp - Minimal Social Network API
// Copyright 2026 Chirp Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chirp-social/chirp

package models

// ErrorResponse is the wire shape of every API error: a message and the
// HTTP status code on the response itself. Internal detail never leaves
// the server; 500s carry a generic message only.
type ErrorResponse struct {
	Message string `json:"message"`
}

// MessageResponse is the wire shape of plain acknowledgements, such as
// follow and unfollow confirmations.
type MessageResponse struct {
	Message string `json:"message"`
}

// LikeResponse reports the state after a like toggle.
type LikeResponse struct {
	Liked bool `json:"liked"`
}

// HealthResponse reports service liveness and database reachability.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}
