// Chirp - Minimal Social Network API
// Copyright 2026 Chirp Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chirp-social/chirp

package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/chirp-social/chirp/internal/models"
)

func TestRegisterUserIdempotent(t *testing.T) {
	env := setupEnv(t)

	first := env.register(t, "auth-1", "alice@example.com")
	if first.Username != "alice" {
		t.Errorf("username = %q, want alice", first.Username)
	}

	second := env.register(t, "auth-1", "alice@example.com")
	if second.ID != first.ID || second.Username != first.Username {
		t.Errorf("repeat registration changed the user: %+v vs %+v", first, second)
	}
}

func TestRegisterUserValidation(t *testing.T) {
	env := setupEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing user_id", `{"email":"a@example.com"}`},
		{"missing email", `{"user_id":"auth-1"}`},
		{"bad email", `{"user_id":"auth-1","email":"nope"}`},
		{"malformed json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/auth/user", "", strings.NewReader(tt.body), "application/json")
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			var errResp models.ErrorResponse
			decodeBody(t, rec, &errResp)
			if errResp.Message == "" {
				t.Error("error body missing message")
			}
		})
	}
}

func TestMe(t *testing.T) {
	env := setupEnv(t)
	alice := env.register(t, "auth-1", "alice@example.com")

	t.Run("authenticated", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/auth/me", "auth-1", nil, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		var u models.User
		decodeBody(t, rec, &u)
		if u.ID != alice.ID || u.Email != alice.Email {
			t.Errorf("me = %+v, want %+v", u, alice)
		}
	})

	t.Run("no token", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/auth/me", "", nil, "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("token for unregistered identity", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/auth/me", "auth-unknown", nil, "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}
