// Chirp - Minimal Social Network API
// Copyright 2026 Chirp Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chirp-social/chirp

// Package auth verifies bearer tokens issued by an external identity
// provider and gates authenticated routes. Identity lifecycle (signup,
// password reset, token issuance) lives entirely with the provider;
// this package only checks signatures and claims.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/chirp-social/chirp/internal/config"
)

// Standard authentication errors.
var (
	// ErrNoCredentials indicates no bearer token was provided.
	ErrNoCredentials = errors.New("no credentials provided")

	// ErrInvalidCredentials indicates the token failed verification.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrExpiredCredentials indicates the token has expired.
	ErrExpiredCredentials = errors.New("credentials expired")
)

// Identity is the verified subject of a bearer token.
type Identity struct {
	// ID is the provider-issued subject ("sub" claim). It is the
	// primary key of the local users table.
	ID string

	// Email is the "email" claim when the provider includes one.
	Email string
}

// Verifier checks a raw bearer token and returns the identity it
// asserts. Implementations must be safe for concurrent use.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// NewVerifier builds the verifier selected by configuration:
// "oidc" verifies RS256 tokens against the issuer's JWKS,
// "hmac" verifies HS256 tokens with a shared secret.
func NewVerifier(ctx context.Context, cfg *config.AuthConfig) (Verifier, error) {
	switch cfg.Mode {
	case "oidc":
		return NewOIDCVerifier(ctx, cfg)
	case "hmac":
		return NewHMACVerifier(cfg.HMACSecret)
	default:
		return nil, fmt.Errorf("unknown auth mode: %s", cfg.Mode)
	}
}

// ExtractBearer pulls the token out of the Authorization header.
// Returns an empty string when the header is missing or malformed.
func ExtractBearer(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
