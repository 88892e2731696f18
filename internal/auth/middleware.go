// Chirp - Minimal Social Network API
// Copyright 2026 Chirp Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chirp-social/chirp

package auth

import (
	"context"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/chirp-social/chirp/internal/logging"
	"github.com/chirp-social/chirp/internal/models"
)

type contextKey string

// userContextKey is the context key under which the authenticated
// user is stored. Unexported so callers must go through UserFromContext.
const userContextKey contextKey = "auth_user"

// UserStore is the subset of the database the auth gate needs.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Middleware gates authenticated routes: it verifies the bearer token
// and resolves the local user record. Every failure path responds 401;
// the gate never lets an unverified request through.
type Middleware struct {
	verifier Verifier
	users    UserStore
}

// NewMiddleware builds the auth gate.
func NewMiddleware(verifier Verifier, users UserStore) *Middleware {
	return &Middleware{verifier: verifier, users: users}
}

// RequireUser verifies the request's bearer token, loads the matching
// local user and attaches it to the context. Unauthenticated requests
// get a 401 with the standard error body.
func (m *Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token := ExtractBearer(r)
		if token == "" {
			unauthorized(w, "missing or malformed authorization header")
			return
		}

		identity, err := m.verifier.Verify(ctx, token)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Token verification failed")
			unauthorized(w, "invalid or expired token")
			return
		}

		user, err := m.users.GetUserByID(ctx, identity.ID)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("identity", identity.ID).Msg("Authenticated identity has no local user")
			unauthorized(w, "user not registered")
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithUser(ctx, user)))
	})
}

// ContextWithUser returns a context carrying the authenticated user.
func ContextWithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext retrieves the authenticated user set by RequireUser.
// The second return is false on routes outside the auth gate.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok
}

// unauthorized writes the API's standard 401 error body. Written here
// rather than importing the api package to avoid an import cycle.
func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(models.ErrorResponse{Message: message})
}
