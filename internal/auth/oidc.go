// Chirp - Minimal Social Network API
// Copyright 2026 Chirp Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chirp-social/chirp

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"

	"github.com/chirp-social/chirp/internal/config"
	"github.com/chirp-social/chirp/internal/metrics"
)

// OIDCVerifier validates RS256 bearer tokens against the identity
// provider's JWKS, discovered from its well-known configuration.
type OIDCVerifier struct {
	issuer   string
	audience string
	jwks     *jwksCache
}

// NewOIDCVerifier performs OIDC discovery against cfg.IssuerURL and
// pre-fetches the JWKS so startup fails fast on a misconfigured issuer.
func NewOIDCVerifier(ctx context.Context, cfg *config.AuthConfig) (*OIDCVerifier, error) {
	httpClient := &http.Client{Timeout: 30 * time.Second}

	discoveryURL := strings.TrimSuffix(cfg.IssuerURL, "/") + "/.well-known/openid-configuration"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, discoveryURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery request: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("OIDC discovery failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OIDC discovery returned status %d", resp.StatusCode)
	}

	var discovery struct {
		Issuer  string `json:"issuer"`
		JWKSURI string `json:"jwks_uri"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&discovery); err != nil {
		return nil, fmt.Errorf("failed to parse discovery document: %w", err)
	}
	if discovery.JWKSURI == "" {
		return nil, errors.New("OIDC discovery missing jwks_uri")
	}

	v := &OIDCVerifier{
		issuer:   discovery.Issuer,
		audience: cfg.Audience,
		jwks:     newJWKSCache(discovery.JWKSURI, httpClient, cfg.JWKSCacheTTL),
	}

	// Pre-fetch JWKS
	if _, err := v.jwks.refreshKeys(ctx); err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}

	return v, nil
}

// Verify parses and validates the token, returning the asserted identity.
func (v *OIDCVerifier) Verify(ctx context.Context, tokenStr string) (*Identity, error) {
	identity, err := v.verify(ctx, tokenStr)
	metrics.RecordAuthVerification(err)
	return identity, err
}

func (v *OIDCVerifier) verify(ctx context.Context, tokenStr string) (*Identity, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		kidVal, ok := token.Header["kid"]
		if !ok {
			return nil, errors.New("token missing kid header")
		}
		kid, ok := kidVal.(string)
		if !ok {
			return nil, errors.New("token kid header is not a string")
		}

		key, err := v.jwks.getKey(ctx, kid)
		if err != nil {
			return nil, fmt.Errorf("failed to get key for kid %s: %w", kid, err)
		}
		return key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredCredentials
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidCredentials
	}

	iss, _ := claims["iss"].(string)
	if iss != v.issuer {
		return nil, fmt.Errorf("%w: issuer mismatch", ErrInvalidCredentials)
	}

	if v.audience != "" {
		if err := validateAudience(claims, v.audience); err != nil {
			return nil, err
		}
	}

	return identityFromClaims(claims)
}

// validateAudience checks the aud claim, which may be a string or an
// array of strings.
func validateAudience(claims jwt.MapClaims, audience string) error {
	switch aud := claims["aud"].(type) {
	case string:
		if aud != audience {
			return fmt.Errorf("%w: audience mismatch", ErrInvalidCredentials)
		}
	case []interface{}:
		for _, a := range aud {
			if s, ok := a.(string); ok && s == audience {
				return nil
			}
		}
		return fmt.Errorf("%w: audience mismatch", ErrInvalidCredentials)
	default:
		return fmt.Errorf("%w: missing aud claim", ErrInvalidCredentials)
	}
	return nil
}

// identityFromClaims extracts the subject and email from validated claims.
func identityFromClaims(claims jwt.MapClaims) (*Identity, error) {
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("%w: missing sub claim", ErrInvalidCredentials)
	}
	email, _ := claims["email"].(string)
	return &Identity{ID: sub, Email: email}, nil
}
