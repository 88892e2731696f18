// Chirp - Minimal Social Network API
// Copyright 2026 Chirp Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chirp-social/chirp

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/chirp-social/chirp/internal/metrics"
)

// HMACVerifier validates HS256 tokens signed with a shared secret.
// Intended for development and tests where running a full OIDC
// provider is overkill.
type HMACVerifier struct {
	secret []byte
}

// NewHMACVerifier builds a shared-secret verifier. The secret must be
// at least 32 bytes; shorter secrets make HS256 brute-forceable.
func NewHMACVerifier(secret string) (*HMACVerifier, error) {
	if len(secret) < 32 {
		return nil, errors.New("hmac secret must be at least 32 characters")
	}
	return &HMACVerifier{secret: []byte(secret)}, nil
}

// Verify parses and validates the token, returning the asserted identity.
func (v *HMACVerifier) Verify(_ context.Context, tokenStr string) (*Identity, error) {
	identity, err := v.verify(tokenStr)
	metrics.RecordAuthVerification(err)
	return identity, err
}

func (v *HMACVerifier) verify(tokenStr string) (*Identity, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
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

	return identityFromClaims(claims)
}
