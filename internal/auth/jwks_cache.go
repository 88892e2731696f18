// Chirp - Minimal Social Network API
// Copyright 2026 Chirp Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chirp-social/chirp

package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// jwksCache caches the identity provider's RSA public keys with a TTL.
// It is safe for concurrent use.
type jwksCache struct {
	uri        string
	httpClient *http.Client
	ttl        time.Duration

	mu      sync.RWMutex
	keys    map[string]*rsa.PublicKey
	fetched time.Time
}

func newJWKSCache(uri string, client *http.Client, ttl time.Duration) *jwksCache {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if ttl == 0 {
		ttl = 15 * time.Minute
	}
	return &jwksCache{
		uri:        uri,
		httpClient: client,
		ttl:        ttl,
		keys:       make(map[string]*rsa.PublicKey),
	}
}

// getKey retrieves a key by ID, refreshing the cache if needed. A
// stale cached key is still used when the refresh fails, so transient
// IdP outages do not reject every request at once.
func (c *jwksCache) getKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	c.mu.RLock()
	key, ok := c.keys[kid]
	expired := time.Since(c.fetched) > c.ttl
	c.mu.RUnlock()

	if ok && !expired {
		return key, nil
	}

	keys, err := c.refreshKeys(ctx)
	if err != nil {
		if ok {
			return key, nil
		}
		return nil, err
	}

	key, ok = keys[kid]
	if !ok {
		return nil, fmt.Errorf("key not found: %s", kid)
	}
	return key, nil
}

// refreshKeys fetches and caches all keys from the JWKS endpoint.
func (c *jwksCache) refreshKeys(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Another goroutine might have refreshed while we waited.
	if time.Since(c.fetched) < c.ttl && len(c.keys) > 0 {
		return c.keys, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.uri, http.NoBody)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("JWKS fetch failed with status %d", resp.StatusCode)
	}

	var jwks struct {
		Keys []struct {
			Kty string `json:"kty"`
			Kid string `json:"kid"`
			N   string `json:"n"`
			E   string `json:"e"`
		} `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
		return nil, fmt.Errorf("failed to decode JWKS: %w", err)
	}

	c.keys = make(map[string]*rsa.PublicKey)
	for _, key := range jwks.Keys {
		if key.Kty != "RSA" {
			continue
		}

		nBytes, err := base64URLDecode(key.N)
		if err != nil {
			continue
		}
		eBytes, err := base64URLDecode(key.E)
		if err != nil {
			continue
		}

		n := new(big.Int).SetBytes(nBytes)
		e := 0
		for _, b := range eBytes {
			e = e<<8 + int(b)
		}

		c.keys[key.Kid] = &rsa.PublicKey{N: n, E: e}
	}

	c.fetched = time.Now()
	return c.keys, nil
}

// base64URLDecode decodes a base64url encoded string, adding padding
// as needed.
func base64URLDecode(s string) ([]byte, error) {
	switch len(s) % 4 {
	case 2:
		s += "=="
	case 3:
		s += "="
	}
	return base64.URLEncoding.DecodeString(s)
}
