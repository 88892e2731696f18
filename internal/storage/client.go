// Chirp - Minimal Social Network API
// Copyright 2026 Chirp Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chirp-social/chirp

// Package storage is the client for the external blob store that holds
// tweet media and profile pictures. Uploads go through a circuit
// breaker so a degraded store sheds load quickly instead of tying up
// request handlers on timeouts.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/chirp-social/chirp/internal/config"
	"github.com/chirp-social/chirp/internal/logging"
	"github.com/chirp-social/chirp/internal/metrics"
)

// ErrUnavailable is returned when the circuit breaker is open and the
// upload was not attempted.
var ErrUnavailable = errors.New("blob storage unavailable")

// ErrObjectExists is returned for a non-upsert upload to a path that
// already holds an object.
var ErrObjectExists = errors.New("object already exists")

// Client uploads objects to the blob store over its HTTP object API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker[string]
}

// New builds a storage client from configuration.
//
// Circuit breaker configuration:
//   - max 3 concurrent requests in half-open state
//   - 1 minute measurement window
//   - 30 second timeout before attempting recovery
//   - opens after 60% failure rate with minimum 10 requests
func New(cfg *config.StorageConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	metrics.StorageBreakerState.Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "blob-storage",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		// A path conflict is a caller error, not a store failure; it
		// must not push the breaker toward open.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrObjectExists)
		},
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Storage circuit breaker state transition")
			metrics.StorageBreakerState.Set(stateToFloat(to))
		},
	})

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		cb:         cb,
	}
}

// Upload stores data under bucket/path and returns the object's public
// URL. With upsert set, an existing object at the path is replaced;
// without it the store's conflict response surfaces as ErrObjectExists.
func (c *Client) Upload(ctx context.Context, bucket, path, contentType string, data []byte, upsert bool) (string, error) {
	start := time.Now()

	url, err := c.cb.Execute(func() (string, error) {
		return c.doUpload(ctx, bucket, path, contentType, data, upsert)
	})

	metrics.RecordStorageUpload(bucket, int64(len(data)), time.Since(start), err)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			logging.Ctx(ctx).Warn().Str("bucket", bucket).Msg("Upload rejected by open circuit breaker")
			return "", ErrUnavailable
		}
		return "", err
	}
	return url, nil
}

func (c *Client) doUpload(ctx context.Context, bucket, path, contentType string, data []byte, upsert bool) (string, error) {
	uploadURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, bucket, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", contentType)
	if upsert {
		req.Header.Set("x-upsert", "true")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload to %s/%s failed: %w", bucket, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		return c.PublicURL(bucket, path), nil
	case resp.StatusCode == http.StatusConflict:
		return "", ErrObjectExists
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("upload to %s/%s returned status %d: %s", bucket, path, resp.StatusCode, string(body))
	}
}

// PublicURL returns the public download URL for an object.
func (c *Client) PublicURL(bucket, path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, bucket, path)
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
