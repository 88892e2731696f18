// Chirp - Minimal Social Network API
// Copyright 2026 Chirp Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chirp-social/chirp

package database

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/chirp-social/chirp/internal/metrics"
)

// Sentinel errors returned by store operations. Handlers map these to
// HTTP status codes without inspecting driver error strings.
var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate indicates a uniqueness or key constraint rejected the write.
	ErrDuplicate = errors.New("duplicate")
)

// isDuplicateKeyErr reports whether err is a DuckDB constraint violation.
// DuckDB does not expose typed errors through database/sql, so we match
// on the error message the way the driver formats it.
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "constraint error")
}

// observeQuery records duration and error metrics for one store
// operation. Call it deferred with a named error return:
//
//	defer observeQuery("insert", "tweets", time.Now(), &err)
//
// ErrNotFound and ErrDuplicate are domain outcomes, not query failures,
// and do not count toward the error series.
func observeQuery(operation, table string, start time.Time, errp *error) {
	err := *errp
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicate) {
		err = nil
	}
	metrics.RecordDBQuery(operation, table, time.Since(start), err)
}

// closeQuietly closes a resource and explicitly ignores any error.
// Use this for cleanup in error paths where Close() errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close() // Explicitly ignore error - cleanup is best-effort
	}
}
