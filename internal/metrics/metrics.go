// Chirp - Minimal Social Network API
// Copyright 2026 Chirp Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chirp-social/chirp

// Package metrics exposes Prometheus instrumentation for the HTTP API,
// the DuckDB store and the blob storage client. Collectors are
// registered on the default registry via promauto; the /metrics
// endpoint serves them with promhttp.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API endpoint metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chirp_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chirp_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chirp_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Database metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chirp_db_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chirp_db_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// Blob storage metrics
	StorageUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chirp_storage_uploads_total",
			Help: "Total number of blob storage uploads",
		},
		[]string{"bucket", "outcome"},
	)

	StorageUploadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chirp_storage_upload_duration_seconds",
			Help:    "Blob storage upload duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"bucket"},
	)

	StorageUploadBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chirp_storage_upload_bytes_total",
			Help: "Total bytes uploaded to blob storage",
		},
		[]string{"bucket"},
	)

	// Circuit breaker state for the storage client:
	// 0 = closed, 1 = half-open, 2 = open
	StorageBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chirp_storage_breaker_state",
			Help: "Storage circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	// Auth metrics
	AuthVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chirp_auth_verifications_total",
			Help: "Total number of bearer token verifications",
		},
		[]string{"outcome"},
	)
)

// RecordAPIRequest records one finished API request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordDBQuery records a database query metric.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordStorageUpload records one blob storage upload attempt.
func RecordStorageUpload(bucket string, size int64, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	StorageUploadsTotal.WithLabelValues(bucket, outcome).Inc()
	StorageUploadDuration.WithLabelValues(bucket).Observe(duration.Seconds())
	if err == nil {
		StorageUploadBytes.WithLabelValues(bucket).Add(float64(size))
	}
}

// RecordAuthVerification records one token verification attempt.
func RecordAuthVerification(err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	AuthVerificationsTotal.WithLabelValues(outcome).Inc()
}
