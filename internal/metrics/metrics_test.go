// Chirp - Minimal Social Network API
// Copyright 2026 Chirp Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chirp-social/chirp

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/tweets", "200"))

	RecordAPIRequest("GET", "/api/tweets", 200, 25*time.Millisecond)

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/tweets", "200"))
	if after != before+1 {
		t.Errorf("counter = %v, want %v", after, before+1)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("after inc: gauge = %v, want %v", got, before+1)
	}

	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("after dec: gauge = %v, want %v", got, before)
	}
}

func TestRecordDBQueryError(t *testing.T) {
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("insert", "tweets"))

	RecordDBQuery("insert", "tweets", time.Millisecond, errors.New("boom"))
	RecordDBQuery("insert", "tweets", time.Millisecond, nil)

	after := testutil.ToFloat64(DBQueryErrors.WithLabelValues("insert", "tweets"))
	if after != before+1 {
		t.Errorf("error counter = %v, want %v", after, before+1)
	}
}

func TestRecordStorageUpload(t *testing.T) {
	okBefore := testutil.ToFloat64(StorageUploadsTotal.WithLabelValues("tweet-media", "success"))
	errBefore := testutil.ToFloat64(StorageUploadsTotal.WithLabelValues("tweet-media", "error"))
	bytesBefore := testutil.ToFloat64(StorageUploadBytes.WithLabelValues("tweet-media"))

	RecordStorageUpload("tweet-media", 1024, 100*time.Millisecond, nil)
	RecordStorageUpload("tweet-media", 2048, 100*time.Millisecond, errors.New("upstream down"))

	if got := testutil.ToFloat64(StorageUploadsTotal.WithLabelValues("tweet-media", "success")); got != okBefore+1 {
		t.Errorf("success counter = %v, want %v", got, okBefore+1)
	}
	if got := testutil.ToFloat64(StorageUploadsTotal.WithLabelValues("tweet-media", "error")); got != errBefore+1 {
		t.Errorf("error counter = %v, want %v", got, errBefore+1)
	}
	// Failed uploads must not count toward bytes transferred.
	if got := testutil.ToFloat64(StorageUploadBytes.WithLabelValues("tweet-media")); got != bytesBefore+1024 {
		t.Errorf("bytes counter = %v, want %v", got, bytesBefore+1024)
	}
}

func TestRecordAuthVerification(t *testing.T) {
	before := testutil.ToFloat64(AuthVerificationsTotal.WithLabelValues("error"))

	RecordAuthVerification(errors.New("bad token"))

	if got := testutil.ToFloat64(AuthVerificationsTotal.WithLabelValues("error")); got != before+1 {
		t.Errorf("error counter = %v, want %v", got, before+1)
	}
}
