// Chirp - Minimal Social Network API
// Copyright 2026 Chirp Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chirp-social/chirp

package api

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"

	"github.com/chirp-social/chirp/internal/auth"
	"github.com/chirp-social/chirp/internal/config"
	"github.com/chirp-social/chirp/internal/database"
	"github.com/chirp-social/chirp/internal/models"
	"github.com/chirp-social/chirp/internal/storage"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// testEnv is a fully wired API over an in-memory database, an HMAC
// verifier and a fake blob store.
type testEnv struct {
	router  http.Handler
	db      *database.DB
	cfg     *config.Config
	uploads map[string]int // upload path -> request count
}

// blobStoreBehavior controls the fake blob store per test.
type blobStoreBehavior struct {
	status int
}

func setupEnv(t *testing.T) *testEnv {
	return setupEnvWithBlobStore(t, &blobStoreBehavior{status: http.StatusOK})
}

func setupEnvWithBlobStore(t *testing.T, blob *blobStoreBehavior) *testEnv {
	t.Helper()

	env := &testEnv{uploads: make(map[string]int)}

	blobServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.uploads[r.URL.Path]++
		w.WriteHeader(blob.status)
	}))
	t.Cleanup(blobServer.Close)

	cfg := &config.Config{
		Auth: config.AuthConfig{Mode: "hmac", HMACSecret: testSecret},
		Storage: config.StorageConfig{
			URL:          blobServer.URL,
			APIKey:       "test-key",
			TweetBucket:  "tweet-media",
			AvatarBucket: "profile-pictures",
		},
		Upload: config.UploadConfig{
			MaxFileSize: 2 << 20,
			AllowedTypes: []string{
				"image/jpeg", "image/png", "image/gif", "image/webp",
				"video/mp4", "video/quicktime",
			},
		},
		API:      config.APIConfig{DefaultPageSize: 20, MaxPageSize: 100},
		Security: config.SecurityConfig{CORSOrigins: []string{"*"}},
	}
	env.cfg = cfg

	db, err := database.New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "512MB", Threads: 2})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	env.db = db

	verifier, err := auth.NewVerifier(context.Background(), &cfg.Auth)
	if err != nil {
		t.Fatalf("failed to create verifier: %v", err)
	}

	handler := NewHandler(db, storage.New(&cfg.Storage), cfg)
	env.router = NewRouter(handler, auth.NewMiddleware(verifier, db), cfg)
	return env
}

// token signs an HS256 token for the given identity.
func token(t *testing.T, userID string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

// register creates a user through the public registration endpoint.
func (env *testEnv) register(t *testing.T, userID, email string) *models.User {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/api/auth/user", "", jsonBody(t, map[string]string{
		"user_id": userID,
		"email":   email,
	}), "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("registration failed: %d %s", rec.Code, rec.Body.String())
	}
	var u models.User
	decodeBody(t, rec, &u)
	return &u
}

// do performs one request against the router. A non-empty asUser adds
// a bearer token for that identity.
func (env *testEnv) do(t *testing.T, method, path, asUser string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if asUser != "" {
		req.Header.Set("Authorization", "Bearer "+token(t, asUser))
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v interface{}) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	return bytes.NewReader(data)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

// multipartBody builds a multipart form with a content field and an
// optional file part.
func multipartBody(t *testing.T, fields map[string]string, fileField, filename, fileType string, fileData []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)

	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field %s: %v", k, err)
		}
	}

	if fileField != "" {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", `form-data; name="`+fileField+`"; filename="`+filename+`"`)
		hdr.Set("Content-Type", fileType)
		part, err := mw.CreatePart(hdr)
		if err != nil {
			t.Fatalf("failed to create file part: %v", err)
		}
		if _, err := part.Write(fileData); err != nil {
			t.Fatalf("failed to write file data: %v", err)
		}
	}

	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	return buf, mw.FormDataContentType()
}

// pngBytes is a minimal payload that http.DetectContentType sniffs as
// image/png.
func pngBytes(extra int) []byte {
	header := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	return append(header, bytes.Repeat([]byte{0}, extra)...)
}
