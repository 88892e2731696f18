// Chirp - Minimal Social Network API
// Copyright 2026 Chirp Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chirp-social/chirp

package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/chirp-social/chirp/internal/auth"
	"github.com/chirp-social/chirp/internal/logging"
	"github.com/chirp-social/chirp/internal/models"
	"github.com/chirp-social/chirp/internal/storage"
)

// ListTweets handles GET /api/tweets: the global feed, cursor-paginated.
func (h *Handler) ListTweets(w http.ResponseWriter, r *http.Request) {
	cursor, limit, err := h.pageParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.db.ListTweets(r.Context(), cursor, limit)
	if err != nil {
		respondStoreError(w, r, err, "cursor not found", "")
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// UserTweets handles GET /api/tweets/user/{username}.
func (h *Handler) UserTweets(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	user, err := h.db.GetUserByUsername(r.Context(), username)
	if err != nil {
		respondStoreError(w, r, err, "user not found", "")
		return
	}

	cursor, limit, err := h.pageParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.db.ListUserTweets(r.Context(), user.ID, cursor, limit)
	if err != nil {
		respondStoreError(w, r, err, "cursor not found", "")
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// CreateTweet handles POST /api/tweets: multipart form with a content
// field and an optional single "media" file. All validation runs
// before anything is written; a failed media upload leaves no partial
// tweet behind.
func (h *Handler) CreateTweet(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	// Form size cap: the media limit plus headroom for the text fields.
	r.Body = http.MaxBytesReader(w, r.Body, h.config.Upload.MaxFileSize+1<<20)
	if err := r.ParseMultipartForm(h.config.Upload.MaxFileSize); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	content := strings.TrimSpace(r.FormValue("content"))
	if content == "" {
		respondError(w, http.StatusBadRequest, "content is required")
		return
	}
	if utf8.RuneCountInString(content) > models.MaxTweetLength {
		respondError(w, http.StatusBadRequest, "content exceeds 280 characters")
		return
	}

	tweet := &models.Tweet{
		Content: content,
		UserID:  user.ID,
	}

	file, header, err := r.FormFile("media")
	switch {
	case err == nil:
		defer func() { _ = file.Close() }()

		media, err := h.readMediaFile(file, header)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}

		filename := uuid.NewString() + media.ext
		url, err := h.storage.Upload(r.Context(), h.config.Storage.TweetBucket, filename, media.contentType, media.data, false)
		if err != nil {
			h.respondUploadError(w, r, err)
			return
		}
		tweet.MediaURL = url
		tweet.MediaType = media.kind
	case errors.Is(err, http.ErrMissingFile):
		// Text-only tweet.
	default:
		respondError(w, http.StatusBadRequest, "invalid media upload")
		return
	}

	if err := h.db.InsertTweet(r.Context(), tweet); err != nil {
		respondStoreError(w, r, err, "", "duplicate tweet")
		return
	}
	summary := user.Summary()
	tweet.Author = &summary

	respondJSON(w, http.StatusCreated, tweet)
}

// LikeTweet handles POST /api/tweets/{id}/like: toggles the caller's
// like and reports the resulting state.
func (h *Handler) LikeTweet(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	tweetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid tweet id")
		return
	}

	if _, err := h.db.GetTweetByID(r.Context(), tweetID); err != nil {
		respondStoreError(w, r, err, "tweet not found", "")
		return
	}

	liked, err := h.db.ToggleLike(r.Context(), tweetID, user.ID)
	if err != nil {
		respondStoreError(w, r, err, "tweet not found", "like already recorded")
		return
	}

	respondJSON(w, http.StatusOK, models.LikeResponse{Liked: liked})
}

// pageParams parses the cursor and limit query parameters. The limit
// defaults and ceiling come from configuration.
func (h *Handler) pageParams(r *http.Request) (*string, int, error) {
	var cursor *string
	if c := r.URL.Query().Get("cursor"); c != "" {
		if _, err := uuid.Parse(c); err != nil {
			return nil, 0, errors.New("invalid cursor")
		}
		cursor = &c
	}

	limit := h.config.API.DefaultPageSize
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil {
			return nil, 0, errors.New("invalid limit")
		}
		limit = parsed
	}
	if limit < 1 {
		limit = 1
	}
	if limit > h.config.API.MaxPageSize {
		limit = h.config.API.MaxPageSize
	}

	return cursor, limit, nil
}

// respondUploadError maps blob store failures onto API responses.
func (h *Handler) respondUploadError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrUnavailable):
		respondError(w, http.StatusServiceUnavailable, "media storage temporarily unavailable")
	case errors.Is(err, storage.ErrObjectExists):
		respondError(w, http.StatusConflict, "media object already exists")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Media upload failed")
		respondError(w, http.StatusInternalServerError, "failed to upload media")
	}
}
