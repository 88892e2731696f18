// Chirp - Minimal Social Network API
// Copyright 2026 Chirp Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chirp-social/chirp

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chirp-social/chirp/internal/auth"
	"github.com/chirp-social/chirp/internal/database"
	"github.com/chirp-social/chirp/internal/models"
	"github.com/chirp-social/chirp/internal/validation"
)

// Profile handles GET /api/users/{username}: public profile with
// tweet, follower and following counts.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	profile, err := h.db.GetProfileByUsername(r.Context(), username)
	if err != nil {
		respondStoreError(w, r, err, "user not found", "")
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// UpdateProfile handles PUT /api/users/profile: partial update of the
// caller's profile fields.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondError(w, http.StatusBadRequest, verr.Message())
		return
	}

	updated, err := h.db.UpdateProfile(r.Context(), user.ID, &models.ProfileUpdate{
		Username:  req.Username,
		FullName:  req.FullName,
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		respondStoreError(w, r, err, "user not found", "username already taken")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// Follow handles POST /api/users/follow/{userId}.
func (h *Handler) Follow(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	targetID := chi.URLParam(r, "userId")
	if targetID == user.ID {
		respondError(w, http.StatusBadRequest, "cannot follow yourself")
		return
	}

	if _, err := h.db.GetUserByID(r.Context(), targetID); err != nil {
		respondStoreError(w, r, err, "user not found", "")
		return
	}

	if err := h.db.InsertFollow(r.Context(), user.ID, targetID); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			respondError(w, http.StatusBadRequest, "already following this user")
			return
		}
		respondStoreError(w, r, err, "user not found", "already following this user")
		return
	}

	respondJSON(w, http.StatusOK, models.MessageResponse{Message: "successfully followed user"})
}

// Unfollow handles DELETE /api/users/follow/{userId}.
func (h *Handler) Unfollow(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	targetID := chi.URLParam(r, "userId")
	if err := h.db.DeleteFollow(r.Context(), user.ID, targetID); err != nil {
		respondStoreError(w, r, err, "not following this user", "")
		return
	}

	respondJSON(w, http.StatusOK, models.MessageResponse{Message: "successfully unfollowed user"})
}

// ProfilePicture handles PUT /api/users/profile-picture: multipart
// "avatar" file, stored under a deterministic per-user path with
// upsert so a new upload replaces the old one.
func (h *Handler) ProfilePicture(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.config.Upload.MaxFileSize+1<<20)
	if err := r.ParseMultipartForm(h.config.Upload.MaxFileSize); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		respondError(w, http.StatusBadRequest, "avatar file is required")
		return
	}
	defer func() { _ = file.Close() }()

	// Same type and size constraints as tweet media: any whitelisted
	// image or video can serve as the avatar.
	media, err := h.readMediaFile(file, header)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	filename := "avatar-" + user.ID + media.ext
	url, err := h.storage.Upload(r.Context(), h.config.Storage.AvatarBucket, filename, media.contentType, media.data, true)
	if err != nil {
		h.respondUploadError(w, r, err)
		return
	}

	if err := h.db.SetAvatarURL(r.Context(), user.ID, url); err != nil {
		respondStoreError(w, r, err, "user not found", "")
		return
	}

	updated, err := h.db.GetUserByID(r.Context(), user.ID)
	if err != nil {
		respondStoreError(w, r, err, "user not found", "")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}
