// Chirp - Minimal Social Network API
// Copyright 2026 Chirp Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chirp-social/chirp

package api

// RegisterUserRequest is the body of POST /api/auth/user. The caller
// has already authenticated with the identity provider; user_id is the
// provider-issued subject.
type RegisterUserRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Email  string `json:"email" validate:"required,email"`
}

// UpdateProfileRequest is the body of PUT /api/users/profile. All
// fields are optional; absent fields are left untouched.
type UpdateProfileRequest struct {
	Username  *string `json:"username" validate:"omitempty,min=3,max=30"`
	FullName  *string `json:"fullName" validate:"omitempty,max=100"`
	Bio       *string `json:"bio" validate:"omitempty,max=160"`
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,url"`
}
