// Chirp - Minimal Social Network API
// Copyright 2026 Chirp Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chirp-social/chirp

package models

import "time"

// User is a local account record. The ID is the opaque identifier
// issued by the external identity provider; it is never generated
// locally. Optional profile fields serialize as empty strings when
// unset, matching the public API contract.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullName,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthorSummary is the subset of User embedded in tweet responses.
type AuthorSummary struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// Summary returns the author summary for the user.
func (u *User) Summary() AuthorSummary {
	return AuthorSummary{
		ID:        u.ID,
		Username:  u.Username,
		AvatarURL: u.AvatarURL,
	}
}

// ProfileCounts holds the aggregate counts attached to a public profile.
type ProfileCounts struct {
	Tweets    int64 `json:"tweets"`
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}

// Profile is the public view of a user: no email, plus aggregate counts.
type Profile struct {
	ID        string        `json:"id"`
	Username  string        `json:"username"`
	FullName  string        `json:"fullName,omitempty"`
	Bio       string        `json:"bio,omitempty"`
	AvatarURL string        `json:"avatarUrl,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	Counts    ProfileCounts `json:"counts"`
}

// ProfileUpdate carries a partial profile mutation. Nil fields are left
// untouched; non-nil fields overwrite, including with the empty string.
type ProfileUpdate struct {
	Username  *string
	FullName  *string
	Bio       *string
	AvatarURL *string
}

// Empty reports whether the update carries no changes at all.
func (p *ProfileUpdate) Empty() bool {
	return p.Username == nil && p.FullName == nil && p.Bio == nil && p.AvatarURL == nil
}
