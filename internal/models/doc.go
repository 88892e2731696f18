// Chirp - Minimal Social Network API
// Copyright 2026 Chirp Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chirp-social/chirp

// Package models defines the data structures used throughout Chirp:
// users, tweets, likes, follows, and the JSON wire shapes the API
// serves. Database row mapping lives in the database package; these
// types carry only domain and response data.
package models
