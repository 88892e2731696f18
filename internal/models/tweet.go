// Chirp - Minimal Social Network API
// Copyright 2026 Chirp Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chirp-social/chirp

package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxTweetLength is the content length ceiling, counted in runes after
// trimming surrounding whitespace.
const MaxTweetLength = 280

// Media kinds stored on a tweet. Derived from the upload's MIME type.
const (
	MediaKindImage = "image"
	MediaKindVideo = "video"
)

// Tweet is a single post. MediaURL and MediaType are set only when the
// tweet carries an attachment. Author and LikeCount are populated on
// read paths; writes persist only the core columns.
type Tweet struct {
	ID        uuid.UUID      `json:"id"`
	Content   string         `json:"content"`
	UserID    string         `json:"userId"`
	MediaURL  string         `json:"mediaUrl,omitempty"`
	MediaType string         `json:"mediaType,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	Author    *AuthorSummary `json:"user,omitempty"`
	LikeCount int64          `json:"likeCount"`
}

// Like marks that a user liked a tweet. The (TweetID, UserID) pair is
// unique; existence of a row means "liked".
type Like struct {
	TweetID   uuid.UUID `json:"tweetId"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Follow is a directed edge from follower to followed user. The pair is
// unique and self-edges are forbidden.
type Follow struct {
	FollowerID  string    `json:"followerId"`
	FollowingID string    `json:"followingId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TweetPage is one page of a cursor-paginated feed. NextCursor is the
// id of the last returned tweet when a full page was produced, and nil
// otherwise. A full final page therefore yields a cursor pointing at an
// empty follow-up page; callers treat the subsequent empty page as the
// end of the feed.
type TweetPage struct {
	Tweets     []Tweet `json:"tweets"`
	NextCursor *string `json:"nextCursor"`
}
