// Chirp - Minimal Social Network API
// Copyright 2026 Chirp Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chirp-social/chirp

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ToggleLike flips the like state of (tweetID, userID) and returns the
// resulting state: true when the like was created, false when an
// existing like was removed. A concurrent duplicate insert trips the
// composite primary key and surfaces as ErrDuplicate.
func (db *DB) ToggleLike(ctx context.Context, tweetID uuid.UUID, userID string) (liked bool, err error) {
	defer observeQuery("toggle", "likes", time.Now(), &err)

	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM likes WHERE tweet_id = ? AND user_id = ?`, tweetID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to remove like: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return false, nil
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO likes (tweet_id, user_id, created_at) VALUES (?, ?, ?)`,
		tweetID, userID, time.Now().UTC())
	if isDuplicateKeyErr(err) {
		return false, ErrDuplicate
	}
	if err != nil {
		return false, fmt.Errorf("failed to insert like: %w", err)
	}
	return true, nil
}

// LikeExists reports whether userID currently likes tweetID.
func (db *DB) LikeExists(ctx context.Context, tweetID uuid.UUID, userID string) (exists bool, err error) {
	defer observeQuery("select", "likes", time.Now(), &err)

	var count int
	err = db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM likes WHERE tweet_id = ? AND user_id = ?`,
		tweetID, userID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check like: %w", err)
	}
	return count > 0, nil
}

// CountLikes returns the number of likes on a tweet.
func (db *DB) CountLikes(ctx context.Context, tweetID uuid.UUID) (count int64, err error) {
	defer observeQuery("select", "likes", time.Now(), &err)

	err = db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM likes WHERE tweet_id = ?`, tweetID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return count, nil
}
