// Chirp - Minimal Social Network API
// Copyright 2026 Chirp Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chirp-social/chirp

package database

import (
	"context"
	"fmt"
	"time"
)

// InsertFollow records that followerID follows followingID. Returns
// ErrDuplicate when the edge already exists. Self-follows are rejected
// before hitting the CHECK constraint so the caller gets a stable error.
func (db *DB) InsertFollow(ctx context.Context, followerID, followingID string) (err error) {
	if followerID == followingID {
		return fmt.Errorf("cannot follow self")
	}

	defer observeQuery("insert", "follows", time.Now(), &err)

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO follows (follower_id, following_id, created_at) VALUES (?, ?, ?)`,
		followerID, followingID, time.Now().UTC())
	if isDuplicateKeyErr(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert follow: %w", err)
	}
	return nil
}

// DeleteFollow removes the follow edge. Returns ErrNotFound when the
// edge does not exist.
func (db *DB) DeleteFollow(ctx context.Context, followerID, followingID string) (err error) {
	defer observeQuery("delete", "follows", time.Now(), &err)

	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = ? AND following_id = ?`,
		followerID, followingID)
	if err != nil {
		return fmt.Errorf("failed to delete follow: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// FollowExists reports whether followerID currently follows followingID.
func (db *DB) FollowExists(ctx context.Context, followerID, followingID string) (exists bool, err error) {
	defer observeQuery("select", "follows", time.Now(), &err)

	var count int
	err = db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM follows WHERE follower_id = ? AND following_id = ?`,
		followerID, followingID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	return count > 0, nil
}
