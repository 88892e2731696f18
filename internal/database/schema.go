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

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	queries := []string{
		// Users are created lazily on first authenticated request. The id
		// comes from the external identity provider, so it is TEXT not UUID.
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			username TEXT NOT NULL UNIQUE,
			full_name TEXT,
			bio TEXT,
			avatar_url TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS tweets (
			id UUID PRIMARY KEY,
			content TEXT NOT NULL,
			user_id TEXT NOT NULL REFERENCES users(id),
			media_url TEXT,
			media_type TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		// Composite primary key makes double-likes a constraint violation,
		// which surfaces as ErrDuplicate without a separate existence check.
		`CREATE TABLE IF NOT EXISTS likes (
			tweet_id UUID NOT NULL REFERENCES tweets(id),
			user_id TEXT NOT NULL REFERENCES users(id),
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (tweet_id, user_id)
		)`,

		`CREATE TABLE IF NOT EXISTS follows (
			follower_id TEXT NOT NULL REFERENCES users(id),
			following_id TEXT NOT NULL REFERENCES users(id),
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (follower_id, following_id),
			CHECK (follower_id <> following_id)
		)`,
	}

	for _, query := range queries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

// createIndexes creates database indexes for query optimization.
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		// Feed queries order by (created_at, id) descending.
		`CREATE INDEX IF NOT EXISTS idx_tweets_created_at ON tweets(created_at, id)`,
		`CREATE INDEX IF NOT EXISTS idx_tweets_user_id ON tweets(user_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_likes_tweet_id ON likes(tweet_id)`,
		`CREATE INDEX IF NOT EXISTS idx_follows_following_id ON follows(following_id)`,
	}

	for _, idx := range indexes {
		if _, err := db.conn.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", idx, err)
		}
	}

	return nil
}
