// Chirp - Minimal Social Network API
// Copyright 2026 Chirp Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chirp-social/chirp

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chirp-social/chirp/internal/models"
)

// tweetSelect joins the author summary and like count onto each tweet.
const tweetSelect = `
	SELECT t.id, t.content, t.user_id,
		COALESCE(t.media_url, ''), COALESCE(t.media_type, ''), t.created_at,
		u.username, COALESCE(u.avatar_url, ''),
		(SELECT COUNT(*) FROM likes l WHERE l.tweet_id = t.id)
	FROM tweets t
	JOIN users u ON u.id = t.user_id`

func scanTweet(row interface{ Scan(...any) error }) (*models.Tweet, error) {
	var (
		t      models.Tweet
		author models.AuthorSummary
	)
	err := row.Scan(&t.ID, &t.Content, &t.UserID, &t.MediaURL, &t.MediaType,
		&t.CreatedAt, &author.Username, &author.AvatarURL, &t.LikeCount)
	if err != nil {
		return nil, err
	}
	author.ID = t.UserID
	t.Author = &author
	return &t, nil
}

// InsertTweet persists a new tweet. The ID and CreatedAt are assigned
// here when unset so callers can pass a partially filled struct.
func (db *DB) InsertTweet(ctx context.Context, tweet *models.Tweet) (err error) {
	if tweet.ID == uuid.Nil {
		tweet.ID = uuid.New()
	}
	if tweet.CreatedAt.IsZero() {
		tweet.CreatedAt = time.Now().UTC()
	}

	defer observeQuery("insert", "tweets", time.Now(), &err)

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO tweets (id, content, user_id, media_url, media_type, created_at)
		VALUES (?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), ?)`,
		tweet.ID, tweet.Content, tweet.UserID, tweet.MediaURL, tweet.MediaType, tweet.CreatedAt)
	if isDuplicateKeyErr(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert tweet: %w", err)
	}
	return nil
}

// GetTweetByID returns a single tweet with author and like count,
// or ErrNotFound.
func (db *DB) GetTweetByID(ctx context.Context, id uuid.UUID) (t *models.Tweet, err error) {
	defer observeQuery("select", "tweets", time.Now(), &err)

	row := db.conn.QueryRowContext(ctx, tweetSelect+` WHERE t.id = ?`, id)
	t, err = scanTweet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tweet %s: %w", id, err)
	}
	return t, nil
}

// ListTweets returns one page of the global feed, newest first. The
// cursor is the id of the last tweet from the previous page; pass nil
// for the first page. An unknown cursor id returns ErrNotFound.
func (db *DB) ListTweets(ctx context.Context, cursor *string, limit int) (*models.TweetPage, error) {
	return db.listTweets(ctx, "", cursor, limit)
}

// ListUserTweets returns one page of a single user's tweets, newest first.
func (db *DB) ListUserTweets(ctx context.Context, userID string, cursor *string, limit int) (*models.TweetPage, error) {
	return db.listTweets(ctx, userID, cursor, limit)
}

func (db *DB) listTweets(ctx context.Context, userID string, cursor *string, limit int) (page *models.TweetPage, err error) {
	defer observeQuery("select", "tweets", time.Now(), &err)

	query := tweetSelect
	var args []any

	where := ""
	if userID != "" {
		where = ` WHERE t.user_id = ?`
		args = append(args, userID)
	}

	if cursor != nil {
		cursorID, err := uuid.Parse(*cursor)
		if err != nil {
			return nil, fmt.Errorf("invalid cursor %q: %w", *cursor, err)
		}
		createdAt, err := db.tweetCreatedAt(ctx, cursorID)
		if err != nil {
			return nil, err
		}
		if where == "" {
			where = ` WHERE `
		} else {
			where += ` AND `
		}
		// Explicit OR instead of a tuple comparison: the DuckDB driver
		// binds uuid.UUID as VARCHAR inside tuples, which breaks the
		// type check against the UUID column.
		where += `(t.created_at < ? OR (t.created_at = ? AND t.id < CAST(? AS UUID)))`
		args = append(args, createdAt, createdAt, cursorID.String())
	}

	query += where + ` ORDER BY t.created_at DESC, t.id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tweets: %w", err)
	}
	defer closeQuietly(rows)

	tweets := make([]models.Tweet, 0, limit)
	for rows.Next() {
		t, err := scanTweet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tweet: %w", err)
		}
		tweets = append(tweets, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tweets: %w", err)
	}

	page = &models.TweetPage{Tweets: tweets}
	if len(tweets) == limit && limit > 0 {
		last := tweets[len(tweets)-1].ID.String()
		page.NextCursor = &last
	}
	return page, nil
}

// tweetCreatedAt resolves a cursor id to its timestamp for keyset seeking.
func (db *DB) tweetCreatedAt(ctx context.Context, id uuid.UUID) (time.Time, error) {
	var createdAt time.Time
	err := db.conn.QueryRowContext(ctx,
		`SELECT created_at FROM tweets WHERE id = ?`, id).Scan(&createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to resolve cursor %s: %w", id, err)
	}
	return createdAt, nil
}
