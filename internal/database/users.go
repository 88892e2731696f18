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
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chirp-social/chirp/internal/models"
)

const userColumns = `id, email, username, COALESCE(full_name, ''), COALESCE(bio, ''), COALESCE(avatar_url, ''), created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.FullName, &u.Bio, &u.AvatarURL, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByID returns the user with the given identity-provider ID,
// or ErrNotFound.
func (db *DB) GetUserByID(ctx context.Context, id string) (u *models.User, err error) {
	defer observeQuery("select", "users", time.Now(), &err)

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err = scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return u, nil
}

// GetUserByUsername returns the user with the given username, or ErrNotFound.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (u *models.User, err error) {
	defer observeQuery("select", "users", time.Now(), &err)

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	u, err = scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username %s: %w", username, err)
	}
	return u, nil
}

// GetOrCreateUser returns the existing user for id, creating the row on
// first sight. The initial username is derived from the email local
// part; on collision a short random suffix is appended so registration
// never fails for a valid identity.
func (db *DB) GetOrCreateUser(ctx context.Context, id, email string) (*models.User, error) {
	if u, err := db.GetUserByID(ctx, id); err == nil {
		return u, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	username := usernameFromEmail(email)
	if err := db.insertUser(ctx, id, email, username); err != nil {
		if !errors.Is(err, ErrDuplicate) {
			return nil, err
		}
		// Either the username is taken or a concurrent request created
		// this user. Re-check the id before retrying with a suffix.
		if u, idErr := db.GetUserByID(ctx, id); idErr == nil {
			return u, nil
		}
		username = fmt.Sprintf("%s-%s", username, uuid.NewString()[:8])
		if err := db.insertUser(ctx, id, email, username); err != nil {
			return nil, err
		}
	}

	return db.GetUserByID(ctx, id)
}

func (db *DB) insertUser(ctx context.Context, id, email, username string) (err error) {
	defer observeQuery("insert", "users", time.Now(), &err)

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, username) VALUES (?, ?, ?)`,
		id, email, username)
	if isDuplicateKeyErr(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// usernameFromEmail derives a default username from the email local part.
func usernameFromEmail(email string) string {
	local := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		local = email[:at]
	}
	local = strings.ToLower(strings.TrimSpace(local))
	if local == "" {
		local = "user"
	}
	return local
}

// UpdateProfile applies a partial update to the user's profile fields.
// Nil fields are left untouched. Returns ErrDuplicate if the new
// username is already taken, ErrNotFound if the user does not exist.
func (db *DB) UpdateProfile(ctx context.Context, userID string, upd *models.ProfileUpdate) (u *models.User, err error) {
	if upd.Empty() {
		return db.GetUserByID(ctx, userID)
	}

	var (
		sets []string
		args []any
	)
	if upd.Username != nil {
		sets = append(sets, "username = ?")
		args = append(args, *upd.Username)
	}
	if upd.FullName != nil {
		sets = append(sets, "full_name = ?")
		args = append(args, *upd.FullName)
	}
	if upd.Bio != nil {
		sets = append(sets, "bio = ?")
		args = append(args, *upd.Bio)
	}
	if upd.AvatarURL != nil {
		sets = append(sets, "avatar_url = ?")
		args = append(args, *upd.AvatarURL)
	}
	args = append(args, userID)

	defer observeQuery("update", "users", time.Now(), &err)

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = ?`, strings.Join(sets, ", "))
	res, err := db.conn.ExecContext(ctx, query, args...)
	if isDuplicateKeyErr(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update profile for %s: %w", userID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}

	return db.GetUserByID(ctx, userID)
}

// SetAvatarURL records the public URL of the user's uploaded avatar.
func (db *DB) SetAvatarURL(ctx context.Context, userID, url string) (err error) {
	defer observeQuery("update", "users", time.Now(), &err)

	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET avatar_url = ? WHERE id = ?`, url, userID)
	if err != nil {
		return fmt.Errorf("failed to set avatar url for %s: %w", userID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetProfileByUsername returns the public profile for username,
// including tweet, follower and following counts, or ErrNotFound.
func (db *DB) GetProfileByUsername(ctx context.Context, username string) (*models.Profile, error) {
	u, err := db.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	p := &models.Profile{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Bio:       u.Bio,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}

	start := time.Now()
	row := db.conn.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM tweets WHERE user_id = ?),
			(SELECT COUNT(*) FROM follows WHERE following_id = ?),
			(SELECT COUNT(*) FROM follows WHERE follower_id = ?)`,
		u.ID, u.ID, u.ID)
	err = row.Scan(&p.Counts.Tweets, &p.Counts.Followers, &p.Counts.Following)
	observeQuery("aggregate", "users", start, &err)
	if err != nil {
		return nil, fmt.Errorf("failed to count profile aggregates for %s: %w", username, err)
	}

	return p, nil
}
