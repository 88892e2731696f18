// Chirp - Minimal Social Network API
// Copyright 2026 Chirp Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chirp-social/chirp

package api

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/chirp-social/chirp/internal/models"
)

func postTweet(t *testing.T, env *testEnv, asUser, content string) models.Tweet {
	t.Helper()
	body, contentType := multipartBody(t, map[string]string{"content": content}, "", "", "", nil)
	rec := env.do(t, http.MethodPost, "/api/tweets", asUser, body, contentType)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create tweet: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var tweet models.Tweet
	decodeBody(t, rec, &tweet)
	return tweet
}

func TestCreateTweet(t *testing.T) {
	env := setupEnv(t)
	env.register(t, "auth-1", "alice@example.com")

	t.Run("text only", func(t *testing.T) {
		tweet := postTweet(t, env, "auth-1", "hello world")
		if tweet.Content != "hello world" {
			t.Errorf("content = %q", tweet.Content)
		}
		if tweet.Author == nil || tweet.Author.Username != "alice" {
			t.Errorf("author = %+v", tweet.Author)
		}
		if tweet.MediaURL != "" {
			t.Errorf("unexpected media url %q", tweet.MediaURL)
		}
	})

	t.Run("requires auth", func(t *testing.T) {
		body, contentType := multipartBody(t, map[string]string{"content": "hi"}, "", "", "", nil)
		rec := env.do(t, http.MethodPost, "/api/tweets", "", body, contentType)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("empty content", func(t *testing.T) {
		body, contentType := multipartBody(t, map[string]string{"content": "   "}, "", "", "", nil)
		rec := env.do(t, http.MethodPost, "/api/tweets", "auth-1", body, contentType)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("content at limit", func(t *testing.T) {
		tweet := postTweet(t, env, "auth-1", strings.Repeat("x", 280))
		if len(tweet.Content) != 280 {
			t.Errorf("content length = %d", len(tweet.Content))
		}
	})

	t.Run("content over limit", func(t *testing.T) {
		body, contentType := multipartBody(t, map[string]string{"content": strings.Repeat("x", 281)}, "", "", "", nil)
		rec := env.do(t, http.MethodPost, "/api/tweets", "auth-1", body, contentType)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("multibyte content counts runes", func(t *testing.T) {
		// 280 four-byte runes is well over 280 bytes but exactly at the limit.
		tweet := postTweet(t, env, "auth-1", strings.Repeat("\U0001F600", 280))
		if tweet.ID == uuid.Nil {
			t.Error("tweet not created")
		}
	})
}

func TestCreateTweetWithMedia(t *testing.T) {
	env := setupEnv(t)
	env.register(t, "auth-1", "alice@example.com")

	t.Run("png upload", func(t *testing.T) {
		body, contentType := multipartBody(t,
			map[string]string{"content": "look at this"},
			"media", "photo.png", "image/png", pngBytes(64))
		rec := env.do(t, http.MethodPost, "/api/tweets", "auth-1", body, contentType)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}

		var tweet models.Tweet
		decodeBody(t, rec, &tweet)
		if tweet.MediaType != models.MediaKindImage {
			t.Errorf("media type = %q, want image", tweet.MediaType)
		}
		if !strings.Contains(tweet.MediaURL, "/tweet-media/") {
			t.Errorf("media url = %q", tweet.MediaURL)
		}
		if !strings.HasSuffix(tweet.MediaURL, ".png") {
			t.Errorf("media url missing extension: %q", tweet.MediaURL)
		}
	})

	t.Run("oversized file", func(t *testing.T) {
		big := pngBytes(int(env.cfg.Upload.MaxFileSize))
		body, contentType := multipartBody(t,
			map[string]string{"content": "too big"},
			"media", "big.png", "image/png", big)
		rec := env.do(t, http.MethodPost, "/api/tweets", "auth-1", body, contentType)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("disallowed type", func(t *testing.T) {
		body, contentType := multipartBody(t,
			map[string]string{"content": "sneaky"},
			"media", "evil.exe", "application/octet-stream", []byte("MZ\x90\x00"))
		rec := env.do(t, http.MethodPost, "/api/tweets", "auth-1", body, contentType)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("declared image type with non-image bytes", func(t *testing.T) {
		body, contentType := multipartBody(t,
			map[string]string{"content": "spoofed"},
			"media", "fake.png", "image/png", []byte("just text, not a png"))
		rec := env.do(t, http.MethodPost, "/api/tweets", "auth-1", body, contentType)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestRejectedMediaTypeLeavesNoState(t *testing.T) {
	env := setupEnv(t)
	env.register(t, "auth-1", "alice@example.com")

	body, contentType := multipartBody(t,
		map[string]string{"content": "attached report"},
		"media", "report.pdf", "application/pdf", []byte("%PDF-1.4\n"))
	rec := env.do(t, http.MethodPost, "/api/tweets", "auth-1", body, contentType)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	// The rejection must happen before any write: nothing reached the
	// blob store and no tweet row exists.
	if len(env.uploads) != 0 {
		t.Errorf("blob store received %d uploads, want 0", len(env.uploads))
	}
	feed := env.do(t, http.MethodGet, "/api/tweets", "", nil, "")
	var page models.TweetPage
	decodeBody(t, feed, &page)
	if len(page.Tweets) != 0 {
		t.Errorf("feed has %d tweets, want 0", len(page.Tweets))
	}
}

func TestCreateTweetUploadFailureLeavesNoTweet(t *testing.T) {
	env := setupEnvWithBlobStore(t, &blobStoreBehavior{status: http.StatusInternalServerError})
	env.register(t, "auth-1", "alice@example.com")

	body, contentType := multipartBody(t,
		map[string]string{"content": "doomed"},
		"media", "photo.png", "image/png", pngBytes(64))
	rec := env.do(t, http.MethodPost, "/api/tweets", "auth-1", body, contentType)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	// No partial record.
	feed := env.do(t, http.MethodGet, "/api/tweets", "", nil, "")
	var page models.TweetPage
	decodeBody(t, feed, &page)
	if len(page.Tweets) != 0 {
		t.Errorf("feed has %d tweets, want 0", len(page.Tweets))
	}
}

func TestFeedPagination(t *testing.T) {
	env := setupEnv(t)
	env.register(t, "auth-1", "alice@example.com")

	for i := 0; i < 5; i++ {
		postTweet(t, env, "auth-1", fmt.Sprintf("tweet %d", i))
	}

	seen := make(map[string]bool)
	path := "/api/tweets?limit=2"
	for pages := 0; ; pages++ {
		if pages > 5 {
			t.Fatal("pagination did not terminate")
		}
		rec := env.do(t, http.MethodGet, path, "", nil, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var page models.TweetPage
		decodeBody(t, rec, &page)
		for _, tw := range page.Tweets {
			if seen[tw.ID.String()] {
				t.Errorf("tweet %s returned twice", tw.ID)
			}
			seen[tw.ID.String()] = true
		}
		if page.NextCursor == nil {
			break
		}
		path = "/api/tweets?limit=2&cursor=" + *page.NextCursor
	}

	if len(seen) != 5 {
		t.Errorf("walk returned %d distinct tweets, want 5", len(seen))
	}
}

func TestFeedBadParams(t *testing.T) {
	env := setupEnv(t)

	if rec := env.do(t, http.MethodGet, "/api/tweets?cursor=not-a-uuid", "", nil, ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad cursor: status = %d, want 400", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/api/tweets?limit=abc", "", nil, ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit: status = %d, want 400", rec.Code)
	}
	// Unknown but well-formed cursor is a 404.
	if rec := env.do(t, http.MethodGet, "/api/tweets?cursor="+uuid.NewString(), "", nil, ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown cursor: status = %d, want 404", rec.Code)
	}
}

func TestUserTweets(t *testing.T) {
	env := setupEnv(t)
	env.register(t, "auth-1", "alice@example.com")
	env.register(t, "auth-2", "bob@example.com")
	postTweet(t, env, "auth-1", "from alice")
	postTweet(t, env, "auth-2", "from bob")

	rec := env.do(t, http.MethodGet, "/api/tweets/user/alice", "", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var page models.TweetPage
	decodeBody(t, rec, &page)
	if len(page.Tweets) != 1 || page.Tweets[0].Content != "from alice" {
		t.Errorf("page = %+v", page)
	}

	if rec := env.do(t, http.MethodGet, "/api/tweets/user/nobody", "", nil, ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown user: status = %d, want 404", rec.Code)
	}
}

func TestLikeTweet(t *testing.T) {
	env := setupEnv(t)
	env.register(t, "auth-1", "alice@example.com")
	tweet := postTweet(t, env, "auth-1", "like me")

	likePath := "/api/tweets/" + tweet.ID.String() + "/like"

	for i, want := range []bool{true, false, true} {
		rec := env.do(t, http.MethodPost, likePath, "auth-1", nil, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("toggle %d: status = %d", i, rec.Code)
		}
		var resp models.LikeResponse
		decodeBody(t, rec, &resp)
		if resp.Liked != want {
			t.Errorf("toggle %d: liked = %v, want %v", i, resp.Liked, want)
		}
	}

	t.Run("missing tweet", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/tweets/"+uuid.NewString()+"/like", "auth-1", nil, "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/tweets/garbage/like", "auth-1", nil, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("requires auth", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, likePath, "", nil, "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}

func TestFeedIncludesLikeCount(t *testing.T) {
	env := setupEnv(t)
	env.register(t, "auth-1", "alice@example.com")
	env.register(t, "auth-2", "bob@example.com")
	tweet := postTweet(t, env, "auth-1", "popular")

	likePath := "/api/tweets/" + tweet.ID.String() + "/like"
	env.do(t, http.MethodPost, likePath, "auth-1", nil, "")
	env.do(t, http.MethodPost, likePath, "auth-2", nil, "")

	rec := env.do(t, http.MethodGet, "/api/tweets", "", nil, "")
	var page models.TweetPage
	decodeBody(t, rec, &page)
	if len(page.Tweets) != 1 {
		t.Fatalf("feed has %d tweets", len(page.Tweets))
	}
	if page.Tweets[0].LikeCount != 2 {
		t.Errorf("likeCount = %d, want 2", page.Tweets[0].LikeCount)
	}
}
