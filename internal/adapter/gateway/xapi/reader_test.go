package xapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YoshitsuguKoike/repostflow/internal/app"
	"github.com/YoshitsuguKoike/repostflow/internal/app/config"
	"github.com/YoshitsuguKoike/repostflow/internal/domain/social"
)

type fakeTweet struct {
	ID      string
	Text    string
	Created time.Time
	Likes   int
	Links   map[string]string // t.co -> expanded
}

// fakeX serves the two v2 endpoints used by the fetcher
type fakeX struct {
	users  map[string]string      // username -> id
	recent map[string][]fakeTweet // id -> posts inside the window
	older  map[string][]fakeTweet // id -> posts outside the window
	fail   map[string]int         // id -> status code for the timeline
	limit  int32                  // number of 429 responses to send first
	closed time.Time              // every request before this gets 429 with this reset
	hits   int32                  // 429 responses sent for closed

	mu      sync.Mutex
	queries []string
}

func (x *fakeX) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		if time.Now().Before(x.closed) {
			atomic.AddInt32(&x.hits, 1)
			w.Header().Set("x-rate-limit-reset", strconv.FormatInt(x.closed.Unix(), 10))
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		if atomic.AddInt32(&x.limit, -1) >= 0 {
			w.Header().Set("x-rate-limit-reset", strconv.FormatInt(time.Now().Add(-time.Second).Unix(), 10))
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}

		x.mu.Lock()
		x.queries = append(x.queries, r.URL.String())
		x.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasPrefix(r.URL.Path, "/2/users/by/username/"):
			name := strings.TrimPrefix(r.URL.Path, "/2/users/by/username/")
			id, ok := x.users[name]
			if !ok {
				fmt.Fprintf(w, `{"errors":[{"title":"Not Found Error","detail":"Could not find user with username: [%s].","type":"https://api.twitter.com/2/problems/resource-not-found"}]}`, name)
				return
			}
			fmt.Fprintf(w, `{"data":{"id":%q,"name":"Name","username":%q}}`, id, name)

		case strings.HasSuffix(r.URL.Path, "/tweets"):
			id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/2/users/"), "/tweets")
			if code := x.fail[id]; code != 0 {
				http.Error(w, `{"title":"boom"}`, code)
				return
			}
			posts := x.recent[id]
			if r.URL.Query().Get("start_time") == "" {
				posts = append(append([]fakeTweet{}, x.recent[id]...), x.older[id]...)
			}
			max, _ := strconv.Atoi(r.URL.Query().Get("max_results"))
			if max > 0 && len(posts) > max {
				posts = posts[:max]
			}
			writeTweets(w, posts)

		default:
			http.NotFound(w, r)
		}
	})
}

func writeTweets(w http.ResponseWriter, posts []fakeTweet) {
	type metrics struct {
		Like    int `json:"like_count"`
		Retweet int `json:"retweet_count"`
		Reply   int `json:"reply_count"`
	}
	type link struct {
		URL         string `json:"url"`
		ExpandedURL string `json:"expanded_url"`
	}
	type entities struct {
		URLs []link `json:"urls"`
	}
	type item struct {
		ID        string   `json:"id"`
		Text      string   `json:"text"`
		CreatedAt string   `json:"created_at"`
		Metrics   metrics  `json:"public_metrics"`
		Entities  entities `json:"entities"`
	}
	body := struct {
		Data []item `json:"data,omitempty"`
		Meta struct {
			ResultCount int `json:"result_count"`
		} `json:"meta"`
	}{}
	for _, p := range posts {
		it := item{ID: p.ID, Text: p.Text, CreatedAt: p.Created.UTC().Format(time.RFC3339), Metrics: metrics{Like: p.Likes, Retweet: 2, Reply: 1}}
		for short, long := range p.Links {
			it.Entities.URLs = append(it.Entities.URLs, link{URL: short, ExpandedURL: long})
		}
		body.Data = append(body.Data, it)
	}
	body.Meta.ResultCount = len(posts)
	_ = json.NewEncoder(w).Encode(body)
}

func newTestFetcher(t *testing.T, x *fakeX, concurrency int) *ProfileFetcher {
	t.Helper()
	server := httptest.NewServer(x.handler(t))
	t.Cleanup(server.Close)

	f := NewProfileFetcher(config.XConfig{
		BearerToken:       "test-token",
		BaseURL:           server.URL,
		Lookback:          24 * time.Hour,
		MaxResults:        100,
		FallbackCount:     5,
		RequestsPerMinute: 1000,
		MaxRetries:        2,
		Concurrency:       concurrency,
	}, server.Client(), app.NopLogger{})
	f.client.retry = RetryConfig{MaxRetries: 2, InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond, BackoffMultiplier: 2}
	t.Cleanup(func() { _ = f.Close() })
	return f
}

var created = time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC)

func TestFetch_ValidAndUnknownProfile(t *testing.T) {
	x := &fakeX{
		users:  map[string]string{"alice": "1"},
		recent: map[string][]fakeTweet{"1": {{ID: "100", Text: "hello world", Created: created, Likes: 7}}},
	}
	f := newTestFetcher(t, x, 1)

	digest, err := f.Fetch(context.Background(), []string{"@alice", "ghost"})
	require.NoError(t, err)
	require.Len(t, digest.Sections, 2)

	out := digest.String()
	assert.Contains(t, out, "Posts from @alice (last 24 hours):")
	assert.Contains(t, out, "Date: 2025-03-04 10:30 UTC")
	assert.Contains(t, out, "URL: https://x.com/alice/status/100")
	assert.Contains(t, out, "Likes: 7, Retweets: 2, Replies: 1")
	assert.Contains(t, out, "Error: User '@ghost' not found on X.com")
	assert.Equal(t, 1, digest.PostCount())
}

func TestFetch_FallsBackToMostRecent(t *testing.T) {
	x := &fakeX{
		users: map[string]string{"quiet": "2"},
		older: map[string][]fakeTweet{"2": {
			{ID: "201", Text: "older one", Created: created},
			{ID: "202", Text: "older two", Created: created.Add(-time.Hour)},
		}},
	}
	f := newTestFetcher(t, x, 1)

	digest, err := f.Fetch(context.Background(), []string{"quiet"})
	require.NoError(t, err)

	require.Len(t, digest.Sections, 1)
	s := digest.Sections[0]
	assert.Equal(t, social.WindowMostRecent, s.Window)
	assert.Len(t, s.Posts, 2)
	assert.Contains(t, digest.String(), "Posts from @quiet (most recent):")

	x.mu.Lock()
	defer x.mu.Unlock()
	require.Len(t, x.queries, 3)
	assert.Contains(t, x.queries[1], "start_time=")
	assert.Contains(t, x.queries[1], "max_results=100")
	assert.Contains(t, x.queries[1], "exclude=retweets%2Creplies")
	assert.NotContains(t, x.queries[2], "start_time=")
	assert.Contains(t, x.queries[2], "max_results=5")
}

func TestFetch_NoPostsAtAll(t *testing.T) {
	x := &fakeX{users: map[string]string{"silent": "3"}}
	f := newTestFetcher(t, x, 1)

	digest, err := f.Fetch(context.Background(), []string{"silent"})
	require.NoError(t, err)
	assert.Equal(t, "No posts found for @silent.", digest.String())
}

func TestFetch_TimelineErrorIsIsolated(t *testing.T) {
	x := &fakeX{
		users:  map[string]string{"broken": "4", "alice": "1"},
		recent: map[string][]fakeTweet{"1": {{ID: "100", Text: "hi", Created: created}}},
		fail:   map[string]int{"4": http.StatusInternalServerError},
	}
	f := newTestFetcher(t, x, 1)

	digest, err := f.Fetch(context.Background(), []string{"broken", "alice"})
	require.NoError(t, err)
	require.Len(t, digest.Sections, 2)
	assert.True(t, digest.Sections[0].IsError())
	assert.Contains(t, digest.Sections[0].String(), "Error fetching tweets for @broken:")
	assert.Len(t, digest.Sections[1].Posts, 1)
}

func TestFetch_RetriesAfterRateLimit(t *testing.T) {
	x := &fakeX{
		users:  map[string]string{"alice": "1"},
		recent: map[string][]fakeTweet{"1": {{ID: "100", Text: "hi", Created: created}}},
		limit:  2,
	}
	f := newTestFetcher(t, x, 1)

	digest, err := f.Fetch(context.Background(), []string{"alice"})
	require.NoError(t, err)
	assert.Equal(t, 1, digest.PostCount())
}

func TestFetch_ExpandsShortLinks(t *testing.T) {
	post := fakeTweet{
		ID:      "100",
		Text:    "Read this https://t.co/AbC123",
		Created: created,
		Links:   map[string]string{"https://t.co/AbC123": "https://example.com/post"},
	}
	x := &fakeX{
		users:  map[string]string{"alice": "1"},
		recent: map[string][]fakeTweet{"1": {post}},
	}
	f := newTestFetcher(t, x, 1)

	digest, err := f.Fetch(context.Background(), []string{"alice"})
	require.NoError(t, err)
	require.Equal(t, 1, digest.PostCount())
	assert.Equal(t, "Read this https://example.com/post", digest.Sections[0].Posts[0].Text)
	assert.Contains(t, x.queries[1], "entities")
}

func TestFetch_WaitsForRateLimitReset(t *testing.T) {
	x := &fakeX{
		users:  map[string]string{"alice": "1"},
		recent: map[string][]fakeTweet{"1": {{ID: "100", Text: "hi", Created: created}}},
		closed: time.Unix(time.Now().Unix()+2, 0),
	}
	f := newTestFetcher(t, x, 1)

	digest, err := f.Fetch(context.Background(), []string{"alice"})
	require.NoError(t, err)
	assert.False(t, digest.Sections[0].IsError(), digest.String())
	assert.Equal(t, 1, digest.PostCount())
	assert.False(t, time.Now().Before(x.closed))
	assert.LessOrEqual(t, atomic.LoadInt32(&x.hits), int32(2), "one wait per reset, no busy retries")
}

func TestFetch_RateLimitExhausted(t *testing.T) {
	x := &fakeX{users: map[string]string{"alice": "1"}, limit: 10}
	f := newTestFetcher(t, x, 1)

	digest, err := f.Fetch(context.Background(), []string{"alice"})
	require.NoError(t, err, "exhausted retries only affect that profile")
	assert.Contains(t, digest.String(), "Error fetching user '@alice': max retries exceeded")
}

func TestFetch_MissingToken(t *testing.T) {
	f := NewProfileFetcher(config.XConfig{BaseURL: "http://127.0.0.1:1"}, nil, app.NopLogger{})
	defer f.Close()

	digest, err := f.Fetch(context.Background(), []string{"alice"})
	require.NoError(t, err)
	require.Len(t, digest.Sections, 1)
	assert.True(t, digest.Sections[0].IsError())
	assert.Equal(t, MissingTokenMessage, digest.String())
	assert.Zero(t, digest.PostCount())
}

func TestFetch_ParallelKeepsOrder(t *testing.T) {
	x := &fakeX{users: map[string]string{}, recent: map[string][]fakeTweet{}}
	var names []string
	for i := 0; i < 6; i++ {
		name := fmt.Sprintf("user%d", i)
		id := strconv.Itoa(i + 10)
		names = append(names, name)
		x.users[name] = id
		x.recent[id] = []fakeTweet{{ID: id + "0", Text: "post by " + name, Created: created}}
	}
	f := newTestFetcher(t, x, 3)

	digest, err := f.Fetch(context.Background(), names)
	require.NoError(t, err)
	require.Len(t, digest.Sections, 6)
	for i, s := range digest.Sections {
		assert.Equal(t, names[i], s.Username)
	}
}

func TestFetch_CancelledContext(t *testing.T) {
	x := &fakeX{users: map[string]string{"alice": "1"}}
	f := newTestFetcher(t, x, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.Fetch(ctx, []string{"alice"})
	assert.ErrorIs(t, err, context.Canceled)
}
