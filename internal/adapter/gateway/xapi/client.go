// Package xapi reads recent original posts from X (API v2) for the research step.
package xapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/YoshitsuguKoike/repostflow/internal/domain/social"
)

// ErrUserNotFound is returned by the user lookup for unknown usernames
var ErrUserNotFound = errors.New("user not found")

// User is the subset of an X user object we need
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// TimelineQuery selects posts from a user timeline
type TimelineQuery struct {
	StartTime  time.Time // zero means no time filter
	MaxResults int       // 5..100
}

type apiError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Type   string `json:"type"`
}

type userResponse struct {
	Data   *User      `json:"data"`
	Errors []apiError `json:"errors"`
}

type urlEntity struct {
	URL         string `json:"url"`
	ExpandedURL string `json:"expanded_url"`
}

type tweet struct {
	ID            string         `json:"id"`
	Text          string         `json:"text"`
	CreatedAt     time.Time      `json:"created_at"`
	PublicMetrics social.Metrics `json:"public_metrics"`
	Entities      struct {
		URLs []urlEntity `json:"urls"`
	} `json:"entities"`
}

// expandedText replaces the t.co short links in the post text with the
// links they point to
func (t tweet) expandedText() string {
	text := t.Text
	for _, u := range t.Entities.URLs {
		if u.URL == "" || u.ExpandedURL == "" {
			continue
		}
		text = strings.ReplaceAll(text, u.URL, u.ExpandedURL)
	}
	return text
}

type tweetsResponse struct {
	Data   []tweet    `json:"data"`
	Errors []apiError `json:"errors"`
	Meta   struct {
		ResultCount int `json:"result_count"`
	} `json:"meta"`
}

// Client is a minimal X API v2 client authenticated with an app bearer token
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *RateLimiter
	retry      RetryConfig
}

// NewClient creates a client. limiter may be nil.
func NewClient(baseURL, token string, httpClient *http.Client, limiter *RateLimiter, retry RetryConfig) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
		limiter:    limiter,
		retry:      retry,
	}
}

// UserByUsername looks up a user. Unknown users yield ErrUserNotFound.
func (c *Client) UserByUsername(ctx context.Context, username string) (*User, error) {
	var resp userResponse
	path := "/2/users/by/username/" + url.PathEscape(username)
	if err := c.get(ctx, path, nil, &resp); err != nil {
		if errors.Is(err, errNotFoundStatus) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if resp.Data == nil {
		for _, e := range resp.Errors {
			if strings.Contains(e.Type, "resource-not-found") || e.Title == "Not Found Error" {
				return nil, ErrUserNotFound
			}
		}
		if len(resp.Errors) > 0 {
			return nil, fmt.Errorf("%s: %s", resp.Errors[0].Title, resp.Errors[0].Detail)
		}
		return nil, ErrUserNotFound
	}
	return resp.Data, nil
}

// UserPosts returns original posts (no retweets, no replies), newest first
func (c *Client) UserPosts(ctx context.Context, userID string, q TimelineQuery) ([]social.Post, error) {
	params := url.Values{}
	params.Set("max_results", strconv.Itoa(q.MaxResults))
	params.Set("tweet.fields", "created_at,public_metrics,text,entities")
	params.Set("exclude", "retweets,replies")
	if !q.StartTime.IsZero() {
		params.Set("start_time", q.StartTime.UTC().Format(time.RFC3339))
	}

	var resp tweetsResponse
	if err := c.get(ctx, "/2/users/"+url.PathEscape(userID)+"/tweets", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 && len(resp.Errors) > 0 {
		return nil, fmt.Errorf("%s: %s", resp.Errors[0].Title, resp.Errors[0].Detail)
	}

	posts := make([]social.Post, 0, len(resp.Data))
	for _, t := range resp.Data {
		posts = append(posts, social.Post{
			ID:        t.ID,
			Text:      t.expandedText(),
			CreatedAt: t.CreatedAt,
			Metrics:   t.PublicMetrics,
		})
	}
	return posts, nil
}

var errNotFoundStatus = errors.New("not found")

// get performs a rate limited GET and decodes the JSON body into out
func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	return RetryWithBackoff(ctx, c.limiter, c.retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("User-Agent", "repostflow")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("execute request: %w", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			_, _ = io.Copy(io.Discard, resp.Body)
			return &RateLimitError{Reset: parseReset(resp.Header.Get("x-rate-limit-reset"))}
		case resp.StatusCode == http.StatusNotFound:
			_, _ = io.Copy(io.Discard, resp.Body)
			return errNotFoundStatus
		case resp.StatusCode != http.StatusOK:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return fmt.Errorf("X API status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	})
}

// parseReset reads x-rate-limit-reset (unix seconds)
func parseReset(v string) time.Time {
	sec, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || sec <= 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0)
}
