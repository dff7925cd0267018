// Package social holds the read-side model of X posts and the text digest
// handed to the research step.
package social

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Metrics are the public engagement counters of a post
type Metrics struct {
	Likes    int `json:"like_count"`
	Retweets int `json:"retweet_count"`
	Replies  int `json:"reply_count"`
}

// Post is a single original post (no retweets, no replies)
type Post struct {
	ID        string
	Text      string
	CreatedAt time.Time
	Metrics   Metrics
}

// URL returns the public link of the post under the given author
func (p Post) URL(username string) string {
	return fmt.Sprintf("https://x.com/%s/status/%s", username, p.ID)
}

// Window tells how the posts of a section were selected
type Window string

const (
	WindowLast24Hours Window = "last 24 hours"
	WindowMostRecent  Window = "most recent"
)

// NormalizeUsername canonicalizes a profile identifier: Unicode NFKC, surrounding
// whitespace removed, leading "@" stripped. A profile URL is reduced to its
// last path segment.
func NormalizeUsername(raw string) string {
	s := strings.TrimSpace(norm.NFKC.String(raw))
	if strings.Contains(s, "://") {
		if u, err := url.Parse(s); err == nil {
			s = strings.Trim(u.Path, "/")
			if idx := strings.LastIndex(s, "/"); idx >= 0 {
				s = s[idx+1:]
			}
		}
	}
	s = strings.TrimLeft(s, "@")
	return strings.TrimSpace(s)
}

// NormalizeUsernames normalizes every identifier and drops empties, keeping order
func NormalizeUsernames(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if u := NormalizeUsername(r); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// SplitProfileList parses a comma separated profile list such as X_PROFILES
func SplitProfileList(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	return NormalizeUsernames(strings.Split(list, ","))
}
