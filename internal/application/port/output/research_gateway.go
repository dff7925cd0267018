package output

import (
	"context"

	"github.com/YoshitsuguKoike/repostflow/internal/domain/social"
)

// ProfileReader fetches recent original posts for a list of profiles.
// Per-profile failures are reported inside the digest; the error return is
// reserved for failures that affect the whole batch.
type ProfileReader interface {
	Fetch(ctx context.Context, usernames []string) (social.Digest, error)
}

// WebSearcher runs a web search query
type WebSearcher interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

// SearchResult is one organic search hit
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// PageScraper extracts readable text from a web page
type PageScraper interface {
	Scrape(ctx context.Context, url string) (string, error)
}
