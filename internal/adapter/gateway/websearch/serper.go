// Package websearch provides the supplementary lookups of the research step:
// Google results through Serper and readable text from web pages.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/YoshitsuguKoike/repostflow/internal/application/port/output"
)

const defaultSerperURL = "https://google.serper.dev/search"

// ErrMissingAPIKey is returned when SERPER_API_KEY is not configured
var ErrMissingAPIKey = errors.New("SERPER_API_KEY environment variable not set")

// SerperSearcher implements output.WebSearcher with the Serper API
type SerperSearcher struct {
	apiKey     string
	url        string
	numResults int
	httpClient *http.Client
}

// NewSerperSearcher creates a searcher. An empty url uses the public endpoint.
func NewSerperSearcher(apiKey, url string, httpClient *http.Client) *SerperSearcher {
	if url == "" {
		url = defaultSerperURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	return &SerperSearcher{apiKey: apiKey, url: url, numResults: 5, httpClient: httpClient}
}

type serperRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num,omitempty"`
}

type serperResponse struct {
	Organic []output.SearchResult `json:"organic"`
}

// Search returns the top organic results for query
func (s *SerperSearcher) Search(ctx context.Context, query string) ([]output.SearchResult, error) {
	if s.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("empty search query")
	}

	body, err := json.Marshal(serperRequest{Q: query, Num: s.numResults})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-API-KEY", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("serper status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(out.Organic) > s.numResults {
		out.Organic = out.Organic[:s.numResults]
	}
	return out.Organic, nil
}
