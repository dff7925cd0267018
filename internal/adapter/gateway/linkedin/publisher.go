// Package linkedin publishes text posts through the LinkedIn posts API.
package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/YoshitsuguKoike/repostflow/internal/app"
	"github.com/YoshitsuguKoike/repostflow/internal/app/config"
	"github.com/YoshitsuguKoike/repostflow/internal/application/port/output"
)

const (
	MissingTokenMessage    = "Error: LINKEDIN_ACCESS_TOKEN environment variable not set. Please add your LinkedIn OAuth2 access token to the .env file."
	MissingPersonIDMessage = "Error: LINKEDIN_PERSON_ID environment variable not set. Please add your LinkedIn person ID (from /v2/userinfo 'sub' field) to the .env file."

	defaultBaseURL    = "https://api.linkedin.com"
	defaultAPIVersion = "202602"
)

// PostRequest is the body of POST /rest/posts
type PostRequest struct {
	Author                    string       `json:"author"`
	Commentary                string       `json:"commentary"`
	Visibility                string       `json:"visibility"`
	Distribution              Distribution `json:"distribution"`
	LifecycleState            string       `json:"lifecycleState"`
	IsReshareDisabledByAuthor bool         `json:"isReshareDisabledByAuthor"`
}

// Distribution controls where the post appears
type Distribution struct {
	FeedDistribution               string   `json:"feedDistribution"`
	TargetEntities                 []string `json:"targetEntities"`
	ThirdPartyDistributionChannels []string `json:"thirdPartyDistributionChannels"`
}

// NewPostRequest builds a public feed post authored by the given person
func NewPostRequest(personID, text string) PostRequest {
	return PostRequest{
		Author:     "urn:li:person:" + personID,
		Commentary: text,
		Visibility: "PUBLIC",
		Distribution: Distribution{
			FeedDistribution:               "MAIN_FEED",
			TargetEntities:                 []string{},
			ThirdPartyDistributionChannels: []string{},
		},
		LifecycleState: "PUBLISHED",
	}
}

// Publisher implements output.Publisher
type Publisher struct {
	cfg        config.LinkedInConfig
	httpClient *http.Client
	logger     app.Logger
}

// NewPublisher creates a publisher from the LinkedIn config section
func NewPublisher(cfg config.LinkedInConfig, httpClient *http.Client, logger app.Logger) *Publisher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAPIVersion
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Publisher{cfg: cfg, httpClient: httpClient, logger: app.LoggerOrDefault(logger)}
}

// Publish posts text as-is. Every failure is reported in the result.
func (p *Publisher) Publish(ctx context.Context, text string) output.PublishResult {
	if p.cfg.AccessToken == "" {
		return output.PublishResult{Message: MissingTokenMessage}
	}
	if p.cfg.PersonID == "" {
		return output.PublishResult{Message: MissingPersonIDMessage}
	}

	body, err := json.Marshal(NewPostRequest(p.cfg.PersonID, text))
	if err != nil {
		return output.PublishResult{Message: fmt.Sprintf("Error publishing to LinkedIn. %v", err)}
	}

	url := strings.TrimRight(p.cfg.BaseURL, "/") + "/rest/posts"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return output.PublishResult{Message: fmt.Sprintf("Error connecting to LinkedIn API: %v", err)}
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")
	req.Header.Set("LinkedIn-Version", p.cfg.APIVersion)

	p.logger.Debug("POST %s (%d chars)", url, len(text))
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return output.PublishResult{Message: fmt.Sprintf("Error connecting to LinkedIn API: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusCreated {
		_, _ = io.Copy(io.Discard, resp.Body)
		id := resp.Header.Get("x-restli-id")
		if id == "" {
			id = "unknown"
		}
		return output.PublishResult{
			OK:      true,
			PostID:  id,
			Message: "Successfully published LinkedIn post. Post ID: " + id,
		}
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return output.PublishResult{
		Message: fmt.Sprintf("Error publishing to LinkedIn. Status: %d, Response: %s", resp.StatusCode, string(respBody)),
	}
}
