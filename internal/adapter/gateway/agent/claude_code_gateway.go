package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/YoshitsuguKoike/repostflow/internal/application/port/output"
)

const (
	defaultAPIURL    = "https://api.anthropic.com/v1/messages"
	defaultModel     = "claude-sonnet-4-5"
	anthropicVersion = "2023-06-01"
)

// ClaudeCodeGateway implements AgentGateway for the Anthropic Messages API
type ClaudeCodeGateway struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
	model      string
}

// ClaudeOption customizes a ClaudeCodeGateway
type ClaudeOption func(*ClaudeCodeGateway)

// WithModel overrides the model
func WithModel(model string) ClaudeOption {
	return func(g *ClaudeCodeGateway) {
		if model != "" {
			g.model = model
		}
	}
}

// WithAPIURL points the gateway at another messages endpoint
func WithAPIURL(url string) ClaudeOption {
	return func(g *ClaudeCodeGateway) { g.apiURL = url }
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(c *http.Client) ClaudeOption {
	return func(g *ClaudeCodeGateway) { g.httpClient = c }
}

// NewClaudeCodeGateway creates a new Claude API gateway
func NewClaudeCodeGateway(apiKey string, opts ...ClaudeOption) *ClaudeCodeGateway {
	g := &ClaudeCodeGateway{
		apiKey: apiKey,
		apiURL: defaultAPIURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
		model: defaultModel,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Execute sends the request as a single user message
func (g *ClaudeCodeGateway) Execute(ctx context.Context, req output.AgentRequest) (*output.AgentResponse, error) {
	start := time.Now()

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	claudeReq := ClaudeRequest{
		Model:       g.model,
		MaxTokens:   maxTokens,
		System:      req.SystemPrompt,
		Temperature: req.Temperature,
		Messages: []Message{
			{
				Role:    "user",
				Content: req.Prompt,
			},
		},
	}

	resp, err := g.callClaudeAPI(ctx, claudeReq)
	if err != nil {
		return nil, fmt.Errorf("Claude API call failed: %w", err)
	}

	// Concatenate text blocks
	var b strings.Builder
	for _, c := range resp.Content {
		if c.Type == "text" || c.Type == "" {
			b.WriteString(c.Text)
		}
	}

	return &output.AgentResponse{
		Output:     b.String(),
		ExitCode:   0,
		Duration:   time.Since(start),
		TokensUsed: resp.Usage.InputTokens + resp.Usage.OutputTokens,
		AgentType:  "claude-code",
		Metadata: map[string]string{
			"model":         resp.Model,
			"stop_reason":   resp.StopReason,
			"input_tokens":  fmt.Sprintf("%d", resp.Usage.InputTokens),
			"output_tokens": fmt.Sprintf("%d", resp.Usage.OutputTokens),
		},
	}, nil
}

// GetCapability returns the API gateway's capabilities
func (g *ClaudeCodeGateway) GetCapability() output.AgentCapability {
	return output.AgentCapability{
		SupportsSystemPrompt: true,
		MaxPromptSize:        200000,
		ConcurrentTasks:      5,
		AgentType:            "claude-code",
	}
}

// HealthCheck verifies if Claude API is accessible
func (g *ClaudeCodeGateway) HealthCheck(ctx context.Context) error {
	req := ClaudeRequest{
		Model:     g.model,
		MaxTokens: 10,
		Messages: []Message{
			{Role: "user", Content: "ping"},
		},
	}

	_, err := g.callClaudeAPI(ctx, req)
	return err
}

// callClaudeAPI makes an HTTP request to Claude API
func (g *ClaudeCodeGateway) callClaudeAPI(ctx context.Context, req ClaudeRequest) (*ClaudeResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", g.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	httpResp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer httpResp.Body.Close()

	var claudeResp ClaudeResponse
	decodeErr := json.NewDecoder(httpResp.Body).Decode(&claudeResp)

	if httpResp.StatusCode != http.StatusOK {
		if decodeErr == nil && claudeResp.Error.Message != "" {
			return nil, fmt.Errorf("API error (%d): %s - %s", httpResp.StatusCode, claudeResp.Error.Type, claudeResp.Error.Message)
		}
		return nil, fmt.Errorf("API error: status %d", httpResp.StatusCode)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}

	return &claudeResp, nil
}

// Claude API request/response types
type ClaudeRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ClaudeResponse struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Role       string          `json:"role"`
	Content    []ContentBlock  `json:"content"`
	Model      string          `json:"model"`
	StopReason string          `json:"stop_reason"`
	Usage      Usage           `json:"usage"`
	Error      ClaudeErrorResp `json:"error,omitempty"`
}

type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type ClaudeErrorResp struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
