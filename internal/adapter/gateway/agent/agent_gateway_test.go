package agent_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/YoshitsuguKoike/repostflow/internal/adapter/gateway/agent"
	"github.com/YoshitsuguKoike/repostflow/internal/app/config"
	"github.com/YoshitsuguKoike/repostflow/internal/application/port/output"
)

func TestMockGateway(t *testing.T) {
	gateway := agent.NewMockGateway()

	req := output.AgentRequest{
		Prompt:    "Write a LinkedIn post\nabout this research",
		MaxTokens: 1000,
		Timeout:   time.Minute,
	}

	resp, err := gateway.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if resp.AgentType != "mock" {
		t.Errorf("AgentType = %s, want mock", resp.AgentType)
	}
	if !strings.HasPrefix(resp.Output, "[mock] Write a LinkedIn post (prompt: ") {
		t.Errorf("Output = %q", resp.Output)
	}

	again, _ := gateway.Execute(context.Background(), req)
	if again.Output != resp.Output {
		t.Error("mock output should be deterministic")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := gateway.Execute(ctx, req); err == nil {
		t.Error("Execute() should fail on a cancelled context")
	}

	if err := gateway.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestClaudeCodeGateway_Execute(t *testing.T) {
	var got agent.ClaudeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("x-api-key = %q", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != "2023-06-01" {
			t.Errorf("anthropic-version = %q", r.Header.Get("anthropic-version"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-test",
			"stop_reason": "end_turn",
			"content": [{"type": "text", "text": "Hello "}, {"type": "text", "text": "world"}],
			"usage": {"input_tokens": 12, "output_tokens": 3}
		}`))
	}))
	defer server.Close()

	gateway := agent.NewClaudeCodeGateway("test-key",
		agent.WithAPIURL(server.URL),
		agent.WithModel("claude-test"),
		agent.WithHTTPClient(server.Client()))

	resp, err := gateway.Execute(context.Background(), output.AgentRequest{
		SystemPrompt: "You write posts.",
		Prompt:       "Say hello",
		MaxTokens:    50,
		Temperature:  0.7,
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if resp.Output != "Hello world" {
		t.Errorf("Output = %q, want %q", resp.Output, "Hello world")
	}
	if resp.TokensUsed != 15 {
		t.Errorf("TokensUsed = %d, want 15", resp.TokensUsed)
	}
	if got.System != "You write posts." || got.Model != "claude-test" || got.MaxTokens != 50 {
		t.Errorf("unexpected request: %+v", got)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" || got.Messages[0].Content != "Say hello" {
		t.Errorf("unexpected messages: %+v", got.Messages)
	}
}

func TestClaudeCodeGateway_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer server.Close()

	gateway := agent.NewClaudeCodeGateway("k", agent.WithAPIURL(server.URL), agent.WithHTTPClient(server.Client()))
	_, err := gateway.Execute(context.Background(), output.AgentRequest{Prompt: "x"})
	if err == nil {
		t.Fatal("Execute() should fail on API error")
	}
	if !strings.Contains(err.Error(), "rate_limit_error - slow down") {
		t.Errorf("error = %v", err)
	}
}

func TestClaudeCodeGateway_NonJSONError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	gateway := agent.NewClaudeCodeGateway("k", agent.WithAPIURL(server.URL), agent.WithHTTPClient(server.Client()))
	_, err := gateway.Execute(context.Background(), output.AgentRequest{Prompt: "x"})
	if err == nil || !strings.Contains(err.Error(), "status 502") {
		t.Errorf("error = %v, want status 502", err)
	}
}

func TestClaudeCodeCLIGateway_Capability(t *testing.T) {
	gateway := agent.NewClaudeCodeCLIGateway("", "", 0)
	cap := gateway.GetCapability()
	if cap.AgentType != "claude-code-cli" || cap.ConcurrentTasks != 1 {
		t.Errorf("unexpected capability: %+v", cap)
	}

	missing := agent.NewClaudeCodeCLIGateway("/nonexistent/claude-binary", "", time.Second)
	if err := missing.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck() should fail for a missing binary")
	}
}

func TestNewAgentGateway(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.AgentConfig
		wantType string
		wantErr  bool
	}{
		{name: "mock", cfg: config.AgentConfig{Type: "mock"}, wantType: "mock"},
		{name: "cli", cfg: config.AgentConfig{Type: "claude-code-cli", Bin: "claude"}, wantType: "claude-code-cli"},
		{name: "api with key", cfg: config.AgentConfig{Type: "claude-code", APIKey: "k", Timeout: time.Minute}, wantType: "claude-code"},
		{name: "api without key", cfg: config.AgentConfig{Type: "claude-code"}, wantErr: true},
		{name: "unknown agent", cfg: config.AgentConfig{Type: "gemini-cli"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway, err := agent.NewAgentGateway(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewAgentGateway() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if gateway.GetCapability().AgentType != tt.wantType {
				t.Errorf("AgentType = %s, want %s", gateway.GetCapability().AgentType, tt.wantType)
			}
		})
	}
}
