package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/YoshitsuguKoike/repostflow/internal/application/port/output"
)

// MockGateway answers without calling any model.
// Used by --dry-run, so the output reads like a short post.
type MockGateway struct{}

// NewMockGateway creates a new mock gateway
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

// Execute returns a deterministic response derived from the prompt
func (g *MockGateway) Execute(ctx context.Context, req output.AgentRequest) (*output.AgentResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	preview := firstLine(req.Prompt)
	if len([]rune(preview)) > 80 {
		preview = string([]rune(preview)[:80]) + "..."
	}

	return &output.AgentResponse{
		Output:     fmt.Sprintf("[mock] %s (prompt: %d chars)", preview, len(req.Prompt)),
		ExitCode:   0,
		Duration:   time.Millisecond,
		TokensUsed: len(req.Prompt) / 4, // Rough estimate
		AgentType:  "mock",
		Metadata: map[string]string{
			"mock": "true",
		},
	}, nil
}

// GetCapability returns the mock capabilities
func (g *MockGateway) GetCapability() output.AgentCapability {
	return output.AgentCapability{
		SupportsSystemPrompt: false,
		MaxPromptSize:        32000,
		ConcurrentTasks:      10,
		AgentType:            "mock",
	}
}

// HealthCheck always returns success for mock
func (g *MockGateway) HealthCheck(ctx context.Context) error {
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
