package agent

import (
	"fmt"
	"net/http"

	"github.com/YoshitsuguKoike/repostflow/internal/app/config"
	"github.com/YoshitsuguKoike/repostflow/internal/application/port/output"
)

// NewAgentGateway creates an agent gateway based on agent type
// Supported types: claude-code, claude-code-cli, mock
// Note: User is responsible for ensuring the agent is available (e.g., claude CLI installed)
func NewAgentGateway(cfg config.AgentConfig) (output.AgentGateway, error) {
	switch cfg.Type {
	case "claude-code":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set for claude-code")
		}
		opts := []ClaudeOption{WithModel(cfg.Model)}
		if cfg.Timeout > 0 {
			opts = append(opts, WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
		}
		return NewClaudeCodeGateway(cfg.APIKey, opts...), nil

	case "claude-code-cli":
		return NewClaudeCodeCLIGateway(cfg.Bin, cfg.Model, cfg.Timeout), nil

	case "mock":
		return NewMockGateway(), nil

	default:
		return nil, fmt.Errorf("unknown agent type: %s (supported: %v)", cfg.Type, SupportedAgents())
	}
}

// SupportedAgents returns the accepted agent types
func SupportedAgents() []string {
	return []string{"claude-code", "claude-code-cli", "mock"}
}

// GetDefaultAgent returns the default agent type to use
func GetDefaultAgent() string {
	return "claude-code"
}
