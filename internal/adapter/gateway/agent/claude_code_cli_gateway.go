package agent

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/YoshitsuguKoike/repostflow/internal/application/port/output"
	"github.com/YoshitsuguKoike/repostflow/internal/interface/external/claudecli"
)

// textOnlyTools are disabled so the CLI answers with text instead of acting
var textOnlyTools = []string{"Bash", "Edit", "Write", "NotebookEdit"}

// ClaudeCodeCLIGateway implements AgentGateway using the claude CLI in print mode
type ClaudeCodeCLIGateway struct {
	runner *claudecli.Runner
	model  string
}

// NewClaudeCodeCLIGateway creates a new Claude Code CLI gateway
func NewClaudeCodeCLIGateway(bin, model string, timeout time.Duration) *ClaudeCodeCLIGateway {
	if bin == "" {
		bin = "claude"
	}
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &ClaudeCodeCLIGateway{
		runner: &claudecli.Runner{
			Bin:     bin,
			Timeout: timeout,
		},
		model: model,
	}
}

// Execute runs the claude CLI with the given request
func (g *ClaudeCodeCLIGateway) Execute(ctx context.Context, req output.AgentRequest) (*output.AgentResponse, error) {
	start := time.Now()

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	result, err := g.runner.RunWithOptions(ctx, req.Prompt, &claudecli.RunOptions{
		SystemPrompt:    req.SystemPrompt,
		Model:           g.model,
		DisallowedTools: textOnlyTools,
	})
	if err != nil {
		return nil, fmt.Errorf("claude CLI execution failed: %w", err)
	}

	return &output.AgentResponse{
		Output:    result,
		ExitCode:  0,
		Duration:  time.Since(start),
		AgentType: "claude-code-cli",
		Metadata: map[string]string{
			"bin":   g.runner.Bin,
			"model": g.model,
		},
	}, nil
}

// GetCapability returns Claude Code CLI's capabilities
func (g *ClaudeCodeCLIGateway) GetCapability() output.AgentCapability {
	return output.AgentCapability{
		SupportsSystemPrompt: true,
		MaxPromptSize:        200000,
		ConcurrentTasks:      1, // CLI runs one at a time
		AgentType:            "claude-code-cli",
	}
}

// HealthCheck verifies the claude binary is on PATH
func (g *ClaudeCodeCLIGateway) HealthCheck(ctx context.Context) error {
	if _, err := exec.LookPath(g.runner.Bin); err != nil {
		return fmt.Errorf("claude CLI health check failed: %w", err)
	}
	return nil
}
