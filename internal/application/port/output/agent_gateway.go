package output

import (
	"context"
	"time"
)

// AgentGateway is the interface for LLM agent execution.
// The drafting and research steps only see this abstraction, so the backend
// (Anthropic API, claude CLI, mock) is chosen at wiring time.
type AgentGateway interface {
	// Execute runs the agent with given request
	Execute(ctx context.Context, req AgentRequest) (*AgentResponse, error)

	// GetCapability returns the agent's capabilities
	GetCapability() AgentCapability

	// HealthCheck verifies if the agent is available
	HealthCheck(ctx context.Context) error
}

// AgentRequest represents a request to an AI agent
type AgentRequest struct {
	SystemPrompt string            // Role, goal and backstory of the agent
	Prompt       string            // The task prompt
	Timeout      time.Duration     // Execution timeout, zero uses the gateway default
	Context      map[string]string // Additional context information, logged only
	MaxTokens    int               // Maximum tokens to generate (if applicable)
	Temperature  float64           // Temperature for generation (0.0-1.0)
}

// AgentResponse represents the response from an AI agent
type AgentResponse struct {
	Output     string            // Generated output
	ExitCode   int               // Exit code (for CLI-based agents)
	Duration   time.Duration     // Execution duration
	TokensUsed int               // Number of tokens used (if applicable)
	AgentType  string            // Type of agent that executed
	Metadata   map[string]string // Additional metadata
}

// AgentCapability describes what an agent can do
type AgentCapability struct {
	SupportsSystemPrompt bool   // Honors SystemPrompt natively
	MaxPromptSize        int    // Maximum prompt size in bytes
	ConcurrentTasks      int    // Number of concurrent tasks supported
	AgentType            string // Agent type identifier
}
