// Package claudecli runs the claude command line tool in print mode.
package claudecli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrEmptyResult is returned when claude exits cleanly without a result
var ErrEmptyResult = errors.New("claude returned an empty result")

type Runner struct {
	Bin     string
	Timeout time.Duration
}

// ClaudeResponse represents the JSON response from claude
type ClaudeResponse struct {
	Type       string  `json:"type"`
	Subtype    string  `json:"subtype"`
	IsError    bool    `json:"is_error"`
	DurationMs int     `json:"duration_ms"`
	Result     string  `json:"result"`
	SessionID  string  `json:"session_id"`
	TotalCost  float64 `json:"total_cost_usd"`
}

// RunOptions contains options for one claude invocation
type RunOptions struct {
	SystemPrompt    string   // Appended to claude's own system prompt
	Model           string   // Overrides the CLI default model
	DisallowedTools []string // Tools to disallow
}

func (r Runner) Run(ctx context.Context, prompt string, extraArgs ...string) (string, error) {
	return r.RunWithOptions(ctx, prompt, nil, extraArgs...)
}

// RunWithOptions executes `claude -p --output-format json` and returns the result field.
// Output that is not JSON is returned verbatim.
func (r Runner) RunWithOptions(ctx context.Context, prompt string, opts *RunOptions, extraArgs ...string) (string, error) {
	args := BuildArgs(prompt, opts, extraArgs...)

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	bin := r.Bin
	if bin == "" {
		bin = "claude"
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("claude execution aborted: %w", ctx.Err())
		}
		return "", fmt.Errorf("claude execution failed: %w (output: %s)", err, strings.TrimSpace(string(out)))
	}

	return ParseOutput(out)
}

// BuildArgs assembles the command line for a print-mode run
func BuildArgs(prompt string, opts *RunOptions, extraArgs ...string) []string {
	args := []string{"-p", "--output-format", "json"}
	if opts != nil {
		if opts.SystemPrompt != "" {
			args = append(args, "--append-system-prompt", opts.SystemPrompt)
		}
		if opts.Model != "" {
			args = append(args, "--model", opts.Model)
		}
		if len(opts.DisallowedTools) > 0 {
			args = append(args, "--disallowed-tools", strings.Join(opts.DisallowedTools, ","))
		}
	}
	args = append(args, extraArgs...)
	return append(args, prompt)
}

// ParseOutput extracts the result from claude's JSON output
func ParseOutput(out []byte) (string, error) {
	var response ClaudeResponse
	if err := json.Unmarshal(out, &response); err != nil {
		return string(out), nil
	}
	if response.IsError {
		return "", fmt.Errorf("claude returned error: %s", response.Result)
	}
	if strings.TrimSpace(response.Result) == "" {
		return "", ErrEmptyResult
	}
	return response.Result, nil
}
