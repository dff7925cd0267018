// Package reviewgate implements the human review step: console and terminal
// UI prompts, fixed and scripted verdicts, and a deadline that applies a
// default verdict when nobody answers.
package reviewgate

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/YoshitsuguKoike/repostflow/internal/app"
	"github.com/YoshitsuguKoike/repostflow/internal/app/config"
	"github.com/YoshitsuguKoike/repostflow/internal/application/port/output"
	"github.com/YoshitsuguKoike/repostflow/internal/domain/review"
)

// Instructions is shown under every draft
const Instructions = "Reply with 'approve' to publish, 'reject' with feedback to revise, or 'cancel' to skip posting today."

// ErrNoResponse means the reviewer gave no answer: input closed, script
// exhausted or the deadline passed. TimeoutGate turns it into the default verdict.
var ErrNoResponse = errors.New("no response from reviewer")

// Review modes
const (
	ModeConsole     = "console"
	ModeTUI         = "tui"
	ModeAutoApprove = "auto-approve"
	ModeAutoCancel  = "auto-cancel"
	ModeScripted    = "scripted"
)

// Gate is a ReviewGate holding resources until Close
type Gate interface {
	output.ReviewGate
	Close() error
}

type options struct {
	in     io.Reader
	out    io.Writer
	script []review.Verdict
	logger app.Logger
}

// Option customizes New
type Option func(*options)

// WithIO sets the reviewer's input and output, stdin/stdout by default
func WithIO(in io.Reader, out io.Writer) Option {
	return func(o *options) {
		o.in = in
		o.out = out
	}
}

// WithScript replays the given verdicts instead of asking anyone
func WithScript(verdicts []review.Verdict) Option {
	return func(o *options) { o.script = verdicts }
}

// WithLogger sets the logger
func WithLogger(l app.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New builds the gate for cfg.Mode wrapped in a TimeoutGate.
// A script given through WithScript takes precedence over the mode.
func New(cfg config.ReviewConfig, opts ...Option) (Gate, error) {
	o := &options{in: os.Stdin, out: os.Stdout}
	for _, opt := range opts {
		opt(o)
	}
	logger := app.LoggerOrDefault(o.logger)

	kind, err := review.ParseVerdictKind(cfg.DefaultVerdict)
	if err != nil {
		return nil, fmt.Errorf("invalid default verdict %q: %w", cfg.DefaultVerdict, err)
	}
	def := review.Verdict{Kind: kind}

	var inner Gate
	switch {
	case len(o.script) > 0:
		inner = NewScriptedGate(o.script)
	case cfg.Mode == ModeConsole || cfg.Mode == "":
		inner = NewConsoleGate(o.in, o.out)
	case cfg.Mode == ModeTUI:
		inner = NewTUIGate(o.in, o.out)
	case cfg.Mode == ModeAutoApprove:
		inner = NewAutoGate(review.Approve("auto-approved"))
	case cfg.Mode == ModeAutoCancel:
		inner = NewAutoGate(review.Cancel())
	default:
		return nil, fmt.Errorf("unknown review mode: %s (supported: %s)", cfg.Mode, strings.Join(Modes(), ", "))
	}

	return NewTimeoutGate(inner, cfg.Timeout, def, logger), nil
}

// Modes lists the accepted review modes
func Modes() []string {
	return []string{ModeConsole, ModeTUI, ModeAutoApprove, ModeAutoCancel}
}

// renderRequest writes the draft block shown by the console gate
func renderRequest(w io.Writer, req output.ReviewRequest) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(w, "\n%s\nDRAFT %d of %d\n%s\n\n%s\n\n%s\n", rule, req.Attempt, req.MaxAttempts, rule, req.Draft, rule)
	for _, warning := range req.Warnings {
		fmt.Fprintf(w, "Warning: %s\n", warning)
	}
	fmt.Fprintln(w, Instructions)
}
