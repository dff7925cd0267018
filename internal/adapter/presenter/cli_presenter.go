package presenter

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/YoshitsuguKoike/repostflow/internal/application/dto"
	"github.com/YoshitsuguKoike/repostflow/internal/application/port/output"
	"github.com/YoshitsuguKoike/repostflow/internal/domain/review"
)

// FlowCompleteBanner precedes the outcome of a run
const FlowCompleteBanner = "=== FLOW COMPLETE ==="

// CLIPresenter implements output.RunPresenter for terminal output
type CLIPresenter struct {
	output io.Writer
}

var _ output.RunPresenter = (*CLIPresenter)(nil)

// NewCLIPresenter creates a new CLI presenter
func NewCLIPresenter(output io.Writer) *CLIPresenter {
	return &CLIPresenter{output: output}
}

// PresentSuccess presents a successful result
func (p *CLIPresenter) PresentSuccess(message string, data interface{}) error {
	fmt.Fprintf(p.output, "✓ %s\n", message)
	if data != nil {
		fmt.Fprintf(p.output, "%v\n", data)
	}
	return nil
}

// PresentError presents an error
func (p *CLIPresenter) PresentError(err error) error {
	fmt.Fprintf(p.output, "✗ Error: %v\n", err)
	return err
}

// PresentOutcome prints the banner followed by the outcome payload
func (p *CLIPresenter) PresentOutcome(out *dto.KickoffOutput) error {
	fmt.Fprintf(p.output, "\n%s\n", FlowCompleteBanner)
	fmt.Fprintf(p.output, "Outcome: %s after %d draft(s) in %s\n", out.Outcome, out.Attempts, elapsed(out.ElapsedMs))
	fmt.Fprintf(p.output, "Session: %s\n", out.SessionID)
	if len(out.Profiles) > 0 {
		fmt.Fprintf(p.output, "Profiles: %s\n", strings.Join(out.Profiles, ", "))
	}
	fmt.Fprintf(p.output, "\n%s\n", out.Payload)
	return nil
}

// PresentHistory prints one line per session
func (p *CLIPresenter) PresentHistory(sessions []*review.Session) error {
	if len(sessions) == 0 {
		fmt.Fprintln(p.output, "No sessions recorded yet.")
		return nil
	}

	fmt.Fprintf(p.output, "%-26s  %-15s  %-8s  %-16s  %s\n", "SESSION", "STATE", "ATTEMPTS", "STARTED", "RESULT")
	for _, s := range sessions {
		result := ""
		if s.Outcome != nil {
			result = firstLine(s.Outcome.Payload, 60)
		}
		fmt.Fprintf(p.output, "%-26s  %-15s  %-8s  %-16s  %s\n",
			s.ID,
			s.State,
			fmt.Sprintf("%d/%d", s.Attempts, s.MaxAttempts),
			s.StartedAt.Local().Format("2006-01-02 15:04"),
			result,
		)
	}
	return nil
}

func firstLine(s string, max int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	r := []rune(strings.TrimSpace(s))
	if len(r) > max {
		return string(r[:max-3]) + "..."
	}
	return string(r)
}

// elapsed formats milliseconds for humans
func elapsed(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).Round(time.Millisecond).String()
}
