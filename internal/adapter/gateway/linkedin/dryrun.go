package linkedin

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/YoshitsuguKoike/repostflow/internal/application/port/output"
)

// DryRunMessage is the result line of a dry-run publish
const DryRunMessage = "Dry run: post not published."

// DryRunPublisher prints the post instead of sending it
type DryRunPublisher struct {
	mu  sync.Mutex
	out io.Writer
}

var _ output.Publisher = (*DryRunPublisher)(nil)

// NewDryRunPublisher writes approved posts to out
func NewDryRunPublisher(out io.Writer) *DryRunPublisher {
	return &DryRunPublisher{out: out}
}

// Publish writes the text between rules and reports success
func (p *DryRunPublisher) Publish(ctx context.Context, text string) output.PublishResult {
	p.mu.Lock()
	defer p.mu.Unlock()

	rule := strings.Repeat("-", 60)
	fmt.Fprintf(p.out, "%s\nWould publish to LinkedIn (%d characters):\n\n%s\n%s\n", rule, len([]rune(text)), text, rule)
	return output.PublishResult{OK: true, PostID: "dry-run", Message: DryRunMessage}
}
