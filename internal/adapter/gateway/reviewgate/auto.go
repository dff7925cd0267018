package reviewgate

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/YoshitsuguKoike/repostflow/internal/application/port/output"
	"github.com/YoshitsuguKoike/repostflow/internal/domain/review"
)

// AutoGate answers every draft with the same verdict
type AutoGate struct {
	verdict review.Verdict
}

// NewAutoGate creates an AutoGate
func NewAutoGate(v review.Verdict) *AutoGate {
	return &AutoGate{verdict: v}
}

func (g *AutoGate) RequestVerdict(ctx context.Context, req output.ReviewRequest) (review.Verdict, error) {
	if err := ctx.Err(); err != nil {
		return review.Verdict{}, err
	}
	return g.verdict, nil
}

func (g *AutoGate) Close() error { return nil }

// ScriptedGate replays a fixed verdict sequence, then reports no response
type ScriptedGate struct {
	mu       sync.Mutex
	verdicts []review.Verdict
	next     int
	seen     []output.ReviewRequest
}

// NewScriptedGate creates a ScriptedGate
func NewScriptedGate(verdicts []review.Verdict) *ScriptedGate {
	return &ScriptedGate{verdicts: append([]review.Verdict(nil), verdicts...)}
}

func (g *ScriptedGate) RequestVerdict(ctx context.Context, req output.ReviewRequest) (review.Verdict, error) {
	if err := ctx.Err(); err != nil {
		return review.Verdict{}, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	g.seen = append(g.seen, req)
	if g.next >= len(g.verdicts) {
		return review.Verdict{}, ErrNoResponse
	}
	v := g.verdicts[g.next]
	g.next++
	return v, nil
}

// Requests returns the review requests received so far
func (g *ScriptedGate) Requests() []output.ReviewRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]output.ReviewRequest(nil), g.seen...)
}

func (g *ScriptedGate) Close() error { return nil }

// ParseScript parses verdicts such as "approve", "reject: shorter" or
// "cancel". Each item may hold several verdicts separated by ";".
func ParseScript(items []string) ([]review.Verdict, error) {
	var out []review.Verdict
	for _, item := range items {
		for _, part := range strings.Split(item, ";") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			v, err := review.ParseVerdict(part)
			if err != nil {
				return nil, fmt.Errorf("invalid verdict %q: %w", part, err)
			}
			out = append(out, v)
		}
	}
	return out, nil
}
