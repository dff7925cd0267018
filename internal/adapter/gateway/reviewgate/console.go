package reviewgate

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/YoshitsuguKoike/repostflow/internal/application/port/output"
	"github.com/YoshitsuguKoike/repostflow/internal/domain/review"
)

type line struct {
	text string
	err  error
}

// ConsoleGate prints the draft and reads the verdict from a line of input.
// Lines are read by one background goroutine so a pending read never blocks
// cancellation; Close stops it once its current read returns.
type ConsoleGate struct {
	in  *bufio.Reader
	out io.Writer

	start     sync.Once
	lines     chan line
	done      chan struct{}
	closeOnce sync.Once
}

// NewConsoleGate creates a console gate
func NewConsoleGate(in io.Reader, out io.Writer) *ConsoleGate {
	return &ConsoleGate{
		in:    bufio.NewReader(in),
		out:   out,
		lines: make(chan line),
		done:  make(chan struct{}),
	}
}

// RequestVerdict shows the draft and waits for a verdict. Empty input asks
// again; a bare rejection asks once more for feedback. End of input is
// reported as ErrNoResponse.
func (g *ConsoleGate) RequestVerdict(ctx context.Context, req output.ReviewRequest) (review.Verdict, error) {
	g.start.Do(func() { go g.readLoop() })

	renderRequest(g.out, req)
	for {
		text, err := g.readLine(ctx, "> ")
		if err != nil {
			return review.Verdict{}, err
		}

		v, err := review.ParseVerdict(text)
		if err != nil {
			fmt.Fprintln(g.out, Instructions)
			continue
		}
		if v.IsRejected() && v.Feedback == "" {
			fb, err := g.readLine(ctx, "What should change? ")
			if err != nil && err != ErrNoResponse {
				return review.Verdict{}, err
			}
			v = review.Reject(fb)
		}
		return v, nil
	}
}

func (g *ConsoleGate) readLine(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(g.out, prompt)
	select {
	case <-ctx.Done():
		fmt.Fprintln(g.out)
		return "", ctx.Err()
	case l, ok := <-g.lines:
		if !ok || l.err != nil {
			return "", ErrNoResponse
		}
		return strings.TrimSpace(l.text), nil
	}
}

func (g *ConsoleGate) readLoop() {
	defer close(g.lines)
	for {
		text, err := g.in.ReadString('\n')
		if text != "" {
			select {
			case g.lines <- line{text: text}:
			case <-g.done:
				return
			}
		}
		if err != nil {
			if err != io.EOF {
				select {
				case g.lines <- line{err: err}:
				case <-g.done:
				}
			}
			return
		}
	}
}

// Close stops the reader goroutine
func (g *ConsoleGate) Close() error {
	g.closeOnce.Do(func() { close(g.done) })
	return nil
}
