package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/YoshitsuguKoike/repostflow/internal/domain/review"
)

// initialLabel marks the edge into the first state
const initialLabel = "research brief ready"

func newPlotCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Print the review flow as a diagram",
		Long:  "Print the draft/review state machine as a Mermaid state diagram or a Graphviz DOT graph.",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return plotFlow(c.OutOrStdout(), format, review.Transitions())
		},
	}

	cmd.Flags().StringVar(&format, "format", "mermaid", "diagram format: mermaid or dot")
	return cmd
}

func plotFlow(w io.Writer, format string, transitions []review.Transition) error {
	switch strings.ToLower(format) {
	case "mermaid", "":
		renderMermaid(w, transitions)
	case "dot":
		renderDOT(w, transitions)
	default:
		return fmt.Errorf("unsupported diagram format: %s (supported: mermaid, dot)", format)
	}
	return nil
}

func renderMermaid(w io.Writer, transitions []review.Transition) {
	fmt.Fprintln(w, "stateDiagram-v2")
	fmt.Fprintf(w, "    [*] --> %s: %s\n", review.StateDrafting, initialLabel)
	for _, t := range transitions {
		fmt.Fprintf(w, "    %s --> %s: %s\n", t.From, t.To, t.Label)
	}
	for _, s := range terminalStates(transitions) {
		fmt.Fprintf(w, "    %s --> [*]\n", s)
	}
}

func renderDOT(w io.Writer, transitions []review.Transition) {
	fmt.Fprintln(w, "digraph repostflow {")
	fmt.Fprintln(w, "    rankdir=LR;")
	fmt.Fprintln(w, "    node [shape=box, style=rounded];")
	fmt.Fprintln(w, "    start [shape=point];")
	for _, s := range terminalStates(transitions) {
		fmt.Fprintf(w, "    %q [shape=doubleoctagon];\n", s)
	}
	fmt.Fprintf(w, "    start -> %q [label=%q];\n", review.StateDrafting, initialLabel)
	for _, t := range transitions {
		fmt.Fprintf(w, "    %q -> %q [label=%q];\n", t.From, t.To, t.Label)
	}
	fmt.Fprintln(w, "}")
}

// terminalStates returns the terminal targets in first-seen order
func terminalStates(transitions []review.Transition) []review.State {
	seen := map[review.State]bool{}
	var out []review.State
	for _, t := range transitions {
		if t.To.IsTerminal() && !seen[t.To] {
			seen[t.To] = true
			out = append(out, t.To)
		}
	}
	return out
}
