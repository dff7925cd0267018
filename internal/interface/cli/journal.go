package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/YoshitsuguKoike/repostflow/internal/app"
)

func newJournalCmd(st *rootState) *cobra.Command {
	var (
		session string
		tail    int
	)

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show the step journal of recent sessions",
		Long: `Show journal.ndjson from the data directory: one entry per draft, verdict
and outcome. With --format json the raw entries are printed one per line.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			entries, err := app.ReadJournal(st.env.Fs, app.ResolvePaths(st.cfg.DataDir()).Journal)
			if err != nil {
				return fmt.Errorf("failed to read journal: %w", err)
			}
			entries = filterJournal(entries, session, tail)

			if st.format == "json" {
				return writeNDJSON(c.OutOrStdout(), entries)
			}
			printJournal(c.OutOrStdout(), entries)
			return nil
		},
	}

	cmd.Flags().StringVar(&session, "session", "", "only entries of this session")
	cmd.Flags().IntVarP(&tail, "tail", "n", 20, "number of most recent entries, 0 for all")
	return cmd
}

func filterJournal(entries []app.JournalEntry, session string, tail int) []app.JournalEntry {
	if session != "" {
		var kept []app.JournalEntry
		for _, e := range entries {
			if e.SessionID == session {
				kept = append(kept, e)
			}
		}
		entries = kept
	}
	if tail > 0 && len(entries) > tail {
		entries = entries[len(entries)-tail:]
	}
	return entries
}

func printJournal(w io.Writer, entries []app.JournalEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "Journal is empty.")
		return
	}
	for _, e := range entries {
		line := fmt.Sprintf("%s  %s  #%d  %-7s", e.TS, e.SessionID, e.Turn, e.Step)
		if e.Decision != "" {
			line += "  " + e.Decision
		}
		line += fmt.Sprintf("  (%dms)", e.ElapsedMs)
		if e.Error != "" {
			line += "  error: " + e.Error
		}
		fmt.Fprintln(w, line)
	}
}

func writeNDJSON(w io.Writer, entries []app.JournalEntry) error {
	enc := json.NewEncoder(w)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			return err
		}
	}
	return nil
}
