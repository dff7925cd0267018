package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YoshitsuguKoike/repostflow/internal/domain/review"
	"github.com/YoshitsuguKoike/repostflow/internal/infrastructure/di"
)

func newHistoryCmd(st *rootState) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [session-id]",
		Short: "List recent review sessions",
		Long: `List recent review sessions, newest first, from the configured history store.
Pass a session ID to show that session only.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			recorder, err := di.OpenHistory(ctx, st.cfg)
			if err != nil {
				return fmt.Errorf("failed to open history store: %w", err)
			}
			defer recorder.Close()

			var sessions []*review.Session
			if len(args) == 1 {
				s, err := recorder.FindSession(ctx, review.SessionID(args[0]))
				if err != nil {
					return err
				}
				sessions = []*review.Session{s}
			} else {
				sessions, err = recorder.ListSessions(ctx, limit)
				if err != nil {
					return fmt.Errorf("failed to list sessions: %w", err)
				}
			}
			return st.presenter(c).PresentHistory(sessions)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of sessions to show, 0 for all")
	return cmd
}
