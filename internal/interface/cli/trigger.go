package cli

import (
	"github.com/spf13/cobra"

	"github.com/YoshitsuguKoike/repostflow/internal/application/dto"
)

func newTriggerCmd(st *rootState) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "trigger <json>",
		Short: "Run the pipeline from a JSON trigger payload",
		Long: `Run one pass of the pipeline with overrides taken from a JSON object.
Every field is optional:

  {"profiles": ["joaomdmoura", "crewAIInc"], "max_attempts": 2, "review": "auto-approve"}

profiles may also be a comma separated string.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			if len(args) == 0 {
				return dto.ErrNoTriggerPayload
			}
			payload, err := dto.ParseTriggerPayload(args[0])
			if err != nil {
				return err
			}
			return st.runFlow(c, RunOptions{
				Profiles:    payload.Profiles,
				MaxAttempts: payload.MaxAttempts,
				Review:      payload.Review,
				DryRun:      dryRun,
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "use a stand-in agent and print the post instead of publishing it")
	return cmd
}
