package cli

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	infraConfig "github.com/YoshitsuguKoike/repostflow/internal/infra/config"
	"github.com/YoshitsuguKoike/repostflow/internal/util"
)

func newInitCmd(st *rootState) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a settings file with every default filled in",
		Long: `Write repostflow.yaml (or the given path) with every default value.
Secrets are left out; set X_BEARER_TOKEN, LINKEDIN_ACCESS_TOKEN,
LINKEDIN_PERSON_ID, ANTHROPIC_API_KEY and SERPER_API_KEY in the environment.`,
		Args: cobra.MaximumNArgs(1),
		// init must work before a valid settings file exists
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(c *cobra.Command, args []string) error {
			path := infraConfig.SettingsFileName
			if len(args) == 1 {
				path = args[0]
			}

			exists, err := afero.Exists(st.env.Fs, path)
			if err != nil {
				return fmt.Errorf("failed to check %s: %w", path, err)
			}
			if exists && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			if err := util.WriteFileAtomic(st.env.Fs, path, infraConfig.CreateDefaultSettings()); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			return st.presenter(c).PresentSuccess(fmt.Sprintf("Settings written to %s", path), nil)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing settings file")
	return cmd
}
