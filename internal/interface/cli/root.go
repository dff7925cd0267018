// Package cli is the repostflow command line.
package cli

import (
	"context"
	"net/http"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/YoshitsuguKoike/repostflow/internal/adapter/presenter"
	"github.com/YoshitsuguKoike/repostflow/internal/app"
	"github.com/YoshitsuguKoike/repostflow/internal/app/config"
	"github.com/YoshitsuguKoike/repostflow/internal/application/port/output"
	infraConfig "github.com/YoshitsuguKoike/repostflow/internal/infra/config"
	"github.com/YoshitsuguKoike/repostflow/internal/interface/cli/version"
)

// Env carries the process collaborators the commands use.
// Zero values fall back to the real process.
type Env struct {
	Fs         afero.Fs
	Getenv     func(string) string
	HTTPClient *http.Client
}

// rootState is shared by all subcommands of one root
type rootState struct {
	env Env

	configPath string
	logLevel   string
	format     string

	cfg    *config.AppConfig
	logger app.Logger
}

func (st *rootState) presenter(cmd *cobra.Command) output.RunPresenter {
	return presenter.NewRunPresenter(st.format, cmd.OutOrStdout())
}

// NewRoot builds the command tree against the real process
func NewRoot() *cobra.Command {
	return NewRootWithEnv(Env{})
}

// NewRootWithEnv builds the command tree against env
func NewRootWithEnv(env Env) *cobra.Command {
	if env.Fs == nil {
		env.Fs = afero.NewOsFs()
	}
	if env.Getenv == nil {
		env.Getenv = os.Getenv
	}
	st := &rootState{env: env}

	cmd := &cobra.Command{
		Use:   "repostflow",
		Short: "Turn X posts into reviewed LinkedIn posts",
		Long: `repostflow reads recent posts from a list of X profiles, researches the most
interesting one, drafts a LinkedIn post and publishes it once a human approves.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load configuration before any command runs
			// Priority: ENV > repostflow.yaml > defaults
			cfg, err := infraConfig.LoadSettings(st.env.Fs, st.configPath, st.env.Getenv)
			if err != nil {
				return err
			}
			st.cfg = cfg

			level := cfg.LogLevel()
			if st.logLevel != "" {
				level = st.logLevel
			}
			InitGlobalLogger(level, cmd.ErrOrStderr())
			st.logger = InitializeLoggers(GetLogger())

			st.logger.Debug("Configuration loaded from %s %s", cfg.ConfigSource(), cfg.SettingPath())
			return nil
		},
		RunE: func(c *cobra.Command, _ []string) error { return c.Help() },
	}

	cmd.PersistentFlags().StringVar(&st.configPath, "config", "", "settings file (default ./"+infraConfig.SettingsFileName+")")
	cmd.PersistentFlags().StringVar(&st.logLevel, "log-level", "", "debug, info, warn or error (overrides the settings file)")
	cmd.PersistentFlags().StringVar(&st.format, "format", "text", "output format: text or json")

	cmd.AddCommand(newRunCmd(st))
	cmd.AddCommand(newTriggerCmd(st))
	cmd.AddCommand(newPlotCmd())
	cmd.AddCommand(newHistoryCmd(st))
	cmd.AddCommand(newJournalCmd(st))
	cmd.AddCommand(newInitCmd(st))

	versionCmd := version.NewCommand()
	// version works without a readable settings file
	versionCmd.PersistentPreRunE = func(*cobra.Command, []string) error { return nil }
	cmd.AddCommand(versionCmd)
	return cmd
}

// Execute runs the command tree and reports a failure through the presenter
// selected by --format. It returns the process exit code.
func Execute(ctx context.Context, root *cobra.Command) int {
	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	format, _ := root.PersistentFlags().GetString("format")
	_ = presenter.NewRunPresenter(format, root.ErrOrStderr()).PresentError(err)
	return 1
}
