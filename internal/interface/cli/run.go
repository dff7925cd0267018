package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YoshitsuguKoike/repostflow/internal/adapter/gateway/reviewgate"
	"github.com/YoshitsuguKoike/repostflow/internal/app/config"
	"github.com/YoshitsuguKoike/repostflow/internal/application/dto"
	"github.com/YoshitsuguKoike/repostflow/internal/domain/review"
	"github.com/YoshitsuguKoike/repostflow/internal/domain/social"
	infraConfig "github.com/YoshitsuguKoike/repostflow/internal/infra/config"
	"github.com/YoshitsuguKoike/repostflow/internal/infrastructure/di"
)

// RunOptions holds the per-run overrides shared by run and trigger
type RunOptions struct {
	Profiles    []string
	MaxAttempts int
	Review      string
	DryRun      bool
	Verdicts    []string
}

func newRunCmd(st *rootState) *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Research, draft and publish one LinkedIn post",
		Long: `Run one pass of the pipeline: fetch recent posts from the configured X
profiles, compile a research brief, then draft a LinkedIn post until a
reviewer approves it, rejects it too often or cancels.

Examples:
  repostflow run
  repostflow run --profiles joaomdmoura,crewAIInc --max-attempts 2
  repostflow run --dry-run --verdicts "reject: shorter" --verdicts approve`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return st.runFlow(c, *opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Profiles, "profiles", nil, "X profiles to read, comma separated (default from settings)")
	cmd.Flags().IntVar(&opts.MaxAttempts, "max-attempts", 0, "drafts allowed before the session is abandoned (default from settings)")
	cmd.Flags().StringVar(&opts.Review, "review", "", "review mode: console, tui, auto-approve or auto-cancel")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "use a stand-in agent and print the post instead of publishing it")
	cmd.Flags().StringArrayVar(&opts.Verdicts, "verdicts", nil, `replay verdicts instead of asking, e.g. "reject: shorter;approve"`)
	return cmd
}

// runConfig applies the run overrides on top of the loaded settings
func (st *rootState) runConfig(opts RunOptions) (config.Config, error) {
	p := st.cfg.Params()
	if opts.MaxAttempts > 0 {
		p.MaxAttempts = opts.MaxAttempts
	}
	if opts.Review != "" {
		p.Review.Mode = opts.Review
	}
	cfg := config.NewAppConfig(p)
	if err := infraConfig.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (st *rootState) runFlow(c *cobra.Command, opts RunOptions) error {
	cfg, err := st.runConfig(opts)
	if err != nil {
		return err
	}
	verdicts, err := reviewgate.ParseScript(opts.Verdicts)
	if err != nil {
		return err
	}

	ctx := c.Context()
	container, err := di.NewContainer(ctx, cfg, di.Options{
		Stdin:      c.InOrStdin(),
		Stdout:     c.OutOrStdout(),
		Fs:         st.env.Fs,
		HTTPClient: st.env.HTTPClient,
		Logger:     st.logger,
		DryRun:     opts.DryRun,
		Verdicts:   verdicts,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := container.Close(); err != nil {
			st.logger.Warn("Failed to release resources: %v", err)
		}
	}()

	// empty profiles make the flow fall back to the configured list
	profiles := social.NormalizeUsernames(opts.Profiles)
	if len(profiles) == 0 {
		profiles = cfg.Profiles()
	}
	st.logger.Info("Starting run: max_attempts=%d review=%s dry_run=%t",
		cfg.MaxAttempts(), reviewMode(cfg, verdicts), opts.DryRun)

	out, err := container.FlowUseCase().Execute(ctx, dto.KickoffInput{Profiles: profiles})
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}
	return st.presenter(c).PresentOutcome(out)
}

func reviewMode(cfg config.Config, verdicts []review.Verdict) string {
	if len(verdicts) > 0 {
		return fmt.Sprintf("scripted(%d)", len(verdicts))
	}
	return cfg.Review().Mode
}
