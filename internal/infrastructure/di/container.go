// Package di wires the repost pipeline from a config.Config.
package di

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"

	agentgateway "github.com/YoshitsuguKoike/repostflow/internal/adapter/gateway/agent"
	"github.com/YoshitsuguKoike/repostflow/internal/adapter/gateway/linkedin"
	"github.com/YoshitsuguKoike/repostflow/internal/adapter/gateway/reviewgate"
	storagegateway "github.com/YoshitsuguKoike/repostflow/internal/adapter/gateway/storage"
	"github.com/YoshitsuguKoike/repostflow/internal/adapter/gateway/websearch"
	"github.com/YoshitsuguKoike/repostflow/internal/adapter/gateway/xapi"
	"github.com/YoshitsuguKoike/repostflow/internal/app"
	"github.com/YoshitsuguKoike/repostflow/internal/app/config"
	"github.com/YoshitsuguKoike/repostflow/internal/application/port/output"
	"github.com/YoshitsuguKoike/repostflow/internal/application/usecase/draft"
	"github.com/YoshitsuguKoike/repostflow/internal/application/usecase/repost"
	"github.com/YoshitsuguKoike/repostflow/internal/application/usecase/research"
	"github.com/YoshitsuguKoike/repostflow/internal/domain/review"
	"github.com/YoshitsuguKoike/repostflow/internal/infrastructure/persistence/history"
)

// Options carries process-level collaborators that do not come from config
type Options struct {
	Stdin      io.Reader
	Stdout     io.Writer
	Fs         afero.Fs
	HTTPClient *http.Client // shared by the X, search and scraper clients when set
	Logger     app.Logger

	// DryRun swaps the agent, publisher and archive for local stand-ins
	// and keeps history in memory
	DryRun bool

	// Verdicts replays review verdicts instead of asking a reviewer
	Verdicts []review.Verdict
}

// Container is the DI container that holds all dependencies
type Container struct {
	cfg    config.Config
	opts   Options
	logger app.Logger

	// Gateways
	fetcher   *xapi.ProfileFetcher
	agent     output.AgentGateway
	searcher  output.WebSearcher
	scraper   output.PageScraper
	publisher output.Publisher
	gate      reviewgate.Gate
	storage   output.StorageGateway
	recorder  output.SessionRecorder
	journal   *app.JournalWriter // nil in dry runs

	// Use cases
	compiler   *research.Compiler
	controller *draft.Controller
	flow       *repost.FlowUseCase
}

// NewContainer creates and initializes the DI container
func NewContainer(ctx context.Context, cfg config.Config, opts Options) (*Container, error) {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}

	c := &Container{
		cfg:    cfg,
		opts:   opts,
		logger: app.LoggerOrDefault(opts.Logger),
	}

	if err := c.initializeGateways(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize gateways: %w", err)
	}
	if err := c.initializePersistence(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize persistence: %w", err)
	}
	c.initializeUseCases()

	return c, nil
}

func (c *Container) initializeGateways(ctx context.Context) error {
	c.fetcher = xapi.NewProfileFetcher(c.cfg.X(), c.opts.HTTPClient, c.logger)

	agentCfg := c.cfg.Agent()
	if c.opts.DryRun {
		agentCfg = config.AgentConfig{Type: "mock"}
	}
	agent, err := agentgateway.NewAgentGateway(agentCfg)
	if err != nil {
		return fmt.Errorf("failed to create agent gateway: %w", err)
	}
	c.agent = agent

	rc := c.cfg.Research()
	if rc.SerperAPIKey != "" {
		c.searcher = websearch.NewSerperSearcher(rc.SerperAPIKey, rc.SerperURL, c.opts.HTTPClient)
	} else {
		c.logger.Info("SERPER_API_KEY not set, web search disabled")
	}
	if rc.MaxScrapes > 0 {
		c.scraper = websearch.NewScraper(c.opts.HTTPClient, rc.ScrapeMaxChars)
	}

	if c.opts.DryRun {
		c.publisher = linkedin.NewDryRunPublisher(c.opts.Stdout)
	} else {
		c.publisher = linkedin.NewPublisher(c.cfg.LinkedIn(), nil, c.logger)
	}

	gate, err := reviewgate.New(c.cfg.Review(),
		reviewgate.WithIO(c.opts.Stdin, c.opts.Stdout),
		reviewgate.WithScript(c.opts.Verdicts),
		reviewgate.WithLogger(c.logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create review gate: %w", err)
	}
	c.gate = gate

	return nil
}

func (c *Container) initializePersistence(ctx context.Context) error {
	storageCfg := c.cfg.Storage()
	if c.opts.DryRun {
		storageCfg.Type = storagegateway.TypeMock
	}
	storage, err := storagegateway.NewStorageGateway(ctx, storageCfg, c.opts.Fs)
	if err != nil {
		return fmt.Errorf("failed to create storage gateway: %w", err)
	}
	c.storage = storage

	recorder, err := c.openHistory(ctx)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	c.recorder = recorder

	if !c.opts.DryRun {
		c.journal = app.NewJournalWriter(c.opts.Fs, app.ResolvePaths(c.cfg.DataDir()).Journal)
	}
	return nil
}

func (c *Container) openHistory(ctx context.Context) (output.SessionRecorder, error) {
	if c.opts.DryRun {
		return history.NewStore(ctx, history.StoreTypeMemory)
	}
	return OpenHistory(ctx, c.cfg)
}

// OpenHistory maps the history config section onto a history store.
// The caller closes the store.
func OpenHistory(ctx context.Context, cfg config.Config) (output.SessionRecorder, error) {
	hc := cfg.History()
	switch history.StoreType(hc.Driver) {
	case history.StoreTypeSQLite, "":
		path := hc.Path
		if path == "" {
			path = app.ResolvePaths(cfg.DataDir()).History
		}
		return history.NewStore(ctx, history.StoreTypeSQLite, history.WithSQLitePath(path))

	case history.StoreTypeRedis:
		client := redis.NewClient(&redis.Options{Addr: hc.RedisAddr, DB: hc.RedisDB})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", hc.RedisAddr, err)
		}
		return history.NewStore(ctx, history.StoreTypeRedis,
			history.WithRedisClient(client), history.WithRedisTTL(hc.TTL))

	default:
		return history.NewStore(ctx, history.StoreType(hc.Driver))
	}
}

func (c *Container) initializeUseCases() {
	rc := c.cfg.Research()
	c.compiler = research.NewCompiler(c.fetcher, c.agent, c.searcher, c.scraper, research.Options{
		MaxSearches:    rc.MaxSearches,
		MaxScrapes:     rc.MaxScrapes,
		ScrapeMaxChars: rc.ScrapeMaxChars,
	}, c.logger)

	options := []draft.Option{
		draft.WithRecorder(c.recorder),
		draft.WithStorage(c.storage),
		draft.WithLinter(linkedin.LintMarkdown),
		draft.WithLogger(c.logger),
	}
	if c.journal != nil {
		options = append(options, draft.WithJournal(c.journal))
	}
	c.controller = draft.NewController(c.agent, c.gate, c.publisher,
		draft.Options{
			MaxAttempts: c.cfg.MaxAttempts(),
			Caption:     c.cfg.Caption(),
		},
		options...,
	)

	c.flow = repost.NewFlowUseCase(c.compiler, c.controller, c.cfg.FallbackProfiles(), c.storage, c.logger)
}

// FlowUseCase returns the repost flow
func (c *Container) FlowUseCase() *repost.FlowUseCase {
	return c.flow
}

// Recorder returns the session history store
func (c *Container) Recorder() output.SessionRecorder {
	return c.recorder
}

// StorageGateway returns the artifact archive
func (c *Container) StorageGateway() output.StorageGateway {
	return c.storage
}

// AgentGateway returns the agent gateway
func (c *Container) AgentGateway() output.AgentGateway {
	return c.agent
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error
	if c.gate != nil {
		errs = append(errs, c.gate.Close())
	}
	if c.fetcher != nil {
		errs = append(errs, c.fetcher.Close())
	}
	if c.recorder != nil {
		errs = append(errs, c.recorder.Close())
	}
	return errors.Join(errs...)
}
