package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/YoshitsuguKoike/repostflow/internal/app"
	"github.com/YoshitsuguKoike/repostflow/internal/app/config"
	"github.com/YoshitsuguKoike/repostflow/internal/domain/review"
	"github.com/YoshitsuguKoike/repostflow/internal/domain/social"
)

// SettingsFileName is looked up in the data directory when no path is given
const SettingsFileName = "repostflow.yaml"

// DefaultCaption is appended to every draft unless the caption is overridden
const DefaultCaption = "---\nDrafted by repostflow and published after human review."

// RawSettings represents the structure of repostflow.yaml.
// Pointer fields distinguish "unset" from zero values so defaults can be applied.
type RawSettings struct {
	Profiles         []string `yaml:"profiles"`
	FallbackProfiles []string `yaml:"fallback_profiles"`
	MaxAttempts      *int     `yaml:"max_attempts"`
	Caption          *string  `yaml:"caption"`
	DataDir          *string  `yaml:"data_dir"`
	LogLevel         *string  `yaml:"log_level"`

	X        RawX        `yaml:"x"`
	LinkedIn RawLinkedIn `yaml:"linkedin"`
	Agent    RawAgent    `yaml:"agent"`
	Research RawResearch `yaml:"research"`
	Review   RawReview   `yaml:"review"`
	History  RawHistory  `yaml:"history"`
	Storage  RawStorage  `yaml:"storage"`
}

type RawX struct {
	BearerToken       *string `yaml:"bearer_token,omitempty"`
	BaseURL           *string `yaml:"base_url"`
	Lookback          *string `yaml:"lookback"`
	MaxResults        *int    `yaml:"max_results"`
	FallbackCount     *int    `yaml:"fallback_count"`
	RequestsPerMinute *int    `yaml:"requests_per_minute"`
	MaxRetries        *int    `yaml:"max_retries"`
	Concurrency       *int    `yaml:"concurrency"`
}

type RawLinkedIn struct {
	AccessToken *string `yaml:"access_token,omitempty"`
	PersonID    *string `yaml:"person_id,omitempty"`
	BaseURL     *string `yaml:"base_url"`
	APIVersion  *string `yaml:"api_version"`
}

type RawAgent struct {
	Type    *string `yaml:"type"`
	Model   *string `yaml:"model"`
	APIKey  *string `yaml:"api_key,omitempty"`
	Bin     *string `yaml:"bin"`
	Timeout *string `yaml:"timeout"`
}

type RawResearch struct {
	SerperAPIKey   *string `yaml:"serper_api_key,omitempty"`
	SerperURL      *string `yaml:"serper_url"`
	MaxSearches    *int    `yaml:"max_searches"`
	MaxScrapes     *int    `yaml:"max_scrapes"`
	ScrapeMaxChars *int    `yaml:"scrape_max_chars"`
}

type RawReview struct {
	Mode           *string `yaml:"mode"`
	Timeout        *string `yaml:"timeout"`
	DefaultVerdict *string `yaml:"default_verdict"`
}

type RawHistory struct {
	Driver    *string `yaml:"driver"`
	Path      *string `yaml:"path"`
	RedisAddr *string `yaml:"redis_addr"`
	RedisDB   *int    `yaml:"redis_db"`
	TTL       *string `yaml:"ttl"`
}

type RawStorage struct {
	Type     *string `yaml:"type"`
	BaseDir  *string `yaml:"base_dir"`
	S3Bucket *string `yaml:"s3_bucket"`
	S3Prefix *string `yaml:"s3_prefix"`
	S3Region *string `yaml:"s3_region"`
}

// LoadSettings resolves configuration.
// Priority: environment > settings file > defaults.
// An empty path looks for repostflow.yaml in the current directory; a missing
// file is not an error, an unreadable or malformed one is.
func LoadSettings(fs afero.Fs, path string, getenv func(string) string) (*config.AppConfig, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	settings := &RawSettings{}
	configSource := "default"
	settingPath := ""

	explicit := path != ""
	if !explicit {
		path = SettingsFileName
	}

	data, err := afero.ReadFile(fs, path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, settings); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		configSource = "yaml"
		settingPath = path
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// no settings file, defaults and environment only
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if applyEnv(settings, getenv) && configSource == "default" {
		configSource = "env"
	}

	applyDefaults(settings)

	cfg, err := buildAppConfig(settings, configSource, settingPath)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills in default values for any nil fields
func applyDefaults(s *RawSettings) {
	if len(s.FallbackProfiles) == 0 {
		s.FallbackProfiles = []string{"joaomdmoura", "crewAIInc", "AndrewYNg"}
	}
	setInt(&s.MaxAttempts, review.DefaultMaxAttempts)
	setString(&s.Caption, DefaultCaption)
	setString(&s.DataDir, app.DefaultHome)
	setString(&s.LogLevel, "warn")

	setString(&s.X.BearerToken, "")
	setString(&s.X.BaseURL, "https://api.x.com")
	setString(&s.X.Lookback, "24h")
	setInt(&s.X.MaxResults, 100)
	setInt(&s.X.FallbackCount, 5)
	setInt(&s.X.RequestsPerMinute, 15)
	setInt(&s.X.MaxRetries, 4)
	setInt(&s.X.Concurrency, 1)

	setString(&s.LinkedIn.AccessToken, "")
	setString(&s.LinkedIn.PersonID, "")
	setString(&s.LinkedIn.BaseURL, "https://api.linkedin.com")
	setString(&s.LinkedIn.APIVersion, "202602")

	setString(&s.Agent.Type, "claude-code")
	setString(&s.Agent.Model, "claude-sonnet-4-5")
	setString(&s.Agent.APIKey, "")
	setString(&s.Agent.Bin, "claude")
	setString(&s.Agent.Timeout, "5m")

	setString(&s.Research.SerperAPIKey, "")
	setString(&s.Research.SerperURL, "https://google.serper.dev/search")
	setInt(&s.Research.MaxSearches, 3)
	setInt(&s.Research.MaxScrapes, 2)
	setInt(&s.Research.ScrapeMaxChars, 4000)

	setString(&s.Review.Mode, "console")
	setString(&s.Review.Timeout, "0s")
	setString(&s.Review.DefaultVerdict, string(review.VerdictApproved))

	setString(&s.History.Driver, "sqlite")
	setString(&s.History.Path, app.ResolvePaths(*s.DataDir).History)
	setString(&s.History.RedisAddr, "localhost:6379")
	setInt(&s.History.RedisDB, 0)
	setString(&s.History.TTL, "720h")

	setString(&s.Storage.Type, "local")
	setString(&s.Storage.BaseDir, *s.DataDir)
	setString(&s.Storage.S3Bucket, "")
	setString(&s.Storage.S3Prefix, "repostflow")
	setString(&s.Storage.S3Region, "")
}

// buildAppConfig converts RawSettings to AppConfig
func buildAppConfig(s *RawSettings, configSource, settingPath string) (*config.AppConfig, error) {
	lookback, err := parseDuration("x.lookback", *s.X.Lookback)
	if err != nil {
		return nil, err
	}
	agentTimeout, err := parseDuration("agent.timeout", *s.Agent.Timeout)
	if err != nil {
		return nil, err
	}
	reviewTimeout, err := parseDuration("review.timeout", *s.Review.Timeout)
	if err != nil {
		return nil, err
	}
	historyTTL, err := parseDuration("history.ttl", *s.History.TTL)
	if err != nil {
		return nil, err
	}

	return config.NewAppConfig(config.Params{
		Profiles:         social.NormalizeUsernames(s.Profiles),
		FallbackProfiles: social.NormalizeUsernames(s.FallbackProfiles),
		MaxAttempts:      *s.MaxAttempts,
		Caption:          *s.Caption,
		DataDir:          *s.DataDir,
		LogLevel:         *s.LogLevel,
		X: config.XConfig{
			BearerToken:       *s.X.BearerToken,
			BaseURL:           *s.X.BaseURL,
			Lookback:          lookback,
			MaxResults:        *s.X.MaxResults,
			FallbackCount:     *s.X.FallbackCount,
			RequestsPerMinute: *s.X.RequestsPerMinute,
			MaxRetries:        *s.X.MaxRetries,
			Concurrency:       *s.X.Concurrency,
		},
		LinkedIn: config.LinkedInConfig{
			AccessToken: *s.LinkedIn.AccessToken,
			PersonID:    *s.LinkedIn.PersonID,
			BaseURL:     *s.LinkedIn.BaseURL,
			APIVersion:  *s.LinkedIn.APIVersion,
		},
		Agent: config.AgentConfig{
			Type:    *s.Agent.Type,
			Model:   *s.Agent.Model,
			APIKey:  *s.Agent.APIKey,
			Bin:     *s.Agent.Bin,
			Timeout: agentTimeout,
		},
		Research: config.ResearchConfig{
			SerperAPIKey:   *s.Research.SerperAPIKey,
			SerperURL:      *s.Research.SerperURL,
			MaxSearches:    *s.Research.MaxSearches,
			MaxScrapes:     *s.Research.MaxScrapes,
			ScrapeMaxChars: *s.Research.ScrapeMaxChars,
		},
		Review: config.ReviewConfig{
			Mode:           *s.Review.Mode,
			Timeout:        reviewTimeout,
			DefaultVerdict: *s.Review.DefaultVerdict,
		},
		History: config.HistoryConfig{
			Driver:    *s.History.Driver,
			Path:      *s.History.Path,
			RedisAddr: *s.History.RedisAddr,
			RedisDB:   *s.History.RedisDB,
			TTL:       historyTTL,
		},
		Storage: config.StorageConfig{
			Type:     *s.Storage.Type,
			BaseDir:  *s.Storage.BaseDir,
			S3Bucket: *s.Storage.S3Bucket,
			S3Prefix: *s.Storage.S3Prefix,
			S3Region: *s.Storage.S3Region,
		},
		ConfigSource: configSource,
		SettingPath:  settingPath,
	}), nil
}

// Validate rejects values no component can work with
func Validate(c config.Config) error {
	if c.MaxAttempts() <= 0 {
		return fmt.Errorf("max_attempts must be positive, got %d", c.MaxAttempts())
	}
	x := c.X()
	if x.MaxResults < 5 || x.MaxResults > 100 {
		return fmt.Errorf("x.max_results must be between 5 and 100, got %d", x.MaxResults)
	}
	if x.FallbackCount < 5 || x.FallbackCount > 100 {
		return fmt.Errorf("x.fallback_count must be between 5 and 100, got %d", x.FallbackCount)
	}
	if x.Concurrency <= 0 {
		return fmt.Errorf("x.concurrency must be positive, got %d", x.Concurrency)
	}
	switch c.Review().Mode {
	case "console", "tui", "auto-approve", "auto-cancel":
	default:
		return fmt.Errorf("unknown review mode: %s (supported: console, tui, auto-approve, auto-cancel)", c.Review().Mode)
	}
	if _, err := review.ParseVerdictKind(c.Review().DefaultVerdict); err != nil {
		return fmt.Errorf("invalid review.default_verdict %q: %w", c.Review().DefaultVerdict, err)
	}
	switch c.History().Driver {
	case "memory", "sqlite", "redis":
	default:
		return fmt.Errorf("unknown history driver: %s (supported: memory, sqlite, redis)", c.History().Driver)
	}
	switch c.Storage().Type {
	case "local", "mock":
	case "s3":
		if c.Storage().S3Bucket == "" {
			return fmt.Errorf("storage.s3_bucket is required for s3 storage")
		}
	default:
		return fmt.Errorf("unknown storage type: %s (supported: local, s3, mock)", c.Storage().Type)
	}
	return nil
}

// CreateDefaultSettings renders a settings file with every default filled in
func CreateDefaultSettings() []byte {
	settings := &RawSettings{}
	applyDefaults(settings)
	// secrets belong in the environment
	settings.X.BearerToken = nil
	settings.LinkedIn.AccessToken = nil
	settings.LinkedIn.PersonID = nil
	settings.Agent.APIKey = nil
	settings.Research.SerperAPIKey = nil

	data, _ := yaml.Marshal(settings)
	return data
}

func parseDuration(field, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	return d, nil
}

func setString(p **string, v string) {
	if *p == nil {
		*p = &v
	}
}

func setInt(p **int, v int) {
	if *p == nil {
		*p = &v
	}
}
