package config

import "time"

// Config provides read-only access to application configuration.
// Each external integration reads only its own section; nothing below the
// CLI layer looks at the process environment.
type Config interface {
	// Pipeline
	Profiles() []string         // X profiles to read (X_PROFILES)
	FallbackProfiles() []string // Used when Profiles is empty
	MaxAttempts() int           // Drafts allowed per session
	Caption() string            // Footer appended to every draft, empty disables
	DataDir() string            // Base directory for local state

	// Integrations
	X() XConfig
	LinkedIn() LinkedInConfig
	Agent() AgentConfig
	Research() ResearchConfig
	Review() ReviewConfig
	History() HistoryConfig
	Storage() StorageConfig

	// Logging
	LogLevel() string // debug, info, warn, error

	// Metadata
	ConfigSource() string // Source of configuration: "yaml", "env", or "default"
	SettingPath() string  // Path to the settings file if one was loaded
}

// XConfig configures the X read API client
type XConfig struct {
	BearerToken       string
	BaseURL           string
	Lookback          time.Duration // window of the primary timeline query
	MaxResults        int           // page size of the primary query
	FallbackCount     int           // posts fetched when the window is empty
	RequestsPerMinute int
	MaxRetries        int // retries after HTTP 429
	Concurrency       int // profiles fetched in parallel
}

// LinkedInConfig configures the LinkedIn posts API client
type LinkedInConfig struct {
	AccessToken string
	PersonID    string
	BaseURL     string
	APIVersion  string // LinkedIn-Version header, YYYYMM
}

// AgentConfig selects and configures the drafting/research agent
type AgentConfig struct {
	Type    string // claude-code, claude-code-cli, mock
	Model   string
	APIKey  string
	Bin     string
	Timeout time.Duration
}

// ResearchConfig configures the supplementary web research
type ResearchConfig struct {
	SerperAPIKey   string
	SerperURL      string
	MaxSearches    int
	MaxScrapes     int
	ScrapeMaxChars int
}

// ReviewConfig configures the human review gate
type ReviewConfig struct {
	Mode           string        // console, tui, auto-approve, auto-cancel
	Timeout        time.Duration // zero waits forever
	DefaultVerdict string        // applied when the reviewer does not answer in time
}

// HistoryConfig selects the session history driver
type HistoryConfig struct {
	Driver    string // memory, sqlite, redis
	Path      string // sqlite database path
	RedisAddr string
	RedisDB   int
	TTL       time.Duration
}

// StorageConfig selects the artifact archive
type StorageConfig struct {
	Type     string // local, s3, mock
	BaseDir  string
	S3Bucket string
	S3Prefix string
	S3Region string
}

// Params carries every value an AppConfig is built from
type Params struct {
	Profiles         []string
	FallbackProfiles []string
	MaxAttempts      int
	Caption          string
	DataDir          string
	LogLevel         string

	X        XConfig
	LinkedIn LinkedInConfig
	Agent    AgentConfig
	Research ResearchConfig
	Review   ReviewConfig
	History  HistoryConfig
	Storage  StorageConfig

	ConfigSource string
	SettingPath  string
}

// AppConfig is the concrete implementation of Config interface.
type AppConfig struct {
	p Params
}

// NewAppConfig creates a new AppConfig from fully resolved values
func NewAppConfig(p Params) *AppConfig {
	p.Profiles = append([]string(nil), p.Profiles...)
	p.FallbackProfiles = append([]string(nil), p.FallbackProfiles...)
	return &AppConfig{p: p}
}

// Params returns a copy of the values, for building a modified config
func (c *AppConfig) Params() Params {
	p := c.p
	p.Profiles = append([]string(nil), c.p.Profiles...)
	p.FallbackProfiles = append([]string(nil), c.p.FallbackProfiles...)
	return p
}

func (c *AppConfig) Profiles() []string         { return append([]string(nil), c.p.Profiles...) }
func (c *AppConfig) FallbackProfiles() []string { return append([]string(nil), c.p.FallbackProfiles...) }
func (c *AppConfig) MaxAttempts() int           { return c.p.MaxAttempts }
func (c *AppConfig) Caption() string            { return c.p.Caption }
func (c *AppConfig) DataDir() string            { return c.p.DataDir }
func (c *AppConfig) LogLevel() string           { return c.p.LogLevel }

func (c *AppConfig) X() XConfig               { return c.p.X }
func (c *AppConfig) LinkedIn() LinkedInConfig { return c.p.LinkedIn }
func (c *AppConfig) Agent() AgentConfig       { return c.p.Agent }
func (c *AppConfig) Research() ResearchConfig { return c.p.Research }
func (c *AppConfig) Review() ReviewConfig     { return c.p.Review }
func (c *AppConfig) History() HistoryConfig   { return c.p.History }
func (c *AppConfig) Storage() StorageConfig   { return c.p.Storage }

func (c *AppConfig) ConfigSource() string { return c.p.ConfigSource }
func (c *AppConfig) SettingPath() string  { return c.p.SettingPath }

// EffectiveProfiles returns the configured profiles, or the fallback list when none are set
func EffectiveProfiles(c Config) []string {
	if p := c.Profiles(); len(p) > 0 {
		return p
	}
	return c.FallbackProfiles()
}
