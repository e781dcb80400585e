package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Search SearchConfig `yaml:"search" mapstructure:"search"`
	Fetch  FetchConfig  `yaml:"fetch" mapstructure:"fetch"`
	Run    RunConfig    `yaml:"run" mapstructure:"run"`
	Filter FilterConfig `yaml:"filter" mapstructure:"filter"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the evidence datastore.
type StoreConfig struct {
	Driver        string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL   string `yaml:"database_url" mapstructure:"database_url"`
	ServiceKey    string `yaml:"service_key" mapstructure:"service_key"`
	LeadsTable    string `yaml:"leads_table" mapstructure:"leads_table"`
	EvidenceTable string `yaml:"evidence_table" mapstructure:"evidence_table"`
	MaxConns      int32  `yaml:"max_conns" mapstructure:"max_conns"`
}

// SearchConfig configures the search provider client.
type SearchConfig struct {
	APIKey            string  `yaml:"api_key" mapstructure:"api_key"`
	BaseURL           string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs       int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// FetchConfig configures the page fetcher.
type FetchConfig struct {
	UserAgent    string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs  int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxBodyBytes int64  `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// RunConfig configures the lead fan-out.
type RunConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
	LeadLimit   int `yaml:"lead_limit" mapstructure:"lead_limit"`
	MaxEvidence int `yaml:"max_evidence" mapstructure:"max_evidence"`
}

// FilterConfig overrides the URL exclusion lists. A nil list keeps the
// built-in defaults; an empty list disables that check.
type FilterConfig struct {
	BannedHosts  []string `yaml:"banned_hosts" mapstructure:"banned_hosts"`
	HardExcludes []string `yaml:"hard_excludes" mapstructure:"hard_excludes"`
	ExcludePaths []string `yaml:"exclude_paths" mapstructure:"exclude_paths"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validation modes, one per command that touches external systems.
const (
	ModeRun     = "run"
	ModeMigrate = "migrate"
	ModeImport  = "import"
)

// MaxConcurrency bounds run.concurrency.
const MaxConcurrency = 64

// Validate checks the keys the given mode needs and reports every problem at once.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch c.Store.Driver {
	case "postgres":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required (SUPABASE_URL)")
		} else if isHTTPURL(c.Store.DatabaseURL) {
			errs = append(errs, "store.database_url must be a postgres connection string (postgres://user@host:5432/db), not the HTTP project URL")
		}
		if c.Store.ServiceKey == "" {
			errs = append(errs, "store.service_key is required (SUPABASE_SERVICE_KEY)")
		}
	case "sqlite":
	default:
		errs = append(errs, fmt.Sprintf("store.driver must be postgres or sqlite, got %q", c.Store.Driver))
	}

	switch mode {
	case ModeRun:
		if c.Search.APIKey == "" {
			errs = append(errs, "search.api_key is required (SEARCH_API_KEY)")
		}
		if c.Run.Concurrency < 1 || c.Run.Concurrency > MaxConcurrency {
			errs = append(errs, fmt.Sprintf("run.concurrency must be between 1 and %d", MaxConcurrency))
		}
		if c.Run.LeadLimit < 1 {
			errs = append(errs, "run.lead_limit must be > 0")
		}
		if c.Run.MaxEvidence < 1 {
			errs = append(errs, "run.max_evidence must be > 0")
		}
	case ModeMigrate, ModeImport:
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// isHTTPURL reports whether s is a web endpoint rather than a database DSN.
func isHTTPURL(s string) bool {
	l := strings.ToLower(strings.TrimSpace(s))
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// envAliases lists the unprefixed variable names accepted for some keys.
var envAliases = map[string][]string{
	"store.database_url": {"SUPABASE_URL"},
	"store.service_key":  {"SUPABASE_SERVICE_KEY"},
	"search.api_key":     {"SEARCH_API_KEY"},
	"run.concurrency":    {"CONCURRENCY"},
}

// Load reads configuration from .env, config.yaml and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("EVIDENCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, aliases := range envAliases {
		names := append([]string{"EVIDENCE_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, aliases...)
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", key)
		}
	}

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.leads_table", "supplements_needing_links")
	v.SetDefault("store.evidence_table", "supplements_rows")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("search.base_url", "https://google.serper.dev/search")
	v.SetDefault("search.timeout_secs", 15)
	v.SetDefault("search.requests_per_second", 0)
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (compatible; SupplementsBot/1.0)")
	v.SetDefault("fetch.timeout_secs", 15)
	v.SetDefault("fetch.max_body_bytes", 2<<20)
	v.SetDefault("run.concurrency", 4)
	v.SetDefault("run.lead_limit", 500)
	v.SetDefault("run.max_evidence", 3)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
