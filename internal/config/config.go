// Package config provides configuration loading and validation for the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides (e.g. JOB_APPLIER_COOLDOWN).
const EnvPrefix = "JOB_APPLIER"

// Cache backends
const (
	CacheBackendFile     = "file"
	CacheBackendRedis    = "redis"
	CacheBackendPostgres = "postgres"
)

// Defaults applied by ApplyDefaults.
const (
	DefaultCooldown        = 10 * time.Second
	DefaultMaxRedirectHops = 3
	DefaultMaxFormChars    = 350000
	DefaultWaitTimeout     = 5 * time.Second
	DefaultSettleDelay     = 3 * time.Second
	DefaultCachePath       = "artifacts/logs/data/application_history.json"
	DefaultOutcomeLogPath  = "applications_log.csv"
	DefaultModel           = "gemini-2.5-flash"
)

// Credentials is a platform login.
type Credentials struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

// IsSet reports whether both email and password are present.
func (c Credentials) IsSet() bool {
	return c.Email != "" && c.Password != ""
}

// PlatformCredentials holds the optional logins per platform.
type PlatformCredentials struct {
	LinkedIn Credentials `mapstructure:"linkedin"`
	Workday  Credentials `mapstructure:"workday"`
	Taleo    Credentials `mapstructure:"taleo"`
}

// CacheConfig selects and configures the form schema cache.
type CacheConfig struct {
	Backend  string `mapstructure:"backend"`   // file, redis or postgres
	Path     string `mapstructure:"path"`      // JSON file for the file backend
	RedisURL string `mapstructure:"redis_url"` // redis://host:port/db for the redis backend
}

// Config represents the applier configuration loaded from a file and the environment.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// LLM
	APIKey string `mapstructure:"api_key"` // Gemini API key
	Model  string `mapstructure:"model"`   // Model used for form resolution

	// Browser
	Headless    bool          `mapstructure:"headless"`
	UserAgent   string        `mapstructure:"user_agent"`
	WaitTimeout time.Duration `mapstructure:"wait_timeout"` // Bound on a single element wait
	SettleDelay time.Duration `mapstructure:"settle_delay"` // Pause after navigation and clicks

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// Storage
	Cache          CacheConfig `mapstructure:"cache"`
	DatabaseURL    string      `mapstructure:"database_url"`     // PostgreSQL connection URL
	OutcomeLogPath string      `mapstructure:"outcome_log_path"` // CSV outcome log
	ArtifactsDir   string      `mapstructure:"artifacts_dir"`    // Base for relative document paths

	// Behavior
	Cooldown        time.Duration `mapstructure:"cooldown"`
	MaxRedirectHops int           `mapstructure:"max_redirect_hops"`
	MaxFormChars    int           `mapstructure:"max_form_chars"`

	Credentials PlatformCredentials `mapstructure:"credentials"`
}

// LoadConfig loads configuration from a JSON or YAML file, then applies environment overrides.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return decode(v)
}

// FromEnv builds a configuration from environment variables only.
func FromEnv() (*Config, error) {
	return decode(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only applies to keys viper already knows about.
	for _, key := range []string{
		"api_key", "model", "headless", "user_agent", "wait_timeout", "settle_delay",
		"log_level", "log_format", "cache.backend", "cache.path", "cache.redis_url",
		"database_url", "outcome_log_path", "artifacts_dir", "cooldown",
		"max_redirect_hops", "max_form_chars",
		"credentials.linkedin.email", "credentials.linkedin.password",
		"credentials.workday.email", "credentials.workday.password",
		"credentials.taleo.email", "credentials.taleo.password",
	} {
		_ = v.BindEnv(key)
	}
	v.SetDefault("headless", true)
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	var errs []error

	switch c.Cache.Backend {
	case "", CacheBackendFile, CacheBackendRedis, CacheBackendPostgres:
	default:
		errs = append(errs, fmt.Errorf("config error: unknown cache backend %q", c.Cache.Backend))
	}
	if c.Cache.Backend == CacheBackendRedis && c.Cache.RedisURL == "" {
		errs = append(errs, fmt.Errorf("config error: 'cache.redis_url' is required for the redis backend"))
	}
	if c.Cache.Backend == CacheBackendPostgres && c.DatabaseURL == "" {
		errs = append(errs, fmt.Errorf("config error: 'database_url' is required for the postgres backend"))
	}

	if c.Cooldown < 0 {
		errs = append(errs, fmt.Errorf("config error: 'cooldown' must be non-negative"))
	}
	if c.MaxRedirectHops < 0 {
		errs = append(errs, fmt.Errorf("config error: 'max_redirect_hops' must be non-negative"))
	}
	if c.MaxFormChars < 0 {
		errs = append(errs, fmt.Errorf("config error: 'max_form_chars' must be non-negative"))
	}
	if c.WaitTimeout < 0 || c.SettleDelay < 0 {
		errs = append(errs, fmt.Errorf("config error: 'wait_timeout' and 'settle_delay' must be non-negative"))
	}

	return errors.Join(errs...)
}

// ApplyDefaults fills zero values with the package defaults.
func (c *Config) ApplyDefaults() {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.WaitTimeout == 0 {
		c.WaitTimeout = DefaultWaitTimeout
	}
	if c.SettleDelay == 0 {
		c.SettleDelay = DefaultSettleDelay
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "console"
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheBackendFile
	}
	if c.Cache.Path == "" {
		c.Cache.Path = DefaultCachePath
	}
	if c.OutcomeLogPath == "" {
		c.OutcomeLogPath = DefaultOutcomeLogPath
	}
	if c.Cooldown == 0 {
		c.Cooldown = DefaultCooldown
	}
	if c.MaxRedirectHops == 0 {
		c.MaxRedirectHops = DefaultMaxRedirectHops
	}
	if c.MaxFormChars == 0 {
		c.MaxFormChars = DefaultMaxFormChars
	}
}
