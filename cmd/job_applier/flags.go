package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-applier/internal/config"
)

// runFlags are the flags shared by commands that drive a browser.
// Flags left unset keep the config file or environment value.
type runFlags struct {
	configPath   string
	apiKey       string
	model        string
	headless     bool
	cacheBackend string
	cachePath    string
	redisURL     string
	databaseURL  string
	outcomeLog   string
	artifactsDir string
	cooldown     time.Duration
	maxHops      int
	verbose      bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.configPath, "config", "", "Path to config file (JSON or YAML; values can be overridden by other flags)")
	flags.StringVar(&f.apiKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	flags.StringVar(&f.model, "model", "", "Model used for form resolution")
	flags.BoolVar(&f.headless, "headless", true, "Run the browser without a window")
	flags.StringVar(&f.cacheBackend, "cache-backend", "", "Form schema cache backend: file, redis or postgres")
	flags.StringVar(&f.cachePath, "cache-path", "", "JSON file for the file cache backend")
	flags.StringVar(&f.redisURL, "redis-url", "", "Redis URL for the redis cache backend")
	flags.StringVar(&f.databaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	flags.StringVar(&f.outcomeLog, "outcome-log", "", "CSV file outcomes are appended to")
	flags.StringVar(&f.artifactsDir, "artifacts-dir", "", "Base directory for relative document paths")
	flags.DurationVar(&f.cooldown, "cooldown", 0, "Pause between applications")
	flags.IntVar(&f.maxHops, "max-hops", 0, "Maximum redirect hops when looking for an application form")
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "Print fill reports and debug logs")
}

// load reads the config file (or the environment), applies flag overrides,
// validates and fills defaults.
func (f *runFlags) load(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.LoadConfig(f.configPath)
	} else {
		cfg, err = config.FromEnv()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	f.override(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

func (f *runFlags) override(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed

	if changed("api-key") {
		cfg.APIKey = f.apiKey
	}
	if changed("model") {
		cfg.Model = f.model
	}
	if changed("headless") {
		cfg.Headless = f.headless
	}
	if changed("cache-backend") {
		cfg.Cache.Backend = f.cacheBackend
	}
	if changed("cache-path") {
		cfg.Cache.Path = f.cachePath
	}
	if changed("redis-url") {
		cfg.Cache.RedisURL = f.redisURL
	}
	if changed("db-url") {
		cfg.DatabaseURL = f.databaseURL
	}
	if changed("outcome-log") {
		cfg.OutcomeLogPath = f.outcomeLog
	}
	if changed("artifacts-dir") {
		cfg.ArtifactsDir = f.artifactsDir
	}
	if changed("cooldown") {
		cfg.Cooldown = f.cooldown
	}
	if changed("max-hops") {
		cfg.MaxRedirectHops = f.maxHops
	}
	if f.verbose {
		cfg.LogLevel = "debug"
	}
}
