package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jonathan/job-applier/internal/apply"
	"github.com/jonathan/job-applier/internal/browser"
	"github.com/jonathan/job-applier/internal/config"
	"github.com/jonathan/job-applier/internal/db"
	"github.com/jonathan/job-applier/internal/filler"
	"github.com/jonathan/job-applier/internal/formcache"
	"github.com/jonathan/job-applier/internal/llm"
	"github.com/jonathan/job-applier/internal/logging"
	"github.com/jonathan/job-applier/internal/observability"
	"github.com/jonathan/job-applier/internal/outcome"
	"github.com/jonathan/job-applier/internal/pipeline"
	"github.com/jonathan/job-applier/internal/resolver"
)

// app holds the long-lived collaborators of one CLI invocation.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	printer  *observability.Printer
	registry *prometheus.Registry

	session  *browser.ChromeSession
	llm      llm.Client
	database *db.DB
	redis    *redis.Client
	resolver *resolver.Resolver
	metrics  *http.Server
}

// newApp builds the logger, storage, LLM client and browser for cfg.
// The caller must Close the returned app.
func newApp(ctx context.Context, cfg *config.Config, out io.Writer) (_ *app, err error) {
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:      cfg,
		logger:   logger,
		printer:  observability.NewPrinter(out),
		registry: prometheus.NewRegistry(),
	}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if cfg.APIKey == "" {
		return nil, errors.New("API key is required: use --api-key flag or GEMINI_API_KEY env var")
	}

	if cfg.DatabaseURL != "" {
		a.database, err = db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err = a.database.EnsureSchema(ctx); err != nil {
			return nil, err
		}
	}

	cache, err := a.formCache(ctx)
	if err != nil {
		return nil, err
	}

	client, err := llm.NewClient(ctx, llm.DefaultConfig().WithModel(llm.TierStandard, cfg.Model), cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	a.llm = client
	a.resolver = resolver.New(a.llm, cache, cfg.MaxFormChars, logger.Named("resolver"))

	a.session, err = browser.NewChromeSession(ctx, browser.Options{
		Headless:    cfg.Headless,
		UserAgent:   cfg.UserAgent,
		WaitTimeout: cfg.WaitTimeout,
		SettleDelay: cfg.SettleDelay,
	}, logger.Named("browser"))
	if err != nil {
		return nil, err
	}
	return a, nil
}

// formCache opens the configured schema cache backend.
func (a *app) formCache(ctx context.Context) (formcache.Cache, error) {
	switch a.cfg.Cache.Backend {
	case config.CacheBackendRedis:
		client, err := formcache.NewRedisClient(ctx, a.cfg.Cache.RedisURL)
		if err != nil {
			return nil, err
		}
		a.redis = client
		return formcache.NewRedis(client), nil
	case config.CacheBackendPostgres:
		if a.database == nil {
			return nil, errors.New("postgres cache backend requires --db-url or DATABASE_URL")
		}
		return formcache.NewPostgres(a.database), nil
	default:
		return formcache.NewFile(a.cfg.Cache.Path), nil
	}
}

// outcomeLog appends to the CSV file and, when a database is configured, to Postgres.
func (a *app) outcomeLog() outcome.Log {
	logs := outcome.Multi{outcome.NewCSV(a.cfg.OutcomeLogPath)}
	if a.database != nil {
		logs = append(logs, outcome.NewPostgres(a.database))
	}
	return logs
}

// orchestrator wires the strategies and the orchestrator over the app's session.
func (a *app) orchestrator(verbose bool) *pipeline.Orchestrator {
	deps := apply.Deps{
		Resolver:    a.resolver,
		Filler:      filler.New(a.logger.Named("filler")),
		Logger:      a.logger.Named("apply"),
		WaitTimeout: a.cfg.WaitTimeout,
	}
	if verbose {
		deps.OnFill = a.printer.PrintFillReport
	}
	registry := apply.DefaultRegistry(deps, a.cfg.Credentials, a.cfg.MaxRedirectHops)

	return pipeline.New(a.session, registry, a.outcomeLog(), pipeline.Options{
		Cooldown:     a.cfg.Cooldown,
		ArtifactsDir: a.cfg.ArtifactsDir,
		Logger:       a.logger.Named("pipeline"),
		Metrics:      pipeline.NewMetrics(a.registry),
	})
}

// serveMetrics exposes the app's metrics registry on addr until Close.
func (a *app) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	a.metrics = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		a.logger.Info("serving metrics", zap.String("addr", addr))
		if err := a.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", zap.Error(err))
		}
	}()
}

// Close releases everything newApp acquired.
func (a *app) Close() {
	if a.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = a.metrics.Shutdown(ctx)
		cancel()
	}
	if a.session != nil {
		if err := a.session.Close(); err != nil {
			a.logger.Warn("failed to close browser", zap.Error(err))
		}
	}
	if a.llm != nil {
		_ = a.llm.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.database != nil {
		a.database.Close()
	}
	_ = a.logger.Sync()
}
