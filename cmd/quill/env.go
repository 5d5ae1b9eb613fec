package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/chris-regnier/quill/internal/analyzer"
	"github.com/chris-regnier/quill/internal/cache"
	"github.com/chris-regnier/quill/internal/config"
	"github.com/chris-regnier/quill/internal/metrics"
	"github.com/chris-regnier/quill/internal/output"
	"github.com/chris-regnier/quill/internal/report"
	"github.com/chris-regnier/quill/internal/rules"
	"github.com/chris-regnier/quill/internal/store"
	"github.com/chris-regnier/quill/internal/telemetry"
)

// env is what every command needs after configuration is loaded.
type env struct {
	cfg       *config.Config
	logger    *slog.Logger
	analyzer  *analyzer.Analyzer
	cache     *cache.Cache[*report.Report]
	collector *metrics.Collector
	shutdown  telemetry.Shutdown
}

// machineDir is the per-user configuration directory.
func machineDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "quill")
}

func loadConfig() (*config.Config, error) {
	var machineConfig string
	if dir := machineDir(); dir != "" {
		machineConfig = filepath.Join(dir, "config.yaml")
	}
	cfg, err := config.LoadTiered(machineConfig, filepath.Join(flagConfigDir, "config.yaml"))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newEnv loads configuration and rules and builds the analyzer. Logs go
// to logw, which must not be the stream a protocol server writes to.
func newEnv(ctx context.Context, logw io.Writer) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := output.SetupLogger(flagQuiet, flagVerbose, flagDebug, logw)

	var userRules string
	if dir := machineDir(); dir != "" {
		userRules = filepath.Join(dir, "rules")
	}
	custom, err := rules.LoadRules(userRules, filepath.Join(flagConfigDir, "rules"))
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}

	shutdown, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}

	e := &env{
		cfg:       cfg,
		logger:    logger,
		collector: metrics.NewCollector(),
		shutdown:  shutdown,
	}
	opts := []analyzer.Option{
		analyzer.WithCustomRules(custom),
		analyzer.WithDisabledRules(cfg.Rules.Disabled...),
		analyzer.WithSeverityOverrides(cfg.SeverityOverrides()),
		analyzer.WithRecorder(metrics.NewRecorder(e.collector)),
		analyzer.WithLogger(logger),
	}
	if cfg.CacheEnabled() {
		e.cache = cache.New[*report.Report](
			cache.WithMaxSize(cfg.Cache.MaxSize),
			cache.WithTTL(cfg.CacheTTL()),
		)
		opts = append(opts, analyzer.WithCache(e.cache))
	}
	e.analyzer = analyzer.New(opts...)

	logger.Debug("configuration loaded",
		"config_dir", flagConfigDir,
		"custom_rules", len(custom),
		"cache", cfg.CacheEnabled(),
		"telemetry", telemetry.Enabled(cfg.Telemetry))
	return e, nil
}

// close flushes telemetry.
func (e *env) close(ctx context.Context) {
	if err := e.shutdown(ctx); err != nil {
		e.logger.Warn("telemetry shutdown error", "err", err)
	}
}

func (e *env) openStore() (store.Store, error) {
	s, err := store.Open(e.cfg.Store.Driver, e.cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return s, nil
}
