package app

import (
	"context"
	"log/slog"

	"vibecheck/internal/core/config"
	"vibecheck/internal/core/errors"
	"vibecheck/internal/core/ports"
	"vibecheck/internal/data/history"
	"vibecheck/internal/engine/parser"
	"vibecheck/internal/engine/scoring"
)

// App wires configuration to the parser, the detector registry, the analyzer
// and the optional history store.
type App struct {
	Config     *config.Config
	Parser     *parser.Parser
	Registry   *scoring.Registry
	Aggregator *scoring.Aggregator
	Analyzer   *Analyzer
	History    ports.HistoryStore
}

func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New(errors.CodeConfiguration, "missing configuration")
	}

	loader, err := parser.NewGrammarLoader()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConfiguration, "load grammars")
	}
	p := parser.NewParser(loader)

	registry, err := scoring.DefaultRegistry(cfg.DetectorConfig(), cfg.DetectorWeights())
	if err != nil {
		return nil, err
	}
	agg, err := scoring.NewAggregator(registry)
	if err != nil {
		return nil, err
	}

	analyzer, err := NewAnalyzer(p, agg, Options{
		Workers:          cfg.Scan.Workers,
		FilesPerSecond:   cfg.Scan.FilesPerSecond,
		MaxFileSize:      cfg.Scan.MaxFileSize(),
		Threshold:        cfg.Scan.Threshold,
		Ignore:           cfg.Scan.Ignore,
		RespectGitignore: cfg.Scan.GitignoreEnabled(),
	})
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:     cfg,
		Parser:     p,
		Registry:   registry,
		Aggregator: agg,
		Analyzer:   analyzer,
	}
	if cfg.DB.Enabled {
		store, err := history.Open(cfg.DBPath(), cfg.DB.BusyTimeout)
		if err != nil {
			code, msg := errors.CodeInternal, "open history database"
			if history.IsCorruptError(err) {
				code, msg = errors.CodeConfiguration, "history database is corrupt; remove it or point [db] path elsewhere"
			}
			return nil, errors.AddContext(errors.Wrap(err, code, msg), errors.CtxPath, cfg.DBPath())
		}
		slog.Debug("history enabled", "path", store.Path())
		a.History = store
	}
	return a, nil
}

func (a *App) Scan(ctx context.Context, target string) (*Report, error) {
	return a.Analyzer.Analyze(ctx, target)
}

func (a *App) Close() error {
	if a.History == nil {
		return nil
	}
	if err := a.History.Close(); err != nil {
		slog.Warn("failed to close history store", "error", err)
		return err
	}
	return nil
}
