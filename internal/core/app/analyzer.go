package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"vibecheck/internal/core/errors"
	"vibecheck/internal/core/ports"
	"vibecheck/internal/engine/parser"
	"vibecheck/internal/engine/scoring"
	"vibecheck/internal/shared/observability"
	"vibecheck/internal/shared/util"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

const defaultMaxFileSize = 500 * 1024

type Options struct {
	Workers          int
	FilesPerSecond   float64
	MaxFileSize      int64
	Threshold        int
	Ignore           []string
	RespectGitignore bool
	// CacheSize bounds the score cache; zero picks a default, negative
	// disables caching.
	CacheSize int
}

// Analyzer walks a target, parses and scores every eligible file and folds the
// results into a Report. It holds no per-scan state and is safe to reuse.
type Analyzer struct {
	parser     ports.SourceParser
	aggregator *scoring.Aggregator
	opts       Options
	limiter    *util.Limiter
	cache      *scoreCache
}

func NewAnalyzer(p ports.SourceParser, agg *scoring.Aggregator, opts Options) (*Analyzer, error) {
	if p == nil || agg == nil {
		return nil, errors.New(errors.CodeConfiguration, "analyzer needs a parser and an aggregator")
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = defaultMaxFileSize
	}
	a := &Analyzer{
		parser:     p,
		aggregator: agg,
		opts:       opts,
		limiter:    util.NewLimiter(opts.FilesPerSecond, opts.Workers),
	}
	if opts.CacheSize >= 0 {
		a.cache = newScoreCache(opts.CacheSize)
	}
	return a, nil
}

func (a *Analyzer) Options() Options {
	return a.opts
}

// Analyze scores target, which may be a directory or a single file. Per-file
// failures end up in the report; only an unusable target returns an error.
func (a *Analyzer) Analyze(ctx context.Context, target string) (*Report, error) {
	ctx, span := observability.Tracer.Start(ctx, "analyze")
	defer span.End()
	started := time.Now()

	root, err := filepath.Abs(target)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "resolve scan path")
	}
	span.SetAttributes(attribute.String("vibecheck.root", root))

	info, err := os.Stat(root)
	if err != nil {
		code := errors.CodeInternal
		if os.IsNotExist(err) {
			code = errors.CodeNotFound
		} else if os.IsPermission(err) {
			code = errors.CodePermissionDenied
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, errors.AddContext(errors.Wrap(err, code, "scan path unavailable"), errors.CtxPath, target)
	}

	var results []FileResult
	if !info.IsDir() {
		if !a.parser.IsSupportedPath(root) {
			return nil, errors.AddContext(
				errors.New(errors.CodeNotSupported, "unsupported file type"), errors.CtxPath, target)
		}
		results = []FileResult{a.AnalyzeFile(ctx, root, filepath.Base(root))}
	} else {
		results, err = a.analyzeDir(ctx, root)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}

	report := newReport(root, results, a.opts.Threshold, started)
	observability.ScanDuration.Observe(report.Duration.Seconds())
	observability.RepositoryScore.Set(float64(report.Repository.Score))
	span.SetAttributes(
		attribute.Int("vibecheck.files", len(report.Files)),
		attribute.Int("vibecheck.score", report.Repository.Score),
	)
	slog.Debug("scan complete",
		"root", root,
		"files", len(report.Files),
		"score", report.Repository.Score,
		"duration", report.Duration,
		"heap_mb", util.HeapAllocMB(),
	)
	return report, nil
}

func (a *Analyzer) analyzeDir(ctx context.Context, root string) ([]FileResult, error) {
	m, err := a.matcher(root)
	if err != nil {
		return nil, err
	}
	files, failed, err := collectFiles(ctx, root, m)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "walk scan path"), errors.CtxPath, root)
	}

	results := make([]FileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Workers)
	for i, f := range files {
		if err := a.limiter.Wait(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			results[i] = a.AnalyzeFile(gctx, f.path, f.rel)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append(results, failed...), nil
}

func (a *Analyzer) matcher(root string) (*Matcher, error) {
	return NewMatcher(root, a.opts.Ignore, a.opts.RespectGitignore)
}

// AnalyzeFile scores one file. It never fails: unreadable files become an
// errored result and unsuitable ones a skipped result.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path, rel string) FileResult {
	_, span := observability.Tracer.Start(ctx, "score file")
	defer span.End()
	span.SetAttributes(attribute.String("vibecheck.path", rel))

	result := FileResult{Path: path, RelPath: rel}
	info, err := os.Stat(path)
	if err != nil {
		return a.fail(result, "failed to stat file", err)
	}
	if info.Size() == 0 {
		return skip(result, "empty", "empty file")
	}
	if info.Size() > a.opts.MaxFileSize {
		return skip(result, "too_large",
			fmt.Sprintf("file too large (%dKB > %dKB)", info.Size()/1024, a.opts.MaxFileSize/1024))
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return a.fail(result, "failed to read file", err)
	}
	if strings.TrimSpace(string(content)) == "" {
		return skip(result, "blank", "empty content")
	}

	key := keyFor(path, content)
	if a.cache != nil {
		if cached, ok := a.cache.get(key); ok {
			cached.Path = rel
			result.Score = &cached
			span.SetAttributes(attribute.Bool("vibecheck.cached", true))
			return result
		}
	}

	tree, err := a.parser.Parse(path, content)
	status := scoring.ParseOK
	parseErr := ""
	if err != nil {
		tree = nil
		var perr *parser.ParseError
		switch {
		case stderrors.Is(err, parser.ErrNoGrammar):
			status = scoring.ParseUnsupported
		case stderrors.As(err, &perr):
			status = scoring.ParseFailed
			parseErr = perr.Error()
			slog.Debug("parse failed, scoring as text", "path", rel, "line", perr.Line, "error", perr.Message)
		default:
			status = scoring.ParseFailed
			parseErr = err.Error()
		}
		observability.ParseFailuresTotal.WithLabelValues(string(status)).Inc()
	}
	if tree != nil {
		defer tree.Close()
	}

	score := a.aggregator.ScoreFile(path, content, tree)
	score.Path = rel
	score.ParseStatus = status
	score.ParseError = parseErr
	result.Score = &score
	if a.cache != nil {
		a.cache.put(key, score)
	}
	span.SetAttributes(attribute.Int("vibecheck.score", score.Score))
	return result
}

func (a *Analyzer) fail(result FileResult, msg string, err error) FileResult {
	slog.Warn(msg, "path", result.Path, "error", err)
	result.Error = err.Error()
	return result
}

func skip(result FileResult, metric, reason string) FileResult {
	observability.FilesSkippedTotal.WithLabelValues(metric).Inc()
	result.Skipped = true
	result.SkipReason = reason
	return result
}

// rescore re-runs AnalyzeFile for the given paths in parallel.
func (a *Analyzer) rescore(ctx context.Context, root string, paths []string) []FileResult {
	out := make([]FileResult, len(paths))
	var wg sync.WaitGroup
	sem := make(chan struct{}, a.opts.Workers)
	for i, p := range paths {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			out[i] = a.AnalyzeFile(ctx, p, util.RelSlash(root, p))
		}()
	}
	wg.Wait()
	return out
}
