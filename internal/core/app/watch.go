package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"vibecheck/internal/core/errors"
	"vibecheck/internal/core/watcher"
	"vibecheck/internal/engine/parser"
)

// WatchSession keeps the latest result for every file under root and
// rebuilds the report each time the watcher reports changes.
type WatchSession struct {
	analyzer *Analyzer
	root     string
	matcher  *Matcher
	debounce time.Duration
	onUpdate func(*Report)

	mu      sync.Mutex
	results map[string]FileResult
	latest  *Report
	w       *watcher.Watcher
}

// NewWatchSession runs the initial scan of root, which must be a directory.
func (a *Analyzer) NewWatchSession(ctx context.Context, root string, debounce time.Duration, onUpdate func(*Report)) (*WatchSession, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "resolve watch path")
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "watch path unavailable"), errors.CtxPath, root)
	}
	if !info.IsDir() {
		return nil, errors.AddContext(errors.New(errors.CodeValidationError, "watch needs a directory"), errors.CtxPath, root)
	}

	m, err := a.matcher(abs)
	if err != nil {
		return nil, err
	}
	report, err := a.Analyze(ctx, abs)
	if err != nil {
		return nil, err
	}

	s := &WatchSession{
		analyzer: a,
		root:     abs,
		matcher:  m,
		debounce: debounce,
		onUpdate: onUpdate,
		results:  make(map[string]FileResult, len(report.Files)),
		latest:   report,
	}
	for _, f := range report.Files {
		s.results[f.Path] = f
	}
	return s, nil
}

func (s *WatchSession) Report() *Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Start begins watching. Changes are applied until ctx is done or Close runs.
func (s *WatchSession) Start(ctx context.Context) error {
	w, err := watcher.NewWatcher(s.debounce, s.matcher, func(paths []string) {
		s.Apply(ctx, paths)
	})
	if err != nil {
		return err
	}
	if err := w.Watch([]string{s.root}); err != nil {
		_ = w.Close()
		return err
	}
	s.mu.Lock()
	s.w = w
	s.mu.Unlock()
	return nil
}

// Apply re-scores changed paths, drops deleted ones and publishes a fresh
// report.
func (s *WatchSession) Apply(ctx context.Context, paths []string) *Report {
	if ctx.Err() != nil {
		return s.Report()
	}
	slog.Info("detected changes", "count", len(paths))

	present := make([]string, 0, len(paths))
	removed := make([]string, 0)
	for _, p := range paths {
		if _, ok := parser.LanguageForPath(p); !ok {
			continue
		}
		if _, err := os.Stat(p); os.IsNotExist(err) {
			removed = append(removed, p)
			continue
		}
		present = append(present, p)
	}
	fresh := s.analyzer.rescore(ctx, s.root, present)

	s.mu.Lock()
	for _, p := range removed {
		delete(s.results, p)
	}
	for _, r := range fresh {
		s.results[r.Path] = r
	}
	files := make([]FileResult, 0, len(s.results))
	for _, r := range s.results {
		files = append(files, r)
	}
	report := newReport(s.root, files, s.analyzer.opts.Threshold, time.Now())
	s.latest = report
	s.mu.Unlock()

	if s.onUpdate != nil {
		s.onUpdate(report)
	}
	return report
}

func (s *WatchSession) Close() error {
	s.mu.Lock()
	w := s.w
	s.w = nil
	s.mu.Unlock()
	if w == nil {
		return nil
	}
	return w.Close()
}
