package cli

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"vibecheck/internal/core/app"
	"vibecheck/internal/core/config"
	"vibecheck/internal/core/errors"
	"vibecheck/internal/shared/observability"
	"vibecheck/internal/shared/util"
	"vibecheck/internal/ui/report"
	"vibecheck/internal/ui/report/formats"

	"github.com/spf13/cobra"
)

const (
	exitOK    = 0
	exitError = 1
	exitGate  = 2
)

// errGateTripped marks a scan that found a high-risk file at or above
// --fail-on. It maps to exit code 2.
var errGateTripped = stderrors.New("high-risk files at or above the fail-on score")

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rt := &runtime{stdout: stdout, stderr: stderr}
	defer rt.close()

	root := newRootCommand(ctx, rt)
	root.SetArgs(args)
	return exitCode(root.ExecuteContext(ctx), stderr)
}

func exitCode(err error, stderr io.Writer) int {
	switch {
	case err == nil:
		return exitOK
	case stderrors.Is(err, errGateTripped):
		fmt.Fprintf(stderr, "vibecheck: %v\n", err)
		return exitGate
	default:
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitError
	}
}

// setup loads configuration and installs the process logger.
func (rt *runtime) setup(uiMode bool) error {
	cfg, err := config.LoadOrDefault(rt.configPath)
	if err != nil {
		return err
	}
	rt.cfg = cfg
	rt.closeLogs = configureLogging(rt.stderr, uiMode, rt.verbose, cfg.Paths.StateDir)
	return nil
}

func (rt *runtime) close() {
	if rt.closeLogs != nil {
		rt.closeLogs()
	}
}

// configureLogging writes text logs to w. In UI mode the terminal belongs to
// the UI, so logs go to a file in the state directory instead.
func configureLogging(w io.Writer, uiMode, verbose bool, stateDir string) func() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	out := w
	closeFn := func() {}

	if uiMode {
		logPath := resolveLogPath(stateDir)
		if err := os.MkdirAll(filepath.Dir(logPath), 0o700); err == nil {
			if info, statErr := os.Lstat(logPath); statErr == nil && info.Mode()&os.ModeSymlink != 0 {
				out = io.Discard
			} else if f, openErr := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600); openErr == nil {
				out = f
				closeFn = func() { _ = f.Close() }
			} else {
				out = io.Discard
			}
		} else {
			out = io.Discard
		}
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))
	return closeFn
}

func resolveLogPath(stateDir string) string {
	if strings.TrimSpace(stateDir) != "" {
		return filepath.Join(stateDir, "vibecheck.log")
	}
	if dir := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); dir != "" {
		return filepath.Join(dir, "vibecheck", "vibecheck.log")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state", "vibecheck", "vibecheck.log")
	}
	return filepath.Join(os.TempDir(), "vibecheck.log")
}

// applyScanOverrides copies flags the user actually set onto cfg.
func applyScanOverrides(cmd *cobra.Command, cfg *config.Config, opts scanOptions) error {
	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}
	if changed("threshold") {
		if opts.threshold < 0 || opts.threshold > 100 {
			return errors.Newf(errors.CodeValidationError, "--threshold must be between 0 and 100, got %d", opts.threshold)
		}
		cfg.Scan.Threshold = opts.threshold
	}
	if changed("fail-on") {
		if opts.failOn < 0 || opts.failOn > 100 {
			return errors.Newf(errors.CodeValidationError, "--fail-on must be between 0 and 100, got %d", opts.failOn)
		}
		cfg.Scan.FailOn = opts.failOn
	}
	if changed("workers") {
		if opts.workers < 1 {
			return errors.Newf(errors.CodeValidationError, "--workers must be at least 1, got %d", opts.workers)
		}
		cfg.Scan.Workers = opts.workers
	}
	if len(opts.ignore) > 0 {
		cfg.Scan.Ignore = append(cfg.Scan.Ignore, opts.ignore...)
	}
	if opts.noGitignore {
		off := false
		cfg.Scan.RespectGitignore = &off
	}
	if opts.saveHistory {
		cfg.DB.Enabled = true
	}
	return nil
}

func targets(args []string, cfg *config.Config) []string {
	if len(args) > 0 {
		return args
	}
	if len(cfg.Scan.Paths) > 0 {
		return cfg.Scan.Paths
	}
	return []string{"."}
}

func (rt *runtime) runScan(cmd *cobra.Command, args []string, opts scanOptions) error {
	ctx := cmd.Context()
	format, err := formats.Parse(opts.format)
	if err != nil {
		return err
	}
	if err := applyScanOverrides(cmd, rt.cfg, opts); err != nil {
		return err
	}

	stopTracing := startTracing(ctx, rt.cfg)
	defer stopTracing()

	a, err := app.New(rt.cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	toFile := strings.TrimSpace(opts.output) != ""
	writeOpts := formats.Options{
		Color:   !opts.noColor && !toFile && isTerminal(rt.stdout),
		Details: opts.details,
	}

	var buf bytes.Buffer
	tripped := false
	for _, target := range targets(args, rt.cfg) {
		r, err := a.Scan(ctx, target)
		if err != nil {
			return err
		}
		if err := formats.Write(&buf, format, r, writeOpts); err != nil {
			return err
		}
		if opts.saveHistory {
			if err := a.SaveReport(ctx, r); err != nil {
				return err
			}
		}
		if rt.cfg.Scan.FailOn > 0 && r.Repository.Gate(rt.cfg.Scan.FailOn) {
			tripped = true
		}
	}

	if toFile {
		if err := util.WriteFileWithDirs(opts.output, buf.Bytes(), 0o644); err != nil {
			return errors.AddContext(errors.Wrap(err, errors.CodeInternal, "write report"), errors.CtxPath, opts.output)
		}
		fmt.Fprintf(rt.stderr, "Report written to %s\n", opts.output)
	} else if _, err := rt.stdout.Write(buf.Bytes()); err != nil {
		return err
	}

	if tripped {
		return errGateTripped
	}
	return nil
}

func (rt *runtime) runWatch(cmd *cobra.Command, args []string, opts watchOptions) error {
	if err := applyScanOverrides(cmd, rt.cfg, opts.scan); err != nil {
		return err
	}
	debounce := rt.cfg.Watch.Debounce
	if opts.debounce > 0 {
		debounce = opts.debounce
	}
	target := targets(args, rt.cfg)[0]

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stopTracing := startTracing(ctx, rt.cfg)
	defer stopTracing()
	stopMetrics := startMetrics(rt.cfg)
	defer stopMetrics()

	a, err := app.New(rt.cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if opts.ui {
		return runUI(ctx, a, target, debounce)
	}

	color := !opts.scan.noColor && isTerminal(rt.stdout)
	session, err := a.Analyzer.NewWatchSession(ctx, target, debounce, func(r *app.Report) {
		fmt.Fprintln(rt.stdout, summaryLine(r))
	})
	if err != nil {
		return err
	}
	defer session.Close()

	if err := formats.WriteTerminal(rt.stdout, session.Report(), formats.Options{Color: color}); err != nil {
		return err
	}
	if err := session.Start(ctx); err != nil {
		return err
	}
	fmt.Fprintf(rt.stdout, "Watching %s for changes (Ctrl+C to stop)\n", target)
	<-ctx.Done()
	return nil
}

// summaryLine is the one-line status printed after each re-scan in watch mode.
func summaryLine(r *app.Report) string {
	_, scored, skipped, errored := r.Counts()
	repo := r.Repository
	line := fmt.Sprintf("[%s] repo %d/100 %s  files %d  high-risk %d  skipped %d  errors %d",
		r.Timestamp.Format("15:04:05"), repo.Score, repo.Label, scored, repo.HighRisk, skipped, errored)
	for _, f := range r.Files {
		if f.Scored() {
			line += fmt.Sprintf("  top %s (%d)", f.RelPath, f.Score.Score)
			break
		}
	}
	return line
}

func (rt *runtime) runTrend(cmd *cobra.Command, args []string, opts trendOptions) error {
	ctx := cmd.Context()
	since, err := parseSince(opts.since)
	if err != nil {
		return err
	}
	window, err := parseHistoryWindow(opts.window)
	if err != nil {
		return err
	}

	rt.cfg.DB.Enabled = true
	a, err := app.New(rt.cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	trend, err := a.Trend(ctx, targets(args, rt.cfg)[0], since, window)
	if err != nil {
		return err
	}

	var out []byte
	switch strings.ToLower(strings.TrimSpace(opts.format)) {
	case "", "text":
		out = report.RenderTrendText(trend)
		if opts.files > 0 {
			files, ferr := a.LatestFiles(ctx, trend, opts.files)
			if ferr != nil {
				return ferr
			}
			out = append(out, report.RenderTopFiles(files)...)
		}
	case "json":
		out, err = report.RenderTrendJSON(trend)
	case "tsv":
		out, err = report.RenderTrendTSV(trend)
	default:
		return errors.Newf(errors.CodeValidationError, "unknown trend format %q (want text, json or tsv)", opts.format)
	}
	if err != nil {
		return err
	}

	if strings.TrimSpace(opts.output) != "" {
		if err := util.WriteFileWithDirs(opts.output, out, 0o644); err != nil {
			return errors.AddContext(errors.Wrap(err, errors.CodeInternal, "write trend"), errors.CtxPath, opts.output)
		}
		return nil
	}
	_, err = rt.stdout.Write(out)
	return err
}

func parseSince(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts.UTC(), nil
	}
	if day, err := time.Parse("2006-01-02", raw); err == nil {
		return day.UTC(), nil
	}
	return time.Time{}, errors.Newf(errors.CodeValidationError, "invalid --since value %q (use RFC3339 or YYYY-MM-DD)", raw)
}

func parseHistoryWindow(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 24 * time.Hour, nil
	}
	window, err := time.ParseDuration(raw)
	if err != nil {
		return 0, errors.Newf(errors.CodeValidationError, "invalid --window value %q: %v", raw, err)
	}
	if window <= 0 {
		return 0, errors.Newf(errors.CodeValidationError, "--window must be > 0, got %s", raw)
	}
	return window, nil
}

func startTracing(ctx context.Context, cfg *config.Config) func() {
	if !cfg.Observability.Enabled || cfg.Observability.OTLPEndpoint == "" {
		return func() {}
	}
	shutdown, err := observability.InitTracing(ctx, cfg.Observability.OTLPEndpoint)
	if err != nil {
		slog.Warn("tracing disabled", "error", err)
		return func() {}
	}
	return func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			slog.Warn("tracing shutdown failed", "error", err)
		}
	}
}

func startMetrics(cfg *config.Config) func() {
	if !cfg.Observability.Enabled || cfg.Observability.MetricsAddr == "" {
		return func() {}
	}
	srv := observability.NewServer(cfg.Observability.MetricsAddr)
	if err := srv.Start(); err != nil {
		slog.Warn("metrics server disabled", "error", err)
		return func() {}
	}
	return func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Stop(sctx)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
