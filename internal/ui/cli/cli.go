package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"vibecheck/internal/core/config"
	"vibecheck/internal/shared/version"
	"vibecheck/internal/ui/report/formats"

	"github.com/spf13/cobra"
)

const defaultReportPath = "vibe-report.json"

// runtime is the state shared by every command of one invocation.
type runtime struct {
	stdout     io.Writer
	stderr     io.Writer
	configPath string
	verbose    bool
	cfg        *config.Config
	closeLogs  func()
}

type scanOptions struct {
	format      string
	threshold   int
	failOn      int
	ignore      []string
	noGitignore bool
	output      string
	details     bool
	workers     int
	saveHistory bool
	noColor     bool
}

type watchOptions struct {
	ui       bool
	debounce time.Duration
	scan     scanOptions
}

type trendOptions struct {
	since  string
	window string
	format string
	output string
	files  int
}

func newRootCommand(ctx context.Context, rt *runtime) *cobra.Command {
	root := &cobra.Command{
		Use:           "vibecheck",
		Short:         "Score how AI-generated source code looks.",
		Long:          "vibecheck runs seven heuristic detectors over a repository and reports a 0-100 vibe score per file and for the whole tree.",
		Version:       version.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetOut(rt.stdout)
	root.SetErr(rt.stderr)
	root.SetContext(ctx)
	root.PersistentFlags().StringVar(&rt.configPath, "config", "", "Path to config file (default ./"+config.DefaultFile+" when present)")
	root.PersistentFlags().BoolVarP(&rt.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newScanCommand(rt),
		newReportCommand(rt),
		newWatchCommand(rt),
		newTrendCommand(rt),
		newVersionCommand(rt),
	)
	return root
}

func addScanFlags(cmd *cobra.Command, opts *scanOptions, defaultFormat, defaultOutput string) {
	f := cmd.Flags()
	f.StringVarP(&opts.format, "format", "f", defaultFormat, "Output format: terminal, json, sarif, markdown or tsv")
	f.IntVar(&opts.threshold, "threshold", 0, "Only display files scoring at or above this value")
	f.IntVar(&opts.failOn, "fail-on", 0, "Exit with code 2 when a high-risk file scores at or above this value (0 disables)")
	f.StringArrayVar(&opts.ignore, "ignore", nil, "Extra ignore pattern (repeatable)")
	f.BoolVar(&opts.noGitignore, "no-gitignore", false, "Do not read .gitignore at the scan root")
	f.StringVarP(&opts.output, "output", "o", defaultOutput, "Write the report to this file instead of stdout")
	f.BoolVar(&opts.details, "details", false, "Show findings for the top files")
	f.IntVar(&opts.workers, "workers", 0, "Number of files scored in parallel (default from config)")
	f.BoolVar(&opts.saveHistory, "save-history", false, "Record the scan in the history database")
	f.BoolVar(&opts.noColor, "no-color", false, "Disable coloured terminal output")
}

func newScanCommand(rt *runtime) *cobra.Command {
	var opts scanOptions
	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Scan a directory or a single file",
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.setup(false)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.runScan(cmd, args, opts)
		},
	}
	addScanFlags(cmd, &opts, string(formats.Terminal), "")
	return cmd
}

func newReportCommand(rt *runtime) *cobra.Command {
	var opts scanOptions
	cmd := &cobra.Command{
		Use:   "report [path]",
		Short: "Scan and write a JSON report (" + defaultReportPath + " by default)",
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.setup(false)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.runScan(cmd, args, opts)
		},
	}
	addScanFlags(cmd, &opts, string(formats.JSON), defaultReportPath)
	return cmd
}

func newWatchCommand(rt *runtime) *cobra.Command {
	var opts watchOptions
	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Scan once, then re-score files as they change",
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.setup(opts.ui)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.runWatch(cmd, args, opts)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&opts.ui, "ui", false, "Show a live terminal UI")
	f.DurationVar(&opts.debounce, "debounce", 0, "Quiet period before changes are re-scored (default from config)")
	f.IntVar(&opts.scan.threshold, "threshold", 0, "Only display files scoring at or above this value")
	f.StringArrayVar(&opts.scan.ignore, "ignore", nil, "Extra ignore pattern (repeatable)")
	f.BoolVar(&opts.scan.noGitignore, "no-gitignore", false, "Do not read .gitignore at the watch root")
	f.IntVar(&opts.scan.workers, "workers", 0, "Number of files scored in parallel (default from config)")
	f.BoolVar(&opts.scan.noColor, "no-color", false, "Disable coloured terminal output")
	return cmd
}

func newTrendCommand(rt *runtime) *cobra.Command {
	var opts trendOptions
	cmd := &cobra.Command{
		Use:   "trend [path]",
		Short: "Show recorded repository scores over time",
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.setup(false)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.runTrend(cmd, args, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.since, "since", "", "Only include scans at/after this time (RFC3339 or YYYY-MM-DD)")
	f.StringVar(&opts.window, "window", "24h", "Moving-average window")
	f.StringVarP(&opts.format, "format", "f", "text", "Output format: text, json or tsv")
	f.StringVarP(&opts.output, "output", "o", "", "Write the trend to this file instead of stdout")
	f.IntVar(&opts.files, "files", 0, "Also list the N highest-scoring files of the newest scan (text format)")
	return cmd
}

func newVersionCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(rt.stdout, "vibecheck %s\n", version.Version)
			return err
		},
	}
}

// Run executes the CLI and returns the process exit code.
func Run(args []string) int {
	return run(context.Background(), args, os.Stdout, os.Stderr)
}
