package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"vibecheck/internal/core/config"
	"vibecheck/internal/shared/version"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const plainGo = `package main

import "fmt"

func main() {
	total := 0
	for i := 0; i < 3; i++ {
		total += i
	}
	fmt.Println(total)
}
`

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte(plainGo), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.py"), nil, 0o644))
	return dir
}

func TestRun_ScanJSON(t *testing.T) {
	dir := writeRepo(t)
	code, stdout, stderr := runCLI(t, "scan", dir, "--format", "json", "--fail-on", "0")
	require.Equal(t, exitOK, code, stderr)

	var doc struct {
		Summary struct {
			TotalFiles    int `json:"total_files"`
			AnalyzedFiles int `json:"analyzed_files"`
			SkippedFiles  int `json:"skipped_files"`
		} `json:"summary"`
		Files []struct {
			Path string `json:"path"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, 2, doc.Summary.TotalFiles)
	assert.Equal(t, 1, doc.Summary.AnalyzedFiles)
	assert.Equal(t, 1, doc.Summary.SkippedFiles)
	require.Len(t, doc.Files, 2)
	assert.Equal(t, "main.go", doc.Files[0].Path)
}

func TestRun_ReportWritesDefaultFile(t *testing.T) {
	dir := writeRepo(t)
	out := filepath.Join(t.TempDir(), "nested", "report.json")
	code, stdout, stderr := runCLI(t, "report", dir, "-o", out)
	require.Equal(t, exitOK, code, stderr)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Report written to "+out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestRun_Errors(t *testing.T) {
	dir := writeRepo(t)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown format", []string{"scan", dir, "--format", "yaml"}, "yaml"},
		{"missing path", []string{"scan", filepath.Join(dir, "nope")}, "error:"},
		{"bad threshold", []string{"scan", dir, "--threshold", "101"}, "--threshold"},
		{"bad workers", []string{"scan", dir, "--workers", "0"}, "--workers"},
		{"watch needs directory", []string{"watch", filepath.Join(dir, "main.go")}, "directory"},
		{"unknown command", []string{"frobnicate"}, "unknown command"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, tt.args...)
			assert.Equal(t, exitError, code)
			assert.Contains(t, stderr, tt.want)
		})
	}
}

func TestRun_Version(t *testing.T) {
	code, stdout, _ := runCLI(t, "version")
	require.Equal(t, exitOK, code)
	assert.Equal(t, "vibecheck "+version.Version+"\n", stdout)
}

func TestRun_TrendWithoutHistory(t *testing.T) {
	dir := writeRepo(t)
	code, _, stderr := runCLI(t, "trend", dir)
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "error:")
}

func TestRun_SaveHistoryThenTrend(t *testing.T) {
	dir := writeRepo(t)
	state := t.TempDir()
	t.Setenv("XDG_STATE_HOME", state)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"scan", dir, "--format", "tsv", "--save-history"}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	stdout.Reset()
	stderr.Reset()
	code = run(context.Background(), []string{"trend", dir, "--format", "json"}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	var trend struct {
		Points []json.RawMessage `json:"points"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &trend))
	assert.Len(t, trend.Points, 1)

	stdout.Reset()
	stderr.Reset()
	code = run(context.Background(), []string{"trend", dir, "--files", "3"}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())
	assert.Contains(t, stdout.String(), "Scans:   1")
	assert.Contains(t, stdout.String(), "Top files in newest scan:")
	assert.Contains(t, stdout.String(), "main.go")
}

func TestExitCode(t *testing.T) {
	var stderr bytes.Buffer
	assert.Equal(t, exitOK, exitCode(nil, &stderr))
	assert.Equal(t, exitGate, exitCode(fmt.Errorf("scan: %w", errGateTripped), &stderr))
	assert.Equal(t, exitError, exitCode(fmt.Errorf("boom"), &stderr))
	assert.Contains(t, stderr.String(), "error: boom")
}

func TestApplyScanOverrides(t *testing.T) {
	rt := &runtime{}
	cmd := newScanCommand(rt)
	require.NoError(t, cmd.ParseFlags([]string{
		"--threshold", "30", "--fail-on", "75", "--workers", "3",
		"--ignore", "gen/**", "--ignore", "*.pb.go", "--no-gitignore", "--save-history",
	}))

	cfg := config.Default()
	cfg.Scan.Ignore = []string{"vendor/"}
	opts := scanOptions{
		threshold: 30, failOn: 75, workers: 3,
		ignore:      []string{"gen/**", "*.pb.go"},
		noGitignore: true, saveHistory: true,
	}
	require.NoError(t, applyScanOverrides(cmd, cfg, opts))

	assert.Equal(t, 30, cfg.Scan.Threshold)
	assert.Equal(t, 75, cfg.Scan.FailOn)
	assert.Equal(t, 3, cfg.Scan.Workers)
	assert.Equal(t, []string{"vendor/", "gen/**", "*.pb.go"}, cfg.Scan.Ignore)
	assert.False(t, cfg.Scan.GitignoreEnabled())
	assert.True(t, cfg.DB.Enabled)
}

func TestApplyScanOverrides_UnsetFlagsKeepConfig(t *testing.T) {
	cmd := newScanCommand(&runtime{})
	require.NoError(t, cmd.ParseFlags(nil))

	cfg := config.Default()
	cfg.Scan.Threshold = 20
	cfg.Scan.FailOn = 80
	require.NoError(t, applyScanOverrides(cmd, cfg, scanOptions{}))
	assert.Equal(t, 20, cfg.Scan.Threshold)
	assert.Equal(t, 80, cfg.Scan.FailOn)
}

func TestParseSince(t *testing.T) {
	ts, err := parseSince("")
	require.NoError(t, err)
	assert.True(t, ts.IsZero())

	ts, err = parseSince("2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), ts)

	ts, err = parseSince("2026-03-01T10:30:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC), ts)

	_, err = parseSince("last week")
	assert.Error(t, err)
}

func TestParseHistoryWindow(t *testing.T) {
	w, err := parseHistoryWindow("")
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, w)

	w, err = parseHistoryWindow("90m")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, w)

	for _, raw := range []string{"0s", "-1h", "soon"} {
		_, err := parseHistoryWindow(raw)
		assert.Error(t, err, raw)
	}
}

func TestResolveLogPath(t *testing.T) {
	assert.Equal(t, filepath.Join("/tmp/state", "vibecheck.log"), resolveLogPath("/tmp/state"))

	t.Setenv("XDG_STATE_HOME", "/xdg")
	assert.Equal(t, filepath.Join("/xdg", "vibecheck", "vibecheck.log"), resolveLogPath(""))
}

func TestSummaryLine(t *testing.T) {
	r := sampleReport()
	line := summaryLine(r)
	assert.True(t, strings.Contains(line, "repo 42/100"), line)
	assert.Contains(t, line, "top svc/handlers.py (72)")
	assert.Contains(t, line, "skipped 1")
}
