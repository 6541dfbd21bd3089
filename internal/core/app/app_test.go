package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"vibecheck/internal/core/config"
	"vibecheck/internal/core/errors"
	"vibecheck/internal/data/history"
	"vibecheck/internal/engine/detectors"
	"vibecheck/internal/engine/parser"
	"vibecheck/internal/engine/scoring"
)

const sloppyPython = `# Step 1: import the module
import os

# Step 2: define the function
def process_data(data):
    """This function processes the data."""
    # initialize result
    result = []
    # loop through the data
    for item in data:
        # append item to the list
        result.append(item)
    # return the result
    return result


def handle_request(data):
    """This function handles the request."""
    pass
`

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

func newTestAnalyzer(t *testing.T, opts Options) *Analyzer {
	t.Helper()
	loader, err := parser.NewGrammarLoader()
	if err != nil {
		t.Fatalf("grammar loader: %v", err)
	}
	registry, err := scoring.DefaultRegistry(detectors.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	agg, err := scoring.NewAggregator(registry)
	if err != nil {
		t.Fatalf("aggregator: %v", err)
	}
	a, err := NewAnalyzer(parser.NewParser(loader), agg, opts)
	if err != nil {
		t.Fatalf("analyzer: %v", err)
	}
	return a
}

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func byRel(r *Report) map[string]FileResult {
	out := make(map[string]FileResult, len(r.Files))
	for _, f := range r.Files {
		out[f.RelPath] = f
	}
	return out
}

func TestNewAnalyzer_RequiresCollaborators(t *testing.T) {
	if _, err := NewAnalyzer(nil, nil, Options{}); !errors.IsCode(err, errors.CodeConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestAnalyze_Directory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "svc/handlers.py", sloppyPython)
	writeFile(t, root, "cmd/main.go", plainGo)
	writeFile(t, root, "empty.py", "")
	writeFile(t, root, "blank.py", "   \n\n\t\n")
	writeFile(t, root, "big.py", "x = 1\n"+strings.Repeat("# pad\n", 400))
	writeFile(t, root, "broken.py", "def f(:\n    pass\n")
	writeFile(t, root, "native/lib.c", "int add(int a, int b) { return a + b; }\n")
	writeFile(t, root, "node_modules/dep/index.js", "module.exports = 1;\n")
	writeFile(t, root, "notes.txt", "not source\n")
	writeFile(t, root, "app.min.js", "var a=1;\n")

	a := newTestAnalyzer(t, Options{Workers: 2, MaxFileSize: 1024})
	report, err := a.Analyze(context.Background(), root)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	files := byRel(report)
	if len(files) != 7 {
		t.Fatalf("expected 7 results, got %d: %v", len(files), files)
	}
	for _, ignored := range []string{"node_modules/dep/index.js", "notes.txt", "app.min.js"} {
		if _, ok := files[ignored]; ok {
			t.Errorf("expected %s to be ignored", ignored)
		}
	}

	if got := files["empty.py"].SkipReason; got != "empty file" {
		t.Errorf("empty.py skip reason = %q", got)
	}
	if got := files["blank.py"].SkipReason; got != "empty content" {
		t.Errorf("blank.py skip reason = %q", got)
	}
	if got := files["big.py"].SkipReason; !strings.HasPrefix(got, "file too large (") || !strings.HasSuffix(got, "KB > 1KB)") {
		t.Errorf("big.py skip reason = %q", got)
	}

	broken := files["broken.py"]
	if broken.Score == nil || broken.Score.ParseStatus != scoring.ParseFailed || broken.Score.ParseError == "" {
		t.Fatalf("expected broken.py to be scored from text with a parse error, got %+v", broken.Score)
	}
	native := files["native/lib.c"]
	if native.Score == nil || native.Score.ParseStatus != scoring.ParseUnsupported {
		t.Fatalf("expected lib.c to be scored as unsupported, got %+v", native.Score)
	}
	sloppy := files["svc/handlers.py"]
	clean := files["cmd/main.go"]
	if sloppy.Score == nil || clean.Score == nil {
		t.Fatal("expected both source files to be scored")
	}
	if sloppy.Score.Score <= clean.Score.Score {
		t.Fatalf("expected sloppy file to outscore plain file: %d <= %d", sloppy.Score.Score, clean.Score.Score)
	}
	if sloppy.Score.Path != "svc/handlers.py" {
		t.Fatalf("expected relative path on score, got %q", sloppy.Score.Path)
	}

	// Scored files come first in descending order.
	seenUnscored := false
	last := 101
	for _, f := range report.Files {
		if !f.Scored() {
			seenUnscored = true
			continue
		}
		if seenUnscored {
			t.Fatalf("scored file %s after unscored file", f.RelPath)
		}
		if f.Score.Score > last {
			t.Fatalf("files not sorted by score: %d after %d", f.Score.Score, last)
		}
		last = f.Score.Score
	}

	repo := report.Repository
	if repo.Analyzed != 4 || repo.Skipped != 3 || repo.Errored != 0 {
		t.Fatalf("unexpected counts: %+v", repo)
	}
	total, scored, skipped, errored := report.Counts()
	if total != 7 || scored != 4 || skipped != 3 || errored != 0 {
		t.Fatalf("unexpected report counts: %d %d %d %d", total, scored, skipped, errored)
	}
}

func TestAnalyze_SingleFile(t *testing.T) {
	root := t.TempDir()
	p := writeFile(t, root, "deep/nested/handlers.py", sloppyPython)

	a := newTestAnalyzer(t, Options{})
	report, err := a.Analyze(context.Background(), p)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(report.Files) != 1 || report.Files[0].RelPath != "handlers.py" {
		t.Fatalf("expected one result named by basename, got %+v", report.Files)
	}
	if report.Repository.Score != report.Files[0].Score.Score {
		t.Fatalf("single file repository score %d != file score %d", report.Repository.Score, report.Files[0].Score.Score)
	}
}

func TestAnalyze_Rejects(t *testing.T) {
	root := t.TempDir()
	txt := writeFile(t, root, "notes.txt", "hello")
	a := newTestAnalyzer(t, Options{})

	tests := []struct {
		name   string
		target string
		code   errors.ErrorCode
	}{
		{"missing path", filepath.Join(root, "nope"), errors.CodeNotFound},
		{"unsupported file", txt, errors.CodeNotSupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Analyze(context.Background(), tt.target)
			if !errors.IsCode(err, tt.code) {
				t.Fatalf("expected %s, got %v", tt.code, err)
			}
		})
	}
}

func TestAnalyze_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.py", sloppyPython)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := newTestAnalyzer(t, Options{})
	if _, err := a.Analyze(ctx, root); err == nil {
		t.Fatal("expected cancelled scan to fail")
	}
}

func TestReport_Visible(t *testing.T) {
	score := func(n int) *scoring.FileScore { return &scoring.FileScore{Score: n} }
	files := []FileResult{
		{RelPath: "low.py", Score: score(10)},
		{RelPath: "skip.py", Skipped: true, SkipReason: "empty file"},
		{RelPath: "high.py", Score: score(70)},
		{RelPath: "err.py", Error: "permission denied"},
		{RelPath: "mid.py", Score: score(45)},
	}
	r := newReport("/repo", files, 40, time.Now())

	var got []string
	for _, f := range r.Visible() {
		got = append(got, f.RelPath)
	}
	want := []string{"high.py", "mid.py", "err.py", "skip.py"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("visible = %v, want %v", got, want)
	}
	if r.Repository.Analyzed != 3 || r.Repository.Skipped != 1 || r.Repository.Errored != 1 {
		t.Fatalf("summary must cover every file, got %+v", r.Repository)
	}
	if r.Repository.Score != 42 {
		t.Fatalf("expected mean of all scored files (42), got %d", r.Repository.Score)
	}
}

func TestWatchSession_Apply(t *testing.T) {
	root := t.TempDir()
	keep := writeFile(t, root, "keep.go", plainGo)
	gone := writeFile(t, root, "gone.py", sloppyPython)

	a := newTestAnalyzer(t, Options{})
	var updates []*Report
	s, err := a.NewWatchSession(context.Background(), root, 50*time.Millisecond, func(r *Report) {
		updates = append(updates, r)
	})
	if err != nil {
		t.Fatalf("watch session: %v", err)
	}
	if got := len(s.Report().Files); got != 2 {
		t.Fatalf("expected initial scan of 2 files, got %d", got)
	}

	added := writeFile(t, root, "added.py", sloppyPython)
	if err := os.Remove(gone); err != nil {
		t.Fatal(err)
	}
	r := s.Apply(context.Background(), []string{added, gone, keep})

	files := byRel(r)
	if _, ok := files["gone.py"]; ok {
		t.Fatal("removed file still reported")
	}
	if _, ok := files["added.py"]; !ok {
		t.Fatal("new file not reported")
	}
	if len(updates) != 1 || updates[0] != r {
		t.Fatalf("expected one update with the new report, got %d", len(updates))
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestNewWatchSession_RequiresDirectory(t *testing.T) {
	p := writeFile(t, t.TempDir(), "a.py", sloppyPython)
	a := newTestAnalyzer(t, Options{})
	if _, err := a.NewWatchSession(context.Background(), p, time.Millisecond, nil); !errors.IsCode(err, errors.CodeValidationError) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestApp_SaveReportAndTrend(t *testing.T) {
	state := t.TempDir()
	root := t.TempDir()
	writeFile(t, root, "a.py", sloppyPython)

	cfg := config.Default()
	cfg.Paths.StateDir = state
	cfg.DB.Enabled = true

	a, err := New(cfg)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()

	report, err := a.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if err := a.SaveReport(context.Background(), report); err != nil {
		t.Fatalf("save: %v", err)
	}

	trend, err := a.Trend(context.Background(), root, time.Time{}, 24*time.Hour)
	if err != nil {
		t.Fatalf("trend: %v", err)
	}
	if trend.ScanCount != 1 || trend.Points[0].ScanID != report.ID.String() {
		t.Fatalf("unexpected trend: %+v", trend)
	}
	if trend.Points[0].Score != report.Repository.Score {
		t.Fatalf("trend score %d != report score %d", trend.Points[0].Score, report.Repository.Score)
	}

	files, err := a.LatestFiles(context.Background(), trend, 5)
	if err != nil {
		t.Fatalf("latest files: %v", err)
	}
	if len(files) != 1 || files[0].Path != "a.py" || files[0].Score != report.Files[0].Score.Score {
		t.Fatalf("unexpected latest files %+v", files)
	}
}

func TestApp_HistoryDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StateDir = t.TempDir()
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	if err := a.SaveReport(context.Background(), &Report{}); !errors.IsCode(err, errors.CodeConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if _, err := a.Trend(context.Background(), ".", time.Time{}, 0); !errors.IsCode(err, errors.CodeConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestToScan(t *testing.T) {
	files := []FileResult{
		{RelPath: "a.py", Score: &scoring.FileScore{Score: 80, Label: "EXTREMELY VIBED"}},
		{RelPath: "b.py", Skipped: true, SkipReason: "empty file"},
	}
	r := newReport(t.TempDir(), files, 0, time.Now())
	scan := ToScan(r)
	if scan.ID != r.ID.String() || scan.Score != 80 || scan.Skipped != 1 {
		t.Fatalf("unexpected scan: %+v", scan)
	}
	want := []history.FileRecord{{Path: "a.py", Score: 80, Label: "EXTREMELY VIBED"}}
	if len(scan.Files) != 1 || scan.Files[0] != want[0] {
		t.Fatalf("unexpected file records: %+v", scan.Files)
	}
}
