package cli

import (
	"strings"
	"testing"
	"time"

	"vibecheck/internal/core/app"
	"vibecheck/internal/engine/detectors"
	"vibecheck/internal/engine/scoring"

	tea "github.com/charmbracelet/bubbletea"
)

func scored(path string, score int, findings []detectors.Finding) *scoring.FileScore {
	band := scoring.BandFor(score)
	fs := &scoring.FileScore{
		Path: path, Score: score, Weighted: float64(score),
		Label: band.Label, Color: band.Color, ParseStatus: scoring.ParseOK,
	}
	for id, w := range scoring.DefaultWeights() {
		res := detectors.Result{Detector: id, Score: float64(score)}
		if id == detectors.Naming {
			res.Findings = findings
		}
		fs.Detectors = append(fs.Detectors, scoring.DetectorScore{Result: res, Weight: w})
	}
	return fs
}

func sampleReport() *app.Report {
	files := []app.FileResult{
		{Path: "/repo/svc/handlers.py", RelPath: "svc/handlers.py", Score: scored("svc/handlers.py", 72, []detectors.Finding{
			{Kind: "generic-function", Message: "generic function names: process_data", Severity: 0.6},
		})},
		{Path: "/repo/main.go", RelPath: "main.go", Score: scored("main.go", 12, nil)},
		{Path: "/repo/empty.py", RelPath: "empty.py", Skipped: true, SkipReason: "empty file"},
		{Path: "/repo/locked.py", RelPath: "locked.py", Error: "permission denied"},
	}
	return &app.Report{
		Root:       "/repo",
		Timestamp:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Files:      files,
		Repository: scoring.Summarize([]scoring.FileScore{*files[0].Score, *files[1].Score}, 1, 1),
	}
}

func TestModel_ReportMsg(t *testing.T) {
	m := initialModel()
	if !strings.Contains(m.View(), "Scanning") {
		t.Fatalf("expected scanning placeholder before the first report")
	}

	next, _ := m.Update(reportMsg{report: sampleReport()})
	m = next.(model)
	items := m.list.Items()
	if len(items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(items))
	}
	first := items[0].(fileItem)
	if first.score != 72 || !strings.Contains(first.title, "svc/handlers.py") {
		t.Fatalf("unexpected first item %+v", first)
	}
	if !strings.Contains(first.desc, "generic function names") {
		t.Fatalf("expected top finding in description, got %q", first.desc)
	}
	if last := items[3].(fileItem); last.desc != "error: permission denied" {
		t.Fatalf("unexpected errored item %+v", last)
	}
	if view := m.View(); !strings.Contains(view, "Repo 42/100") || !strings.Contains(view, "1 high-risk") {
		t.Fatalf("summary missing from view:\n%s", view)
	}
}

func TestModel_TabTogglesHighRisk(t *testing.T) {
	next, _ := initialModel().Update(reportMsg{report: sampleReport()})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyTab})
	m := next.(model)
	if !m.highRiskOnly {
		t.Fatalf("tab should enable the high-risk filter")
	}
	if items := m.list.Items(); len(items) != 1 || items[0].(fileItem).score != 72 {
		t.Fatalf("expected only the high-risk file, got %+v", items)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if got := len(next.(model).list.Items()); got != 4 {
		t.Fatalf("expected all files after second tab, got %d", got)
	}
}

func TestModel_Quit(t *testing.T) {
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyCtrlC},
	} {
		_, cmd := initialModel().Update(key)
		if cmd == nil {
			t.Fatalf("%s: expected quit command", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("%s: expected tea.QuitMsg", key)
		}
	}
}
