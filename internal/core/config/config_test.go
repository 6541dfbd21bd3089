package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"vibecheck/internal/core/errors"
	"vibecheck/internal/engine/detectors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vibecheck.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	content := `
[scan]
paths = ["./src"]
ignore = ["vendor/", " *.gen.py "]
respect_gitignore = false
max_file_size_kb = 250
workers = 3
threshold = 20
fail_on = 70

[repetitive]
window_size = 4

[secrets]
entropy_threshold = 4.5

[[secrets.patterns]]
name = "internal-token"
regex = "itk_[A-Za-z0-9]{32}"

[watch]
debounce = "1s"

[db]
enabled = true
path = "/tmp/vibes.db"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Scan.Paths[0] != "./src" {
		t.Errorf("expected ./src, got %v", cfg.Scan.Paths)
	}
	if len(cfg.Scan.Ignore) != 2 || cfg.Scan.Ignore[1] != "*.gen.py" {
		t.Errorf("expected trimmed ignore patterns, got %q", cfg.Scan.Ignore)
	}
	if cfg.Scan.GitignoreEnabled() {
		t.Error("expected gitignore to be disabled")
	}
	if cfg.Scan.MaxFileSize() != 250*1024 {
		t.Errorf("expected 250KB, got %d", cfg.Scan.MaxFileSize())
	}
	if cfg.Scan.Workers != 3 || cfg.Scan.Threshold != 20 || cfg.Scan.FailOn != 70 {
		t.Errorf("unexpected scan section %+v", cfg.Scan)
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("expected 1s debounce, got %v", cfg.Watch.Debounce)
	}
	if cfg.DBPath() != "/tmp/vibes.db" {
		t.Errorf("expected absolute db path to stay, got %s", cfg.DBPath())
	}

	dc := cfg.DetectorConfig()
	if dc.Fingerprint.WindowSize != 4 || dc.Fingerprint.MinTokens != 5 {
		t.Errorf("unexpected fingerprint options %+v", dc.Fingerprint)
	}
	if dc.Secrets.EntropyThreshold != 4.5 || dc.Secrets.MinTokenLength != 20 {
		t.Errorf("unexpected secrets config %+v", dc.Secrets)
	}
	if len(dc.Secrets.Patterns) != 1 || dc.Secrets.Patterns[0].Severity != "high" {
		t.Errorf("expected custom pattern with default severity, got %+v", dc.Secrets.Patterns)
	}
}

func TestDefault(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/var/state")
	cfg := Default()

	if cfg.Scan.MaxFileSizeKB != 500 {
		t.Errorf("expected 500KB limit, got %d", cfg.Scan.MaxFileSizeKB)
	}
	if cfg.Scan.FailOn != 60 {
		t.Errorf("expected fail_on 60, got %d", cfg.Scan.FailOn)
	}
	if !cfg.Scan.GitignoreEnabled() {
		t.Error("expected gitignore to be respected by default")
	}
	if cfg.Paths.StateDir != "/var/state/vibecheck" {
		t.Errorf("unexpected state dir %s", cfg.Paths.StateDir)
	}
	if cfg.DBPath() != "/var/state/vibecheck/history.db" {
		t.Errorf("unexpected db path %s", cfg.DBPath())
	}
	weights := cfg.DetectorWeights()
	if len(weights) != 7 || weights[detectors.Security] != 0.25 {
		t.Errorf("unexpected default weights %v", weights)
	}
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "weights do not sum to one",
			content: "[weights]\nsecurity = 0.5\nrepetitive = 0.15\nnaming = 0.15\nimports = 0.15\ncomments = 0.1\nplaceholders = 0.1\nratio = 0.1\n",
			want:    "sum to 1.0",
		},
		{
			name:    "unknown detector weight",
			content: "[weights]\nvibes = 1.0\n",
			want:    "weights.vibes",
		},
		{
			name:    "partial weight table",
			content: "[weights]\nsecurity = 1.0\n",
			want:    "is missing",
		},
		{
			name:    "threshold out of range",
			content: "[scan]\nthreshold = 140\n",
			want:    "scan.threshold",
		},
		{
			name:    "bad secret regex",
			content: "[[secrets.patterns]]\nname = \"broken\"\nregex = \"([\"\n",
			want:    "secrets.patterns[0].regex",
		},
		{
			name:    "window too small",
			content: "[repetitive]\nwindow_size = 1\n",
			want:    "window_size",
		},
		{
			name:    "unsupported version",
			content: "version = 3\n",
			want:    "unsupported config version",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.IsCode(err, errors.CodeConfiguration) {
				t.Errorf("expected configuration error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected %q in %v", tt.want, err)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestLoadOrDefault_NoFile(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault failed: %v", err)
	}
	if cfg.Scan.Paths[0] != "." {
		t.Errorf("expected default scan path, got %v", cfg.Scan.Paths)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("VIBECHECK_SCAN_WORKERS", "7")
	t.Setenv("VIBECHECK_SCAN_RESPECT_GITIGNORE", "false")
	t.Setenv("VIBECHECK_SCAN_IGNORE", "gen/,*.pb.go")
	t.Setenv("VIBECHECK_WATCH_DEBOUNCE", "2s")
	t.Setenv("VIBECHECK_DB_ENABLED", "true")
	t.Setenv("VIBECHECK_SECRETS_MIN_TOKEN_LENGTH", "not-a-number")

	cfg := Default()
	ApplyEnvOverrides(cfg)

	if cfg.Scan.Workers != 7 {
		t.Errorf("expected 7 workers, got %d", cfg.Scan.Workers)
	}
	if cfg.Scan.GitignoreEnabled() {
		t.Error("expected gitignore override")
	}
	if len(cfg.Scan.Ignore) != 2 {
		t.Errorf("expected two ignore patterns, got %v", cfg.Scan.Ignore)
	}
	if cfg.Watch.Debounce != 2*time.Second {
		t.Errorf("expected 2s debounce, got %v", cfg.Watch.Debounce)
	}
	if !cfg.DB.Enabled {
		t.Error("expected db enabled")
	}
	if cfg.Secrets.MinTokenLength != 20 {
		t.Errorf("unparseable override must be ignored, got %d", cfg.Secrets.MinTokenLength)
	}
}

func TestApplyEnvOverrides_Weights(t *testing.T) {
	t.Setenv("VIBECHECK_WEIGHTS_SECURITY", "0.35")
	t.Setenv("VIBECHECK_WEIGHTS_RATIO", "0.0")

	cfg := Default()
	ApplyEnvOverrides(cfg)
	if cfg.Weights["security"] != 0.35 || cfg.Weights["ratio"] != 0 {
		t.Fatalf("unexpected weights %v", cfg.Weights)
	}
	if err := validate(cfg); err != nil {
		t.Fatalf("rebalanced weights should validate: %v", err)
	}
}
