package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"vibecheck/internal/core/errors"
	"vibecheck/internal/engine/fingerprint"
	"vibecheck/internal/engine/scoring"

	"github.com/BurntSushi/toml"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeConfiguration, "read config"), errors.CtxPath, path)
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeConfiguration, "decode config"), errors.CtxPath, path)
	}

	applyDefaults(&cfg)
	ApplyEnvOverrides(&cfg)
	normalize(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeConfiguration, "invalid config"), errors.CtxPath, path)
	}
	return &cfg, nil
}

// LoadOrDefault loads path when given. Without a path it tries DefaultFile
// in the working directory and falls back to defaults when that is absent.
func LoadOrDefault(path string) (*Config, error) {
	if strings.TrimSpace(path) != "" {
		return Load(path)
	}
	if _, err := os.Stat(DefaultFile); err == nil {
		return Load(DefaultFile)
	}
	cfg := Default()
	ApplyEnvOverrides(cfg)
	normalize(cfg)
	if err := validate(cfg); err != nil {
		return nil, errors.Wrap(err, errors.CodeConfiguration, "invalid environment overrides")
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if len(cfg.Scan.Paths) == 0 {
		cfg.Scan.Paths = []string{"."}
	}
	if cfg.Scan.MaxFileSizeKB <= 0 {
		cfg.Scan.MaxFileSizeKB = 500
	}
	if cfg.Scan.Workers <= 0 {
		cfg.Scan.Workers = runtime.NumCPU()
	}
	if cfg.Scan.FailOn == 0 {
		cfg.Scan.FailOn = scoring.HighRiskFloor
	}

	if len(cfg.Weights) == 0 {
		cfg.Weights = make(map[string]float64)
		for id, w := range scoring.DefaultWeights() {
			cfg.Weights[string(id)] = w
		}
	}

	def := fingerprint.DefaultOptions()
	if cfg.Repetitive.MinTokens <= 0 {
		cfg.Repetitive.MinTokens = def.MinTokens
	}
	if cfg.Repetitive.WindowSize <= 0 {
		cfg.Repetitive.WindowSize = def.WindowSize
	}
	if cfg.Repetitive.WindowMinTokens <= 0 {
		cfg.Repetitive.WindowMinTokens = def.WindowMinTokens
	}
	if cfg.Repetitive.WindowBudget <= 0 {
		cfg.Repetitive.WindowBudget = def.WindowBudget
	}

	if cfg.Secrets.EntropyThreshold <= 0 {
		cfg.Secrets.EntropyThreshold = 4.0
	}
	if cfg.Secrets.MinTokenLength <= 0 {
		cfg.Secrets.MinTokenLength = 20
	}

	if strings.TrimSpace(cfg.Paths.StateDir) == "" {
		cfg.Paths.StateDir = defaultStateDir()
	}
	if strings.TrimSpace(cfg.DB.Path) == "" {
		cfg.DB.Path = "history.db"
	}
	if cfg.DB.BusyTimeout <= 0 {
		cfg.DB.BusyTimeout = 5 * time.Second
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}

	if strings.TrimSpace(cfg.Observability.MetricsAddr) == "" {
		cfg.Observability.MetricsAddr = "127.0.0.1:9464"
	}
}

func normalize(cfg *Config) {
	cfg.Paths.StateDir = strings.TrimSpace(cfg.Paths.StateDir)
	cfg.DB.Path = strings.TrimSpace(cfg.DB.Path)
	cfg.Observability.MetricsAddr = strings.TrimSpace(cfg.Observability.MetricsAddr)
	cfg.Observability.OTLPEndpoint = strings.TrimSpace(cfg.Observability.OTLPEndpoint)

	ignore := make([]string, 0, len(cfg.Scan.Ignore))
	for _, pattern := range cfg.Scan.Ignore {
		if pattern = strings.TrimSpace(pattern); pattern != "" {
			ignore = append(ignore, pattern)
		}
	}
	cfg.Scan.Ignore = ignore

	weights := make(map[string]float64, len(cfg.Weights))
	for name, w := range cfg.Weights {
		weights[strings.ToLower(strings.TrimSpace(name))] = w
	}
	cfg.Weights = weights

	for i := range cfg.Secrets.Patterns {
		p := &cfg.Secrets.Patterns[i]
		p.Name = strings.TrimSpace(p.Name)
		p.Severity = strings.ToLower(strings.TrimSpace(p.Severity))
		if p.Severity == "" {
			p.Severity = "high"
		}
	}
}

// DBPath resolves the history database location against the state directory.
func (c *Config) DBPath() string {
	if filepath.IsAbs(c.DB.Path) {
		return filepath.Clean(c.DB.Path)
	}
	return filepath.Join(c.Paths.StateDir, c.DB.Path)
}

// defaultStateDir follows XDG_STATE_HOME, then ~/.local/state.
func defaultStateDir() string {
	if dir := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); dir != "" {
		return filepath.Join(dir, "vibecheck")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state", "vibecheck")
	}
	return filepath.Join(os.TempDir(), "vibecheck")
}
