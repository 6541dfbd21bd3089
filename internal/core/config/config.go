package config

import (
	"time"

	"vibecheck/internal/engine/detectors"
	"vibecheck/internal/engine/fingerprint"
	"vibecheck/internal/engine/secrets"
)

// DefaultFile is looked up in the working directory when no --config is given.
const DefaultFile = "vibecheck.toml"

type Config struct {
	Version       int                `toml:"version"`
	Paths         Paths              `toml:"paths"`
	Scan          Scan               `toml:"scan"`
	Weights       map[string]float64 `toml:"weights"`
	Repetitive    Repetitive         `toml:"repetitive"`
	Secrets       Secrets            `toml:"secrets"`
	DB            Database           `toml:"db"`
	Watch         Watch              `toml:"watch"`
	Observability Observability      `toml:"observability"`
}

type Paths struct {
	StateDir string `toml:"state_dir"`
}

type Scan struct {
	Paths            []string `toml:"paths"`
	Ignore           []string `toml:"ignore"`
	RespectGitignore *bool    `toml:"respect_gitignore"`
	MaxFileSizeKB    int      `toml:"max_file_size_kb"`
	Workers          int      `toml:"workers"`
	// FilesPerSecond throttles file reads; zero disables the limiter.
	FilesPerSecond float64 `toml:"files_per_second"`
	Threshold      int     `toml:"threshold"`
	FailOn         int     `toml:"fail_on"`
}

type Repetitive struct {
	MinTokens       int `toml:"min_tokens"`
	WindowSize      int `toml:"window_size"`
	WindowMinTokens int `toml:"window_min_tokens"`
	WindowBudget    int `toml:"window_budget"`
}

type Secrets struct {
	EntropyThreshold float64         `toml:"entropy_threshold"`
	MinTokenLength   int             `toml:"min_token_length"`
	Patterns         []SecretPattern `toml:"patterns"`
}

type SecretPattern struct {
	Name     string `toml:"name"`
	Regex    string `toml:"regex"`
	Severity string `toml:"severity"`
}

type Database struct {
	Enabled     bool          `toml:"enabled"`
	Path        string        `toml:"path"`
	BusyTimeout time.Duration `toml:"busy_timeout"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

type Observability struct {
	Enabled      bool   `toml:"enabled"`
	MetricsAddr  string `toml:"metrics_addr"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
}

// Default returns a fully defaulted configuration.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	normalize(cfg)
	return cfg
}

func (s Scan) GitignoreEnabled() bool {
	if s.RespectGitignore == nil {
		return true
	}
	return *s.RespectGitignore
}

func (s Scan) MaxFileSize() int64 {
	return int64(s.MaxFileSizeKB) * 1024
}

// DetectorConfig converts the detector sections into engine options.
func (c *Config) DetectorConfig() detectors.Config {
	patterns := make([]secrets.PatternConfig, 0, len(c.Secrets.Patterns))
	for _, p := range c.Secrets.Patterns {
		patterns = append(patterns, secrets.PatternConfig{Name: p.Name, Regex: p.Regex, Severity: p.Severity})
	}
	return detectors.Config{
		Secrets: secrets.Config{
			EntropyThreshold: c.Secrets.EntropyThreshold,
			MinTokenLength:   c.Secrets.MinTokenLength,
			Patterns:         patterns,
		},
		Fingerprint: fingerprint.Options{
			MinTokens:       c.Repetitive.MinTokens,
			WindowSize:      c.Repetitive.WindowSize,
			WindowMinTokens: c.Repetitive.WindowMinTokens,
			WindowBudget:    c.Repetitive.WindowBudget,
		},
	}
}

// DetectorWeights returns the [weights] table keyed by detector id.
func (c *Config) DetectorWeights() map[detectors.ID]float64 {
	if len(c.Weights) == 0 {
		return nil
	}
	out := make(map[detectors.ID]float64, len(c.Weights))
	for name, w := range c.Weights {
		out[detectors.ID(name)] = w
	}
	return out
}
