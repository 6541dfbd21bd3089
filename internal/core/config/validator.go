package config

import (
	"fmt"
	"net"
	"regexp"
	"strings"

	"vibecheck/internal/engine/scoring"
)

func validate(cfg *Config) error {
	for _, check := range []func(*Config) error{
		validateVersion,
		validateScan,
		validateWeights,
		validateRepetitive,
		validateSecrets,
		validateDatabase,
		validateObservability,
	} {
		if err := check(cfg); err != nil {
			return err
		}
	}
	return nil
}

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateScan(cfg *Config) error {
	scan := cfg.Scan
	for i, p := range scan.Paths {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("scan.paths[%d] must not be empty", i)
		}
	}
	if scan.Threshold < 0 || scan.Threshold > 100 {
		return fmt.Errorf("scan.threshold must be within [0,100], got %d", scan.Threshold)
	}
	if scan.FailOn < 0 || scan.FailOn > 100 {
		return fmt.Errorf("scan.fail_on must be within [0,100], got %d", scan.FailOn)
	}
	if scan.FilesPerSecond < 0 {
		return fmt.Errorf("scan.files_per_second must not be negative")
	}
	return nil
}

// validateWeights checks names up front so the error names the config key;
// range and sum rules are the weight table's own.
func validateWeights(cfg *Config) error {
	known := make(map[string]bool)
	for id := range scoring.DefaultWeights() {
		known[string(id)] = true
	}
	for name := range cfg.Weights {
		if !known[name] {
			return fmt.Errorf("weights.%s does not name a detector", name)
		}
	}
	for id := range known {
		if _, ok := cfg.Weights[id]; !ok {
			return fmt.Errorf("weights.%s is missing; a partial weight table must list every detector", id)
		}
	}
	if _, err := scoring.NewWeightTable(cfg.DetectorWeights()); err != nil {
		return fmt.Errorf("weights: %w", err)
	}
	return nil
}

func validateRepetitive(cfg *Config) error {
	if cfg.Repetitive.WindowSize < 2 {
		return fmt.Errorf("repetitive.window_size must be at least 2, got %d", cfg.Repetitive.WindowSize)
	}
	return nil
}

func validateSecrets(cfg *Config) error {
	seen := make(map[string]bool, len(cfg.Secrets.Patterns))
	for i, p := range cfg.Secrets.Patterns {
		ref := fmt.Sprintf("secrets.patterns[%d]", i)
		if p.Name == "" {
			return fmt.Errorf("%s.name must not be empty", ref)
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate secret pattern name %q", p.Name)
		}
		seen[p.Name] = true
		if _, err := regexp.Compile(p.Regex); err != nil {
			return fmt.Errorf("%s.regex: %w", ref, err)
		}
		switch p.Severity {
		case "low", "medium", "high", "critical":
		default:
			return fmt.Errorf("%s.severity must be one of: low, medium, high, critical", ref)
		}
	}
	return nil
}

func validateDatabase(cfg *Config) error {
	if cfg.DB.Enabled && cfg.DB.Path == "" {
		return fmt.Errorf("db.path must not be empty when db.enabled=true")
	}
	return nil
}

func validateObservability(cfg *Config) error {
	if !cfg.Observability.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(cfg.Observability.MetricsAddr); err != nil {
		return fmt.Errorf("observability.metrics_addr %q: %w", cfg.Observability.MetricsAddr, err)
	}
	return nil
}
