package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"vibecheck/internal/engine/scoring"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: VIBECHECK_[SECTION]_[KEY] (e.g., VIBECHECK_SCAN_WORKERS).
func ApplyEnvOverrides(cfg *Config) {
	// Paths
	setEnvString(&cfg.Paths.StateDir, "VIBECHECK_PATHS_STATE_DIR")

	// Scan
	setEnvList(&cfg.Scan.Ignore, "VIBECHECK_SCAN_IGNORE")
	setEnvBoolPtr(&cfg.Scan.RespectGitignore, "VIBECHECK_SCAN_RESPECT_GITIGNORE")
	setEnvInt(&cfg.Scan.MaxFileSizeKB, "VIBECHECK_SCAN_MAX_FILE_SIZE_KB")
	setEnvInt(&cfg.Scan.Workers, "VIBECHECK_SCAN_WORKERS")
	setEnvFloat64(&cfg.Scan.FilesPerSecond, "VIBECHECK_SCAN_FILES_PER_SECOND")
	setEnvInt(&cfg.Scan.Threshold, "VIBECHECK_SCAN_THRESHOLD")
	setEnvInt(&cfg.Scan.FailOn, "VIBECHECK_SCAN_FAIL_ON")

	// Weights
	for id := range scoring.DefaultWeights() {
		key := "VIBECHECK_WEIGHTS_" + strings.ToUpper(string(id))
		if cfg.Weights == nil {
			cfg.Weights = make(map[string]float64)
		}
		w := cfg.Weights[string(id)]
		if setEnvFloat64(&w, key) {
			cfg.Weights[string(id)] = w
		}
	}

	// Repetitive
	setEnvInt(&cfg.Repetitive.MinTokens, "VIBECHECK_REPETITIVE_MIN_TOKENS")
	setEnvInt(&cfg.Repetitive.WindowSize, "VIBECHECK_REPETITIVE_WINDOW_SIZE")
	setEnvInt(&cfg.Repetitive.WindowBudget, "VIBECHECK_REPETITIVE_WINDOW_BUDGET")

	// Secrets
	setEnvFloat64(&cfg.Secrets.EntropyThreshold, "VIBECHECK_SECRETS_ENTROPY_THRESHOLD")
	setEnvInt(&cfg.Secrets.MinTokenLength, "VIBECHECK_SECRETS_MIN_TOKEN_LENGTH")

	// Database
	setEnvBool(&cfg.DB.Enabled, "VIBECHECK_DB_ENABLED")
	setEnvString(&cfg.DB.Path, "VIBECHECK_DB_PATH")
	setEnvDuration(&cfg.DB.BusyTimeout, "VIBECHECK_DB_BUSY_TIMEOUT")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, "VIBECHECK_WATCH_DEBOUNCE")

	// Observability
	setEnvBool(&cfg.Observability.Enabled, "VIBECHECK_OBSERVABILITY_ENABLED")
	setEnvString(&cfg.Observability.MetricsAddr, "VIBECHECK_OBSERVABILITY_METRICS_ADDR")
	setEnvString(&cfg.Observability.OTLPEndpoint, "VIBECHECK_OBSERVABILITY_OTLP_ENDPOINT")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

// setEnvList splits a comma-separated value.
func setEnvList(target *[]string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = strings.Split(val, ",")
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvBoolPtr(target **bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(strings.ToLower(val)); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = &b
		}
	}
}

func setEnvFloat64(target *float64, key string) bool {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = f
			return true
		}
	}
	return false
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
