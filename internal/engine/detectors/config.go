package detectors

import (
	"vibecheck/internal/engine/fingerprint"
	"vibecheck/internal/engine/secrets"
)

// Config carries the tunables detectors read once at construction.
type Config struct {
	Secrets     secrets.Config
	Fingerprint fingerprint.Options
}

func DefaultConfig() Config {
	return Config{
		Secrets:     secrets.Config{EntropyThreshold: 4.0, MinTokenLength: 20},
		Fingerprint: fingerprint.DefaultOptions(),
	}
}
