// Package detectors holds the seven scoring heuristics. Every detector honours
// one contract: it reads the path, content and optional tree, returns a score in
// [0,100] with the evidence behind it, and never keeps state between files.
package detectors

import (
	"math"
	"time"

	"vibecheck/internal/engine/parser"
)

type ID string

const (
	Security     ID = "security"
	Repetitive   ID = "repetitive"
	Naming       ID = "naming"
	Imports      ID = "imports"
	Comments     ID = "comments"
	Placeholders ID = "placeholders"
	Ratio        ID = "ratio"
)

// Finding kinds shared by the aggregator.
const (
	KindSkipped       = "skipped"
	KindDetectorFault = "detector-fault"
	KindInvalidScore  = "invalid-score"
)

// Finding is one concrete piece of evidence. Severity is in [0,1].
type Finding struct {
	Kind     string            `json:"kind"`
	Message  string            `json:"message"`
	Lines    *parser.LineRange `json:"lines,omitempty"`
	Severity float64           `json:"severity"`
}

// Result is produced exactly once per (file, detector) pair.
type Result struct {
	Detector ID            `json:"detector"`
	Score    float64       `json:"score"`
	Findings []Finding     `json:"findings"`
	Elapsed  time.Duration `json:"elapsed_ns"`
}

type Detector interface {
	ID() ID
	// NeedsTree reports whether the detector has nothing to say without a
	// syntax tree.
	NeedsTree() bool
	Detect(path string, content []byte, tree *parser.Tree) Result
}

// Neutral is the zero-signal result.
func Neutral(id ID, findings ...Finding) Result {
	if findings == nil {
		findings = []Finding{}
	}
	return Result{Detector: id, Score: 0, Findings: findings}
}

// Skipped is returned for tree-requiring detectors when no tree is available.
func Skipped(id ID, reason string) Result {
	return Neutral(id, Finding{Kind: KindSkipped, Message: reason, Severity: 0})
}

// scaled converts a [0,1] fraction to a [0,100] score.
func scaled(fraction float64) float64 {
	if math.IsNaN(fraction) || fraction <= 0 {
		return 0
	}
	if fraction >= 1 {
		return 100
	}
	return fraction * 100
}

func lineAt(n int) *parser.LineRange {
	return &parser.LineRange{Start: n, End: n}
}

// All returns one instance of every detector in canonical order.
func All(cfg Config) ([]Detector, error) {
	security, err := NewSecurityDetector(cfg.Secrets)
	if err != nil {
		return nil, err
	}
	return []Detector{
		security,
		NewRepetitiveDetector(cfg.Fingerprint),
		NewNamingDetector(),
		NewImportsDetector(),
		NewCommentsDetector(),
		NewPlaceholdersDetector(),
		NewRatioDetector(),
	}, nil
}
