package detectors

import (
	"fmt"
	"math"
	"strings"

	"vibecheck/internal/engine/fingerprint"
	"vibecheck/internal/engine/parser"
)

// RepetitiveDetector finds functions and statement blocks that share a
// structure once identifiers and literals are normalized away.
type RepetitiveDetector struct {
	fp *fingerprint.Fingerprinter
}

func NewRepetitiveDetector(opts fingerprint.Options) *RepetitiveDetector {
	return &RepetitiveDetector{fp: fingerprint.New(opts)}
}

func (d *RepetitiveDetector) ID() ID          { return Repetitive }
func (d *RepetitiveDetector) NeedsTree() bool { return true }

func (d *RepetitiveDetector) Detect(path string, content []byte, tree *parser.Tree) Result {
	if tree == nil {
		return Skipped(Repetitive, "no syntax tree; structural comparison skipped")
	}

	units, _ := d.fp.Units(tree)
	clusters := fingerprint.Clusters(units)

	findings := make([]Finding, 0, len(clusters))
	clustered := 0
	exclude := make([]fingerprint.ByteRange, 0)
	for _, c := range clusters {
		clustered += len(c.Units)
		names := make([]string, 0, len(c.Units))
		for _, u := range c.Units {
			names = append(names, fmt.Sprintf("%s (L%d-%d)", u.Name, u.Lines.Start, u.Lines.End))
			exclude = append(exclude, fingerprint.ByteRange{Start: u.StartByte, End: u.EndByte})
		}
		first := c.Units[0].Lines
		findings = append(findings, Finding{
			Kind:     "duplicate-cluster",
			Message:  fmt.Sprintf("%d functions share one structure: %s", len(c.Units), strings.Join(names, ", ")),
			Lines:    &first,
			Severity: math.Min(1, 0.3+0.1*float64(len(c.Units))),
		})
	}

	report := d.fp.Windows(tree, exclude)
	size := d.fp.Options().WindowSize
	for _, block := range report.Repeated {
		starts := make([]string, 0, len(block.Occurrences))
		for _, w := range block.Occurrences {
			starts = append(starts, fmt.Sprintf("%d", w.Lines.Start))
		}
		first := block.Occurrences[0].Lines
		findings = append(findings, Finding{
			Kind:     "repeated-block",
			Message:  fmt.Sprintf("%d-statement block repeated %d times (lines %s)", size, len(block.Occurrences), strings.Join(starts, ", ")),
			Lines:    &first,
			Severity: 0.4,
		})
	}
	if report.Truncated {
		findings = append(findings, Finding{
			Kind:    "window-budget",
			Message: fmt.Sprintf("block comparison stopped after %d windows; file exceeds the token budget", report.Windows),
		})
	}

	var proportion float64
	if len(units) > 0 {
		proportion = float64(clustered) / float64(len(units))
	}
	fraction := 0.60*proportion +
		0.15*math.Min(1, 0.25*float64(len(clusters))) +
		0.25*math.Min(1, 0.15*float64(report.Count()))

	return Result{Detector: Repetitive, Score: scaled(fraction), Findings: findings}
}
