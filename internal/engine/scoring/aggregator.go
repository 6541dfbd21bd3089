package scoring

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"vibecheck/internal/core/errors"
	"vibecheck/internal/engine/detectors"
	"vibecheck/internal/engine/parser"
	"vibecheck/internal/shared/observability"
)

type ParseStatus string

const (
	ParseOK          ParseStatus = "ok"
	ParseFailed      ParseStatus = "failed"
	ParseUnsupported ParseStatus = "unsupported"
)

// DetectorScore is one detector's result together with the weight it carried.
type DetectorScore struct {
	detectors.Result
	Weight float64 `json:"weight"`
}

// FileScore is the scored view of one file. Detectors holds exactly one entry
// per registered detector, in registry order.
type FileScore struct {
	Path        string          `json:"path"`
	Score       int             `json:"vibe_score"`
	Weighted    float64         `json:"weighted_sum"`
	Label       string          `json:"score_label"`
	Color       string          `json:"label_color"`
	ParseStatus ParseStatus     `json:"parse_status"`
	ParseError  string          `json:"parse_error,omitempty"`
	Detectors   []DetectorScore `json:"detectors"`
}

// Detector returns the entry for id.
func (f FileScore) Detector(id detectors.ID) (DetectorScore, bool) {
	for _, d := range f.Detectors {
		if d.Detector == id {
			return d, true
		}
	}
	return DetectorScore{}, false
}

type Option func(*Aggregator)

// WithClock replaces the clock used to time detectors.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// Aggregator runs the registry against files. It holds no per-file state and
// may be shared by any number of workers.
type Aggregator struct {
	registry *Registry
	now      func() time.Time
}

func NewAggregator(registry *Registry, opts ...Option) (*Aggregator, error) {
	if registry == nil || registry.Len() == 0 {
		return nil, errors.New(errors.CodeConfiguration, "aggregator needs a populated registry")
	}
	a := &Aggregator{registry: registry, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *Aggregator) Registry() *Registry {
	return a.registry
}

// ScoreFile runs every detector against one file. A nil tree marks the file
// as unparsed; detectors that need a tree are skipped, the rest still run.
func (a *Aggregator) ScoreFile(path string, content []byte, tree *parser.Tree) FileScore {
	status := ParseOK
	if tree == nil {
		status = ParseFailed
	}

	results := make([]DetectorScore, 0, len(a.registry.entries))
	sum := 0.0
	for _, entry := range a.registry.entries {
		res := a.run(entry.Detector, path, content, tree)
		sum += entry.Weight * res.Score
		results = append(results, DetectorScore{Result: res, Weight: entry.Weight})
	}

	final := finalScore(sum)
	band := BandFor(final)
	observability.FilesScoredTotal.WithLabelValues(band.Label).Inc()
	observability.FileScore.Observe(float64(final))

	return FileScore{
		Path:        path,
		Score:       final,
		Weighted:    sum,
		Label:       band.Label,
		Color:       band.Color,
		ParseStatus: status,
		Detectors:   results,
	}
}

// run invokes one detector and contains whatever goes wrong inside it.
func (a *Aggregator) run(d detectors.Detector, path string, content []byte, tree *parser.Tree) (res detectors.Result) {
	id := d.ID()
	if tree == nil && d.NeedsTree() {
		return detectors.Skipped(id, "no syntax tree available")
	}

	start := a.now()
	defer func() {
		if rec := recover(); rec != nil {
			observability.DetectorFaultsTotal.WithLabelValues(string(id)).Inc()
			slog.Warn("detector fault", "detector", id, "path", path, "panic", rec)
			res = detectors.Neutral(id, detectors.Finding{
				Kind:    detectors.KindDetectorFault,
				Message: fmt.Sprintf("detector failed: %v", rec),
			})
		}
		res.Elapsed = a.now().Sub(start)
		observability.DetectorDuration.WithLabelValues(string(id)).Observe(res.Elapsed.Seconds())
	}()

	return sanitize(id, d.Detect(path, content, tree))
}

// sanitize forces a result back inside the contract: its own identity, a score
// in [0,100] and a non-nil finding list.
func sanitize(id detectors.ID, res detectors.Result) detectors.Result {
	res.Detector = id
	if res.Findings == nil {
		res.Findings = []detectors.Finding{}
	}
	switch {
	case math.IsNaN(res.Score) || math.IsInf(res.Score, 0):
		res.Findings = append(res.Findings, detectors.Finding{
			Kind:    detectors.KindInvalidScore,
			Message: fmt.Sprintf("detector returned %v; scored as 0", res.Score),
		})
		res.Score = 0
	case res.Score < 0 || res.Score > 100:
		res.Findings = append(res.Findings, detectors.Finding{
			Kind:    detectors.KindInvalidScore,
			Message: fmt.Sprintf("detector returned %.2f; clamped to [0,100]", res.Score),
		})
		res.Score = math.Max(0, math.Min(100, res.Score))
	}
	return res
}

func finalScore(sum float64) int {
	if math.IsNaN(sum) {
		return 0
	}
	return clampInt(int(math.Round(sum)))
}
