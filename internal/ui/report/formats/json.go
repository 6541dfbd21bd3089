package formats

import (
	"encoding/json"
	"io"
	"time"

	"vibecheck/internal/core/app"
	"vibecheck/internal/engine/detectors"
	"vibecheck/internal/engine/scoring"
)

type jsonDocument struct {
	ScanID     string      `json:"scan_id"`
	ScanPath   string      `json:"scan_path"`
	Timestamp  time.Time   `json:"timestamp"`
	Threshold  int         `json:"threshold"`
	DurationMS int64       `json:"duration_ms"`
	Summary    jsonSummary `json:"summary"`
	Files      []jsonFile  `json:"files"`
}

type jsonSummary struct {
	TotalFiles    int     `json:"total_files"`
	AnalyzedFiles int     `json:"analyzed_files"`
	SkippedFiles  int     `json:"skipped_files"`
	ErrorFiles    int     `json:"error_files"`
	RepoScore     int     `json:"repo_vibe_score"`
	Label         string  `json:"score_label"`
	Color         string  `json:"label_color"`
	AverageScore  float64 `json:"average_score"`
	WeightedScore int     `json:"weighted_score"`
	MinScore      int     `json:"min_score"`
	MaxScore      int     `json:"max_score"`
	HighRisk      int     `json:"high_risk_files"`
	MediumRisk    int     `json:"medium_risk_files"`
}

type jsonFile struct {
	Path        string         `json:"path"`
	Score       *int           `json:"vibe_score,omitempty"`
	Label       string         `json:"score_label,omitempty"`
	Color       string         `json:"label_color,omitempty"`
	ParseStatus string         `json:"parse_status,omitempty"`
	ParseError  string         `json:"parse_error,omitempty"`
	Skipped     bool           `json:"skipped"`
	SkipReason  string         `json:"skip_reason,omitempty"`
	Error       string         `json:"error,omitempty"`
	Detectors   []jsonDetector `json:"detectors,omitempty"`
}

type jsonDetector struct {
	Name     string               `json:"name"`
	Score    float64              `json:"score"`
	Weight   float64              `json:"weight"`
	Findings []detectors.Finding `json:"findings"`
}

// WriteJSON writes every file, ignoring the display threshold, so the
// document is a full record of the scan.
func WriteJSON(w io.Writer, r *app.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toJSON(r))
}

func toJSON(r *app.Report) jsonDocument {
	total, scored, skipped, errored := r.Counts()
	repo := r.Repository
	doc := jsonDocument{
		ScanID:     r.ID.String(),
		ScanPath:   r.Root,
		Timestamp:  r.Timestamp,
		Threshold:  r.Threshold,
		DurationMS: r.Duration.Milliseconds(),
		Summary: jsonSummary{
			TotalFiles:    total,
			AnalyzedFiles: scored,
			SkippedFiles:  skipped,
			ErrorFiles:    errored,
			RepoScore:     repo.Score,
			Label:         repo.Label,
			Color:         repo.Color,
			AverageScore:  round2(repo.Mean),
			WeightedScore: repo.Weighted,
			MinScore:      repo.Min,
			MaxScore:      repo.Max,
			HighRisk:      repo.HighRisk,
			MediumRisk:    repo.MediumRisk,
		},
		Files: make([]jsonFile, 0, len(r.Files)),
	}
	for _, f := range r.Files {
		doc.Files = append(doc.Files, fileJSON(f))
	}
	return doc
}

func fileJSON(f app.FileResult) jsonFile {
	out := jsonFile{
		Path:       f.RelPath,
		Skipped:    f.Skipped,
		SkipReason: f.SkipReason,
		Error:      f.Error,
	}
	if f.Score == nil {
		return out
	}
	s := f.Score
	score := s.Score
	out.Score = &score
	out.Label = s.Label
	out.Color = s.Color
	out.ParseStatus = string(s.ParseStatus)
	out.ParseError = s.ParseError
	out.Detectors = detectorsJSON(s.Detectors)
	return out
}

func detectorsJSON(ds []scoring.DetectorScore) []jsonDetector {
	out := make([]jsonDetector, 0, len(ds))
	for _, d := range ds {
		findings := d.Findings
		if findings == nil {
			findings = []detectors.Finding{}
		}
		out = append(out, jsonDetector{
			Name:     string(d.Detector),
			Score:    round2(d.Score),
			Weight:   d.Weight,
			Findings: findings,
		})
	}
	return out
}
