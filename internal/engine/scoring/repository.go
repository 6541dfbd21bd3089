package scoring

import (
	"math"
)

// RepositoryScore folds the file scores of one scan. Skipped and errored files
// are counted but never contribute to the score statistics.
type RepositoryScore struct {
	Score      int     `json:"repo_vibe_score"`
	Label      string  `json:"score_label"`
	Color      string  `json:"label_color"`
	Mean       float64 `json:"average_score"`
	Weighted   int     `json:"weighted_score"`
	Min        int     `json:"min_score"`
	Max        int     `json:"max_score"`
	HighRisk   int     `json:"high_risk_files"`
	MediumRisk int     `json:"medium_risk_files"`
	Analyzed   int     `json:"files_analyzed"`
	Skipped    int     `json:"files_skipped"`
	Errored    int     `json:"files_errored"`
}

// AggregateRepository computes the repository summary from scored files.
// Score is the rounded mean, so a single file maps to its own score. Weighted
// leans towards the worst files: Σs^1.5 / Σ100^1.5.
func AggregateRepository(files []FileScore) RepositoryScore {
	return Summarize(files, 0, 0)
}

// Summarize is AggregateRepository with skip and error counts from the scan.
func Summarize(files []FileScore, skipped, errored int) RepositoryScore {
	out := RepositoryScore{Skipped: skipped, Errored: errored}
	if len(files) == 0 {
		band := BandFor(0)
		out.Label, out.Color = band.Label, band.Color
		return out
	}

	sum := 0.0
	num := 0.0
	out.Min = 100
	for _, f := range files {
		s := clampInt(f.Score)
		sum += float64(s)
		num += math.Pow(float64(s), 1.5)
		if s < out.Min {
			out.Min = s
		}
		if s > out.Max {
			out.Max = s
		}
		switch {
		case s >= HighRiskFloor:
			out.HighRisk++
		case s >= MediumRiskFloor:
			out.MediumRisk++
		}
	}

	n := float64(len(files))
	out.Analyzed = len(files)
	out.Mean = sum / n
	out.Score = clampInt(int(math.Round(out.Mean)))
	out.Weighted = clampInt(int(math.Round(num / (n * math.Pow(100, 1.5)) * 100)))
	band := BandFor(out.Score)
	out.Label, out.Color = band.Label, band.Color
	return out
}

// Gate reports whether a scan should fail CI: at least one high-risk file and
// a worst file at or above threshold.
func (r RepositoryScore) Gate(threshold int) bool {
	return r.HighRisk > 0 && r.Max >= threshold
}
