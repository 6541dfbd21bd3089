package app

import (
	"sort"
	"time"

	"vibecheck/internal/engine/scoring"

	"github.com/google/uuid"
)

// FileResult is the outcome for one file. Exactly one of Score, Skipped or
// Error describes it.
type FileResult struct {
	Path       string             `json:"-"`
	RelPath    string             `json:"path"`
	Score      *scoring.FileScore `json:"score,omitempty"`
	Skipped    bool               `json:"skipped,omitempty"`
	SkipReason string             `json:"skip_reason,omitempty"`
	Error      string             `json:"error,omitempty"`
}

func (r FileResult) Scored() bool {
	return r.Score != nil && !r.Skipped && r.Error == ""
}

// Report is a finished scan. Files holds every result; Visible applies the
// display threshold.
type Report struct {
	ID         uuid.UUID               `json:"scan_id"`
	Root       string                  `json:"scan_path"`
	Timestamp  time.Time               `json:"timestamp"`
	Files      []FileResult            `json:"files"`
	Repository scoring.RepositoryScore `json:"summary"`
	Threshold  int                     `json:"threshold"`
	Duration   time.Duration           `json:"duration"`
}

func newReport(root string, files []FileResult, threshold int, started time.Time) *Report {
	sortResults(files)
	return &Report{
		ID:         uuid.New(),
		Root:       root,
		Timestamp:  started.UTC(),
		Files:      files,
		Repository: summarize(files),
		Threshold:  threshold,
		Duration:   time.Since(started),
	}
}

func summarize(files []FileResult) scoring.RepositoryScore {
	scores := make([]scoring.FileScore, 0, len(files))
	skipped, errored := 0, 0
	for _, f := range files {
		switch {
		case f.Error != "":
			errored++
		case f.Skipped:
			skipped++
		case f.Score != nil:
			scores = append(scores, *f.Score)
		}
	}
	return scoring.Summarize(scores, skipped, errored)
}

// sortResults orders scored files by score descending and leaves skipped and
// errored files at the end. Ties fall back to the relative path.
func sortResults(files []FileResult) {
	sort.SliceStable(files, func(i, j int) bool {
		a, b := files[i], files[j]
		if a.Scored() != b.Scored() {
			return a.Scored()
		}
		if a.Scored() && a.Score.Score != b.Score.Score {
			return a.Score.Score > b.Score.Score
		}
		return a.RelPath < b.RelPath
	})
}

// Visible returns the results to display: scored files at or above the
// threshold, plus every skipped or errored file.
func (r *Report) Visible() []FileResult {
	if r.Threshold <= 0 {
		return r.Files
	}
	out := make([]FileResult, 0, len(r.Files))
	for _, f := range r.Files {
		if f.Scored() && f.Score.Score < r.Threshold {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Counts returns total, scored, skipped and errored file counts.
func (r *Report) Counts() (total, scored, skipped, errored int) {
	for _, f := range r.Files {
		switch {
		case f.Error != "":
			errored++
		case f.Skipped:
			skipped++
		default:
			scored++
		}
	}
	return len(r.Files), scored, skipped, errored
}
