package app

import (
	"context"
	"path/filepath"
	"time"

	"vibecheck/internal/core/errors"
	"vibecheck/internal/data/history"
)

// ProjectKey identifies a scan root in history. It is the cleaned absolute
// path, so renaming a checkout starts a new series.
func ProjectKey(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		return filepath.Clean(root)
	}
	return filepath.ToSlash(abs)
}

// ToScan converts a report to its history row, tagging it with the HEAD
// commit of root when there is one.
func ToScan(r *Report) history.Scan {
	hash, committed := history.ResolveGitMetadata(r.Root)
	repo := r.Repository
	scan := history.Scan{
		ID:              r.ID.String(),
		ProjectKey:      ProjectKey(r.Root),
		Timestamp:       r.Timestamp,
		CommitHash:      hash,
		CommitTimestamp: committed,
		Score:           repo.Score,
		Mean:            repo.Mean,
		Weighted:        repo.Weighted,
		Min:             repo.Min,
		Max:             repo.Max,
		HighRisk:        repo.HighRisk,
		MediumRisk:      repo.MediumRisk,
		Analyzed:        repo.Analyzed,
		Skipped:         repo.Skipped,
		Errored:         repo.Errored,
	}
	for _, f := range r.Files {
		if !f.Scored() {
			continue
		}
		scan.Files = append(scan.Files, history.FileRecord{
			Path:  f.RelPath,
			Score: f.Score.Score,
			Label: f.Score.Label,
		})
	}
	return scan
}

// SaveReport persists r. History must be enabled in configuration.
func (a *App) SaveReport(ctx context.Context, r *Report) error {
	if a.History == nil {
		return errors.New(errors.CodeConfiguration, "history is disabled; set [db] enabled = true")
	}
	if err := a.History.SaveScan(ctx, ToScan(r)); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "save scan history")
	}
	return nil
}

// Trend loads stored scans for root and folds them into a trend report.
func (a *App) Trend(ctx context.Context, root string, since time.Time, window time.Duration) (history.TrendReport, error) {
	if a.History == nil {
		return history.TrendReport{}, errors.New(errors.CodeConfiguration, "history is disabled; set [db] enabled = true")
	}
	key := ProjectKey(root)
	scans, err := a.History.LoadScans(ctx, key, since)
	if err != nil {
		return history.TrendReport{}, errors.Wrap(err, errors.CodeInternal, "load scan history")
	}
	if len(scans) == 0 {
		return history.TrendReport{}, errors.AddContext(
			errors.New(errors.CodeNotFound, "no scans recorded"), errors.CtxPath, root)
	}
	report, err := history.BuildTrendReport(scans, window)
	if err != nil {
		return history.TrendReport{}, err
	}
	report.ProjectKey = key
	return report, nil
}

// LatestFiles returns up to limit file rows of the newest scan in trend,
// highest score first.
func (a *App) LatestFiles(ctx context.Context, trend history.TrendReport, limit int) ([]history.FileRecord, error) {
	if a.History == nil {
		return nil, errors.New(errors.CodeConfiguration, "history is disabled; set [db] enabled = true")
	}
	if len(trend.Points) == 0 {
		return nil, nil
	}
	latest := trend.Points[len(trend.Points)-1]
	files, err := a.History.LoadFileScores(ctx, latest.ScanID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "load file scores")
	}
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}
	return files, nil
}
