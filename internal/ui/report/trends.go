package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"vibecheck/internal/data/history"
)

func RenderTrendTSV(report history.TrendReport) ([]byte, error) {
	var buf strings.Builder

	buf.WriteString("Timestamp\tScan\tCommit\tScore\tMax\tHighRisk\tFiles\tDeltaScore\tDeltaHighRisk\tDeltaFiles\tAvgScore\tWindowHours\n")
	for _, point := range report.Points {
		buf.WriteString(fmt.Sprintf(
			"%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%.2f\t%.2f\n",
			point.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			point.ScanID,
			point.CommitHash,
			point.Score,
			point.Max,
			point.HighRisk,
			point.Analyzed,
			point.DeltaScore,
			point.DeltaHighRisk,
			point.DeltaAnalyzed,
			point.AvgScore,
			point.WindowHours,
		))
	}

	return []byte(buf.String()), nil
}

func RenderTrendJSON(report history.TrendReport) ([]byte, error) {
	return json.MarshalIndent(report, "", "  ")
}

// RenderTrendText is the human-readable trend listing: one line per scan with
// the score change against the previous scan.
func RenderTrendText(report history.TrendReport) []byte {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Project: %s\n", report.ProjectKey)
	fmt.Fprintf(&buf, "Scans:   %d (moving average window %s)\n\n", report.ScanCount, report.Window)
	for i, point := range report.Points {
		delta := "  -"
		if i > 0 {
			delta = fmt.Sprintf("%+3d", point.DeltaScore)
		}
		commit := point.CommitHash
		if commit == "" {
			commit = "-"
		}
		fmt.Fprintf(&buf, "%s  %-12s  score %3d %s  avg %6.2f  high-risk %d  files %d\n",
			point.Timestamp.Format("2006-01-02 15:04"),
			commit,
			point.Score,
			delta,
			point.AvgScore,
			point.HighRisk,
			point.Analyzed,
		)
	}
	return []byte(buf.String())
}

// RenderTopFiles lists stored file scores under a heading, in the order given.
func RenderTopFiles(files []history.FileRecord) []byte {
	var buf strings.Builder
	fmt.Fprintf(&buf, "\nTop files in newest scan:\n")
	if len(files) == 0 {
		buf.WriteString("  (none)\n")
	}
	for _, f := range files {
		fmt.Fprintf(&buf, "  %3d  %-18s %s\n", f.Score, f.Label, f.Path)
	}
	return []byte(buf.String())
}
