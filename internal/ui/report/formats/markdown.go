package formats

import (
	"fmt"
	"io"
	"strings"
	"time"

	"vibecheck/internal/core/app"
	"vibecheck/internal/engine/scoring"
	"vibecheck/internal/shared/version"
)

// WriteMarkdown writes a summary table, the visible files and, with
// Details, the findings of the worst files.
func WriteMarkdown(w io.Writer, r *app.Report, opts Options) error {
	total, scored, skipped, errored := r.Counts()
	repo := r.Repository

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("title: Vibe Check Report\n")
	b.WriteString("scan_id: " + r.ID.String() + "\n")
	b.WriteString("generated_at: " + r.Timestamp.UTC().Format(time.RFC3339) + "\n")
	b.WriteString("version: " + version.Version + "\n")
	b.WriteString("---\n\n")

	b.WriteString("# Vibe Check Report\n\n")
	fmt.Fprintf(&b, "Scan path: `%s`\n\n", r.Root)

	b.WriteString("## Summary\n")
	b.WriteString("| Metric | Value |\n")
	b.WriteString("| --- | --- |\n")
	fmt.Fprintf(&b, "| Repo Vibe Score | %d (%s) |\n", repo.Score, repo.Label)
	fmt.Fprintf(&b, "| Average Score | %.1f |\n", repo.Mean)
	fmt.Fprintf(&b, "| Weighted Score | %d |\n", repo.Weighted)
	fmt.Fprintf(&b, "| Min / Max | %d / %d |\n", repo.Min, repo.Max)
	fmt.Fprintf(&b, "| High Risk Files (>=%d) | %d |\n", scoring.HighRiskFloor, repo.HighRisk)
	fmt.Fprintf(&b, "| Medium Risk Files | %d |\n", repo.MediumRisk)
	fmt.Fprintf(&b, "| Files | %d total, %d analyzed, %d skipped, %d errors |\n\n", total, scored, skipped, errored)

	visible := r.Visible()
	b.WriteString("## Files\n")
	if len(visible) == 0 {
		b.WriteString("No files to report.\n")
	} else {
		b.WriteString("| File | Score | Label | Parse | Top Finding |\n")
		b.WriteString("| --- | ---: | --- | --- | --- |\n")
		for _, f := range visible {
			if !f.Scored() {
				reason := f.SkipReason
				if f.Error != "" {
					reason = f.Error
				}
				fmt.Fprintf(&b, "| `%s` | - | %s | - | %s |\n", f.RelPath, status(f), mdCell(reason))
				continue
			}
			s := f.Score
			fmt.Fprintf(&b, "| `%s` | %d | %s | %s | %s |\n",
				f.RelPath, s.Score, s.Label, s.ParseStatus, mdCell(truncate(TopFinding(s), 80)))
		}
	}
	b.WriteString("\n")

	if opts.Details {
		shown := 0
		for _, f := range visible {
			if shown >= opts.top() {
				break
			}
			if !f.Scored() || f.Score.Score < scoring.MediumRiskFloor {
				continue
			}
			findings := Findings(f.Score)
			if len(findings) == 0 {
				continue
			}
			if shown == 0 {
				b.WriteString("## Findings\n")
			}
			shown++
			fmt.Fprintf(&b, "\n### `%s` (score %d)\n", f.RelPath, f.Score.Score)
			for _, line := range findings {
				b.WriteString("- " + mdCell(line) + "\n")
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func mdCell(s string) string {
	return strings.NewReplacer("|", "\\|", "\n", " ").Replace(s)
}
