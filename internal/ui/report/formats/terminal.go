package formats

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"vibecheck/internal/core/app"
	"vibecheck/internal/engine/detectors"
	"vibecheck/internal/engine/scoring"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#22D3EE")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#22D3EE")).
			Padding(0, 1)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#64748B"))
	redStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171"))
	boldRed     = redStyle.Bold(true)
	yellowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FBBF24"))
	orangeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FB923C"))
	greenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	fileStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#22D3EE"))
)

const barWidth = 20

type painter struct {
	color bool
}

func (p painter) paint(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

func (p painter) score(score int, text string) string {
	return p.paint(ScoreStyle(score), text)
}

// ScoreStyle picks the colour for a score. It follows the label bands and
// separates the top band and the slight band for the terminal.
func ScoreStyle(score int) lipgloss.Style {
	switch {
	case score >= 80:
		return boldRed
	case score >= 60:
		return redStyle
	case score >= 40:
		return yellowStyle
	case score >= 20:
		return orangeStyle
	default:
		return greenStyle
	}
}

// ScoreBar draws a fixed-width ASCII bar for score.
func ScoreBar(score int) string {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	filled := score * barWidth / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled) + "]"
}

// TopFinding returns the first real finding message of a score.
func TopFinding(s *scoring.FileScore) string {
	if findings := Findings(s); len(findings) > 0 {
		return findings[0]
	}
	return ""
}

// Findings flattens detector evidence into "detector: message" lines.
func Findings(s *scoring.FileScore) []string {
	if s == nil {
		return nil
	}
	var out []string
	for _, d := range s.Detectors {
		for _, f := range d.Findings {
			if f.Kind == detectors.KindSkipped {
				continue
			}
			out = append(out, fmt.Sprintf("%s: %s", d.Detector, f.Message))
		}
	}
	return out
}

func WriteTerminal(w io.Writer, r *app.Report, opts Options) error {
	p := painter{color: opts.Color}
	_, scored, skipped, errored := r.Counts()

	var b strings.Builder
	b.WriteString("\n" + p.paint(headerStyle, "vibecheck  AI vibe code detector") + "\n")
	fmt.Fprintf(&b, "%s %s\n", p.paint(dimStyle, "Scan path:"), r.Root)
	fmt.Fprintf(&b, "%s %d   %s %d   %s %d\n\n",
		p.paint(dimStyle, "Files analyzed:"), scored,
		p.paint(dimStyle, "Skipped:"), skipped,
		p.paint(dimStyle, "Errors:"), errored)
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}

	if scored == 0 {
		_, err := io.WriteString(w, p.paint(yellowStyle, "No files were analyzed.")+"\n")
		return err
	}

	visible := make([]app.FileResult, 0, len(r.Files))
	for _, f := range r.Visible() {
		if f.Scored() {
			visible = append(visible, f)
		}
	}
	if err := writeFileTable(w, visible, p); err != nil {
		return err
	}
	if err := writeSummary(w, r.Repository, p); err != nil {
		return err
	}
	if opts.Details {
		if err := writeDetails(w, visible, opts.top(), p); err != nil {
			return err
		}
	}
	return writeErrors(w, r.Files, p)
}

func writeFileTable(w io.Writer, files []app.FileResult, p painter) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"File", "Score", "Bar", "Label", "Top Finding"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	data := make([][]string, 0, len(files))
	for _, f := range files {
		s := f.Score
		data = append(data, []string{
			f.RelPath,
			p.score(s.Score, strconv.Itoa(s.Score)),
			p.score(s.Score, ScoreBar(s.Score)),
			p.score(s.Score, s.Label),
			truncate(TopFinding(s), 60),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if len(files) == 0 {
		_, err := io.WriteString(w, p.paint(dimStyle, "No files at or above the threshold.")+"\n")
		return err
	}
	return nil
}

func writeSummary(w io.Writer, repo scoring.RepositoryScore, p painter) error {
	riskStyle := func(n int, hit lipgloss.Style) lipgloss.Style {
		if n > 0 {
			return hit
		}
		return greenStyle
	}
	rows := [][2]string{
		{"Repo Vibe Score", p.score(repo.Score, fmt.Sprintf("%d/100 %s", repo.Score, repo.Label))},
		{"Average Score", p.score(repo.Score, fmt.Sprintf("%.1f", repo.Mean))},
		{"Weighted Score", p.score(repo.Weighted, strconv.Itoa(repo.Weighted))},
		{"Highest Score", p.score(repo.Max, strconv.Itoa(repo.Max))},
		{"Lowest Score", p.paint(greenStyle, strconv.Itoa(repo.Min))},
		{fmt.Sprintf("High Risk Files (>=%d)", scoring.HighRiskFloor), p.paint(riskStyle(repo.HighRisk, redStyle), strconv.Itoa(repo.HighRisk))},
		{fmt.Sprintf("Medium Risk Files (%d-%d)", scoring.MediumRiskFloor, scoring.HighRiskFloor-1), p.paint(riskStyle(repo.MediumRisk, yellowStyle), strconv.Itoa(repo.MediumRisk))},
	}

	var b strings.Builder
	b.WriteString("\nRepository Summary\n")
	for _, row := range rows {
		fmt.Fprintf(&b, "  %-28s %s\n", p.paint(dimStyle, row[0]), row[1])
	}
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func writeDetails(w io.Writer, files []app.FileResult, top int, p painter) error {
	var b strings.Builder
	shown := 0
	for _, f := range files {
		if shown >= top {
			break
		}
		if f.Score.Score < scoring.MediumRiskFloor {
			continue
		}
		findings := Findings(f.Score)
		if len(findings) == 0 {
			continue
		}
		if shown == 0 {
			b.WriteString("Detailed findings for high-risk files:\n")
		}
		shown++
		fmt.Fprintf(&b, "\n%s (score: %d)\n", p.paint(fileStyle, f.RelPath), f.Score.Score)
		if len(findings) > 8 {
			findings = findings[:8]
		}
		for _, line := range findings {
			fmt.Fprintf(&b, "  %s %s\n", p.paint(dimStyle, "•"), line)
		}
	}
	if shown > 0 {
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeErrors(w io.Writer, files []app.FileResult, p painter) error {
	var errs []app.FileResult
	for _, f := range files {
		if f.Error != "" {
			errs = append(errs, f)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString(p.paint(redStyle, fmt.Sprintf("Errors analyzing %d file(s):", len(errs))) + "\n")
	for i, f := range errs {
		if i == 5 {
			break
		}
		fmt.Fprintf(&b, "  %s: %s\n", p.paint(dimStyle, f.RelPath), f.Error)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
