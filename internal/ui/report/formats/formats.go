// Package formats renders a scan report as terminal text, JSON, SARIF,
// Markdown or TSV.
package formats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"vibecheck/internal/core/app"
)

type Format string

const (
	Terminal Format = "terminal"
	JSON     Format = "json"
	SARIF    Format = "sarif"
	Markdown Format = "markdown"
	TSV      Format = "tsv"
)

func Names() []string {
	return []string{string(Terminal), string(JSON), string(SARIF), string(Markdown), string(TSV)}
}

func Parse(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case Terminal, JSON, SARIF, Markdown, TSV:
		return f, nil
	case "md":
		return Markdown, nil
	case "":
		return Terminal, nil
	default:
		return "", fmt.Errorf("unknown format %q (want one of %s)", name, strings.Join(Names(), ", "))
	}
}

// Options tune the human-oriented formats.
type Options struct {
	Color   bool
	Details bool
	// Top bounds the per-file detail sections. Zero means 10.
	Top int
}

func (o Options) top() int {
	if o.Top <= 0 {
		return 10
	}
	return o.Top
}

// Write renders r to w in format f.
func Write(w io.Writer, f Format, r *app.Report, opts Options) error {
	switch f {
	case JSON:
		return WriteJSON(w, r)
	case SARIF:
		return WriteSARIF(w, r)
	case Markdown:
		return WriteMarkdown(w, r, opts)
	case TSV:
		return WriteTSV(w, r)
	case Terminal, "":
		return WriteTerminal(w, r, opts)
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}

// status names the state of an unscored row.
func status(f app.FileResult) string {
	switch {
	case f.Error != "":
		return "error"
	case f.Skipped:
		return "skipped"
	default:
		return ""
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
