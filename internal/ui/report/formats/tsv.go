package formats

import (
	"fmt"
	"io"
	"strings"

	"vibecheck/internal/core/app"
	"vibecheck/internal/engine/detectors"
)

var tsvDetectors = []detectors.ID{
	detectors.Security, detectors.Repetitive, detectors.Naming, detectors.Imports,
	detectors.Comments, detectors.Placeholders, detectors.Ratio,
}

// WriteTSV writes one row per visible file with a column per detector.
func WriteTSV(w io.Writer, r *app.Report) error {
	var b strings.Builder
	b.WriteString("Path\tScore\tLabel\tParse")
	for _, id := range tsvDetectors {
		b.WriteString("\t" + string(id))
	}
	b.WriteString("\tStatus\tReason\n")

	for _, f := range r.Visible() {
		b.WriteString(tsvField(f.RelPath))
		if f.Score == nil {
			b.WriteString("\t\t\t")
			for range tsvDetectors {
				b.WriteString("\t")
			}
			reason := f.SkipReason
			if f.Error != "" {
				reason = f.Error
			}
			b.WriteString("\t" + status(f) + "\t" + tsvField(reason) + "\n")
			continue
		}
		s := f.Score
		fmt.Fprintf(&b, "\t%d\t%s\t%s", s.Score, s.Label, s.ParseStatus)
		for _, id := range tsvDetectors {
			if d, ok := s.Detector(id); ok {
				fmt.Fprintf(&b, "\t%.1f", d.Score)
			} else {
				b.WriteString("\t")
			}
		}
		b.WriteString("\tok\t" + tsvField(s.ParseError) + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func tsvField(s string) string {
	return strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(s)
}
