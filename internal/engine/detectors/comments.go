package detectors

import (
	"fmt"
	"math"
	"regexp"

	"vibecheck/internal/engine/parser"
)

type commentRule struct {
	re    *regexp.Regexp
	label string
}

func rule(expr, label string) commentRule {
	return commentRule{re: regexp.MustCompile(`(?i)^` + expr), label: label}
}

// Comments that say what the next line plainly does.
var obviousComments = []commentRule{
	rule(`increment\s+\w+`, "increment counter"),
	rule(`decrement\s+\w+`, "decrement counter"),
	rule(`return\s+the\s+result`, "return the result"),
	rule(`return\s+\w+`, "trivial return"),
	rule(`print\s+\w+`, "trivial print"),
	rule(`set\s+\w+\s+to\s+`, "trivial assignment"),
	rule(`create\s+(a|an)\s+\w+\s+(list|dict|set|object)`, "trivial creation"),
	rule(`initialize\s+\w+`, "trivial initialization"),
	rule(`define\s+(a|the)\s+function`, "trivial function definition"),
	rule(`define\s+(a|the)\s+class`, "trivial class definition"),
	rule(`import\s+\w+`, "trivial import"),
	rule(`call\s+the\s+function`, "trivial function call"),
	rule(`loop\s+(through|over|across)\s+`, "trivial loop"),
	rule(`iterate\s+(through|over)\s+`, "trivial iteration"),
	rule(`check\s+if\s+\w+\s+is\s+(true|false|none|not none|empty)`, "trivial condition"),
	rule(`add\s+\w+\s+to\s+(the\s+)?(list|dict|set)`, "trivial collection add"),
	rule(`append\s+\w+\s+to\s+`, "trivial append"),
	rule(`open\s+the\s+file`, "trivial file open"),
	rule(`close\s+the\s+file`, "trivial file close"),
	rule(`read\s+the\s+file`, "trivial file read"),
	rule(`write\s+to\s+the\s+file`, "trivial file write"),
	rule(`convert\s+\w+\s+to\s+\w+`, "trivial conversion"),
	rule(`calculate\s+the\s+\w+`, "trivial calculation"),
	rule(`get\s+the\s+\w+`, "trivial getter"),
	rule(`set\s+the\s+\w+`, "trivial setter"),
}

// Tutorial-style step narration.
var narrativeComments = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^step\s+\d+`),
	regexp.MustCompile(`(?i)^first[,\s]`),
	regexp.MustCompile(`(?i)^second[,\s]`),
	regexp.MustCompile(`(?i)^third[,\s]`),
	regexp.MustCompile(`(?i)^finally[,\s]`),
	regexp.MustCompile(`(?i)^next[,\s]`),
	regexp.MustCompile(`(?i)^now\s+(we|let's|we'll)\s+`),
	regexp.MustCompile(`(?i)^then\s+(we|let's)\s+`),
}

// CommentsDetector scores over-commenting: comments restating code, narrated
// steps, comment-heavy files and long comment blocks. It reads text only.
type CommentsDetector struct{}

func NewCommentsDetector() *CommentsDetector { return &CommentsDetector{} }

func (d *CommentsDetector) ID() ID          { return Comments }
func (d *CommentsDetector) NeedsTree() bool { return false }

func (d *CommentsDetector) Detect(path string, content []byte, tree *parser.Tree) Result {
	lines := splitLines(content)
	comments := scanComments(lines, languageOf(path, tree))
	total := nonBlank(lines)
	findings := make([]Finding, 0)

	obvious := 0
	for _, c := range comments {
		for _, r := range obviousComments {
			if r.re.MatchString(c.Body) {
				obvious++
				findings = append(findings, Finding{
					Kind:     "obvious-comment",
					Message:  fmt.Sprintf("%s comment: %s", r.label, truncate(c.Body, 60)),
					Lines:    lineAt(c.Line),
					Severity: 0.3,
				})
				break
			}
		}
	}

	narrative := 0
	firstNarrative := 0
	for _, c := range comments {
		for _, re := range narrativeComments {
			if re.MatchString(c.Body) {
				if narrative == 0 {
					firstNarrative = c.Line
				}
				narrative++
				break
			}
		}
	}
	if narrative >= 3 {
		findings = append(findings, Finding{
			Kind:     "narrative-comments",
			Message:  fmt.Sprintf("%d step-by-step narration comments", narrative),
			Lines:    lineAt(firstNarrative),
			Severity: 0.5,
		})
	}

	density := 0.0
	if total > 10 {
		ratio := float64(len(comments)) / float64(total)
		if ratio > 0.4 {
			density = math.Min(0.3, (ratio-0.4)*1.5)
			findings = append(findings, Finding{
				Kind:     "comment-density",
				Message:  fmt.Sprintf("%.1f%% of non-empty lines are comments (%d of %d)", ratio*100, len(comments), total),
				Severity: math.Min(1, ratio),
			})
		}
	}

	longest := maxConsecutive(comments)
	if longest > 8 {
		findings = append(findings, Finding{
			Kind:     "comment-block",
			Message:  fmt.Sprintf("%d consecutive comment lines", longest),
			Severity: 0.2,
		})
	}

	penalty := math.Min(0.5, float64(obvious)*0.05) +
		math.Min(0.2, float64(narrative)*0.04) +
		density +
		math.Min(0.1, float64(longest)*0.005)
	return Result{Detector: Comments, Score: scaled(penalty), Findings: findings}
}
