package detectors

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"vibecheck/internal/engine/parser"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Docstring phrasing that carries no information about the code.
var boilerplateDocs = []*regexp.Regexp{
	regexp.MustCompile(`this\s+(function|method|class|module)\s+(handles|processes|manages|provides|performs|does)`),
	regexp.MustCompile(`(handles|processes|manages)\s+the\s+\w+`),
	regexp.MustCompile(`a\s+(simple|basic|utility)\s+(function|class|method)\s+(to|that|for)\s+`),
	regexp.MustCompile(`this\s+is\s+(a|the)\s+(main|primary|core)\s+(function|class)`),
	regexp.MustCompile(`(initializes|sets\s+up)\s+the\s+(class|object|instance)`),
	regexp.MustCompile(`returns?\s+the\s+(result|output|value|data)`),
	regexp.MustCompile(`(takes|accepts)\s+(a|an|the)\s+\w+\s+as\s+(input|parameter|argument)`),
}

// RatioDetector scores how much of a file is documentation rather than code.
// Python docstrings are measured from the tree; other files use comment lines.
type RatioDetector struct{}

func NewRatioDetector() *RatioDetector { return &RatioDetector{} }

func (d *RatioDetector) ID() ID          { return Ratio }
func (d *RatioDetector) NeedsTree() bool { return false }

func (d *RatioDetector) Detect(path string, content []byte, tree *parser.Tree) Result {
	lang := languageOf(path, tree)
	lines := splitLines(content)
	total := nonBlank(lines)
	if total == 0 {
		return Neutral(Ratio)
	}
	commentCount := fullCommentCount(scanComments(lines, lang))

	if tree == nil || !lang.DocstringBodies {
		return commentRatio(commentCount, total)
	}

	docs := collectDocstrings(tree)
	docLines := 0
	boilerplate := 0
	longDocs := 0
	for _, doc := range docs {
		docLines += doc.lines
		lower := strings.ToLower(doc.text)
		for _, re := range boilerplateDocs {
			if re.MatchString(lower) {
				boilerplate++
				break
			}
		}
		if doc.function && doc.lines > 2*doc.bodyStmts && doc.lines > 3 {
			longDocs++
		}
	}

	findings := make([]Finding, 0)
	ratio := float64(docLines+commentCount) / float64(total)
	switch {
	case ratio > 0.6:
		findings = append(findings, Finding{
			Kind:     "documentation-ratio",
			Message:  fmt.Sprintf("extremely high documentation ratio: %.1f%% (%d doc/comment lines of %d)", ratio*100, docLines+commentCount, total),
			Severity: 0.8,
		})
	case ratio > 0.4:
		findings = append(findings, Finding{
			Kind:     "documentation-ratio",
			Message:  fmt.Sprintf("high documentation ratio: %.1f%% (%d doc/comment lines of %d)", ratio*100, docLines+commentCount, total),
			Severity: 0.5,
		})
	}
	if boilerplate > 0 {
		findings = append(findings, Finding{
			Kind:     "boilerplate-docstring",
			Message:  fmt.Sprintf("%d of %d docstrings are filler text", boilerplate, len(docs)),
			Severity: 0.4,
		})
	}
	if longDocs > 0 {
		findings = append(findings, Finding{
			Kind:     "docstring-longer-than-body",
			Message:  fmt.Sprintf("%d functions document more than they do", longDocs),
			Severity: 0.3,
		})
	}

	penalty := math.Max(0, (ratio-0.3)*1.2) +
		math.Min(0.3, float64(boilerplate)*0.08) +
		math.Min(0.2, float64(longDocs)*0.07)
	return Result{Detector: Ratio, Score: scaled(penalty), Findings: findings}
}

func commentRatio(comments, total int) Result {
	ratio := float64(comments) / float64(total)
	findings := make([]Finding, 0)
	if ratio > 0.5 {
		findings = append(findings, Finding{
			Kind:     "comment-ratio",
			Message:  fmt.Sprintf("high comment ratio: %.1f%%", ratio*100),
			Severity: 0.5,
		})
	}
	return Result{Detector: Ratio, Score: scaled((ratio - 0.3) * 1.5), Findings: findings}
}

type docstring struct {
	text     string
	lines    int
	function bool
	// bodyStmts excludes the docstring itself.
	bodyStmts int
}

func collectDocstrings(tree *parser.Tree) []docstring {
	lang := tree.Language
	var out []docstring
	take := func(container *sitter.Node, function bool) {
		stmts := parser.Statements(container, lang)
		if len(stmts) == 0 || !parser.IsDocstring(stmts[0], lang) {
			return
		}
		text := docstringValue(tree.Text(stmts[0].NamedChild(0)))
		out = append(out, docstring{
			text:      text,
			lines:     nonBlank(strings.Split(text, "\n")),
			function:  function,
			bodyStmts: len(stmts) - 1,
		})
	}
	root := tree.Root()
	take(root, false)
	parser.Walk(root, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "function_definition", "class_definition":
			if body := n.ChildByFieldName("body"); body != nil {
				take(body, n.Kind() == "function_definition")
			}
		}
		return true
	})
	return out
}

// docstringValue strips the prefix and quotes from a Python string literal.
func docstringValue(literal string) string {
	s := strings.TrimLeft(literal, "rRbBuUfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			return s[len(q) : len(s)-len(q)]
		}
	}
	return s
}
