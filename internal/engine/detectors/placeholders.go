package detectors

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"vibecheck/internal/engine/parser"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

var placeholderMarkers = []commentRule{
	rule(`todo\b`, "TODO"),
	rule(`fixme\b`, "FIXME"),
	rule(`hack[:\s]`, "HACK"),
	rule(`xxx\b`, "XXX"),
	rule(`noqa`, "NOQA suppression"),
	rule(`type:\s*ignore`, "type: ignore suppression"),
	rule(`pragma:?\s*no\s*cover`, "coverage suppression"),
	rule(`placeholder`, "placeholder"),
	rule(`stub`, "stub"),
	rule(`not\s+implemented`, "not implemented"),
	rule(`fill\s+(this\s+)?in`, "fill-in"),
	rule(`implement\s+(this|me|later)`, "implement later"),
	rule(`your\s+code\s+here`, "your code here"),
	rule(`add\s+your\s+`, "add your X"),
	rule(`coming\s+soon`, "coming soon"),
	rule(`to\s+be\s+implemented`, "to be implemented"),
	rule(`tbd\b`, "TBD"),
}

var stubBody = regexp.MustCompile(`(?i)todo!\s*\(|unimplemented!\s*\(|not\s+implemented|unsupportedoperationexception`)

// PlaceholdersDetector flags unfinished code: marker comments, bodies that
// do nothing, and stubs that only raise.
type PlaceholdersDetector struct{}

func NewPlaceholdersDetector() *PlaceholdersDetector { return &PlaceholdersDetector{} }

func (d *PlaceholdersDetector) ID() ID          { return Placeholders }
func (d *PlaceholdersDetector) NeedsTree() bool { return false }

func (d *PlaceholdersDetector) Detect(path string, content []byte, tree *parser.Tree) Result {
	lang := languageOf(path, tree)
	lines := splitLines(content)
	comments := scanComments(lines, lang)
	findings := make([]Finding, 0)

	hits := 0
	for _, c := range comments {
		for _, r := range placeholderMarkers {
			if r.re.MatchString(c.Body) {
				hits++
				findings = append(findings, Finding{
					Kind:     "placeholder-comment",
					Message:  fmt.Sprintf("%s: %s", r.label, truncate(c.Body, 80)),
					Lines:    lineAt(c.Line),
					Severity: 0.4,
				})
				break
			}
		}
	}

	var bodies bodyReport
	if tree != nil {
		bodies = inspectBodies(tree)
		findings = append(findings, bodies.findings...)
	}

	if hits > 0 && onlyPlaceholders(lines, comments) {
		findings = append(findings, Finding{
			Kind:     "placeholder-only",
			Message:  "file holds nothing but placeholders",
			Severity: 1,
		})
		return Result{Detector: Placeholders, Score: 100, Findings: findings}
	}

	penalty := math.Min(0.5, float64(hits)*0.06) +
		math.Min(0.3, float64(bodies.docOnly)*0.08) +
		math.Min(0.3, float64(bodies.empty)*0.1) +
		math.Min(0.2, float64(bodies.stubs)*0.07)
	return Result{Detector: Placeholders, Score: scaled(penalty), Findings: findings}
}

// onlyPlaceholders reports whether every non-blank line is a comment, pass or
// an ellipsis.
func onlyPlaceholders(lines []string, comments []commentLine) bool {
	commented := make(map[int]bool, len(comments))
	for _, c := range comments {
		if c.Full {
			commented[c.Line] = true
		}
	}
	seen := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		seen = true
		if commented[i+1] || trimmed == "pass" || trimmed == "..." {
			continue
		}
		return false
	}
	return seen
}

type bodyReport struct {
	docOnly  int
	empty    int
	stubs    int
	findings []Finding
}

func inspectBodies(tree *parser.Tree) bodyReport {
	lang := tree.Language
	var report bodyReport
	parser.Walk(tree.Root(), func(n *sitter.Node) bool {
		if !lang.FunctionKinds[n.Kind()] {
			return true
		}
		nameNode := n.ChildByFieldName("name")
		body := n.ChildByFieldName("body")
		if nameNode == nil || body == nil {
			return true
		}
		name := tree.Text(nameNode)
		line := lineAt(int(n.StartPosition().Row) + 1)
		stmts := parser.Statements(body, lang)
		if len(stmts) == 1 && stmts[0].Kind() == "statement_list" {
			stmts = parser.Statements(stmts[0], lang)
		}

		if lang.DocstringBodies {
			switch classifyPythonBody(stmts, tree) {
			case bodyDocOnly:
				report.docOnly++
				report.findings = append(report.findings, Finding{
					Kind: "docstring-only", Message: fmt.Sprintf("%s has a docstring and no body", name), Lines: line, Severity: 0.5,
				})
			case bodyEmpty:
				report.empty++
				report.findings = append(report.findings, Finding{
					Kind: "empty-body", Message: fmt.Sprintf("%s body is only pass or ...", name), Lines: line, Severity: 0.6,
				})
			}
			if raisesNotImplemented(stmts, tree) {
				report.stubs++
				report.findings = append(report.findings, Finding{
					Kind: "stub", Message: fmt.Sprintf("%s raises NotImplementedError", name), Lines: line, Severity: 0.5,
				})
			}
			return true
		}

		if !lang.ContainerKinds[body.Kind()] {
			return true
		}
		switch {
		case len(stmts) == 0:
			report.empty++
			report.findings = append(report.findings, Finding{
				Kind: "empty-body", Message: fmt.Sprintf("%s has an empty body", name), Lines: line, Severity: 0.6,
			})
		case len(stmts) <= 2 && stubBody.MatchString(tree.Text(body)):
			report.stubs++
			report.findings = append(report.findings, Finding{
				Kind: "stub", Message: fmt.Sprintf("%s is an unimplemented stub", name), Lines: line, Severity: 0.5,
			})
		}
		return true
	})
	return report
}

type bodyShape int

const (
	bodyReal bodyShape = iota
	bodyDocOnly
	bodyEmpty
)

// classifyPythonBody sorts a body made only of pass, ... and a docstring into
// docstring-only or empty. A docstring followed by pass counts as neither.
func classifyPythonBody(stmts []*sitter.Node, tree *parser.Tree) bodyShape {
	if len(stmts) == 0 {
		return bodyEmpty
	}
	hasDoc := parser.IsDocstring(stmts[0], tree.Language)
	for _, s := range stmts {
		switch {
		case s.Kind() == "pass_statement":
		case s.Kind() == "expression_statement" && s.NamedChildCount() == 1 && s.NamedChild(0).Kind() == "ellipsis":
		case parser.IsDocstring(s, tree.Language):
		default:
			return bodyReal
		}
	}
	if hasDoc && len(stmts) == 1 {
		return bodyDocOnly
	}
	if !hasDoc {
		return bodyEmpty
	}
	return bodyReal
}

func raisesNotImplemented(stmts []*sitter.Node, tree *parser.Tree) bool {
	for _, s := range stmts {
		if s.Kind() != "raise_statement" || s.NamedChildCount() == 0 {
			continue
		}
		exc := s.NamedChild(0)
		if exc.Kind() == "call" {
			exc = exc.ChildByFieldName("function")
		}
		if exc != nil && exc.Kind() == "identifier" && tree.Text(exc) == "NotImplementedError" {
			return true
		}
	}
	return false
}
