package detectors

import (
	"fmt"
	"regexp"
	"strings"

	"vibecheck/internal/engine/parser"
	"vibecheck/internal/engine/secrets"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type sqlPattern struct {
	re    *regexp.Regexp
	label string
}

var sqlPatterns = []sqlPattern{
	{regexp.MustCompile(`(?i)execute\s*\(\s*["'].*%s`), "SQL built with % formatting"},
	{regexp.MustCompile(`(?i)execute\s*\(\s*f["'].*\{`), "SQL built with an f-string"},
	{regexp.MustCompile(`(?i)execute\s*\(\s*["'].*\+\s*\w`), "SQL built by concatenation"},
	{regexp.MustCompile(`(?i)cursor\.execute\s*\(\s*"SELECT.*"\s*\+`), "SELECT built by concatenation"},
	{regexp.MustCompile(`(?i)cursor\.execute\s*\(\s*f"`), "cursor.execute with an f-string"},
	{regexp.MustCompile(`(?i)\.query\s*\(\s*f["']`), "query() with an f-string"},
	{regexp.MustCompile(`(?i)raw\s*\(\s*f["']`), "raw SQL with an f-string"},
}

var subprocessFuncs = map[string]bool{
	"call": true, "run": true, "Popen": true, "check_call": true, "check_output": true,
}

var unsafeLoaders = map[string]bool{"pickle": true, "dill": true, "jsonpickle": true}

// SecurityDetector flags credentials left in source, SQL assembled from
// strings and calls that execute or deserialize untrusted input.
type SecurityDetector struct {
	secrets *secrets.Detector
}

func NewSecurityDetector(cfg secrets.Config) (*SecurityDetector, error) {
	sd, err := secrets.NewDetector(cfg)
	if err != nil {
		return nil, err
	}
	return &SecurityDetector{secrets: sd}, nil
}

func (d *SecurityDetector) ID() ID          { return Security }
func (d *SecurityDetector) NeedsTree() bool { return false }

func (d *SecurityDetector) Detect(path string, content []byte, tree *parser.Tree) Result {
	findings := make([]Finding, 0)
	issues := 0

	// One credential per line; the heaviest rule on a line wins.
	perLine := make(map[int]secrets.Secret)
	order := make([]int, 0)
	for _, s := range d.secrets.Detect(content) {
		prev, seen := perLine[s.Line]
		if !seen {
			order = append(order, s.Line)
		}
		if !seen || severityWeight(s.Severity) > severityWeight(prev.Severity) {
			perLine[s.Line] = s
		}
	}
	for _, line := range order {
		s := perLine[line]
		w := severityWeight(s.Severity)
		issues += w
		findings = append(findings, Finding{
			Kind:     "hardcoded-secret",
			Message:  fmt.Sprintf("%s: %s", s.Kind, secrets.MaskValue(s.Value)),
			Lines:    lineAt(s.Line),
			Severity: float64(w) / 3,
		})
	}

	lines := splitLines(content)
	for i, line := range lines {
		for _, p := range sqlPatterns {
			if p.re.MatchString(line) {
				issues += 2
				findings = append(findings, Finding{
					Kind:     "sql-injection",
					Message:  p.label,
					Lines:    lineAt(i + 1),
					Severity: 0.7,
				})
			}
		}
	}

	if tree != nil {
		for _, f := range dangerousCalls(tree) {
			findings = append(findings, f.Finding)
			issues += f.weight
		}
	}

	return Result{
		Detector: Security,
		Score:    scaled(float64(issues) * 0.12),
		Findings: findings,
	}
}

func severityWeight(severity string) int {
	switch strings.ToLower(severity) {
	case "critical", "high":
		return 3
	case "medium":
		return 2
	default:
		return 1
	}
}

type weightedFinding struct {
	Finding
	weight int
}

// dangerousCalls walks the tree for eval/exec, shell=True subprocess calls,
// pickle-style loads and assert-based validation.
func dangerousCalls(tree *parser.Tree) []weightedFinding {
	lang := tree.Language
	var (
		out     []weightedFinding
		asserts int
	)
	parser.Walk(tree.Root(), func(n *sitter.Node) bool {
		kind := n.Kind()
		if kind == "assert_statement" {
			asserts++
			return true
		}
		if !lang.CallKinds[kind] {
			return true
		}
		fn := n.ChildByFieldName("function")
		if fn == nil {
			return true
		}
		line := lineAt(int(n.StartPosition().Row) + 1)
		switch fn.Kind() {
		case "identifier":
			name := tree.Text(fn)
			if name == "eval" || (name == "exec" && lang.Name == "python") {
				out = append(out, weightedFinding{Finding{
					Kind: "dangerous-call", Message: fmt.Sprintf("direct use of %s()", name), Lines: line, Severity: 0.7,
				}, 2})
			}
			if lang.Name == "python" && (name == "call" || name == "Popen") && hasShellTrue(n, tree) {
				out = append(out, shellFinding(line))
			}
		case "attribute":
			object, attr := fn.ChildByFieldName("object"), fn.ChildByFieldName("attribute")
			if object == nil || attr == nil || object.Kind() != "identifier" {
				return true
			}
			obj, method := tree.Text(object), tree.Text(attr)
			if obj == "subprocess" && subprocessFuncs[method] && hasShellTrue(n, tree) {
				out = append(out, shellFinding(line))
			}
			if method == "loads" && unsafeLoaders[obj] {
				out = append(out, weightedFinding{Finding{
					Kind: "unsafe-deserialization", Message: obj + ".loads() on untrusted data", Lines: line, Severity: 0.5,
				}, 1})
			}
		}
		return true
	})
	if asserts > 5 {
		out = append(out, weightedFinding{Finding{
			Kind:     "assert-validation",
			Message:  fmt.Sprintf("assert used %d times for validation; asserts vanish under python -O", asserts),
			Severity: 0.3,
		}, 1})
	}
	return out
}

func shellFinding(line *parser.LineRange) weightedFinding {
	return weightedFinding{Finding{
		Kind: "shell-injection", Message: "subprocess call with shell=True", Lines: line, Severity: 0.7,
	}, 2}
}

func hasShellTrue(call *sitter.Node, tree *parser.Tree) bool {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return false
	}
	for i := uint(0); i < args.NamedChildCount(); i++ {
		arg := args.NamedChild(i)
		if arg == nil || arg.Kind() != "keyword_argument" {
			continue
		}
		name, value := arg.ChildByFieldName("name"), arg.ChildByFieldName("value")
		if name != nil && value != nil && tree.Text(name) == "shell" && value.Kind() == "true" {
			return true
		}
	}
	return false
}
