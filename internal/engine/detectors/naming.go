package detectors

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"vibecheck/internal/engine/parser"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

var genericVariables = set(
	"data", "result", "results", "temp", "tmp", "output", "outputs", "response",
	"item", "items", "obj", "object", "val", "value", "values", "info", "stuff",
	"thing", "things", "x", "y", "z", "foo", "bar", "baz", "test", "flag", "ret",
	"res", "buf", "buffer", "payload", "content", "body", "node", "element",
	"entry", "record", "row", "col", "chunk", "part", "piece", "msg", "message",
)

var genericFunctions = set(
	"process_data", "handle_request", "do_something", "process", "handle", "run",
	"execute", "perform", "do_stuff", "do_thing", "do_work", "process_input",
	"process_output", "handle_data", "handle_response", "process_request",
	"process_response", "get_data", "set_data", "update_data", "fetch_data",
	"load_data", "save_data", "parse_data", "validate_data", "transform_data",
	"format_data", "calculate_result", "compute_result", "get_result",
	"send_request", "make_request", "helper", "helper_function", "utility",
	"util_func", "main_function", "start", "init", "setup", "teardown", "cleanup",
)

var loopLetters = set("i", "j", "k", "n", "e")

// Kinds below which a name is no longer a binding of its own.
var nameBoundaries = set(
	"attribute", "subscript", "call", "member_expression", "selector_expression",
	"field_expression", "index_expression", "call_expression",
)

var namingPatterns = []struct {
	re    *regexp.Regexp
	label string
}{
	{regexp.MustCompile(`(?i)\b(data|result|temp|output|response|item|obj|val|info|stuff)\s*=`), "generic variable assignment"},
	{regexp.MustCompile(`(?i)function\s+(processData|handleRequest|doSomething|getData|setData)\s*\(`), "generic function name"},
	{regexp.MustCompile(`(?i)def\s+(process_data|handle_request|do_something|get_data|set_data)\s*\(`), "generic Python function name"},
}

func set(items ...string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, item := range items {
		out[item] = true
	}
	return out
}

type NamingDetector struct{}

func NewNamingDetector() *NamingDetector { return &NamingDetector{} }

func (d *NamingDetector) ID() ID          { return Naming }
func (d *NamingDetector) NeedsTree() bool { return false }

func (d *NamingDetector) Detect(path string, content []byte, tree *parser.Tree) Result {
	if tree == nil {
		return namingFromText(content)
	}

	vars, funcs := collectNames(tree)
	varSet := uniq(vars)
	funcSet := uniq(funcs)
	total := len(varSet) + len(funcSet)
	if total == 0 {
		return Neutral(Naming)
	}

	findings := make([]Finding, 0)
	genericVars := make([]string, 0)
	singles := make([]string, 0)
	for _, name := range varSet {
		lower := strings.ToLower(name)
		if genericVariables[lower] {
			genericVars = append(genericVars, name)
		}
		if len([]rune(name)) == 1 && !loopLetters[name] {
			singles = append(singles, name)
		}
	}
	genericFuncs := make([]string, 0)
	for _, name := range funcs {
		if genericFunctions[snakeCase(name)] {
			genericFuncs = append(genericFuncs, name)
		}
	}

	if len(genericVars) > 0 {
		shown := genericVars
		if len(shown) > 10 {
			shown = shown[:10]
		}
		findings = append(findings, Finding{
			Kind:     "generic-variable",
			Message:  "generic variable names: " + strings.Join(shown, ", "),
			Severity: math.Min(1, 0.1*float64(len(genericVars))),
		})
	}
	if len(genericFuncs) > 0 {
		findings = append(findings, Finding{
			Kind:     "generic-function",
			Message:  "generic function names: " + strings.Join(genericFuncs, ", "),
			Severity: math.Min(1, 0.2*float64(len(genericFuncs))),
		})
	}
	if len(singles) > 3 {
		sorted := append([]string(nil), singles...)
		sort.Strings(sorted)
		findings = append(findings, Finding{
			Kind:     "single-letter-names",
			Message:  "many single-letter variable names: " + strings.Join(sorted, ", "),
			Severity: 0.3,
		})
	}

	ratio := float64(len(genericVars)+len(genericFuncs)) / float64(total)
	singlePenalty := math.Min(0.2, float64(len(singles))*0.03)
	return Result{Detector: Naming, Score: scaled(ratio*0.8 + singlePenalty), Findings: findings}
}

func namingFromText(content []byte) Result {
	findings := make([]Finding, 0)
	for _, p := range namingPatterns {
		matches := p.re.FindAllSubmatch(content, -1)
		if len(matches) == 0 {
			continue
		}
		names := make([]string, 0, len(matches))
		for _, m := range matches {
			names = append(names, string(m[1]))
		}
		if len(names) > 5 {
			names = names[:5]
		}
		findings = append(findings, Finding{
			Kind:     "generic-pattern",
			Message:  fmt.Sprintf("%s: %s", p.label, strings.Join(uniq(names), ", ")),
			Severity: 0.2,
		})
	}
	return Result{Detector: Naming, Score: scaled(float64(len(findings)) * 0.1), Findings: findings}
}

// collectNames returns bound variable names (assignments, parameters, loop
// targets) and declared function names in source order.
func collectNames(tree *parser.Tree) (vars, funcs []string) {
	lang := tree.Language
	parser.Walk(tree.Root(), func(n *sitter.Node) bool {
		kind := n.Kind()
		field, ok := lang.DefinitionFields[kind]
		if !ok {
			return true
		}
		if lang.FunctionKinds[kind] {
			if name := n.ChildByFieldName("name"); name != nil {
				funcs = append(funcs, tree.Text(name))
			}
			return true
		}
		if field == "" {
			for i := uint(0); i < n.NamedChildCount(); i++ {
				child := n.NamedChild(i)
				if child == nil || lang.CommentKinds[child.Kind()] {
					continue
				}
				if target := bindingOf(child); target != nil {
					vars = append(vars, boundIdentifiers(target, tree)...)
				}
			}
			return true
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			if n.FieldNameForChild(uint32(i)) != field {
				continue
			}
			if child := n.Child(i); child != nil {
				vars = append(vars, boundIdentifiers(child, tree)...)
			}
		}
		return true
	})
	return vars, funcs
}

// bindingOf picks the node that carries the bound name of a parameter-like
// child, leaving defaults and annotations behind.
func bindingOf(n *sitter.Node) *sitter.Node {
	for _, field := range []string{"name", "pattern", "left"} {
		if target := n.ChildByFieldName(field); target != nil {
			return target
		}
	}
	return n
}

func boundIdentifiers(n *sitter.Node, tree *parser.Tree) []string {
	var out []string
	parser.Walk(n, func(node *sitter.Node) bool {
		kind := node.Kind()
		if nameBoundaries[kind] || isTypeKind(kind) {
			return false
		}
		if kind == "identifier" || kind == "shorthand_property_identifier_pattern" {
			if name := tree.Text(node); name != "_" {
				out = append(out, name)
			}
			return false
		}
		return true
	})
	return out
}

func isTypeKind(kind string) bool {
	return kind == "type" || strings.HasPrefix(kind, "type_") || strings.HasSuffix(kind, "_type")
}

func uniq(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}

// snakeCase lowercases a camelCase or PascalCase name into snake_case.
func snakeCase(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && runes[i-1] != '_' && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
