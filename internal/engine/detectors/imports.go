package detectors

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"vibecheck/internal/engine/parser"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Name shapes that models invent for modules that do not exist.
var hallucinationMarkers = []string{
	"advanced_", "smart_", "auto_", "magic_", "super_", "ultra_", "enhanced_",
	"improved_", "better_", "fast_utils", "easy_", "simple_", "quick_",
	"helper_module", "utility_module", "tools_module", "common_module",
	"shared_utils", "global_config", "app_config", "base_config",
	"project_utils", "project_helpers",
}

var suspiciousPaths = []string{
	"utils.helpers", "helpers.utils", "common.utils", "app.utils", "core.utils",
	"lib.utils", "tools.helpers", "utilities.common",
}

// localSearchDepth is how many parent directories are searched for a local
// Python module besides the file's own directory.
const localSearchDepth = 3

type importRef struct {
	path string
	root string
	name string
	line int
}

// ImportsDetector flags imports of modules that look invented and, for
// Python, modules that resolve nowhere.
type ImportsDetector struct{}

func NewImportsDetector() *ImportsDetector { return &ImportsDetector{} }

func (d *ImportsDetector) ID() ID          { return Imports }
func (d *ImportsDetector) NeedsTree() bool { return true }

func (d *ImportsDetector) Detect(path string, content []byte, tree *parser.Tree) Result {
	if tree == nil {
		return Skipped(Imports, "no syntax tree; imports not inspected")
	}
	refs := collectImports(tree)
	if len(refs) == 0 {
		return Neutral(Imports)
	}

	byRoot := make(map[string][]importRef)
	roots := make([]string, 0)
	for _, ref := range refs {
		if _, seen := byRoot[ref.root]; !seen {
			roots = append(roots, ref.root)
		}
		byRoot[ref.root] = append(byRoot[ref.root], ref)
	}

	lang := tree.Language.Name
	var suspicious, unresolved []importRef
	for _, root := range roots {
		group := byRoot[root]
		first := group[0]
		if isKnownModule(lang, first) {
			continue
		}
		flagged := false
		for _, ref := range group {
			if looksHallucinated(ref.name) || hasSuspiciousPath(ref.path) {
				suspicious = append(suspicious, ref)
				flagged = true
				break
			}
		}
		if flagged || lang != "python" {
			continue
		}
		if !resolvesLocally(path, root) {
			unresolved = append(unresolved, first)
		}
	}

	findings := make([]Finding, 0, len(suspicious)+len(unresolved))
	for _, ref := range suspicious {
		findings = append(findings, Finding{
			Kind:     "suspicious-import",
			Message:  fmt.Sprintf("module name %q looks invented", ref.path),
			Lines:    lineAt(ref.line),
			Severity: 0.8,
		})
	}
	for _, ref := range unresolved {
		findings = append(findings, Finding{
			Kind:     "unresolved-import",
			Message:  fmt.Sprintf("%q is not stdlib, a known package, or a local module", ref.root),
			Lines:    lineAt(ref.line),
			Severity: 0.3,
		})
	}

	total := float64(len(roots))
	fraction := float64(len(suspicious))/total*0.8 + float64(len(unresolved))/total*0.3
	return Result{Detector: Imports, Score: scaled(math.Min(1, fraction)), Findings: findings}
}

func collectImports(tree *parser.Tree) []importRef {
	lang := tree.Language
	var refs []importRef
	add := func(n *sitter.Node, raw string) {
		if ref, ok := newImportRef(lang.Name, raw); ok {
			ref.line = int(n.StartPosition().Row) + 1
			refs = append(refs, ref)
		}
	}
	parser.Walk(tree.Root(), func(n *sitter.Node) bool {
		switch n.Kind() {
		case "import_statement":
			if lang.Name == "python" {
				for i := uint(0); i < n.ChildCount(); i++ {
					if n.FieldNameForChild(uint32(i)) != "name" {
						continue
					}
					child := n.Child(i)
					if child != nil && child.Kind() == "aliased_import" {
						child = child.ChildByFieldName("name")
					}
					if child != nil {
						add(n, tree.Text(child))
					}
				}
				return false
			}
			if source := n.ChildByFieldName("source"); source != nil {
				add(n, unquote(tree.Text(source)))
			}
			return false
		case "import_from_statement":
			module := n.ChildByFieldName("module_name")
			if module != nil && module.Kind() != "relative_import" {
				add(n, tree.Text(module))
			}
			return false
		case "import_spec":
			if p := n.ChildByFieldName("path"); p != nil {
				add(n, unquote(tree.Text(p)))
			}
			return false
		case "import_declaration":
			if lang.Name == "java" && n.NamedChildCount() > 0 {
				add(n, tree.Text(n.NamedChild(0)))
				return false
			}
		case "use_declaration":
			if arg := n.ChildByFieldName("argument"); arg != nil {
				add(n, tree.Text(arg))
			}
			return false
		}
		return true
	})
	return refs
}

// newImportRef splits a raw import string into the path, the root used for
// deduplication and the name checked against invented-module shapes.
func newImportRef(lang, raw string) (importRef, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return importRef{}, false
	}
	switch lang {
	case "python":
		root := strings.Split(raw, ".")[0]
		return importRef{path: raw, root: root, name: root}, true
	case "javascript", "typescript", "tsx":
		if strings.HasPrefix(raw, ".") || strings.HasPrefix(raw, "/") {
			return importRef{}, false
		}
		raw = strings.TrimPrefix(raw, "node:")
		parts := strings.Split(raw, "/")
		root := parts[0]
		if strings.HasPrefix(root, "@") && len(parts) > 1 {
			root += "/" + parts[1]
		}
		return importRef{path: raw, root: root, name: parts[len(parts)-1]}, true
	case "rust":
		raw = strings.TrimSuffix(raw, ";")
		parts := strings.Split(raw, "::")
		return importRef{path: strings.Join(parts, "."), root: parts[0], name: lastSegment(parts)}, true
	default:
		parts := strings.FieldsFunc(raw, func(r rune) bool { return r == '/' || r == '.' })
		if len(parts) == 0 {
			return importRef{}, false
		}
		return importRef{path: raw, root: raw, name: lastSegment(parts)}, true
	}
}

func lastSegment(parts []string) string {
	for i := len(parts) - 1; i >= 0; i-- {
		if p := strings.Trim(parts[i], "{}* "); p != "" {
			return p
		}
	}
	return ""
}

func isKnownModule(lang string, ref importRef) bool {
	switch lang {
	case "python":
		return pythonStdlib[ref.root] || knownPythonPackages[ref.root]
	case "javascript", "typescript", "tsx":
		return nodeBuiltins[ref.root]
	case "go":
		first := strings.Split(ref.path, "/")[0]
		return !strings.Contains(first, ".")
	case "java":
		return strings.HasPrefix(ref.path, "java.") || strings.HasPrefix(ref.path, "javax.")
	case "rust":
		switch ref.root {
		case "std", "core", "alloc", "crate", "self", "super":
			return true
		}
	}
	return false
}

func looksHallucinated(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range hallucinationMarkers {
		if strings.HasPrefix(lower, marker) || strings.HasSuffix(lower, strings.TrimSuffix(marker, "_")) {
			return true
		}
	}
	return false
}

func hasSuspiciousPath(path string) bool {
	dotted := strings.ToLower(strings.ReplaceAll(path, "/", "."))
	for _, p := range suspiciousPaths {
		if dotted == p || strings.HasPrefix(dotted, p+".") || strings.HasSuffix(dotted, "."+p) || strings.Contains(dotted, "."+p+".") {
			return true
		}
	}
	return false
}

// resolvesLocally looks for <module>.py or a <module>/ package next to the
// file or in one of its parent directories.
func resolvesLocally(path, module string) bool {
	dir := filepath.Dir(path)
	for i := 0; i <= localSearchDepth; i++ {
		if fileExists(filepath.Join(dir, module+".py")) || dirExists(filepath.Join(dir, module)) {
			return true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return false
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

func dirExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

func unquote(s string) string {
	return strings.Trim(s, "\"'`")
}
