package parser

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Tree is a parsed file. It is owned by the task that parsed it and must be
// closed by that task once scoring finishes.
type Tree struct {
	Path     string
	Language *Language
	Source   []byte
	tree     *sitter.Tree
}

func (t *Tree) Root() *sitter.Node {
	if t == nil || t.tree == nil {
		return nil
	}
	return t.tree.RootNode()
}

func (t *Tree) Text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Utf8Text(t.Source)
}

func (t *Tree) Close() {
	if t != nil && t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

// ParseError reports the first syntax error found in a file. Line is 1-based.
type ParseError struct {
	Path    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
}

type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Lines returns the 1-based line span of n.
func Lines(n *sitter.Node) LineRange {
	return LineRange{
		Start: int(n.StartPosition().Row) + 1,
		End:   int(n.EndPosition().Row) + 1,
	}
}

// Statements returns the named, non-comment children of a container.
func Statements(container *sitter.Node, lang *Language) []*sitter.Node {
	count := container.NamedChildCount()
	out := make([]*sitter.Node, 0, count)
	for i := uint(0); i < count; i++ {
		child := container.NamedChild(i)
		if child == nil || lang.CommentKinds[child.Kind()] {
			continue
		}
		out = append(out, child)
	}
	return out
}

// IsDocstring reports whether stmt is a bare string expression, the way Python
// documents modules, classes and functions.
func IsDocstring(stmt *sitter.Node, lang *Language) bool {
	if stmt.Kind() != "expression_statement" || stmt.NamedChildCount() != 1 {
		return false
	}
	inner := stmt.NamedChild(0)
	return inner != nil && lang.StringKinds[inner.Kind()]
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the children of the node just visited.
func Walk(n *sitter.Node, fn func(*sitter.Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		Walk(n.Child(i), fn)
	}
}
