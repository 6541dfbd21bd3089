package fingerprint

import (
	"sort"

	"vibecheck/internal/engine/parser"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type Options struct {
	// MinTokens excludes units too small to be meaningful, such as empty
	// constructors or one-line accessors.
	MinTokens int
	// WindowSize is the number of consecutive statements per sliding window.
	WindowSize int
	// WindowMinTokens excludes windows of trivial statements (import runs,
	// constant tables).
	WindowMinTokens int
	// WindowBudget caps the total tokens serialized for windows in one file.
	WindowBudget int
}

func DefaultOptions() Options {
	return Options{
		MinTokens:       5,
		WindowSize:      5,
		WindowMinTokens: 40,
		WindowBudget:    20000,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.MinTokens <= 0 {
		o.MinTokens = def.MinTokens
	}
	if o.WindowSize <= 0 {
		o.WindowSize = def.WindowSize
	}
	if o.WindowMinTokens <= 0 {
		o.WindowMinTokens = def.WindowMinTokens
	}
	if o.WindowBudget <= 0 {
		o.WindowBudget = def.WindowBudget
	}
	return o
}

// Unit is one function-like construct and the fingerprint of its body.
type Unit struct {
	Kind        string           `json:"kind"`
	Name        string           `json:"name"`
	Lines       parser.LineRange `json:"lines"`
	StartByte   uint             `json:"-"`
	EndByte     uint             `json:"-"`
	Fingerprint Fingerprint      `json:"fingerprint"`
}

// Cluster is a group of two or more units sharing a fingerprint.
type Cluster struct {
	Hash  uint64 `json:"hash"`
	Units []Unit `json:"units"`
}

// Fingerprinter is stateless; every map it builds lives inside one call.
type Fingerprinter struct {
	opts Options
}

func New(opts Options) *Fingerprinter {
	return &Fingerprinter{opts: opts.withDefaults()}
}

func (f *Fingerprinter) Options() Options {
	return f.opts
}

// Units fingerprints every function-like unit in tree. It returns the units large
// enough to compare and the total number of function-like units seen.
func (f *Fingerprinter) Units(tree *parser.Tree) ([]Unit, int) {
	root := tree.Root()
	if root == nil {
		return nil, 0
	}
	lang := tree.Language

	var (
		eligible []Unit
		total    int
	)
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		if lang.FunctionKinds[n.Kind()] {
			if body := n.ChildByFieldName("body"); body != nil {
				total++
				fp := Of(bodyNodes(body, lang), lang, tree.Source)
				if fp.Tokens >= f.opts.MinTokens {
					name := "<anonymous>"
					if nameNode := n.ChildByFieldName("name"); nameNode != nil {
						name = tree.Text(nameNode)
					}
					eligible = append(eligible, Unit{
						Kind:        n.Kind(),
						Name:        name,
						Lines:       parser.Lines(n),
						StartByte:   n.StartByte(),
						EndByte:     n.EndByte(),
						Fingerprint: fp,
					})
				}
			}
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			if child := n.Child(i); child != nil {
				visit(child)
			}
		}
	}
	visit(root)
	return eligible, total
}

// bodyNodes returns the statements of a function body minus its documentation
// node. Expression bodies (arrow functions, closures) are returned as-is.
func bodyNodes(body *sitter.Node, lang *parser.Language) []*sitter.Node {
	if !lang.ContainerKinds[body.Kind()] {
		return []*sitter.Node{body}
	}
	stmts := parser.Statements(body, lang)
	if lang.DocstringBodies && len(stmts) > 0 && parser.IsDocstring(stmts[0], lang) {
		stmts = stmts[1:]
	}
	return stmts
}

// Clusters groups units by fingerprint and keeps the groups with two or more
// members, ordered by the first member's position.
func Clusters(units []Unit) []Cluster {
	groups := make(map[uint64][]Unit)
	order := make([]uint64, 0)
	for _, u := range units {
		if _, seen := groups[u.Fingerprint.Hash]; !seen {
			order = append(order, u.Fingerprint.Hash)
		}
		groups[u.Fingerprint.Hash] = append(groups[u.Fingerprint.Hash], u)
	}

	clusters := make([]Cluster, 0)
	for _, hash := range order {
		members := groups[hash]
		if len(members) < 2 {
			continue
		}
		sort.SliceStable(members, func(i, j int) bool { return members[i].StartByte < members[j].StartByte })
		clusters = append(clusters, Cluster{Hash: hash, Units: members})
	}
	return clusters
}
