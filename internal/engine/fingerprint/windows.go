package fingerprint

import (
	"sort"
	"strings"

	"vibecheck/internal/engine/parser"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ByteRange is a half-open span of source bytes.
type ByteRange struct {
	Start uint
	End   uint
}

func (r ByteRange) contains(offset uint) bool {
	return offset >= r.Start && offset < r.End
}

// Window is a fixed run of consecutive statements inside one container.
type Window struct {
	Container   int              `json:"-"`
	Index       int              `json:"-"`
	Lines       parser.LineRange `json:"lines"`
	Fingerprint Fingerprint      `json:"fingerprint"`
}

// RepeatedBlock is a statement window that recurs at non-overlapping positions.
type RepeatedBlock struct {
	Hash        uint64   `json:"hash"`
	Occurrences []Window `json:"occurrences"`
}

type WindowReport struct {
	Windows   int
	Repeated  []RepeatedBlock
	Truncated bool
}

// Count is the number of extra copies across all repeated blocks.
func (r WindowReport) Count() int {
	n := 0
	for _, block := range r.Repeated {
		n += len(block.Occurrences) - 1
	}
	return n
}

// Windows slides a window of Options.WindowSize statements through every
// statement container in tree. Windows starting inside an excluded range are
// skipped. Work stops once Options.WindowBudget tokens have been serialized.
func (f *Fingerprinter) Windows(tree *parser.Tree, exclude []ByteRange) WindowReport {
	var report WindowReport
	root := tree.Root()
	if root == nil {
		return report
	}
	lang := tree.Language
	size := f.opts.WindowSize

	var containers [][]*sitter.Node
	var collect func(n *sitter.Node)
	collect = func(n *sitter.Node) {
		if lang.ContainerKinds[n.Kind()] {
			stmts := windowStatements(n, lang)
			if len(stmts) >= size {
				containers = append(containers, stmts)
			}
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			if child := n.Child(i); child != nil {
				collect(child)
			}
		}
	}
	collect(root)

	spent := 0
	all := make([]Window, 0)
scan:
	for ci, stmts := range containers {
		for i := 0; i+size <= len(stmts); i++ {
			start := stmts[i].StartByte()
			if excluded(start, exclude) {
				continue
			}
			fp := Of(stmts[i:i+size], lang, tree.Source)
			spent += fp.Tokens
			if spent > f.opts.WindowBudget {
				report.Truncated = true
				break scan
			}
			report.Windows++
			if fp.Tokens < f.opts.WindowMinTokens {
				continue
			}
			all = append(all, Window{
				Container: ci,
				Index:     i,
				Lines: parser.LineRange{
					Start: int(stmts[i].StartPosition().Row) + 1,
					End:   int(stmts[i+size-1].EndPosition().Row) + 1,
				},
				Fingerprint: fp,
			})
		}
	}

	report.Repeated = repeatedBlocks(all, size)
	return report
}

func repeatedBlocks(windows []Window, size int) []RepeatedBlock {
	groups := make(map[uint64][]Window)
	order := make([]uint64, 0)
	for _, w := range windows {
		if _, seen := groups[w.Fingerprint.Hash]; !seen {
			order = append(order, w.Fingerprint.Hash)
		}
		groups[w.Fingerprint.Hash] = append(groups[w.Fingerprint.Hash], w)
	}

	out := make([]RepeatedBlock, 0)
	for _, hash := range order {
		members := groups[hash]
		if len(members) < 2 {
			continue
		}
		sort.SliceStable(members, func(i, j int) bool {
			if members[i].Container != members[j].Container {
				return members[i].Container < members[j].Container
			}
			return members[i].Index < members[j].Index
		})
		accepted := make([]Window, 0, len(members))
		for _, w := range members {
			if n := len(accepted); n > 0 {
				last := accepted[n-1]
				if last.Container == w.Container && w.Index < last.Index+size {
					continue
				}
			}
			accepted = append(accepted, w)
		}
		if len(accepted) >= 2 {
			out = append(out, RepeatedBlock{Hash: hash, Occurrences: accepted})
		}
	}
	return out
}

// windowStatements drops import and package statements, whose runs repeat in
// every file without being copy-paste.
func windowStatements(container *sitter.Node, lang *parser.Language) []*sitter.Node {
	stmts := parser.Statements(container, lang)
	out := stmts[:0]
	for _, s := range stmts {
		kind := s.Kind()
		if lang.ImportKinds[kind] || strings.Contains(kind, "import") || kind == "package_clause" || kind == "use_declaration" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func excluded(offset uint, ranges []ByteRange) bool {
	for _, r := range ranges {
		if r.contains(offset) {
			return true
		}
	}
	return false
}
