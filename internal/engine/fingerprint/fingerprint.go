// Package fingerprint reduces syntax subtrees to a canonical, rename-insensitive
// token stream and hashes it, so structurally identical code can be grouped.
package fingerprint

import (
	"strconv"

	"vibecheck/internal/engine/parser"

	"github.com/cespare/xxhash/v2"
	sitter "github.com/tree-sitter/go-tree-sitter"
)

const (
	tokNumber = "NUM"
	tokString = "STR"
	tokBool   = "BOOL"
	tokClose  = "/"
)

// Fingerprint is the hash of a normalized unit plus the number of structural
// tokens it was computed from. Two fingerprints are equal when their hashes are.
type Fingerprint struct {
	Hash   uint64 `json:"hash"`
	Tokens int    `json:"tokens"`
}

func (f Fingerprint) Equal(other Fingerprint) bool {
	return f.Hash == other.Hash
}

func (f Fingerprint) String() string {
	return strconv.FormatUint(f.Hash, 16)
}

// normalizer rewrites one unit. Identifier placeholders are numbered by first
// occurrence inside the unit, so a fresh normalizer is needed per unit.
type normalizer struct {
	lang   *parser.Language
	source []byte
	ids    map[string]int
	stream []string
	tokens int
}

func newNormalizer(lang *parser.Language, source []byte) *normalizer {
	return &normalizer{lang: lang, source: source, ids: make(map[string]int)}
}

func (n *normalizer) emit(tok string) {
	n.stream = append(n.stream, tok)
	n.tokens++
}

func (n *normalizer) walk(node *sitter.Node) {
	kind := node.Kind()
	switch {
	case n.lang.CommentKinds[kind]:
		return
	case n.lang.IdentifierKinds[kind]:
		name := node.Utf8Text(n.source)
		id, ok := n.ids[name]
		if !ok {
			id = len(n.ids)
			n.ids[name] = id
		}
		n.emit("ID" + strconv.Itoa(id))
		return
	case n.lang.NumberKinds[kind]:
		n.emit(tokNumber)
		return
	case n.lang.StringKinds[kind]:
		n.emit(tokString)
		return
	case n.lang.BoolKinds[kind]:
		n.emit(tokBool)
		return
	}

	n.emit(kind)
	count := node.ChildCount()
	if count == 0 {
		return
	}
	for i := uint(0); i < count; i++ {
		if child := node.Child(i); child != nil {
			n.walk(child)
		}
	}
	// Close markers keep sibling/child shapes apart but are not counted as tokens.
	n.stream = append(n.stream, tokClose)
}

func (n *normalizer) sum() Fingerprint {
	h := xxhash.New()
	for _, tok := range n.stream {
		_, _ = h.WriteString(tok)
		_, _ = h.Write([]byte{0})
	}
	return Fingerprint{Hash: h.Sum64(), Tokens: n.tokens}
}

// Normalize returns the canonical token stream for a sequence of sibling nodes,
// treated as one unit.
func Normalize(nodes []*sitter.Node, lang *parser.Language, source []byte) []string {
	n := newNormalizer(lang, source)
	for _, node := range nodes {
		n.walk(node)
	}
	return n.stream
}

// Of fingerprints a sequence of sibling nodes as one unit.
func Of(nodes []*sitter.Node, lang *parser.Language, source []byte) Fingerprint {
	n := newNormalizer(lang, source)
	for _, node := range nodes {
		n.walk(node)
	}
	return n.sum()
}
