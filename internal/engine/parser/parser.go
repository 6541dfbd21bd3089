package parser

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"vibecheck/internal/shared/observability"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ErrNoGrammar marks a recognised source file that can only be scored as text.
var ErrNoGrammar = errors.New("no grammar available")

// Parser turns file content into a Tree, or reports why it cannot.
type Parser struct {
	loader *GrammarLoader
	pools  map[string]*ParserPool
}

func NewParser(loader *GrammarLoader) *Parser {
	p := &Parser{
		loader: loader,
		pools:  make(map[string]*ParserPool),
	}
	for _, name := range loader.Languages() {
		grammar, _ := loader.Grammar(name)
		p.pools[name] = NewParserPool(grammar)
	}
	return p
}

func (p *Parser) IsSupportedPath(path string) bool {
	_, ok := LanguageForPath(path)
	return ok
}

// Parse returns a Tree for content. It returns ErrNoGrammar (wrapped) for text-only
// languages and a *ParseError when the source does not parse cleanly.
func (p *Parser) Parse(path string, content []byte) (*Tree, error) {
	lang, ok := LanguageForPath(path)
	if !ok {
		return nil, fmt.Errorf("%w: unrecognised extension for %s", ErrNoGrammar, path)
	}
	pool, ok := p.pools[lang.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoGrammar, lang.Name)
	}

	start := time.Now()
	sp := pool.Get()
	tree := sp.Parse(content, nil)
	pool.Put(sp)
	observability.ParsingDuration.WithLabelValues(lang.Name).Observe(time.Since(start).Seconds())

	if tree == nil {
		return nil, &ParseError{Path: path, Line: 1, Message: "parser produced no tree"}
	}
	root := tree.RootNode()
	if root.HasError() {
		perr := firstSyntaxError(root, content)
		perr.Path = path
		tree.Close()
		return nil, perr
	}

	return &Tree{Path: path, Language: lang, Source: content, tree: tree}, nil
}

func firstSyntaxError(n *sitter.Node, content []byte) *ParseError {
	if n.IsMissing() {
		return &ParseError{
			Line:    int(n.StartPosition().Row) + 1,
			Message: fmt.Sprintf("missing %s", n.Kind()),
		}
	}
	if n.IsError() {
		snippet := strings.TrimSpace(n.Utf8Text(content))
		if idx := strings.IndexByte(snippet, '\n'); idx >= 0 {
			snippet = snippet[:idx]
		}
		if len(snippet) > 40 {
			snippet = snippet[:40]
		}
		return &ParseError{
			Line:    int(n.StartPosition().Row) + 1,
			Message: fmt.Sprintf("syntax error near %q", snippet),
		}
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil || !(child.HasError() || child.IsMissing()) {
			continue
		}
		return firstSyntaxError(child, content)
	}
	return &ParseError{Line: int(n.StartPosition().Row) + 1, Message: "syntax error"}
}
