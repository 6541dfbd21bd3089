package parser

import (
	"errors"
	"testing"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	loader, err := NewGrammarLoader()
	if err != nil {
		t.Fatalf("new grammar loader: %v", err)
	}
	return NewParser(loader)
}

func TestParser_ParsesSupportedLanguages(t *testing.T) {
	p := newTestParser(t)

	cases := map[string]string{
		"app.py":    "def main():\n    return 1\n",
		"main.go":   "package main\n\nfunc main() {}\n",
		"index.js":  "function main() { return 1; }\n",
		"index.ts":  "function main(): number { return 1; }\n",
		"view.tsx":  "const App = () => <div />;\n",
		"Main.java": "class Main { void run() {} }\n",
		"lib.rs":    "fn main() {}\n",
	}
	for path, src := range cases {
		tree, err := p.Parse(path, []byte(src))
		if err != nil {
			t.Fatalf("parse %s: %v", path, err)
		}
		if tree.Root() == nil {
			t.Fatalf("expected root node for %s", path)
		}
		tree.Close()
	}
}

func TestParser_ReportsSyntaxErrorLine(t *testing.T) {
	p := newTestParser(t)

	_, err := p.Parse("broken.py", []byte("x = 1\ny = 2\ndef broken(:\n    pass\n"))
	if err == nil {
		t.Fatal("expected parse error")
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if perr.Line != 3 {
		t.Fatalf("expected error on line 3, got %d (%s)", perr.Line, perr.Message)
	}
	if perr.Path != "broken.py" {
		t.Fatalf("expected path to be recorded, got %q", perr.Path)
	}
}

func TestParser_TextOnlyLanguage(t *testing.T) {
	p := newTestParser(t)

	_, err := p.Parse("main.c", []byte("int main(void) { return 0; }\n"))
	if !errors.Is(err, ErrNoGrammar) {
		t.Fatalf("expected ErrNoGrammar, got %v", err)
	}
	if !p.IsSupportedPath("main.c") {
		t.Fatal("expected .c to be a supported path")
	}
	if p.IsSupportedPath("styles.css") {
		t.Fatal("expected .css to be unsupported")
	}
}

func TestLanguage_CommentHelpers(t *testing.T) {
	py, _ := LanguageByName("python")
	if !py.IsComment("# increment counter") {
		t.Fatal("expected python comment")
	}
	if got := py.CommentBody("#   increment counter"); got != "increment counter" {
		t.Fatalf("unexpected comment body %q", got)
	}

	goLang, _ := LanguageByName("go")
	if goLang.IsComment("*p = 1") {
		t.Fatal("pointer dereference must not be treated as a comment")
	}
	if !goLang.IsComment("* continuation line") {
		t.Fatal("expected block comment continuation")
	}
	if got := goLang.CommentBody("/* loop over items */"); got != "loop over items" {
		t.Fatalf("unexpected block comment body %q", got)
	}
}
