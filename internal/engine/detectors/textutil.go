package detectors

import (
	"strings"

	"vibecheck/internal/engine/parser"
)

// plainText is used for paths with no known extension. It recognises the two
// most common comment markers.
var plainText = &parser.Language{
	Name:         "text",
	LineComments: []string{"#", "//"},
	BlockComment: [2]string{"/*", "*/"},
}

func languageOf(path string, tree *parser.Tree) *parser.Language {
	if tree != nil && tree.Language != nil {
		return tree.Language
	}
	if lang, ok := parser.LanguageForPath(path); ok {
		return lang
	}
	return plainText
}

func splitLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	text := strings.TrimSuffix(string(content), "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

func nonBlank(lines []string) int {
	n := 0
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}

type commentLine struct {
	Line int
	Body string
	// Full is false for a comment trailing code on the same line.
	Full bool
}

// scanComments finds every comment line, including lines inside block comments
// and comments trailing code.
func scanComments(lines []string, lang *parser.Language) []commentLine {
	var (
		out     []commentLine
		inBlock bool
	)
	open, closing := lang.BlockComment[0], lang.BlockComment[1]
	for i, raw := range lines {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		if inBlock {
			if strings.Contains(trimmed, closing) {
				inBlock = false
			}
			out = append(out, commentLine{Line: i + 1, Body: lang.CommentBody(trimmed), Full: true})
			continue
		}
		if open != "" && strings.HasPrefix(trimmed, open) {
			if !strings.Contains(trimmed[len(open):], closing) {
				inBlock = true
			}
			out = append(out, commentLine{Line: i + 1, Body: lang.CommentBody(trimmed), Full: true})
			continue
		}
		if lang.IsComment(trimmed) {
			out = append(out, commentLine{Line: i + 1, Body: lang.CommentBody(trimmed), Full: true})
			continue
		}
		if body, ok := trailingComment(raw, lang.LineComments); ok {
			out = append(out, commentLine{Line: i + 1, Body: body})
		}
	}
	return out
}

// trailingComment returns the comment that follows code on line, skipping
// markers that sit inside string literals.
func trailingComment(line string, markers []string) (string, bool) {
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		if quote != 0 {
			if c == '\\' && quote != '`' {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
			continue
		}
		for _, marker := range markers {
			if strings.HasPrefix(line[i:], marker) {
				if strings.TrimSpace(line[:i]) == "" {
					return "", false
				}
				return strings.TrimSpace(line[i+len(marker):]), true
			}
		}
	}
	return "", false
}

// maxConsecutive is the longest run of full-line comments.
func maxConsecutive(comments []commentLine) int {
	best, run, last := 0, 0, -1
	for _, c := range comments {
		if !c.Full {
			continue
		}
		if c.Line == last+1 {
			run++
		} else {
			run = 1
		}
		last = c.Line
		if run > best {
			best = run
		}
	}
	return best
}

func fullCommentCount(comments []commentLine) int {
	n := 0
	for _, c := range comments {
		if c.Full {
			n++
		}
	}
	return n
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
