package app

import (
	"bufio"
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"vibecheck/internal/core/errors"
	"vibecheck/internal/engine/parser"
	"vibecheck/internal/shared/util"

	"github.com/gobwas/glob"
)

// DefaultIgnorePatterns are applied to every scan before user patterns.
var DefaultIgnorePatterns = []string{
	".git/", ".venv/", "venv/", "env/", "__pycache__/",
	"*.pyc", "*.pyo", "*.pyd", "*.egg-info/",
	"dist/", "build/", ".tox/", ".mypy_cache/", ".pytest_cache/",
	"*.min.js", "*.min.css", "node_modules/", ".DS_Store", "*.lock", "*.log",
}

type ignorePattern struct {
	source   string
	g        glob.Glob
	dirOnly  bool
	anchored bool
}

// Matcher decides which paths under root take part in a scan. Patterns use
// gitignore shape: a trailing slash limits a pattern to directories and a
// slash anywhere else anchors it to root.
type Matcher struct {
	root     string
	patterns []ignorePattern
}

// NewMatcher compiles the default patterns, then patterns, then the root
// .gitignore when useGitignore is set.
func NewMatcher(root string, patterns []string, useGitignore bool) (*Matcher, error) {
	m := &Matcher{root: filepath.Clean(root)}
	all := append(append([]string(nil), DefaultIgnorePatterns...), patterns...)
	if useGitignore {
		all = append(all, readGitignore(filepath.Join(m.root, ".gitignore"))...)
	}
	for _, raw := range all {
		p, ok, err := compileIgnore(raw)
		if err != nil {
			return nil, errors.AddContext(
				errors.Wrap(err, errors.CodeConfiguration, "invalid ignore pattern"), "pattern", raw)
		}
		if ok {
			m.patterns = append(m.patterns, p)
		}
	}
	return m, nil
}

func compileIgnore(raw string) (ignorePattern, bool, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return ignorePattern{}, false, nil
	}
	if strings.HasPrefix(trimmed, "!") {
		slog.Debug("negated ignore pattern not supported", "pattern", trimmed)
		return ignorePattern{}, false, nil
	}
	anchored := strings.HasPrefix(trimmed, "/")
	norm := util.NormalizePatternPath(strings.TrimPrefix(trimmed, "/"))
	if norm == "" {
		return ignorePattern{}, false, nil
	}
	dirOnly := strings.HasSuffix(norm, "/")
	norm = strings.TrimSuffix(norm, "/")
	if strings.Contains(norm, "/") {
		anchored = true
	}
	g, err := glob.Compile(norm, '/')
	if err != nil {
		return ignorePattern{}, false, err
	}
	return ignorePattern{source: raw, g: g, dirOnly: dirOnly, anchored: anchored}, true, nil
}

func readGitignore(p string) []string {
	f, err := os.Open(p)
	if err != nil {
		return nil
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	return out
}

// Match reports whether the slash-separated rel path, or any directory above
// it, is ignored.
func (m *Matcher) Match(rel string, isDir bool) bool {
	rel = strings.Trim(filepath.ToSlash(rel), "/")
	if rel == "" || rel == "." {
		return false
	}
	if m.matchOne(rel, isDir) {
		return true
	}
	for dir := path.Dir(rel); dir != "." && dir != "/"; dir = path.Dir(dir) {
		if m.matchOne(dir, true) {
			return true
		}
	}
	return false
}

func (m *Matcher) matchOne(rel string, isDir bool) bool {
	base := path.Base(rel)
	for _, p := range m.patterns {
		if p.dirOnly && !isDir {
			continue
		}
		if p.anchored {
			if p.g.Match(rel) {
				return true
			}
			continue
		}
		if p.g.Match(base) {
			return true
		}
	}
	return false
}

// SkipDir and SkipFile take absolute or root-relative paths and let the
// watcher share the scan's ignore rules.
func (m *Matcher) SkipDir(p string) bool {
	return m.Match(m.rel(p), true)
}

func (m *Matcher) SkipFile(p string) bool {
	if _, ok := parser.LanguageForPath(p); !ok {
		return true
	}
	return m.Match(m.rel(p), false)
}

func (m *Matcher) rel(p string) string {
	if !filepath.IsAbs(p) {
		return filepath.ToSlash(p)
	}
	return util.RelSlash(m.root, p)
}

type candidate struct {
	path string
	rel  string
}

// collectFiles walks root and returns supported, non-ignored files in path
// order. Walk errors on individual entries come back as errored results.
func collectFiles(ctx context.Context, root string, m *Matcher) ([]candidate, []FileResult, error) {
	var files []candidate
	var failed []FileResult
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		rel := util.RelSlash(root, p)
		if err != nil {
			if p == root {
				return err
			}
			slog.Warn("failed to walk path", "path", p, "error", err)
			failed = append(failed, FileResult{Path: p, RelPath: rel, Error: err.Error()})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if p == root {
			return nil
		}
		if d.IsDir() {
			if m.Match(rel+"/", true) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if _, ok := parser.LanguageForPath(p); !ok {
			return nil
		}
		if m.Match(rel, false) {
			return nil
		}
		files = append(files, candidate{path: p, rel: rel})
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].rel < files[j].rel })
	return files, failed, nil
}
