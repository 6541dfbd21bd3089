package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizePatternPath(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Empty", input: "", expected: ""},
		{name: "Dot", input: ".", expected: ""},
		{name: "Trim", input: "  ./build/out  ", expected: "build/out"},
		{name: "DirectoryPattern", input: "node_modules/", expected: "node_modules/"},
		{name: "Windows", input: `dist\assets\`, expected: "dist/assets/"},
		{name: "Glob", input: "*.min.js", expected: "*.min.js"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizePatternPath(tc.input); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestRelSlash(t *testing.T) {
	t.Parallel()

	root := filepath.Join("repo", "project")
	if got := RelSlash(root, filepath.Join(root, "pkg", "a.py")); got != "pkg/a.py" {
		t.Fatalf("expected pkg/a.py, got %q", got)
	}
	if got := RelSlash(root, root); got != "." {
		t.Fatalf("expected ., got %q", got)
	}
	outside := filepath.Join("repo", "other", "b.py")
	if got := RelSlash(root, outside); got != filepath.ToSlash(outside) {
		t.Fatalf("expected path outside root to stay whole, got %q", got)
	}
}

func TestWriteFileWithDirs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "reports", "nested", "vibe-report.json")

	if err := WriteFileWithDirs(target, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(got) != "{}" {
		t.Fatalf("expected %q, got %q", "{}", string(got))
	}
}
