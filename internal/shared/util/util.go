package util

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// NormalizePatternPath cleans a path or glob for slash-separated matching.
// A trailing slash survives because it marks a directory pattern.
func NormalizePatternPath(s string) string {
	trimmed := strings.TrimSpace(strings.ReplaceAll(s, "\\", "/"))
	if trimmed == "" {
		return ""
	}
	dir := strings.HasSuffix(trimmed, "/")
	clean := path.Clean(trimmed)
	if clean == "." || clean == "/" {
		return ""
	}
	clean = strings.TrimPrefix(clean, "./")
	if dir {
		clean += "/"
	}
	return clean
}

// RelSlash returns target relative to root with forward slashes. Paths outside
// root, or on another volume, come back cleaned but absolute.
func RelSlash(root, target string) string {
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(filepath.Clean(target))
	}
	return filepath.ToSlash(rel)
}

// WriteFileWithDirs creates parent directories (0755) and writes the file with perm.
func WriteFileWithDirs(target string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(target)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(target, data, perm)
}
