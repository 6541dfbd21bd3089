package history

import (
	"bytes"
	"os/exec"
	"strings"
	"time"
)

// ResolveGitMetadata returns HEAD's short hash and commit time, or zero values
// when root is not inside a git checkout.
func ResolveGitMetadata(root string) (string, time.Time) {
	hash := runGit(root, "rev-parse", "--short=12", "HEAD")
	raw := runGit(root, "show", "-s", "--format=%cI", "HEAD")
	if hash == "" || raw == "" {
		return "", time.Time{}
	}
	committed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return hash, time.Time{}
	}
	return hash, committed.UTC()
}

func runGit(root string, args ...string) string {
	cmd := exec.Command("git", append([]string{"-C", root}, args...)...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return ""
	}
	return strings.TrimSpace(stdout.String())
}
