package detectors

import (
	"math"
	"testing"

	"vibecheck/internal/engine/parser"
	"vibecheck/internal/engine/secrets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, path, src string) *parser.Tree {
	t.Helper()
	loader, err := parser.NewGrammarLoader()
	require.NoError(t, err)
	tree, err := parser.NewParser(loader).Parse(path, []byte(src))
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return tree
}

func kinds(r Result) map[string]int {
	out := make(map[string]int)
	for _, f := range r.Findings {
		out[f.Kind]++
	}
	return out
}

func TestAll_CanonicalOrder(t *testing.T) {
	all, err := All(DefaultConfig())
	require.NoError(t, err)

	want := []ID{Security, Repetitive, Naming, Imports, Comments, Placeholders, Ratio}
	require.Len(t, all, len(want))
	for i, d := range all {
		assert.Equal(t, want[i], d.ID())
	}
	assert.True(t, all[1].NeedsTree())
	assert.True(t, all[3].NeedsTree())
	assert.False(t, all[0].NeedsTree())
}

func TestAll_RejectsBadSecretPattern(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Secrets.Patterns = append(cfg.Secrets.Patterns, secrets.PatternConfig{Name: "bad", Regex: "(["})
	_, err := All(cfg)
	require.Error(t, err)
}

func TestScaled(t *testing.T) {
	assert.Equal(t, 0.0, scaled(math.NaN()))
	assert.Equal(t, 0.0, scaled(-0.5))
	assert.Equal(t, 100.0, scaled(3))
	assert.InDelta(t, 42.0, scaled(0.42), 1e-9)
}

func TestSkipped_CarriesReason(t *testing.T) {
	r := Skipped(Imports, "no tree")
	assert.Equal(t, Imports, r.Detector)
	assert.Zero(t, r.Score)
	require.Len(t, r.Findings, 1)
	assert.Equal(t, KindSkipped, r.Findings[0].Kind)
}

func TestTreeDetectorsSkipWithoutTree(t *testing.T) {
	all, err := All(DefaultConfig())
	require.NoError(t, err)
	for _, d := range all {
		if !d.NeedsTree() {
			continue
		}
		r := d.Detect("a.py", []byte("def f():\n    return 1\n"), nil)
		assert.Zero(t, r.Score, d.ID())
		assert.Equal(t, 1, kinds(r)[KindSkipped], d.ID())
	}
}
