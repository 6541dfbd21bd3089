package detectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceholders_PassAndTodoOnlyScoresFull(t *testing.T) {
	src := "# TODO: implement the importer\npass\n# TODO: wire up retries\n"
	d := NewPlaceholdersDetector()

	withTree := d.Detect("stub.py", []byte(src), parse(t, "stub.py", src))
	assert.Equal(t, 100.0, withTree.Score)
	assert.Equal(t, 1, kinds(withTree)["placeholder-only"])

	textOnly := d.Detect("stub.py", []byte(src), nil)
	assert.Equal(t, 100.0, textOnly.Score)
}

func TestPlaceholders_PythonBodies(t *testing.T) {
	src := `
def a():
    pass


def b():
    """Docs."""


def c():
    raise NotImplementedError("later")


def d(x):
    return x * 2
`
	r := NewPlaceholdersDetector().Detect("bodies.py", []byte(src), parse(t, "bodies.py", src))

	k := kinds(r)
	assert.Equal(t, 1, k["empty-body"])
	assert.Equal(t, 1, k["docstring-only"])
	assert.Equal(t, 1, k["stub"])
	assert.InDelta(t, 25.0, r.Score, 1e-9)
}

func TestPlaceholders_GoBodies(t *testing.T) {
	src := `package main

func noop() {}

func later() {
	panic("not implemented")
}

func double(x int) int {
	return x * 2
}
`
	r := NewPlaceholdersDetector().Detect("main.go", []byte(src), parse(t, "main.go", src))

	k := kinds(r)
	assert.Equal(t, 1, k["empty-body"])
	assert.Equal(t, 1, k["stub"])
	assert.InDelta(t, 17.0, r.Score, 1e-9)
}

func TestPlaceholders_MarkerComments(t *testing.T) {
	src := `function load() {
  // FIXME: handle errors
  return fetch(url); // your code here
}
`
	r := NewPlaceholdersDetector().Detect("load.js", []byte(src), nil)

	require.Equal(t, 2, kinds(r)["placeholder-comment"])
	assert.InDelta(t, 12.0, r.Score, 1e-9)
}

func TestPlaceholders_CleanCode(t *testing.T) {
	src := "def total(xs):\n    return sum(xs)\n"
	r := NewPlaceholdersDetector().Detect("ok.py", []byte(src), parse(t, "ok.py", src))
	assert.Zero(t, r.Score)
	assert.Empty(t, r.Findings)
}
