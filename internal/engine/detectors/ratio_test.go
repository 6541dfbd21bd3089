package detectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio_PythonDocstrings(t *testing.T) {
	src := `"""Module docs."""


def add(a, b):
    """
    This function handles the addition.

    It takes a number as input and returns the result.
    More words here.
    """
    return a + b
`
	r := NewRatioDetector().Detect("add.py", []byte(src), parse(t, "add.py", src))

	k := kinds(r)
	assert.Equal(t, 1, k["documentation-ratio"])
	assert.Equal(t, 1, k["boilerplate-docstring"])
	// 4 doc lines of 8 non-blank: (0.5-0.3)×1.2 plus one boilerplate docstring
	assert.InDelta(t, 32.0, r.Score, 1e-9)
}

func TestRatio_DocstringLongerThanBody(t *testing.T) {
	src := `def ping():
    """Send a ping.

    Opens a socket.
    Writes a byte.
    Waits for the echo.
    """
    return True
`
	r := NewRatioDetector().Detect("ping.py", []byte(src), parse(t, "ping.py", src))
	assert.Equal(t, 1, kinds(r)["docstring-longer-than-body"])
}

func TestRatio_CommentRatioWithoutDocstrings(t *testing.T) {
	src := "// one\n// two\n// three\nlet a = 1;\nlet b = 2;\n"
	r := NewRatioDetector().Detect("a.js", []byte(src), nil)

	assert.InDelta(t, 45.0, r.Score, 1e-9)
	assert.Equal(t, 1, kinds(r)["comment-ratio"])
}

func TestRatio_EmptyFile(t *testing.T) {
	r := NewRatioDetector().Detect("empty.py", nil, nil)
	assert.Zero(t, r.Score)
}

func TestDocstringValue(t *testing.T) {
	assert.Equal(t, "Docs.", docstringValue(`"""Docs."""`))
	assert.Equal(t, "raw", docstringValue(`r'''raw'''`))
	assert.Equal(t, "x", docstringValue(`'x'`))
}
