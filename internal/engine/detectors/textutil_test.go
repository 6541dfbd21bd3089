package detectors

import (
	"testing"

	"vibecheck/internal/engine/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanComments_BlockAndTrailing(t *testing.T) {
	lang, ok := parser.LanguageByName("go")
	require.True(t, ok)

	lines := splitLines([]byte("/*\n * header\n */\nx := 1 // trailing\nurl := \"http://host\"\n"))
	got := scanComments(lines, lang)

	require.Len(t, got, 4)
	assert.Equal(t, 1, got[0].Line)
	assert.True(t, got[1].Full)
	assert.Equal(t, "header", got[1].Body)
	assert.Equal(t, commentLine{Line: 4, Body: "trailing"}, got[3])
	assert.Equal(t, 3, maxConsecutive(got))
	assert.Equal(t, 3, fullCommentCount(got))
}

func TestLanguageOf_FallsBackToPlainText(t *testing.T) {
	assert.Equal(t, "python", languageOf("x.py", nil).Name)
	assert.Equal(t, "text", languageOf("README", nil).Name)
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, splitLines(nil))
	assert.Equal(t, []string{"a", "b"}, splitLines([]byte("a\r\nb\n")))
	assert.Equal(t, 2, nonBlank([]string{"a", " ", "", "b"}))
}
