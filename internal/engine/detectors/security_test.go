package detectors

import (
	"strings"
	"testing"

	"vibecheck/internal/engine/secrets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSecurity(t *testing.T) *SecurityDetector {
	t.Helper()
	d, err := NewSecurityDetector(secrets.Config{})
	require.NoError(t, err)
	return d
}

func TestSecurity_PythonDangerousCalls(t *testing.T) {
	src := `import pickle
import subprocess

PASSWORD = "hunter2hunter2"


def run(cmd, blob):
    subprocess.run(cmd, shell=True)
    eval(cmd)
    return pickle.loads(blob)
`
	r := newSecurity(t).Detect("svc.py", []byte(src), parse(t, "svc.py", src))

	k := kinds(r)
	assert.Equal(t, 1, k["hardcoded-secret"])
	assert.Equal(t, 1, k["shell-injection"])
	assert.Equal(t, 1, k["dangerous-call"])
	assert.Equal(t, 1, k["unsafe-deserialization"])
	// 3 + 2 + 2 + 1 issues at 0.12 each
	assert.InDelta(t, 96.0, r.Score, 1e-9)

	for _, f := range r.Findings {
		assert.NotContains(t, f.Message, "hunter2hunter2")
	}
}

func TestSecurity_SQLStringBuilding(t *testing.T) {
	src := "cursor.execute(f\"SELECT * FROM users WHERE id = {uid}\")\n"
	r := newSecurity(t).Detect("db.py", []byte(src), nil)

	assert.Equal(t, 2, kinds(r)["sql-injection"])
	assert.InDelta(t, 48.0, r.Score, 1e-9)
}

func TestSecurity_ManyAsserts(t *testing.T) {
	var b strings.Builder
	b.WriteString("def check(v):\n")
	for i := 0; i < 6; i++ {
		b.WriteString("    assert v\n")
	}
	src := b.String()
	r := newSecurity(t).Detect("v.py", []byte(src), parse(t, "v.py", src))

	assert.Equal(t, 1, kinds(r)["assert-validation"])
	assert.InDelta(t, 12.0, r.Score, 1e-9)
}

func TestSecurity_SaturatesAtHundred(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 5; i++ {
		b.WriteString("const k = \"AKIA1234567890ABCDE" + string(rune('F'+i)) + "\"\n")
	}
	r := newSecurity(t).Detect("keys.js", []byte(b.String()), nil)
	assert.Equal(t, 100.0, r.Score)
}

func TestSecurity_CleanFile(t *testing.T) {
	src := "def add(a, b):\n    return a + b\n"
	r := newSecurity(t).Detect("ok.py", []byte(src), parse(t, "ok.py", src))
	assert.Zero(t, r.Score)
	assert.Empty(t, r.Findings)
}
