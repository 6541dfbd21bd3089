package detectors

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImports_PythonSuspiciousAndUnresolved(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "localmod.py"), []byte("X = 1\n"), 0o644))

	src := `import os
import smart_helpers
from utils.helpers import thing
import localmod
import ghostpkg
from . import sibling
`
	path := filepath.Join(dir, "app.py")
	r := NewImportsDetector().Detect(path, []byte(src), parse(t, path, src))

	k := kinds(r)
	assert.Equal(t, 2, k["suspicious-import"])
	assert.Equal(t, 1, k["unresolved-import"])
	// five distinct roots: os, smart_helpers, utils, localmod, ghostpkg
	assert.InDelta(t, 100*(2.0/5*0.8+1.0/5*0.3), r.Score, 1e-9)
}

func TestImports_LocalPackageInParentDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "billing"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "svc", "api"), 0o755))

	src := "from billing import invoices\n"
	path := filepath.Join(root, "svc", "api", "handlers.py")
	r := NewImportsDetector().Detect(path, []byte(src), parse(t, path, src))

	assert.Zero(t, r.Score)
	assert.Empty(t, r.Findings)
}

func TestImports_KnownPackagesAreClean(t *testing.T) {
	src := "import requests\nimport numpy as np\nfrom collections import OrderedDict\n"
	r := NewImportsDetector().Detect("/nowhere/x.py", []byte(src), parse(t, "x.py", src))
	assert.Zero(t, r.Score)
}

func TestImports_GoModules(t *testing.T) {
	src := `package main

import (
	"fmt"

	"github.com/acme/smart_cache"
)

func main() { fmt.Println(smart_cache.New()) }
`
	r := NewImportsDetector().Detect("main.go", []byte(src), parse(t, "main.go", src))
	assert.InDelta(t, 40.0, r.Score, 1e-9)
	assert.Equal(t, 1, kinds(r)["suspicious-import"])
}

func TestImports_JavaScriptSkipsRelativeAndBuiltins(t *testing.T) {
	src := `import fs from "node:fs";
import path from "path";
import { x } from "./local";
import helper from "@acme/enhanced_helper";
`
	r := NewImportsDetector().Detect("index.js", []byte(src), parse(t, "index.js", src))
	// fs, path and @acme/enhanced_helper are counted; only the last is suspicious
	assert.InDelta(t, 100*(1.0/3*0.8), r.Score, 1e-9)
}

func TestLooksHallucinated(t *testing.T) {
	assert.True(t, looksHallucinated("smart_parser"))
	assert.True(t, looksHallucinated("my_shared_utils"))
	assert.True(t, looksHallucinated("Enhanced_IO"))
	assert.False(t, looksHallucinated("requests"))
	assert.False(t, looksHallucinated("billing"))
}
