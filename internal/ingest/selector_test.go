package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFile creates a file with parent directories.
func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func names(files []CandidateFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = filepath.Base(f.Path)
	}
	return out
}

func TestSelectConcreteScenario(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.py", strings.Repeat("x", 1500))
	writeFile(t, root, "README.md", strings.Repeat("y", 300))
	writeFile(t, root, ".gitignore", "node_modules\n")
	writeFile(t, root, "node_modules/index.js", "module.exports = {}\n")
	writeFile(t, root, "package-lock.json", "{}\n")

	files, err := NewSelector(nil).Select(root)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"main.py", "README.md"}, names(files))
	for _, f := range files {
		assert.False(t, filepath.IsAbs(f.RelPath))
		assert.Equal(t, f.RelPath, filepath.ToSlash(f.RelPath))
	}
}

func TestSelectNeverDescendsIgnoredDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/app.go", "package app\n")
	writeFile(t, root, ".git/config.py", "tracked = False\n")
	writeFile(t, root, "vendor/lib/lib.go", "package lib\n")
	writeFile(t, root, "deep/node_modules/pkg/index.ts", "export {}\n")
	writeFile(t, root, "build/out.js", "var x\n")

	files, err := NewSelector(nil).Select(root)
	require.NoError(t, err)

	for _, f := range files {
		rel, relErr := filepath.Rel(root, f.Path)
		require.NoError(t, relErr)
		for _, segment := range strings.Split(rel, string(filepath.Separator)) {
			assert.False(t, ignoredDirs[segment],
				"path %s traverses ignored directory %s", rel, segment)
		}
	}
	assert.ElementsMatch(t, []string{"app.go"}, names(files))
}

func TestSelectExtensionCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "upper.PY", "print('hi')\n")
	writeFile(t, root, "mixed.Md", "# readme\n")

	files, err := NewSelector(nil).Select(root)
	require.NoError(t, err)

	require.Len(t, files, 2)
	for _, f := range files {
		assert.Equal(t, f.Ext, strings.ToLower(f.Ext))
	}
}

func TestSelectConventionFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Dockerfile", "FROM scratch\n")
	writeFile(t, root, "Makefile", "all:\n")
	writeFile(t, root, "Jenkinsfile", "pipeline {}\n")
	writeFile(t, root, "LICENSE", "MIT\n")

	files, err := NewSelector(nil).Select(root)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"Dockerfile", "Makefile", "Jenkinsfile"}, names(files))
}

func TestSelectIgnoredFilenames(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "yarn.lock", "v1\n")
	writeFile(t, root, "go.sum", "h1:abc\n")
	writeFile(t, root, ".DS_Store", "\x00")
	writeFile(t, root, "main.go", "package main\n")

	files, err := NewSelector(nil).Select(root)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"main.go"}, names(files))
}

func TestSelectEmptyRepositoryIsValid(t *testing.T) {
	files, err := NewSelector(nil).Select(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestSelectDeterministicOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b.go", "package b\n")
	writeFile(t, root, "a/x.py", "pass\n")
	writeFile(t, root, "c.md", "# c\n")

	first, err := NewSelector(nil).Select(root)
	require.NoError(t, err)
	second, err := NewSelector(nil).Select(root)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSelectRejectsBadRoot(t *testing.T) {
	_, err := NewSelector(nil).Select(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)

	_, err = NewSelector(nil).Select("")
	require.Error(t, err)
}

func TestComputeStats(t *testing.T) {
	files := []CandidateFile{
		{Path: "/r/a.py", Ext: ".py"},
		{Path: "/r/b.py", Ext: ".py"},
		{Path: "/r/c.md", Ext: ".md"},
		{Path: "/r/Dockerfile", Ext: ""},
	}

	stats := ComputeStats(files)
	assert.Equal(t, 4, stats.TotalFiles)
	assert.InDelta(t, 50.0, stats.Languages[".py"], 0.01)
	assert.InDelta(t, 25.0, stats.Languages[".md"], 0.01)
	assert.InDelta(t, 25.0, stats.Languages["Dockerfile"], 0.01)

	empty := ComputeStats(nil)
	assert.Equal(t, 0, empty.TotalFiles)
	assert.Empty(t, empty.Languages)
}
