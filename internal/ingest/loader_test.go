package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/repochat/internal/config"
)

func newTestLoader(maxSize int64) *Loader {
	return NewLoader(config.IngestConfig{MaxFileSize: maxSize}, nil)
}

func TestLoadAttachesMetadata(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/main.py", "print('hello')\n")

	docs := newTestLoader(0).Load([]CandidateFile{
		{Path: filepath.Join(root, "src", "main.py"), RelPath: "src/main.py", Ext: ".py"},
	})

	require.Len(t, docs, 1)
	assert.Equal(t, "print('hello')\n", docs[0].Content)
	assert.Equal(t, "src/main.py", docs[0].Source)
	assert.Equal(t, "main.py", docs[0].Filename)
	assert.Equal(t, ".py", docs[0].Ext)
}

func TestLoadSkipsWhitespaceOnlyContent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "blank.py", "   \n\t\n  ")
	writeFile(t, root, "real.py", "x = 1\n")

	docs := newTestLoader(0).Load([]CandidateFile{
		{Path: filepath.Join(root, "blank.py"), Ext: ".py"},
		{Path: filepath.Join(root, "real.py"), Ext: ".py"},
	})

	require.Len(t, docs, 1)
	assert.Equal(t, "real.py", docs[0].Filename)
}

func TestLoadDropsInvalidUTF8(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "mixed.txt")
	require.NoError(t, os.WriteFile(path, []byte("ok\xff\xfetext"), 0o644))

	docs := newTestLoader(0).Load([]CandidateFile{{Path: path, Ext: ".txt"}})

	require.Len(t, docs, 1)
	assert.True(t, utf8.ValidString(docs[0].Content))
	assert.Equal(t, "oktext", docs[0].Content)
}

func TestLoadSkipsMissingAndOversizedFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "big.md", strings.Repeat("a", 64)+"\n")
	writeFile(t, root, "small.md", "fine\n")

	docs := newTestLoader(32).Load([]CandidateFile{
		{Path: filepath.Join(root, "gone.md"), Ext: ".md"},
		{Path: filepath.Join(root, "big.md"), Ext: ".md"},
		{Path: filepath.Join(root, "small.md"), Ext: ".md"},
	})

	require.Len(t, docs, 1)
	assert.Equal(t, "small.md", docs[0].Filename)
}

func TestLoadEmptyInput(t *testing.T) {
	docs := newTestLoader(0).Load(nil)
	assert.Empty(t, docs)
}
