package chunking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/repochat/internal/config"
	"github.com/fyrsmithlabs/repochat/internal/ingest"
)

func testChunker() *Chunker {
	return New(config.ChunkingConfig{ChunkSize: 2000, ChunkOverlap: 200}, nil)
}

func TestChunkDocumentsSmallDocsYieldOneChunkEach(t *testing.T) {
	docs := []ingest.Document{
		{Content: strings.Repeat("x", 1500), Source: "/repo/main.py", Filename: "main.py", Ext: ".py"},
		{Content: strings.Repeat("y", 300), Source: "/repo/README.md", Filename: "README.md", Ext: ".md"},
	}

	chunks := testChunker().ChunkDocuments(docs)

	require.Len(t, chunks, 2)
	byFile := map[string]Chunk{}
	for _, c := range chunks {
		byFile[c.Filename] = c
	}
	assert.Equal(t, docs[0].Content, byFile["main.py"].Content)
	assert.Equal(t, docs[1].Content, byFile["README.md"].Content)
}

func TestChunkDocumentsCopiesMetadataUnchanged(t *testing.T) {
	doc := ingest.Document{
		Content:  strings.Repeat("line of text\n\n", 400),
		Source:   "/repo/docs/guide.txt",
		Filename: "guide.txt",
		Ext:      ".txt",
	}

	chunks := testChunker().ChunkDocuments([]ingest.Document{doc})

	require.Greater(t, len(chunks), 1)
	for i, c := range chunks {
		assert.Equal(t, doc.Source, c.Source)
		assert.Equal(t, doc.Filename, c.Filename)
		assert.Equal(t, doc.Ext, c.Ext)
		assert.Equal(t, i, c.Seq)
		assert.NotEmpty(t, c.ID)
		assert.LessOrEqual(t, len(c.Content), 2000)
	}
}

func TestChunkDocumentsKnownGroupsPrecedeGeneric(t *testing.T) {
	docs := []ingest.Document{
		{Content: "plain notes\n", Source: "/repo/notes.txt", Filename: "notes.txt", Ext: ".txt"},
		{Content: "def f():\n    pass\n", Source: "/repo/f.py", Filename: "f.py", Ext: ".py"},
	}

	chunks := testChunker().ChunkDocuments(docs)

	require.Len(t, chunks, 2)
	assert.Equal(t, "f.py", chunks[0].Filename, "known-language groups are emitted before the generic group")
	assert.Equal(t, "notes.txt", chunks[1].Filename)
}

func TestChunkDocumentsDeterministic(t *testing.T) {
	docs := []ingest.Document{
		{Content: strings.Repeat("\ndef f():\n    x = 1\n", 200), Source: "/repo/a.py", Filename: "a.py", Ext: ".py"},
		{Content: strings.Repeat("words and more words ", 300), Source: "/repo/b.txt", Filename: "b.txt", Ext: ".txt"},
		{Content: strings.Repeat("\nfunc g() {}\n", 250), Source: "/repo/c.go", Filename: "c.go", Ext: ".go"},
	}

	first := testChunker().ChunkDocuments(docs)
	for run := 0; run < 3; run++ {
		assert.Equal(t, first, testChunker().ChunkDocuments(docs))
	}
}

func TestChunkDocumentsEmptyInput(t *testing.T) {
	assert.Empty(t, testChunker().ChunkDocuments(nil))
}

func TestChunkIDStable(t *testing.T) {
	assert.Equal(t, chunkID("/repo/a.py", 0), chunkID("/repo/a.py", 0))
	assert.NotEqual(t, chunkID("/repo/a.py", 0), chunkID("/repo/a.py", 1))
	assert.NotEqual(t, chunkID("/repo/a.py", 0), chunkID("/repo/b.py", 0))
}
