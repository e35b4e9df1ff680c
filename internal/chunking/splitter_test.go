package chunking

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveProfile(t *testing.T) {
	tests := []struct {
		ext      string
		kind     Kind
		language string
	}{
		{".py", KindKnown, "python"},
		{".PY", KindKnown, "python"},
		{".go", KindKnown, "go"},
		{".jsx", KindKnown, "js"},
		{".md", KindKnown, "markdown"},
		{".txt", KindGeneric, ""},
		{".json", KindGeneric, ""},
		{"", KindGeneric, ""},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			p := ResolveProfile(tt.ext)
			assert.Equal(t, tt.kind, p.Kind)
			assert.Equal(t, tt.language, p.Language)
			assert.NotEmpty(t, p.Separators)
			assert.Equal(t, "", p.Separators[len(p.Separators)-1],
				"separator hierarchy must end in the raw-cut separator")
		})
	}
}

func TestSplitShortTextIsSingleChunk(t *testing.T) {
	s := NewSplitter(ResolveProfile(".py"), 2000, 200)

	text := "def main():\n    pass\n"
	chunks := s.Split(text)

	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSplitRespectsLengthBound(t *testing.T) {
	for _, ext := range []string{".py", ".go", ".md", ".txt"} {
		t.Run(ext, func(t *testing.T) {
			s := NewSplitter(ResolveProfile(ext), 500, 50)

			var b strings.Builder
			for i := 0; i < 60; i++ {
				b.WriteString("func line(): some tokens here to fill space\n")
				if i%7 == 0 {
					b.WriteString("\n")
				}
			}

			chunks := s.Split(b.String())
			require.NotEmpty(t, chunks)
			for i, c := range chunks {
				assert.LessOrEqual(t, len(c), 500, "chunk %d exceeds bound", i)
				assert.NotEmpty(t, strings.TrimSpace(c))
			}
		})
	}
}

func TestSplitIsDeterministic(t *testing.T) {
	s := NewSplitter(ResolveProfile(".py"), 300, 30)

	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("\ndef f():\n    x = 1\n    y = 2\n")
	}
	text := b.String()

	first := s.Split(text)
	for run := 0; run < 5; run++ {
		assert.Equal(t, first, NewSplitter(ResolveProfile(".py"), 300, 30).Split(text))
	}
}

func TestSplitPrefersDeclarationBoundaries(t *testing.T) {
	header := "import os\n"
	alpha := "\ndef alpha():\n" + strings.Repeat("    a = 1\n", 150)
	beta := "\ndef beta():\n" + strings.Repeat("    b = 2\n", 150)
	text := header + alpha + beta

	s := NewSplitter(ResolveProfile(".py"), 2000, 200)
	chunks := s.Split(text)

	require.Len(t, chunks, 2)
	assert.Contains(t, chunks[0], "def alpha")
	assert.Contains(t, chunks[1], "def beta")
	assert.NotContains(t, chunks[0], "def beta")

	// The second chunk opens with the first chunk's trailing overlap.
	tail := chunks[0][len(chunks[0])-200:]
	assert.True(t, strings.HasPrefix(chunks[1], tail),
		"consecutive chunks must share the configured overlap")
}

func TestSplitHardCutsUnbreakableToken(t *testing.T) {
	token := strings.Repeat("a", 5000)

	s := NewSplitter(ResolveProfile(".txt"), 2000, 200)
	chunks := s.Split(token)

	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 2000)
	assert.Len(t, chunks[1], 2000)
	assert.Len(t, chunks[2], 1400)

	for i := 0; i < len(chunks)-1; i++ {
		suffix := chunks[i][len(chunks[i])-200:]
		assert.True(t, strings.HasPrefix(chunks[i+1], suffix),
			"chunks %d and %d must overlap by exactly 200 characters", i, i+1)
	}
}

func TestSplitNeverTearsRunes(t *testing.T) {
	token := strings.Repeat("héllo wörld ", 400)
	token = strings.ReplaceAll(token, " ", "") // one long multibyte token

	s := NewSplitter(ResolveProfile(".txt"), 100, 10)
	for _, c := range s.Split(token) {
		assert.True(t, utf8.ValidString(c))
		assert.LessOrEqual(t, len(c), 100)
	}
}

func TestSplitEmptyText(t *testing.T) {
	s := NewSplitter(ResolveProfile(".txt"), 2000, 200)
	assert.Empty(t, s.Split(""))
}

func TestNewSplitterClampsOverlap(t *testing.T) {
	s := NewSplitter(ResolveProfile(".txt"), 100, 100)
	assert.Equal(t, 25, s.chunkOverlap)

	s = NewSplitter(ResolveProfile(".txt"), 100, -5)
	assert.Equal(t, 0, s.chunkOverlap)
}
