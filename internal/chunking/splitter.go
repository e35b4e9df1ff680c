package chunking

import (
	"strings"
	"unicode/utf8"
)

// Splitter cuts text into pieces no longer than chunkSize bytes, preferring
// boundaries from a separator hierarchy and falling back to raw cuts.
//
// Splitting is pure and deterministic: the same text, separators, and
// bounds always produce the same piece sequence.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

// NewSplitter creates a splitter for the given profile and bounds.
// An overlap that is not smaller than the chunk size is clamped to a
// quarter of it.
func NewSplitter(profile Profile, chunkSize, chunkOverlap int) *Splitter {
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 4
	}
	separators := profile.Separators
	if len(separators) == 0 {
		separators = genericSeparators
	}
	return &Splitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		separators:   separators,
	}
}

// Split returns the chunk texts for text.
//
// A text that already fits under the bound is returned unchanged as a
// single piece. Otherwise the splitter walks the separator hierarchy: it
// splits on the coarsest separator present, packs the resulting pieces
// greedily up to the bound, and carries the trailing overlap of each
// emitted chunk into the next one. A piece that alone exceeds the bound is
// re-split with the finer separators; a text with no separators left is
// cut at the length bound regardless of syntax.
func (s *Splitter) Split(text string) []string {
	if text == "" {
		return nil
	}
	return s.split(text, s.separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	if len(text) <= s.chunkSize {
		return []string{text}
	}

	sep, finer := pickSeparator(text, separators)
	if sep == "" {
		return s.hardCut(text)
	}

	pieces := splitKeepSeparator(text, sep)

	var chunks []string
	var buf strings.Builder

	flush := func() {
		if strings.TrimSpace(buf.String()) != "" {
			chunks = append(chunks, buf.String())
		}
		buf.Reset()
	}

	for _, piece := range pieces {
		if len(piece) > s.chunkSize {
			// The piece alone breaks the bound; descend to finer
			// separators. Overlap does not carry across this boundary.
			flush()
			chunks = append(chunks, s.split(piece, finer)...)
			continue
		}

		if buf.Len()+len(piece) > s.chunkSize {
			carry := overlapTail(buf.String(), s.chunkOverlap)
			flush()
			if len(carry)+len(piece) <= s.chunkSize {
				buf.WriteString(carry)
			}
		}
		buf.WriteString(piece)
	}
	flush()

	return chunks
}

// hardCut slices text into windows of at most chunkSize bytes, stepping by
// chunkSize-chunkOverlap so consecutive windows share the configured
// overlap. Cut points are pulled back to rune boundaries so no window
// contains a torn code point.
func (s *Splitter) hardCut(text string) []string {
	step := s.chunkSize - s.chunkOverlap
	var chunks []string

	start := 0
	for start < len(text) {
		end := start + s.chunkSize
		if end >= len(text) {
			chunks = append(chunks, text[start:])
			break
		}
		for end > start && !utf8.RuneStart(text[end]) {
			end--
		}
		chunks = append(chunks, text[start:end])

		next := start + step
		for next < len(text) && !utf8.RuneStart(text[next]) {
			next++
		}
		start = next
	}

	return chunks
}

// pickSeparator returns the first separator present in text along with the
// finer separators after it. The empty separator means hard cut.
func pickSeparator(text string, separators []string) (string, []string) {
	for i, sep := range separators {
		if sep == "" {
			return "", nil
		}
		if strings.Contains(text, sep) {
			return sep, separators[i+1:]
		}
	}
	return "", nil
}

// splitKeepSeparator splits text on sep, keeping each separator occurrence
// as the prefix of the piece that follows it, so rejoined pieces
// reconstruct the original text.
func splitKeepSeparator(text, sep string) []string {
	parts := strings.Split(text, sep)
	pieces := make([]string, 0, len(parts))
	for i, part := range parts {
		if i > 0 {
			part = sep + part
		}
		if part != "" {
			pieces = append(pieces, part)
		}
	}
	return pieces
}

// overlapTail returns the final n bytes of text, aligned forward to a rune
// boundary.
func overlapTail(text string, n int) string {
	if n <= 0 || len(text) <= n {
		return text
	}
	start := len(text) - n
	for start < len(text) && !utf8.RuneStart(text[start]) {
		start++
	}
	return text[start:]
}
