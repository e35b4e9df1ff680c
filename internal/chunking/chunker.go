// Package chunking splits loaded source documents into bounded,
// overlapping text chunks, preferring split points that match the
// document's language structure.
package chunking

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/repochat/internal/config"
	"github.com/fyrsmithlabs/repochat/internal/ingest"
)

// Chunk is a bounded fragment of a source document. It carries the parent
// document's provenance metadata unchanged, plus its sequence number
// within the parent.
type Chunk struct {
	// ID is a deterministic identifier derived from the source path and
	// sequence number, stable across re-runs on unchanged input.
	ID string

	// Content is the chunk text, at most the configured chunk size.
	Content string

	// Source is the parent document's repository-relative path.
	Source string

	// Filename is the parent document's display name.
	Filename string

	// Ext is the parent document's lowercased extension.
	Ext string

	// Seq is the chunk's position within its parent document.
	Seq int
}

// Chunker splits documents using per-language profiles.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
	logger       *zap.Logger
}

// New creates a chunker with the configured size and overlap bounds.
func New(cfg config.ChunkingConfig, logger *zap.Logger) *Chunker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chunker{
		chunkSize:    cfg.ChunkSize,
		chunkOverlap: cfg.ChunkOverlap,
		logger:       logger,
	}
}

// ChunkDocuments splits the documents into chunks.
//
// Documents are partitioned by resolved language profile: each known
// language forms one group, and everything else falls into a single
// generic group processed last. Within a group, documents keep their input
// order, so the overall output is deterministic for unchanged input and
// configuration.
func (c *Chunker) ChunkDocuments(docs []ingest.Document) []Chunk {
	var languages []string
	known := map[string][]ingest.Document{}
	var generic []ingest.Document

	for _, doc := range docs {
		profile := ResolveProfile(doc.Ext)
		if profile.Kind == KindGeneric {
			generic = append(generic, doc)
			continue
		}
		if _, seen := known[profile.Language]; !seen {
			languages = append(languages, profile.Language)
		}
		known[profile.Language] = append(known[profile.Language], doc)
	}

	chunks := []Chunk{}
	for _, lang := range languages {
		profile := Profile{Kind: KindKnown, Language: lang, Separators: languageSeparators[lang]}
		splitter := NewSplitter(profile, c.chunkSize, c.chunkOverlap)
		for _, doc := range known[lang] {
			chunks = append(chunks, c.chunkDocument(splitter, doc)...)
		}
	}

	if len(generic) > 0 {
		splitter := NewSplitter(Profile{Kind: KindGeneric, Separators: genericSeparators}, c.chunkSize, c.chunkOverlap)
		for _, doc := range generic {
			chunks = append(chunks, c.chunkDocument(splitter, doc)...)
		}
	}

	c.logger.Info("chunked documents",
		zap.Int("documents", len(docs)),
		zap.Int("chunks", len(chunks)),
	)

	return chunks
}

// chunkDocument splits one document and stamps provenance metadata onto
// every derived chunk.
func (c *Chunker) chunkDocument(splitter *Splitter, doc ingest.Document) []Chunk {
	texts := splitter.Split(doc.Content)

	chunks := make([]Chunk, 0, len(texts))
	for seq, text := range texts {
		chunks = append(chunks, Chunk{
			ID:       chunkID(doc.Source, seq),
			Content:  text,
			Source:   doc.Source,
			Filename: doc.Filename,
			Ext:      doc.Ext,
			Seq:      seq,
		})
	}
	return chunks
}

// chunkID derives a stable identifier from the source path and sequence.
func chunkID(source string, seq int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s#%d", source, seq)))
	return hex.EncodeToString(sum[:16])
}
