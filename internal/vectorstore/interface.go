// Package vectorstore provides vector storage for indexed repository chunks.
//
// Two backends are supported: an embedded chromem-go database (default) and
// an external Qdrant server accessed through langchaingo. Each indexed
// repository lives in its own collection; re-indexing a repository replaces
// its collection wholesale.
package vectorstore

import (
	"context"
	"errors"
	"regexp"
)

// Sentinel errors for vector store operations.
var (
	// ErrCollectionNotFound is returned when a collection does not exist.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmptyDocuments indicates empty or nil documents.
	ErrEmptyDocuments = errors.New("empty or nil documents")

	// ErrEmbeddingFailed indicates embedding generation failure.
	ErrEmbeddingFailed = errors.New("failed to generate embeddings")

	// ErrInvalidCollectionName indicates collection name validation failure.
	ErrInvalidCollectionName = errors.New("invalid collection name")
)

// Document is a unit of content to be embedded and stored.
type Document struct {
	// ID uniquely identifies the document within its collection.
	ID string

	// Content is the text that gets embedded.
	Content string

	// Metadata holds provenance attached to the document.
	Metadata map[string]interface{}
}

// SearchResult is a single similarity search hit.
type SearchResult struct {
	// ID is the stored document's identifier.
	ID string

	// Content is the stored document's text.
	Content string

	// Score is the similarity score, higher is more similar.
	Score float32

	// Metadata holds the document's stored metadata.
	Metadata map[string]interface{}
}

// Embedder generates vector embeddings from text.
type Embedder interface {
	// EmbedDocuments generates embeddings for multiple texts, one per input.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a single query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Store is the interface for vector storage operations.
//
// Collections are per-repository namespaces. ReplaceCollection prepares a
// fresh collection for a (re-)indexing run, discarding any previous contents
// under the same name, so a repository's index always reflects exactly its
// latest ingestion.
type Store interface {
	// ReplaceCollection deletes the named collection if it exists and
	// creates it anew, empty.
	ReplaceCollection(ctx context.Context, collection string) error

	// AddDocuments embeds and stores documents in the named collection.
	// Returns the IDs of the stored documents.
	AddDocuments(ctx context.Context, collection string, docs []Document) ([]string, error)

	// Search returns up to k documents from the named collection ordered
	// by similarity to the query, highest score first.
	Search(ctx context.Context, collection string, query string, k int) ([]SearchResult, error)

	// Close releases any resources held by the store.
	Close() error
}

var collectionNameRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,62}$`)

// ValidateCollectionName checks that a collection name is safe for both
// backends: alphanumeric start, up to 63 characters from [a-zA-Z0-9._-].
func ValidateCollectionName(name string) error {
	if !collectionNameRe.MatchString(name) {
		return ErrInvalidCollectionName
	}
	return nil
}
