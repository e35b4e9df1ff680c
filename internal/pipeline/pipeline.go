// Package pipeline orchestrates repository indexing: clone, select, load,
// chunk, embed, store.
//
// Each repository indexes into its own collection, named from a hash of the
// repository URL. Re-indexing the same URL replaces the collection, so the
// index always reflects the repository's latest ingestion and never
// accumulates stale chunks.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/repochat/internal/acquire"
	"github.com/fyrsmithlabs/repochat/internal/chunking"
	"github.com/fyrsmithlabs/repochat/internal/config"
	"github.com/fyrsmithlabs/repochat/internal/ingest"
	"github.com/fyrsmithlabs/repochat/internal/vectorstore"
)

var tracer = otel.Tracer("repochat.pipeline")

// IndexResult summarizes a completed indexing run.
type IndexResult struct {
	// RepoURL is the indexed repository URL.
	RepoURL string

	// Collection is the vector store collection holding the index.
	Collection string

	// Documents is the number of files loaded.
	Documents int

	// Chunks is the number of chunks stored.
	Chunks int

	// Stats is the per-extension breakdown of selected files.
	Stats ingest.Stats
}

// Pipeline wires the indexing stages together.
type Pipeline struct {
	acquirer *acquire.Acquirer
	selector *ingest.Selector
	loader   *ingest.Loader
	chunker  *chunking.Chunker
	store    vectorstore.Store
	logger   *zap.Logger
}

// New creates an indexing pipeline from configuration.
func New(cfg *config.Config, store vectorstore.Store, logger *zap.Logger) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Pipeline{
		acquirer: acquire.New(cfg.Ingest, logger),
		selector: ingest.NewSelector(logger),
		loader:   ingest.NewLoader(cfg.Ingest, logger),
		chunker:  chunking.New(cfg.Chunking, logger),
		store:    store,
		logger:   logger,
	}, nil
}

// CollectionForRepo derives the collection name for a repository URL.
// The name is stable, so asking and re-indexing resolve to the same
// collection without any lookup table.
func CollectionForRepo(repoURL string) string {
	sum := sha256.Sum256([]byte(repoURL))
	return "repo_" + hex.EncodeToString(sum[:6])
}

// Index clones the repository, ingests its files, and stores the resulting
// chunks in the repository's collection, replacing any previous contents.
//
// The working copy is removed when the run finishes, successful or not.
func (p *Pipeline) Index(ctx context.Context, repoURL string) (*IndexResult, error) {
	ctx, span := tracer.Start(ctx, "pipeline.Index")
	defer span.End()
	span.SetAttributes(attribute.String("repo_url", repoURL))

	workingCopy, err := p.acquirer.Clone(ctx, repoURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer acquire.Remove(workingCopy, p.logger)

	result, err := p.indexWorkingCopy(ctx, CollectionForRepo(repoURL), workingCopy)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	result.RepoURL = repoURL

	span.SetAttributes(
		attribute.Int("documents", result.Documents),
		attribute.Int("chunks", result.Chunks),
	)
	span.SetStatus(codes.Ok, "success")
	return result, nil
}

// indexWorkingCopy runs the local stages against an already acquired tree.
//
// The collection is replaced before any insert, even when the tree yields
// nothing: an empty repository indexes to an empty collection. When there
// are no chunks, no embedding call is made.
func (p *Pipeline) indexWorkingCopy(ctx context.Context, collection, workingCopy string) (*IndexResult, error) {
	candidates, err := p.selector.Select(workingCopy)
	if err != nil {
		return nil, fmt.Errorf("selecting files: %w", err)
	}

	docs := p.loader.Load(candidates)
	chunks := p.chunker.ChunkDocuments(docs)

	if err := p.store.ReplaceCollection(ctx, collection); err != nil {
		return nil, fmt.Errorf("preparing collection: %w", err)
	}

	if len(chunks) > 0 {
		storeDocs := make([]vectorstore.Document, len(chunks))
		for i, chunk := range chunks {
			storeDocs[i] = vectorstore.Document{
				ID:      chunk.ID,
				Content: chunk.Content,
				Metadata: map[string]interface{}{
					"source":   chunk.Source,
					"filename": chunk.Filename,
					"ext":      chunk.Ext,
					"seq":      chunk.Seq,
				},
			}
		}
		if _, err := p.store.AddDocuments(ctx, collection, storeDocs); err != nil {
			return nil, fmt.Errorf("storing chunks: %w", err)
		}
	}

	p.logger.Info("indexed repository",
		zap.String("collection", collection),
		zap.Int("candidates", len(candidates)),
		zap.Int("documents", len(docs)),
		zap.Int("chunks", len(chunks)),
	)

	return &IndexResult{
		Collection: collection,
		Documents:  len(docs),
		Chunks:     len(chunks),
		Stats:      ingest.ComputeStats(candidates),
	}, nil
}
