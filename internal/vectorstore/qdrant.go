package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	lcembeddings "github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores/qdrant"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/repochat/internal/config"
)

var qdrantTracer = otel.Tracer("repochat.vectorstore.qdrant")

// QdrantStore implements Store against an external Qdrant server.
//
// Document operations go through langchaingo's qdrant integration, which
// embeds on insert and on query. Collection lifecycle management uses
// Qdrant's REST API directly, since langchaingo does not expose it.
type QdrantStore struct {
	baseURL    *url.URL
	vectorSize int
	embedder   lcembeddings.Embedder
	httpClient *http.Client
	logger     *zap.Logger
}

// NewQdrantStore creates a store backed by the Qdrant server at the
// configured URL.
func NewQdrantStore(cfg config.StoreConfig, embedder lcembeddings.Embedder, logger *zap.Logger) (*QdrantStore, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is required", ErrInvalidConfig)
	}
	if cfg.QdrantURL == "" {
		return nil, fmt.Errorf("%w: qdrant URL is required", ErrInvalidConfig)
	}
	if cfg.VectorSize <= 0 {
		return nil, fmt.Errorf("%w: vector size must be positive", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	base, err := url.Parse(cfg.QdrantURL)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing qdrant URL: %v", ErrInvalidConfig, err)
	}

	logger.Info("qdrant store initialized",
		zap.String("url", base.String()),
		zap.Int("vector_size", cfg.VectorSize),
	)

	return &QdrantStore{
		baseURL:    base,
		vectorSize: cfg.VectorSize,
		embedder:   embedder,
		httpClient: http.DefaultClient,
		logger:     logger,
	}, nil
}

// collectionStore builds a langchaingo store bound to one collection.
func (s *QdrantStore) collectionStore(collection string) (qdrant.Store, error) {
	return qdrant.New(
		qdrant.WithURL(*s.baseURL),
		qdrant.WithCollectionName(collection),
		qdrant.WithEmbedder(s.embedder),
	)
}

// ReplaceCollection drops and recreates the named collection via the REST
// API. A 404 on delete means the collection never existed and is not an
// error.
func (s *QdrantStore) ReplaceCollection(ctx context.Context, collection string) error {
	ctx, span := qdrantTracer.Start(ctx, "QdrantStore.ReplaceCollection")
	defer span.End()
	span.SetAttributes(attribute.String("collection", collection))

	if err := ValidateCollectionName(collection); err != nil {
		return err
	}

	if err := s.deleteCollection(ctx, collection); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if err := s.createCollection(ctx, collection); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	s.logger.Debug("replaced qdrant collection", zap.String("collection", collection))
	return nil
}

func (s *QdrantStore) collectionURL(collection string) string {
	return s.baseURL.JoinPath("collections", collection).String()
}

func (s *QdrantStore) deleteCollection(ctx context.Context, collection string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.collectionURL(collection), nil)
	if err != nil {
		return fmt.Errorf("building delete request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deleting collection %s: %w", collection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("deleting collection %s: status %d: %s", collection, resp.StatusCode, body)
	}
	return nil
}

func (s *QdrantStore) createCollection(ctx context.Context, collection string) error {
	payload := map[string]interface{}{
		"vectors": map[string]interface{}{
			"size":     s.vectorSize,
			"distance": "Cosine",
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding collection config: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.collectionURL(collection), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("creating collection %s: %w", collection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("creating collection %s: status %d: %s", collection, resp.StatusCode, respBody)
	}
	return nil
}

// AddDocuments stores documents through langchaingo, which embeds them via
// the configured embedder.
func (s *QdrantStore) AddDocuments(ctx context.Context, collection string, docs []Document) ([]string, error) {
	ctx, span := qdrantTracer.Start(ctx, "QdrantStore.AddDocuments")
	defer span.End()
	span.SetAttributes(
		attribute.String("collection", collection),
		attribute.Int("document_count", len(docs)),
	)

	if len(docs) == 0 {
		return nil, ErrEmptyDocuments
	}
	if err := ValidateCollectionName(collection); err != nil {
		return nil, err
	}

	store, err := s.collectionStore(collection)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("creating qdrant client: %w", err)
	}

	schemaDocs := make([]schema.Document, len(docs))
	for i, doc := range docs {
		metadata := make(map[string]interface{}, len(doc.Metadata)+1)
		for key, value := range doc.Metadata {
			metadata[key] = value
		}
		metadata["id"] = doc.ID
		schemaDocs[i] = schema.Document{
			PageContent: doc.Content,
			Metadata:    metadata,
		}
	}

	if _, err := store.AddDocuments(ctx, schemaDocs); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("adding documents: %w", err)
	}

	ids := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
	}

	span.SetStatus(codes.Ok, "success")
	s.logger.Debug("added documents to qdrant",
		zap.String("collection", collection),
		zap.Int("count", len(docs)),
	)
	return ids, nil
}

// Search performs similarity search in the named collection.
func (s *QdrantStore) Search(ctx context.Context, collection string, query string, k int) ([]SearchResult, error) {
	ctx, span := qdrantTracer.Start(ctx, "QdrantStore.Search")
	defer span.End()
	span.SetAttributes(
		attribute.String("collection", collection),
		attribute.Int("k", k),
	)

	if err := ValidateCollectionName(collection); err != nil {
		return nil, err
	}
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	store, err := s.collectionStore(collection)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("creating qdrant client: %w", err)
	}

	docs, err := store.SimilaritySearch(ctx, query, k)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("searching collection %s: %w", collection, err)
	}

	hits := make([]SearchResult, len(docs))
	for i, doc := range docs {
		hit := SearchResult{
			Content:  doc.PageContent,
			Score:    doc.Score,
			Metadata: doc.Metadata,
		}
		if id, ok := doc.Metadata["id"].(string); ok {
			hit.ID = id
		}
		hits[i] = hit
	}

	span.SetAttributes(attribute.Int("results_count", len(hits)))
	span.SetStatus(codes.Ok, "success")
	return hits, nil
}

// Close is a no-op: connections are per-request.
func (s *QdrantStore) Close() error {
	return nil
}
