// Package embeddings provides embedding generation via langchaingo.
//
// It wraps langchaingo's embeddings abstraction over an OpenAI-compatible
// API, so any endpoint speaking that protocol (OpenAI itself, TEI,
// compatible proxies) can serve as the embedding backend.
package embeddings

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/fyrsmithlabs/repochat/internal/config"
)

var (
	// ErrEmptyInput indicates empty or nil input texts.
	ErrEmptyInput = errors.New("empty or nil input texts")

	// ErrMissingAPIKey indicates the embedding credential is not set.
	// This is checked at construction, before any network call.
	ErrMissingAPIKey = errors.New("embedding API key is required")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Service generates vector embeddings for text.
type Service struct {
	embedder *embeddings.EmbedderImpl
	config   config.EmbeddingsConfig
}

// NewService creates an embedding service from configuration.
//
// A missing API key is a fatal precondition: the constructor fails before
// any network call is attempted.
func NewService(cfg config.EmbeddingsConfig) (*Service, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: base URL required", ErrInvalidConfig)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: model required", ErrInvalidConfig)
	}
	if !cfg.APIKey.IsSet() {
		return nil, ErrMissingAPIKey
	}

	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithEmbeddingModel(cfg.Model),
		openai.WithToken(cfg.APIKey.Value()),
	)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	return &Service{
		embedder: embedder,
		config:   cfg,
	}, nil
}

// EmbedDocuments generates one embedding per input text.
func (s *Service) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: texts cannot be empty", ErrEmptyInput)
	}

	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding documents: %w", err)
	}
	return vectors, nil
}

// EmbedQuery generates an embedding for a single query string.
func (s *Service) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: text cannot be empty", ErrEmptyInput)
	}

	vector, err := s.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	return vector, nil
}

// Embedder returns the underlying langchaingo embedder for components that
// integrate with langchaingo directly (e.g. the qdrant store backend).
func (s *Service) Embedder() embeddings.Embedder {
	return s.embedder
}
