// Package rag answers questions about an indexed repository.
//
// It retrieves the most relevant chunks from the vector store, formats them
// into a grounded prompt, and generates an answer with an OpenAI-compatible
// chat model via langchaingo. Answers are constrained to the retrieved
// context; the model is instructed to say so when the context does not
// contain the answer.
package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/prompts"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/repochat/internal/config"
	"github.com/fyrsmithlabs/repochat/internal/vectorstore"
)

var tracer = otel.Tracer("repochat.rag")

var (
	// ErrEmptyQuestion indicates an empty question.
	ErrEmptyQuestion = errors.New("question cannot be empty")

	// ErrMissingAPIKey indicates the LLM credential is not set.
	ErrMissingAPIKey = errors.New("LLM API key is required")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrRetrievalFailed indicates the vector store lookup failed.
	ErrRetrievalFailed = errors.New("retrieving context failed")

	// ErrGenerationFailed indicates the model call failed.
	ErrGenerationFailed = errors.New("generating answer failed")
)

// retrievalK is the number of chunks retrieved per question.
const retrievalK = 5

const answerTemplate = `You are a Senior Software Engineer acting as a code assistant.
Your goal is to explain the code from the provided repository context and answer user questions accurately.

Context from the repository:
{context}

---

Instructions:
1. Use only the provided context to answer. If the answer isn't in the context, say you don't know based on the current files.
2. Provide code snippets where relevant to explain logic.
3. Be concise and professional.
4. Mention the file names when referring to specific code.

Question: {question}
`

// Answer is a generated answer plus the files it drew on.
type Answer struct {
	// Text is the model's answer.
	Text string

	// Sources are the distinct source paths of the retrieved chunks, in
	// retrieval order.
	Sources []string
}

// Service answers questions against an indexed repository collection.
type Service struct {
	store       vectorstore.Store
	llm         *openai.LLM
	template    prompts.PromptTemplate
	temperature float64
	logger      *zap.Logger
}

// NewService creates an answering service from configuration.
//
// A missing API key is a fatal precondition: the constructor fails before
// any network call is attempted.
func NewService(cfg config.LLMConfig, store vectorstore.Store, logger *zap.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidConfig)
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: base URL required", ErrInvalidConfig)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: model required", ErrInvalidConfig)
	}
	if !cfg.APIKey.IsSet() {
		return nil, ErrMissingAPIKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithModel(cfg.Model),
		openai.WithToken(cfg.APIKey.Value()),
	)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI client: %w", err)
	}

	return &Service{
		store:       store,
		llm:         llm,
		template:    prompts.NewPromptTemplate(answerTemplate, []string{"context", "question"}),
		temperature: cfg.Temperature,
		logger:      logger,
	}, nil
}

// Ask retrieves relevant chunks from the collection and generates an answer.
func (s *Service) Ask(ctx context.Context, collection string, question string) (*Answer, error) {
	ctx, span := tracer.Start(ctx, "rag.Ask")
	defer span.End()
	span.SetAttributes(attribute.String("collection", collection))

	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}

	hits, err := s.store.Search(ctx, collection, question, retrievalK)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %v", ErrRetrievalFailed, err)
	}
	span.SetAttributes(attribute.Int("retrieved_chunks", len(hits)))

	prompt, err := s.template.Format(map[string]any{
		"context":  formatContext(hits),
		"question": question,
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("formatting prompt: %w", err)
	}

	text, err := llms.GenerateFromSinglePrompt(ctx, s.llm, prompt,
		llms.WithTemperature(s.temperature),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	span.SetStatus(codes.Ok, "success")
	s.logger.Debug("answered question",
		zap.String("collection", collection),
		zap.Int("retrieved_chunks", len(hits)),
	)

	return &Answer{
		Text:    text,
		Sources: collectSources(hits),
	}, nil
}

// formatContext renders retrieved chunks as file-labeled sections.
func formatContext(hits []vectorstore.SearchResult) string {
	sections := make([]string, len(hits))
	for i, hit := range hits {
		sections[i] = fmt.Sprintf("--- File: %s ---\n%s", sourceOf(hit), hit.Content)
	}
	return strings.Join(sections, "\n\n")
}

// collectSources returns the distinct source paths in retrieval order.
func collectSources(hits []vectorstore.SearchResult) []string {
	var sources []string
	seen := map[string]bool{}
	for _, hit := range hits {
		src := sourceOf(hit)
		if !seen[src] {
			seen[src] = true
			sources = append(sources, src)
		}
	}
	return sources
}

func sourceOf(hit vectorstore.SearchResult) string {
	if src, ok := hit.Metadata["source"].(string); ok && src != "" {
		return src
	}
	return "Unknown"
}
