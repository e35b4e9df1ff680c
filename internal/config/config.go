// Package config provides configuration loading for repochat.
//
// Configuration is loaded from a YAML file and overridden by environment
// variables. A Config value is threaded explicitly through every component
// constructor; nothing reads ambient process-wide state after loading.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the complete repochat configuration.
type Config struct {
	Ingest     IngestConfig     `koanf:"ingest"`
	Chunking   ChunkingConfig   `koanf:"chunking"`
	Embeddings EmbeddingsConfig `koanf:"embeddings"`
	LLM        LLMConfig        `koanf:"llm"`
	Store      StoreConfig      `koanf:"store"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// IngestConfig holds repository acquisition and file selection settings.
type IngestConfig struct {
	// ClonesDir is the directory under which per-run working copies are
	// created. Each run gets its own uuid-named subdirectory.
	ClonesDir string `koanf:"clones_dir"`

	// MaxFileSize is the largest file (in bytes) the loader will read.
	MaxFileSize int64 `koanf:"max_file_size"`
}

// ChunkingConfig holds text splitting settings.
type ChunkingConfig struct {
	// ChunkSize is the maximum chunk length in characters.
	ChunkSize int `koanf:"chunk_size"`

	// ChunkOverlap is the number of characters shared between
	// consecutive chunks of the same document.
	ChunkOverlap int `koanf:"chunk_overlap"`
}

// EmbeddingsConfig holds settings for the embedding API.
type EmbeddingsConfig struct {
	// BaseURL is the OpenAI-compatible embedding endpoint.
	BaseURL string `koanf:"base_url"`

	// Model is the embedding model name.
	Model string `koanf:"model"`

	// APIKey authenticates embedding requests. Required before any
	// indexing network call is attempted.
	APIKey Secret `koanf:"api_key"`
}

// LLMConfig holds settings for the answering model.
type LLMConfig struct {
	// BaseURL is the OpenAI-compatible completion endpoint.
	BaseURL string `koanf:"base_url"`

	// Model is the generation model name.
	Model string `koanf:"model"`

	// APIKey authenticates generation requests.
	APIKey Secret `koanf:"api_key"`

	// Temperature controls sampling randomness.
	Temperature float64 `koanf:"temperature"`
}

// StoreConfig holds vector store settings.
type StoreConfig struct {
	// Provider selects the backend: "chromem" (embedded, default) or
	// "qdrant" (external server).
	Provider string `koanf:"provider"`

	// Path is the persistence directory for the chromem backend.
	Path string `koanf:"path"`

	// QdrantURL is the Qdrant server URL for the qdrant backend.
	QdrantURL string `koanf:"qdrant_url"`

	// VectorSize is the embedding dimension. Must match the embedding
	// model's output dimension.
	VectorSize int `koanf:"vector_size"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is "console" or "json".
	Format string `koanf:"format"`
}

// Store provider names.
const (
	StoreProviderChromem = "chromem"
	StoreProviderQdrant  = "qdrant"
)

// ApplyDefaults fills unset fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Ingest.ClonesDir == "" {
		c.Ingest.ClonesDir = filepath.Join(os.TempDir(), "repochat", "clones")
	}
	if c.Ingest.MaxFileSize == 0 {
		c.Ingest.MaxFileSize = 1024 * 1024 // 1MB
	}
	if c.Chunking.ChunkSize == 0 {
		c.Chunking.ChunkSize = 2000
	}
	if c.Chunking.ChunkOverlap == 0 {
		c.Chunking.ChunkOverlap = 200
	}
	if c.Embeddings.BaseURL == "" {
		c.Embeddings.BaseURL = "https://api.openai.com/v1"
	}
	if c.Embeddings.Model == "" {
		c.Embeddings.Model = "text-embedding-3-small"
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "https://api.openai.com/v1"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4o-mini"
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.2
	}
	if c.Store.Provider == "" {
		c.Store.Provider = StoreProviderChromem
	}
	if c.Store.Path == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			c.Store.Path = filepath.Join(home, ".config", "repochat", "vectorstore")
		} else {
			c.Store.Path = filepath.Join(os.TempDir(), "repochat", "vectorstore")
		}
	}
	if c.Store.QdrantURL == "" {
		c.Store.QdrantURL = "http://localhost:6333"
	}
	if c.Store.VectorSize == 0 {
		c.Store.VectorSize = 1536 // text-embedding-3-small
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Chunking.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive: %d", c.Chunking.ChunkSize)
	}
	if c.Chunking.ChunkOverlap < 0 {
		return fmt.Errorf("chunk overlap cannot be negative: %d", c.Chunking.ChunkOverlap)
	}
	if c.Chunking.ChunkOverlap >= c.Chunking.ChunkSize {
		return fmt.Errorf("chunk overlap %d must be smaller than chunk size %d",
			c.Chunking.ChunkOverlap, c.Chunking.ChunkSize)
	}
	if c.Ingest.MaxFileSize <= 0 {
		return fmt.Errorf("max file size must be positive: %d", c.Ingest.MaxFileSize)
	}
	switch c.Store.Provider {
	case StoreProviderChromem, StoreProviderQdrant:
	default:
		return fmt.Errorf("unknown store provider: %q", c.Store.Provider)
	}
	if c.Store.VectorSize <= 0 {
		return fmt.Errorf("vector size must be positive: %d", c.Store.VectorSize)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return errors.New("logging format must be console or json")
	}
	return nil
}
