package vectorstore

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/repochat/internal/config"
	"github.com/fyrsmithlabs/repochat/internal/embeddings"
)

// New creates the Store selected by cfg.Provider.
func New(cfg config.StoreConfig, embedder *embeddings.Service, logger *zap.Logger) (Store, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is required", ErrInvalidConfig)
	}
	switch cfg.Provider {
	case config.StoreProviderChromem:
		return NewChromemStore(cfg, embedder, logger)
	case config.StoreProviderQdrant:
		return NewQdrantStore(cfg, embedder.Embedder(), logger)
	default:
		return nil, fmt.Errorf("%w: unknown store provider %q", ErrInvalidConfig, cfg.Provider)
	}
}
