package service

import (
	"context"
	"fmt"

	"github.com/fadilmartias/talent-match/internal/config"
	"go.uber.org/zap"
)

// EmbeddingProvider is what the matching store needs from a provider, plus the
// vector size the database column is created with.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
	Dimension() int
}

// NewEmbeddingProvider picks the provider named by EMBEDDING_PROVIDER.
func NewEmbeddingProvider(ctx context.Context, logger *zap.Logger) (EmbeddingProvider, error) {
	embeddingCfg := config.LoadEmbeddingConfig()
	opts := EmbedderOptionsFromConfig(embeddingCfg)

	switch embeddingCfg.Provider {
	case "gemini", "":
		return NewGeminiEmbedder(ctx, config.LoadGeminiConfig(), opts, logger)
	case "openrouter", "openai":
		return NewOpenRouterEmbedder(config.LoadOpenRouterConfig(), opts, logger)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", embeddingCfg.Provider)
	}
}
