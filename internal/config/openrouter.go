package config

import (
	"os"
	"sync"
)

// OpenRouterConfig points at any OpenAI-compatible embeddings endpoint.
type OpenRouterConfig struct {
	APIKey         string
	BaseURL        string
	EmbeddingModel string
}

var (
	openRouterConfig *OpenRouterConfig
	openRouterOnce   sync.Once
)

func LoadOpenRouterConfig() *OpenRouterConfig {
	openRouterOnce.Do(func() {
		openRouterConfig = &OpenRouterConfig{
			APIKey:         os.Getenv("OPENROUTER_API_KEY"),
			BaseURL:        getString("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
			EmbeddingModel: getString("OPENROUTER_EMBEDDING_MODEL", "openai/text-embedding-3-small"),
		}
	})
	return openRouterConfig
}
