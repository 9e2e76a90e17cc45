package config

import (
	"sync"
	"time"
)

type EmbeddingConfig struct {
	Provider   string // gemini | openai
	Dimension  int
	Timeout    time.Duration
	RateLimit  float64 // requests per second towards the provider
	RateBurst  int
	MaxRetries int
}

var (
	embeddingConfig *EmbeddingConfig
	embeddingOnce   sync.Once
)

func LoadEmbeddingConfig() *EmbeddingConfig {
	embeddingOnce.Do(func() {
		embeddingConfig = &EmbeddingConfig{
			Provider:   getString("EMBEDDING_PROVIDER", "gemini"),
			Dimension:  getInt("EMBEDDING_DIMENSION", 768),
			Timeout:    getDuration("EMBEDDING_TIMEOUT", 15*time.Second),
			RateLimit:  getFloat("EMBEDDING_RPS", 5),
			RateBurst:  getInt("EMBEDDING_BURST", 5),
			MaxRetries: getInt("EMBEDDING_MAX_RETRIES", 1),
		}
	})
	return embeddingConfig
}
