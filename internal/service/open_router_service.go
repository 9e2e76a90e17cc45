package service

import (
	"context"
	"strings"

	"github.com/fadilmartias/talent-match/internal/apperror"
	"github.com/fadilmartias/talent-match/internal/config"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// OpenRouterEmbedder talks to any OpenAI-compatible /embeddings endpoint
// (OpenRouter, OpenAI, a local gateway).
type OpenRouterEmbedder struct {
	*embedClient
	client *resty.Client
	model  string
}

func NewOpenRouterEmbedder(cfg *config.OpenRouterConfig, opts EmbedderOptions, logger *zap.Logger) (*OpenRouterEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, missingKey("OPENROUTER_API_KEY")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json")

	return &OpenRouterEmbedder{
		embedClient: newEmbedClient(opts, logger.Named("openrouter")),
		client:      client,
		model:       cfg.EmbeddingModel,
	}, nil
}

func (o *OpenRouterEmbedder) Model() string { return o.model }

func (o *OpenRouterEmbedder) Dimension() int { return o.opts.Dimension }

func (o *OpenRouterEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return o.embed(ctx, "openrouter.embed", text, func(ctx context.Context, text string) ([]float32, error) {
		body := map[string]any{
			"model": o.model,
			"input": text,
		}
		if o.opts.Dimension > 0 {
			body["dimensions"] = o.opts.Dimension
		}

		resp, err := o.client.R().
			SetContext(ctx).
			SetBody(body).
			Post("/embeddings")
		if err != nil {
			return nil, classifyTransport(err)
		}
		if resp.IsError() {
			msg := gjson.Get(resp.String(), "error.message").String()
			if msg == "" {
				msg = resp.Status()
			}
			return nil, classifyStatus(resp.StatusCode(), msg)
		}

		values := gjson.Get(resp.String(), "data.0.embedding").Array()
		if len(values) == 0 {
			return nil, apperror.New(apperror.KindProvider, "no embeddings returned")
		}
		vec := make([]float32, len(values))
		for i, v := range values {
			vec[i] = float32(v.Float())
		}
		return vec, nil
	})
}
