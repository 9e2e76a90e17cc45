package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fadilmartias/talent-match/internal/apperror"
	"github.com/fadilmartias/talent-match/internal/config"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

type embedContentFunc func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)

// GeminiEmbedder embeds text with the Gemini embedding models.
type GeminiEmbedder struct {
	*embedClient
	embedContent embedContentFunc
	model        string
}

func NewGeminiEmbedder(ctx context.Context, cfg *config.GeminiConfig, opts EmbedderOptions, logger *zap.Logger) (*GeminiEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, missingKey("GEMINI_API_KEY")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return newGeminiEmbedder(client.Models.EmbedContent, cfg.EmbeddingModel, opts, logger), nil
}

func newGeminiEmbedder(fn embedContentFunc, model string, opts EmbedderOptions, logger *zap.Logger) *GeminiEmbedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeminiEmbedder{
		embedClient:  newEmbedClient(opts, logger.Named("gemini")),
		embedContent: fn,
		model:        model,
	}
}

func (g *GeminiEmbedder) Model() string { return g.model }

func (g *GeminiEmbedder) Dimension() int { return g.opts.Dimension }

func (g *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return g.embed(ctx, "gemini.embed", text, func(ctx context.Context, text string) ([]float32, error) {
		var embedCfg *genai.EmbedContentConfig
		if g.opts.Dimension > 0 {
			embedCfg = &genai.EmbedContentConfig{
				OutputDimensionality: genai.Ptr(int32(g.opts.Dimension)),
			}
		}

		content := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
		resp, err := g.embedContent(ctx, g.model, content, embedCfg)
		if err != nil {
			return nil, classifyGeminiError(err)
		}
		if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
			return nil, apperror.New(apperror.KindProvider, "no embeddings returned")
		}
		return resp.Embeddings[0].Values, nil
	})
}

func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.Code, apiErr.Message)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return classifyStatus(apiErrPtr.Code, apiErrPtr.Message)
	}
	return classifyTransport(err)
}
