package adapter

import (
	"context"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"relatus/pkg/errors"
	"relatus/pkg/logger"
)

// EmbeddingAdapter generates text embeddings through a LiteLLM-compatible
// endpoint. Blank input yields (nil, nil): "no embedding" is a valid state,
// not an error.
type EmbeddingAdapter struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewEmbeddingAdapter creates a new embedding adapter
func NewEmbeddingAdapter(baseURL, apiKey, model string) *EmbeddingAdapter {
	// For LiteLLM, we can use a dummy API key if not provided
	if apiKey == "" {
		apiKey = "dummy-key"
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL + "/v1"

	return &EmbeddingAdapter{
		client: openai.NewClientWithConfig(config),
		model:  model,
		logger: logger.Named("embeddings"),
	}
}

// Embed turns free text into a fixed-length vector
func (a *EmbeddingAdapter) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(a.model),
		Input: []string{text},
	})
	if err != nil {
		a.logger.Warn("Embedding request failed", zap.Error(err))
		return nil, errors.NewEmbeddingFailed(a.model, err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		a.logger.Warn("Embedding response was empty", zap.String("model", a.model))
		return nil, nil
	}

	return resp.Data[0].Embedding, nil
}
