package services

import (
	"context"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/pkg/errors"

	"github.com/rohits-web03/insurguide/internal/config"
	"github.com/rohits-web03/insurguide/internal/repositories"
)

// Embedder calls an OpenAI-compatible embeddings endpoint.
type Embedder struct {
	embeddings openai.EmbeddingService
	model      string
}

// NewEmbedder returns nil when no API key is configured.
func NewEmbedder(cfg config.LLMConfig, httpClient *http.Client) *Embedder {
	if cfg.APIKey == "" {
		return nil
	}
	client := newOpenAIClient(cfg, httpClient)
	return &Embedder{
		embeddings: client.Embeddings,
		model:      cfg.EmbeddingModel,
	}
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := e.embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, classifyOpenAIError("embeddings", err)
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(out) {
			return nil, errors.Wrapf(repositories.ErrUpstream, "embedding index %d out of range", d.Index)
		}
		vec := make([]float32, len(d.Embedding))
		for i, v := range d.Embedding {
			vec[i] = float32(v)
		}
		out[d.Index] = vec
	}
	for i, v := range out {
		if len(v) == 0 {
			return nil, errors.Wrapf(repositories.ErrUpstream, "no embedding returned for input %d", i)
		}
	}
	return out, nil
}
