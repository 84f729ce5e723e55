package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/Udhayakumar116/ai-question-gen/internal/core"
)

const defaultEmbedModel = "text-embedding-004"

type GeminiEmbedder struct {
	client    *genai.Client
	modelName string
	dim       int
}

var _ core.EmbeddingProvider = (*GeminiEmbedder)(nil)

// NewGeminiEmbedder builds an embedder. A positive dim makes EmbedTexts
// reject vectors of any other length.
func NewGeminiEmbedder(ctx context.Context, apiKey, modelName string, dim int) (*GeminiEmbedder, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = defaultEmbedModel
	}
	return &GeminiEmbedder{client: cl, modelName: modelName, dim: dim}, nil
}

func (g *GeminiEmbedder) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// EmbedTexts batches all texts in one request via EmbeddingBatch.
func (g *GeminiEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	em := g.client.EmbeddingModel(g.modelName)

	batch := em.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}

	resp, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("gemini batch embed: %w", err)
	}

	out := make([][]float32, 0, len(resp.Embeddings))
	for _, e := range resp.Embeddings {
		if g.dim > 0 && len(e.Values) != g.dim {
			return nil, fmt.Errorf("gemini batch embed: got %d dimensions, want %d", len(e.Values), g.dim)
		}
		out = append(out, e.Values)
	}
	return out, nil
}
