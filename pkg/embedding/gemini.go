package embedding

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"docqa-go/internal/config"
)

type geminiEmbedder struct {
	cfg    config.GeminiConfig
	dims   int
	client *genai.Client
}

func newGeminiEmbedder(ctx context.Context, cfg config.GeminiConfig, dims int) (*geminiEmbedder, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &geminiEmbedder{cfg: cfg, dims: dims, client: client}, nil
}

// Embed 逐条调用 Gemini EmbedContent。Gemini 的批量接口对输入格式限制较多，
// 这里保持与检索语义一致的逐条向量化。
func (c *geminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for i, text := range texts {
		cfg := genai.EmbedContentConfig{
			TaskType: "RETRIEVAL_DOCUMENT",
		}
		res, err := c.client.Models.EmbedContent(ctx, c.cfg.EmbeddingModel, genai.Text(text), &cfg)
		if err != nil {
			return nil, fmt.Errorf("embedding failed for input %d: %w", i, err)
		}
		if res == nil || len(res.Embeddings) == 0 || len(res.Embeddings[0].Values) == 0 {
			return nil, errors.New("no embedding returned")
		}
		vectors = append(vectors, res.Embeddings[0].Values)
	}
	return vectors, nil
}

func (c *geminiEmbedder) Dimensions() int {
	return c.dims
}
