// Package embedding 提供文本向量化客户端，支持 OpenAI 兼容接口与 Gemini。
package embedding

import (
	"context"
	"fmt"

	"docqa-go/internal/config"
)

// Embedder 是向量化客户端的抽象。Embed 按输入顺序返回向量。
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// NewEmbedder 根据 ai.provider 创建对应的向量化客户端。
func NewEmbedder(ctx context.Context, cfg config.AIConfig, dims int) (Embedder, error) {
	switch cfg.Provider {
	case "openai":
		return newOpenAIEmbedder(cfg.OpenAI, dims), nil
	case "gemini":
		return newGeminiEmbedder(ctx, cfg.Gemini, dims)
	}
	return nil, fmt.Errorf("没有可用的 embedding 提供方: %q", cfg.Provider)
}
