// Package llm 提供生成式模型客户端，支持 OpenAI 兼容接口与 Gemini。
package llm

import (
	"context"
	"errors"
	"fmt"

	"docqa-go/internal/config"
)

// ErrEmptyResponse 表示模型调用成功但没有返回任何内容。
// 调用方对它与传输错误采用同样的降级策略。
var ErrEmptyResponse = errors.New("empty response from model")

// Provider 是回答生成的抽象：输入完整提示词，输出回答文本。
// 提示词的拼装由上层负责，Provider 不关心检索细节。
type Provider interface {
	// Generate 一次性返回完整回答。
	Generate(ctx context.Context, prompt string) (string, error)
	// Stream 以增量方式返回回答，onDelta 返回错误时终止。
	// 不支持流式的实现可以退化为一次完整回调。
	Stream(ctx context.Context, prompt string, onDelta func(delta string) error) error
	// Name 返回提供方标识，用于日志与统计。
	Name() string
}

// NewProvider 根据 ai.provider 创建对应的客户端。
// Provider 为空时返回 (nil, nil)，表示使用模板回答模式。
func NewProvider(ctx context.Context, cfg config.AIConfig) (Provider, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case "openai":
		return newOpenAIProvider(cfg.OpenAI), nil
	case "gemini":
		return newGeminiProvider(ctx, cfg.Gemini)
	}
	return nil, fmt.Errorf("未知的 ai.provider: %q", cfg.Provider)
}
