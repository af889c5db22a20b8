package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"docqa-go/internal/config"
)

type geminiProvider struct {
	cfg    config.GeminiConfig
	client *genai.Client
}

func newGeminiProvider(ctx context.Context, cfg config.GeminiConfig) (*geminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &geminiProvider{cfg: cfg, client: client}, nil
}

func (c *geminiProvider) Name() string { return "gemini" }

// Generate 调用 GenerateContent 并返回首个候选的文本。
func (c *geminiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.cfg.Model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	text := strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Stream 退化为一次完整生成后单次回调。
func (c *geminiProvider) Stream(ctx context.Context, prompt string, onDelta func(string) error) error {
	text, err := c.Generate(ctx, prompt)
	if err != nil {
		return err
	}
	return onDelta(text)
}
