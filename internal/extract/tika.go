package extract

import (
	"context"
	"fmt"
	"io"
	"strings"

	"docqa-go/pkg/tika"
)

// tikaExtractor 把提取工作交给外部 Tika 服务，所有类型统一走 HTTP。
type tikaExtractor struct {
	client *tika.Client
}

func (e *tikaExtractor) Extract(ctx context.Context, r io.ReaderAt, size int64, filename string) (string, error) {
	text, err := e.client.ExtractText(ctx, io.NewSectionReader(r, 0, size), filename)
	if err != nil {
		return "", fmt.Errorf("failed to extract text via tika: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}
