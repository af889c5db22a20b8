// Package extract 负责从上传的文件中提取纯文本，是文档入库流水线的第一步。
package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"docqa-go/internal/config"
	"docqa-go/pkg/tika"
)

// ErrNoText 表示文件解析成功但没有提取到任何文本内容。
var ErrNoText = errors.New("no text could be extracted from the file")

// Extractor 按文件扩展名从原始字节中提取纯文本。
type Extractor interface {
	Extract(ctx context.Context, r io.ReaderAt, size int64, filename string) (string, error)
}

// NewExtractor 根据配置选择本地解析或远程 Tika 服务。
func NewExtractor(cfg config.ExtractConfig) Extractor {
	if cfg.Backend == "tika" {
		return &tikaExtractor{client: tika.NewClient(cfg.TikaURL)}
	}
	return &nativeExtractor{pageHeaders: cfg.PDFPageHeaders}
}

// nativeExtractor 在进程内用纯 Go 解析器提取文本。
type nativeExtractor struct {
	pageHeaders bool
}

func (e *nativeExtractor) Extract(_ context.Context, r io.ReaderAt, size int64, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return e.extractPDF(r, size)
	case ".docx":
		return extractDOCX(r, size)
	case ".txt", ".md":
		return extractPlainText(r, size)
	}
	return "", fmt.Errorf("unsupported file type: %s", ext)
}
