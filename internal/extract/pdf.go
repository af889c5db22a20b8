package extract

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"docqa-go/pkg/log"
)

// extractPDF 逐页提取 PDF 文本。单页失败只告警并跳过，所有页都没有
// 文本时才返回错误。pageHeaders 开启时每页前插入页码标记。
func (e *nativeExtractor) extractPDF(r io.ReaderAt, size int64) (string, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("failed to extract text from PDF: %w", err)
	}

	var sb strings.Builder
	total := reader.NumPage()
	for n := 1; n <= total; n++ {
		text, err := pageText(reader.Page(n))
		if err != nil {
			log.Warnf("[Extract] PDF 第 %d 页解析失败, 跳过: %v", n, err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		if e.pageHeaders {
			fmt.Fprintf(&sb, "\n--- Page %d ---\n", n)
		} else if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(text)
	}

	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", fmt.Errorf("failed to extract text from PDF: %w", ErrNoText)
	}
	return out, nil
}

// pageText 提取单页文本。解析库在损坏页面上会 panic，这里统一转成错误。
func pageText(p pdf.Page) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	if p.V.IsNull() {
		return "", nil
	}
	return p.GetPlainText(nil)
}
