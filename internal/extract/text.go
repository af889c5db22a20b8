package extract

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// extractPlainText 读取纯文本文件并尝试多种编码解码。
func extractPlainText(r io.ReaderAt, size int64) (string, error) {
	data, err := io.ReadAll(io.NewSectionReader(r, 0, size))
	if err != nil {
		return "", fmt.Errorf("failed to extract text from text file: %w", err)
	}

	text := strings.TrimSpace(decodeText(data))
	if text == "" {
		return "", fmt.Errorf("failed to extract text from text file: %w", ErrNoText)
	}
	return text, nil
}

// decodeText 依次尝试 UTF-8、带 BOM 的 UTF-16、Latin-1、Windows-1252。
// Latin-1 对任意字节序列都能成功，所以解码本身不会失败。
func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(bytes.TrimPrefix(data, utf8BOM))
	}

	if len(data) >= 2 && ((data[0] == 0xFF && data[1] == 0xFE) || (data[0] == 0xFE && data[1] == 0xFF)) {
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		if out, err := dec.Bytes(data); err == nil && utf8.Valid(out) {
			return string(out)
		}
	}

	if out, err := charmap.ISO8859_1.NewDecoder().Bytes(data); err == nil {
		return string(out)
	}
	out, _ := charmap.Windows1252.NewDecoder().Bytes(data)
	return string(out)
}
