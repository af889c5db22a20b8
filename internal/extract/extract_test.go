package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa-go/internal/config"
)

// createTestDOCX 在内存中构造一个最小可用的 docx 文件。
func createTestDOCX(documentXML string) []byte {
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	contentTypes, _ := w.Create("[Content_Types].xml")
	contentTypes.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
</Types>`))

	if documentXML != "" {
		doc, _ := w.Create("word/document.xml")
		doc.Write([]byte(documentXML))
	}

	w.Close()
	return buf.Bytes()
}

func extract(t *testing.T, data []byte, filename string) (string, error) {
	t.Helper()
	e := NewExtractor(config.ExtractConfig{Backend: "native"})
	return e.Extract(context.Background(), bytes.NewReader(data), int64(len(data)), filename)
}

func TestExtractDOCX_ParagraphsAndRuns(t *testing.T) {
	docXML := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Hello </w:t></w:r><w:r><w:t>World</w:t></w:r></w:p>
<w:p><w:r><w:t>Second paragraph</w:t></w:r></w:p>
</w:body>
</w:document>`

	text, err := extract(t, createTestDOCX(docXML), "doc.docx")
	require.NoError(t, err)
	assert.Equal(t, "Hello World\nSecond paragraph", text)
}

func TestExtractDOCX_Tables(t *testing.T) {
	docXML := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Intro</w:t></w:r></w:p>
<w:tbl>
<w:tr>
<w:tc><w:p><w:r><w:t>Name</w:t></w:r></w:p></w:tc>
<w:tc><w:p><w:r><w:t>Value</w:t></w:r></w:p></w:tc>
</w:tr>
<w:tr>
<w:tc><w:p><w:r><w:t>alpha</w:t></w:r></w:p></w:tc>
<w:tc><w:p><w:r><w:t>1</w:t></w:r></w:p></w:tc>
</w:tr>
</w:tbl>
</w:body>
</w:document>`

	text, err := extract(t, createTestDOCX(docXML), "doc.docx")
	require.NoError(t, err)
	assert.Contains(t, text, "Intro")
	assert.Contains(t, text, "Name | Value")
	assert.Contains(t, text, "alpha | 1")
}

func TestExtractDOCX_Empty(t *testing.T) {
	docXML := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body></w:body>
</w:document>`

	_, err := extract(t, createTestDOCX(docXML), "doc.docx")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoText)
}

func TestExtractDOCX_InvalidZip(t *testing.T) {
	_, err := extract(t, []byte("not a zip file"), "doc.docx")
	assert.Error(t, err)
}

func TestExtractDOCX_MissingDocumentXML(t *testing.T) {
	_, err := extract(t, createTestDOCX(""), "doc.docx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document.xml")
}

func TestExtractText_UTF8(t *testing.T) {
	text, err := extract(t, []byte("  plain text content\n"), "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "plain text content", text)
}

func TestExtractText_UTF8BOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("bom text")...)
	text, err := extract(t, data, "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "bom text", text)
}

func TestExtractText_UTF16LE(t *testing.T) {
	// "hi" 的 UTF-16 小端编码, 带 BOM
	data := []byte{0xFF, 0xFE, 'h', 0x00, 'i', 0x00}
	text, err := extract(t, data, "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "hi", text)
}

func TestExtractText_Latin1(t *testing.T) {
	// "café" 的 Latin-1 编码, 0xE9 不是合法 UTF-8
	data := []byte{'c', 'a', 'f', 0xE9}
	text, err := extract(t, data, "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "café", text)
}

func TestExtractText_Empty(t *testing.T) {
	_, err := extract(t, []byte("   \n\t  "), "notes.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoText)
}

func TestExtractText_Markdown(t *testing.T) {
	text, err := extract(t, []byte("# Title\n\nBody here."), "readme.md")
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nBody here.", text)
}

func TestExtract_UnsupportedType(t *testing.T) {
	_, err := extract(t, []byte("data"), "image.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}
