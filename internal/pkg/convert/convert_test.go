package convert_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nichiki/markitdown-rag-sample/internal/docrag/errs"
	"github.com/nichiki/markitdown-rag-sample/internal/pkg/convert"
)

func TestRegistrySupported(t *testing.T) {
	r := convert.NewRegistry()

	assert.True(t, r.Supported("file.txt"))
	assert.True(t, r.Supported("file.md"))
	assert.True(t, r.Supported("file.markdown"))
	assert.True(t, r.Supported("file.pdf"))
	assert.True(t, r.Supported("file.docx"))
	assert.True(t, r.Supported("file.xlsx"))
	assert.True(t, r.Supported("FILE.CSV"), "extension match must be case-insensitive")
	assert.False(t, r.Supported("file.exe"))
	assert.False(t, r.Supported("noextension"))
}

func TestRegistryExtensionsSorted(t *testing.T) {
	exts := convert.NewRegistry().Extensions()

	require.NotEmpty(t, exts)
	for i := 1; i < len(exts); i++ {
		assert.Less(t, exts[i-1], exts[i])
	}
	assert.Contains(t, exts, ".pptx")
	assert.Contains(t, exts, ".jpeg")
}

func TestRegistryUnsupportedExtension(t *testing.T) {
	r := convert.NewRegistry()

	_, err := r.Convert(context.Background(), []byte("data"), "binary.exe")
	assert.ErrorIs(t, err, errs.ErrUnsupportedFormat)
}

func TestConvertTextPassthrough(t *testing.T) {
	r := convert.NewRegistry()

	md, err := r.Convert(context.Background(), []byte("# Title\n\nBody text."), "doc.md")
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nBody text.", md)
}

func TestConvertTextNormalizesLineEndings(t *testing.T) {
	r := convert.NewRegistry()

	md, err := r.Convert(context.Background(), []byte("line one\r\nline two\rline three"), "doc.txt")
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\nline three", md)
}

func TestConvertTextDropsInvalidUTF8(t *testing.T) {
	r := convert.NewRegistry()

	md, err := r.Convert(context.Background(), []byte{'o', 'k', 0xff, 0xfe, '!'}, "doc.txt")
	require.NoError(t, err)
	assert.Equal(t, "ok!", md)
}

func TestConvertCSVTable(t *testing.T) {
	r := convert.NewRegistry()

	csvData := "name,age\nalice,30\nbob,25\n"
	md, err := r.Convert(context.Background(), []byte(csvData), "people.csv")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(md, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "| name | age |", lines[0])
	assert.Equal(t, "| --- | --- |", lines[1])
	assert.Equal(t, "| alice | 30 |", lines[2])
	assert.Equal(t, "| bob | 25 |", lines[3])
}

func TestConvertCSVEscapesPipes(t *testing.T) {
	r := convert.NewRegistry()

	md, err := r.Convert(context.Background(), []byte("col\na|b\n"), "data.csv")
	require.NoError(t, err)
	assert.Contains(t, md, `a\|b`)
}

func TestConvertCSVRaggedRows(t *testing.T) {
	r := convert.NewRegistry()

	md, err := r.Convert(context.Background(), []byte("a,b,c\n1,2\n"), "data.csv")
	require.NoError(t, err)
	assert.Contains(t, md, "| 1 | 2 |  |", "short rows are padded to the table width")
}

func TestConvertJSONFence(t *testing.T) {
	r := convert.NewRegistry()

	md, err := r.Convert(context.Background(), []byte(`{"key":"value","n":1}`), "data.json")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(md, "```json\n"))
	assert.True(t, strings.HasSuffix(md, "\n```\n"))
	assert.Contains(t, md, `"key": "value"`)
}

func TestConvertJSONInvalid(t *testing.T) {
	r := convert.NewRegistry()

	_, err := r.Convert(context.Background(), []byte("{broken"), "data.json")
	assert.ErrorIs(t, err, errs.ErrConversion)
}

func TestConvertXMLFence(t *testing.T) {
	r := convert.NewRegistry()

	md, err := r.Convert(context.Background(), []byte("<root><item>v</item></root>"), "data.xml")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(md, "```xml\n"))
	assert.Contains(t, md, "<item>v</item>")
}

func TestConvertXMLInvalid(t *testing.T) {
	r := convert.NewRegistry()

	_, err := r.Convert(context.Background(), []byte("<root><unclosed>"), "data.xml")
	assert.ErrorIs(t, err, errs.ErrConversion)
}

func TestConvertHTMLStructure(t *testing.T) {
	r := convert.NewRegistry()

	page := `<html><head><title>t</title><script>ignored()</script></head>
<body>
<h1>Main Title</h1>
<p>A paragraph with <strong>bold</strong> and <em>italic</em> text.</p>
<h2>Section</h2>
<ul><li>first item</li><li>second item</li></ul>
<p>Visit <a href="https://example.com">the site</a>.</p>
</body></html>`

	md, err := r.Convert(context.Background(), []byte(page), "page.html")
	require.NoError(t, err)

	assert.Contains(t, md, "# Main Title")
	assert.Contains(t, md, "## Section")
	assert.Contains(t, md, "**bold**")
	assert.Contains(t, md, "*italic*")
	assert.Contains(t, md, "- first item")
	assert.Contains(t, md, "- second item")
	assert.Contains(t, md, "[the site](https://example.com)")
	assert.NotContains(t, md, "ignored()")
	assert.NotContains(t, md, "<p>")
}

func TestConvertHTMLTable(t *testing.T) {
	r := convert.NewRegistry()

	page := `<table><tr><th>h1</th><th>h2</th></tr><tr><td>a</td><td>b</td></tr></table>`
	md, err := r.Convert(context.Background(), []byte(page), "table.htm")
	require.NoError(t, err)

	assert.Contains(t, md, "| h1 | h2 |")
	assert.Contains(t, md, "| a | b |")
}

func TestConvertPDFInvalid(t *testing.T) {
	r := convert.NewRegistry()

	_, err := r.Convert(context.Background(), []byte("not a pdf"), "file.pdf")
	assert.ErrorIs(t, err, errs.ErrConversion)
}

func TestConvertDOCXInvalid(t *testing.T) {
	r := convert.NewRegistry()

	_, err := r.Convert(context.Background(), []byte("not a zip archive"), "file.docx")
	assert.ErrorIs(t, err, errs.ErrConversion)
}

func TestConvertXLSXInvalid(t *testing.T) {
	r := convert.NewRegistry()

	_, err := r.Convert(context.Background(), []byte("not a workbook"), "file.xlsx")
	assert.ErrorIs(t, err, errs.ErrConversion)
}

func TestConvertImageMetadata(t *testing.T) {
	r := convert.NewRegistry()

	// Smallest valid PNG: 1x1 transparent pixel
	png := []byte{
		0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
		0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
		0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
		0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
		0x89, 0x00, 0x00, 0x00, 0x0d, 0x49, 0x44, 0x41,
		0x54, 0x78, 0x9c, 0x62, 0x00, 0x01, 0x00, 0x00,
		0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00,
		0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae,
		0x42, 0x60, 0x82,
	}

	md, err := r.Convert(context.Background(), png, "pixel.png")
	require.NoError(t, err)
	assert.Contains(t, md, "png")
	assert.Contains(t, md, "1x1")
}

func TestConvertImageInvalid(t *testing.T) {
	r := convert.NewRegistry()

	_, err := r.Convert(context.Background(), []byte("not an image"), "file.jpg")
	assert.ErrorIs(t, err, errs.ErrConversion)
}

func TestRegisterCustomConverter(t *testing.T) {
	r := convert.NewRegistry()
	r.Register(convert.ConverterFunc(
		func(_ context.Context, data []byte, _ string) (string, error) {
			return "custom:" + string(data), nil
		},
	), ".custom")

	md, err := r.Convert(context.Background(), []byte("payload"), "file.custom")
	require.NoError(t, err)
	assert.Equal(t, "custom:payload", md)
}
