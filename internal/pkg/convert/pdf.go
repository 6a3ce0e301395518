package convert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// convertPDF extracts the plain text of a PDF page by page. Each page
// becomes a markdown section so chunking can respect page boundaries.
func convertPDF(_ context.Context, data []byte, _ string) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Fall back to whole-document extraction below
			break
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		if numPages > 1 {
			fmt.Fprintf(&buf, "## Page %d\n\n", i)
		}
		buf.WriteString(text)
		buf.WriteString("\n\n")
	}

	if buf.Len() > 0 {
		return buf.String(), nil
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract text: %w", err)
	}
	out, err := io.ReadAll(plain)
	if err != nil {
		return "", err
	}
	return sanitizeUTF8(out), nil
}
