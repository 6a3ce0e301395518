package convert

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nichiki/markitdown-rag-sample/pkg/utils/json"
)

// convertJSON validates the document and renders it as a fenced code
// block, pretty-printed for readability.
func convertJSON(_ context.Context, data []byte, _ string) (string, error) {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}

	pretty, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return "", err
	}

	return "```json\n" + string(pretty) + "\n```\n", nil
}

// convertXML validates the document and renders it as a fenced code block.
func convertXML(_ context.Context, data []byte, _ string) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("invalid XML: %w", err)
		}
	}

	return "```xml\n" + strings.TrimRight(sanitizeUTF8(data), "\n") + "\n```\n", nil
}
