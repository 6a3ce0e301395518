package convert

import (
	"bytes"
	"context"
	"strings"
	"unicode/utf8"
)

// convertText handles plain text and markdown files. Content passes
// through unchanged apart from dropping invalid UTF-8 and normalizing
// line endings.
func convertText(_ context.Context, data []byte, _ string) (string, error) {
	text := sanitizeUTF8(data)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return text, nil
}

// sanitizeUTF8 drops bytes that do not form valid UTF-8 sequences.
func sanitizeUTF8(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}

	var out bytes.Buffer
	out.Grow(len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			data = data[1:]
			continue
		}
		out.WriteRune(r)
		data = data[size:]
	}
	return out.String()
}
