package convert

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"
)

// convertDOCX extracts paragraph text from a Word document. The parser
// walks word/document.xml directly; w:t runs carry the text, w:p and
// table rows mark paragraph breaks.
func convertDOCX(_ context.Context, data []byte, _ string) (string, error) {
	rc, err := openZipEntry(data, "word/document.xml")
	if err != nil {
		return "", err
	}
	defer func() { _ = rc.Close() }()

	text, err := extractWordXML(rc)
	if err != nil {
		return "", err
	}
	return text, nil
}

// convertPPTX extracts slide text from a PowerPoint deck. Slides are
// processed in numeric order and each becomes a markdown section.
func convertPPTX(_ context.Context, data []byte, _ string) (string, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open archive: %w", err)
	}

	var slides []*zip.File
	for _, f := range r.File {
		if strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml") {
			slides = append(slides, f)
		}
	}
	if len(slides) == 0 {
		return "", fmt.Errorf("no slides found")
	}

	sort.Slice(slides, func(i, j int) bool {
		return slideNumber(slides[i].Name) < slideNumber(slides[j].Name)
	})

	var buf strings.Builder
	for i, slide := range slides {
		rc, err := slide.Open()
		if err != nil {
			return "", err
		}
		text, err := extractWordXML(rc)
		_ = rc.Close()
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		fmt.Fprintf(&buf, "## Slide %d\n\n%s\n\n", i+1, text)
	}

	return buf.String(), nil
}

func openZipEntry(data []byte, name string) (io.ReadCloser, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	for _, f := range r.File {
		if strings.EqualFold(f.Name, name) {
			return f.Open()
		}
	}
	return nil, fmt.Errorf("entry %s not found", name)
}

// extractWordXML pulls text runs out of WordprocessingML or DrawingML.
// Both formats use <t> elements for text and <p> for paragraphs.
func extractWordXML(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var buf bytes.Buffer
	var lastWasNewline bool

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("malformed XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t", "instrText":
				var text string
				if err := dec.DecodeElement(&text, &t); err == nil {
					buf.WriteString(text)
					lastWasNewline = false
				}
			case "tab":
				buf.WriteByte('\t')
				lastWasNewline = false
			case "br", "cr":
				buf.WriteByte('\n')
				lastWasNewline = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p", "tr":
				if !lastWasNewline {
					buf.WriteByte('\n')
					lastWasNewline = true
				}
			case "tc":
				if !lastWasNewline {
					buf.WriteByte('\t')
				}
			}
		}
	}

	return buf.String(), nil
}

func slideNumber(name string) int {
	base := strings.TrimSuffix(strings.TrimPrefix(name, "ppt/slides/slide"), ".xml")
	n := 0
	for _, r := range base {
		if r < '0' || r > '9' {
			return n
		}
		n = n*10 + int(r-'0')
	}
	return n
}
