// Package convert turns uploaded files into markdown text.
// Each supported extension maps to a converter. All converters produce
// plain markdown so the rest of the pipeline only ever sees one format.
package convert

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nichiki/markitdown-rag-sample/internal/docrag/errs"
)

// Converter converts raw file bytes into markdown.
type Converter interface {
	// Convert produces markdown from the file content.
	Convert(ctx context.Context, data []byte, name string) (string, error)
}

// ConverterFunc adapts a function to the Converter interface.
type ConverterFunc func(ctx context.Context, data []byte, name string) (string, error)

// Convert implements Converter.
func (f ConverterFunc) Convert(ctx context.Context, data []byte, name string) (string, error) {
	return f(ctx, data, name)
}

// Registry dispatches conversion by file extension.
type Registry struct {
	converters map[string]Converter
}

// NewRegistry creates a registry with all built-in converters installed.
func NewRegistry() *Registry {
	r := &Registry{converters: make(map[string]Converter)}

	text := ConverterFunc(convertText)
	r.Register(text, ".txt", ".md", ".markdown")
	r.Register(ConverterFunc(convertHTML), ".html", ".htm")
	r.Register(ConverterFunc(convertCSV), ".csv")
	r.Register(ConverterFunc(convertJSON), ".json")
	r.Register(ConverterFunc(convertXML), ".xml")
	r.Register(ConverterFunc(convertPDF), ".pdf")
	r.Register(ConverterFunc(convertDOCX), ".docx")
	r.Register(ConverterFunc(convertPPTX), ".pptx")
	r.Register(ConverterFunc(convertXLSX), ".xlsx")
	r.Register(ConverterFunc(convertImage), ".jpg", ".jpeg", ".png")

	return r
}

// Register installs a converter for the given extensions.
// Extensions are matched case-insensitively and must include the dot.
func (r *Registry) Register(c Converter, exts ...string) {
	for _, ext := range exts {
		r.converters[strings.ToLower(ext)] = c
	}
}

// Supported reports whether the file name has a convertible extension.
func (r *Registry) Supported(name string) bool {
	_, ok := r.converters[normalizeExt(name)]
	return ok
}

// Extensions returns the sorted list of supported extensions.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.converters))
	for ext := range r.converters {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Convert converts the file to markdown based on its extension.
func (r *Registry) Convert(ctx context.Context, data []byte, name string) (string, error) {
	ext := normalizeExt(name)
	c, ok := r.converters[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", errs.ErrUnsupportedFormat, ext)
	}

	md, err := c.Convert(ctx, data, name)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", errs.ErrConversion, name, err)
	}
	return md, nil
}

func normalizeExt(name string) string {
	return strings.ToLower(filepath.Ext(name))
}
