package biz

import (
	"strings"
)

// ChunkerConfig controls text splitting.
type ChunkerConfig struct {
	// Size is the target chunk size in runes.
	Size int
	// Overlap is the number of runes carried over between chunks.
	Overlap int
}

// DefaultChunkerConfig returns the default chunking configuration.
func DefaultChunkerConfig() *ChunkerConfig {
	return &ChunkerConfig{Size: 1000, Overlap: 100}
}

// Chunker splits markdown into overlapping chunks. Splitting is
// deterministic: the same input always yields the same chunks.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker creates a chunker. Invalid values fall back to defaults.
func NewChunker(config *ChunkerConfig) *Chunker {
	if config == nil {
		config = DefaultChunkerConfig()
	}
	size := config.Size
	if size <= 0 {
		size = 1000
	}
	overlap := config.Overlap
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size - 1
	}
	return &Chunker{size: size, overlap: overlap}
}

// Split divides text into chunks of at most the target size. Cut points
// prefer paragraph breaks, then line breaks, then spaces near the
// target; a hard cut is the last resort. Whitespace-only input yields
// no chunks.
func (c *Chunker) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	if len(runes) <= c.size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + c.size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}

		cut := c.findCut(runes, start, end)
		chunks = append(chunks, string(runes[start:cut]))

		next := cut - c.overlap
		if next <= start {
			// Overlap must not stall progress
			next = start + 1
		}
		start = next
	}

	return chunks
}

// findCut looks backwards from the target end for a natural boundary.
// Paragraph breaks are honored anywhere in the window past the overlap;
// line and word cuts are confined to the second half so they do not
// produce tiny chunks.
func (c *Chunker) findCut(runes []rune, start, end int) int {
	// Paragraph break: cut after the blank line. The cut must land past
	// the overlap or the next chunk cannot advance.
	if i := lastIndexSeq(runes, start+c.overlap, end, '\n', '\n'); i >= 0 {
		return i + 2
	}

	minCut := start + c.size/2

	// Line break
	for i := end - 1; i >= minCut; i-- {
		if runes[i] == '\n' {
			return i + 1
		}
	}
	// Word boundary
	for i := end - 1; i >= minCut; i-- {
		if runes[i] == ' ' || runes[i] == '\t' {
			return i + 1
		}
	}
	// Hard cut
	return end
}

// lastIndexSeq finds the last occurrence of two consecutive runes
// within [from, to), returning the index of the first rune or -1.
func lastIndexSeq(runes []rune, from, to int, a, b rune) int {
	for i := to - 2; i >= from; i-- {
		if runes[i] == a && runes[i+1] == b {
			return i
		}
	}
	return -1
}
