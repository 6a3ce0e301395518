package biz_test

import (
	"strings"
	"testing"

	"github.com/nichiki/markitdown-rag-sample/internal/docrag/biz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkerEmptyInput(t *testing.T) {
	chunker := biz.NewChunker(biz.DefaultChunkerConfig())

	assert.Nil(t, chunker.Split(""))
	assert.Nil(t, chunker.Split("   \n\t  \n"))
}

func TestChunkerShortInput(t *testing.T) {
	chunker := biz.NewChunker(biz.DefaultChunkerConfig())

	text := "A short document that fits in a single chunk."
	chunks := chunker.Split(text)

	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestChunkerExactSize(t *testing.T) {
	chunker := biz.NewChunker(&biz.ChunkerConfig{Size: 10, Overlap: 2})

	chunks := chunker.Split("abcdefghij")
	require.Len(t, chunks, 1)
	assert.Equal(t, "abcdefghij", chunks[0])
}

func TestChunkerRespectsSizeLimit(t *testing.T) {
	cfg := &biz.ChunkerConfig{Size: 100, Overlap: 20}
	chunker := biz.NewChunker(cfg)

	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 50)
	chunks := chunker.Split(text)

	require.NotEmpty(t, chunks)
	for i, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), cfg.Size, "chunk %d exceeds size", i)
		assert.NotEmpty(t, chunk, "chunk %d is empty", i)
	}
}

func TestChunkerPrefersParagraphBreaks(t *testing.T) {
	chunker := biz.NewChunker(&biz.ChunkerConfig{Size: 50, Overlap: 10})

	text := "First paragraph with some words in it.\n\nSecond paragraph with more words following."
	chunks := chunker.Split(text)

	require.GreaterOrEqual(t, len(chunks), 2)
	// The first cut should land after the paragraph break, not mid-word.
	assert.True(t, strings.HasSuffix(chunks[0], "\n\n"),
		"expected first chunk to end at the paragraph break, got %q", chunks[0])
}

func TestChunkerCutsAtHeadingEarlyInWindow(t *testing.T) {
	chunker := biz.NewChunker(&biz.ChunkerConfig{Size: 1000, Overlap: 100})

	// The only paragraph break sits around offset 1200, inside the
	// second chunk's window but before its midpoint. The cut must land
	// at the heading boundary, not fall through to a word cut.
	head := strings.Repeat("alpha beta gamma delta ", 52)
	tail := strings.Repeat("epsilon zeta eta theta ", 56)
	text := head + "\n\n# Heading\n\n" + tail

	chunks := chunker.Split(text)

	require.GreaterOrEqual(t, len(chunks), 3)
	assert.True(t, strings.HasSuffix(chunks[1], "# Heading\n\n"),
		"expected second chunk to end at the heading boundary, got tail %q",
		chunks[1][len(chunks[1])-20:])
}

func TestChunkerOverlapCarriesContext(t *testing.T) {
	cfg := &biz.ChunkerConfig{Size: 40, Overlap: 10}
	chunker := biz.NewChunker(cfg)

	text := strings.Repeat("abcdefghi ", 20)
	chunks := chunker.Split(text)

	require.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		tail := string(prev[len(prev)-cfg.Overlap:])
		assert.True(t, strings.HasPrefix(chunks[i], tail),
			"chunk %d does not start with the tail of chunk %d", i, i-1)
	}
}

func TestChunkerCoversWholeInput(t *testing.T) {
	chunker := biz.NewChunker(&biz.ChunkerConfig{Size: 80, Overlap: 16})

	var sb strings.Builder
	for i := 0; i < 40; i++ {
		sb.WriteString("Sentence number with several words inside.\n")
	}
	text := sb.String()

	chunks := chunker.Split(text)
	require.NotEmpty(t, chunks)

	// Every position of the original text must be covered by some chunk.
	// Because each chunk starts overlap runes before the previous cut,
	// concatenating chunks minus their overlaps reproduces the input.
	reconstructed := chunks[0]
	for i := 1; i < len(chunks); i++ {
		runes := []rune(chunks[i])
		reconstructed += string(runes[16:])
	}
	assert.Equal(t, text, reconstructed)
}

func TestChunkerDeterministic(t *testing.T) {
	chunker := biz.NewChunker(biz.DefaultChunkerConfig())

	text := strings.Repeat("Deterministic splitting must yield identical output. ", 100)
	first := chunker.Split(text)
	second := chunker.Split(text)

	assert.Equal(t, first, second)
}

func TestChunkerHardCutWithoutWhitespace(t *testing.T) {
	chunker := biz.NewChunker(&biz.ChunkerConfig{Size: 10, Overlap: 2})

	text := strings.Repeat("x", 35)
	chunks := chunker.Split(text)

	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 10)
	}
}

func TestChunkerClampsInvalidConfig(t *testing.T) {
	chunker := biz.NewChunker(&biz.ChunkerConfig{Size: 0, Overlap: -5})

	text := strings.Repeat("some text ", 200)
	chunks := chunker.Split(text)

	require.NotEmpty(t, chunks)
	defaults := biz.DefaultChunkerConfig()
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), defaults.Size)
	}
}

func TestChunkerMultibyteRunes(t *testing.T) {
	chunker := biz.NewChunker(&biz.ChunkerConfig{Size: 20, Overlap: 4})

	text := strings.Repeat("日本語のテキストです。", 10)
	chunks := chunker.Split(text)

	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 20)
		assert.True(t, strings.Contains(text, chunk), "chunk is not a substring of the input")
	}
}
