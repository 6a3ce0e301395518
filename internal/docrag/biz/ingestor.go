package biz

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/kart-io/logger"

	"github.com/nichiki/markitdown-rag-sample/internal/docrag/errs"
	"github.com/nichiki/markitdown-rag-sample/internal/docrag/store"
	"github.com/nichiki/markitdown-rag-sample/internal/model"
	"github.com/nichiki/markitdown-rag-sample/pkg/llm"
)

// IngestorConfig configures document indexing.
type IngestorConfig struct {
	// Collection is the vector collection name.
	Collection string
	// EmbeddingDim is the embedding vector dimension.
	EmbeddingDim int
	// EmbedBatchSize caps the number of chunks per embedding request.
	EmbedBatchSize int
}

// Ingestor chunks converted markdown, embeds the chunks, and indexes
// them in the vector store.
type Ingestor struct {
	store         store.VectorStore
	embedProvider llm.EmbeddingProvider
	chunker       *Chunker
	config        *IngestorConfig
}

// NewIngestor creates an ingestor.
func NewIngestor(
	vectorStore store.VectorStore,
	embedProvider llm.EmbeddingProvider,
	chunker *Chunker,
	config *IngestorConfig,
) *Ingestor {
	if config.EmbedBatchSize <= 0 {
		config.EmbedBatchSize = 64
	}
	return &Ingestor{
		store:         vectorStore,
		embedProvider: embedProvider,
		chunker:       chunker,
		config:        config,
	}
}

// EnsureCollection creates the vector collection if it does not exist.
func (i *Ingestor) EnsureCollection(ctx context.Context) error {
	config := &store.CollectionConfig{
		Name:        i.config.Collection,
		Description: "Document knowledge base collection",
		Dimension:   i.config.EmbeddingDim,
	}
	if err := i.store.EnsureCollection(ctx, config); err != nil {
		return fmt.Errorf("%w: failed to ensure collection: %v", errs.ErrIndexing, err)
	}
	return nil
}

// Index chunks and indexes a document's markdown. Existing chunks of
// the document are removed first so re-ingestion replaces rather than
// duplicates. Returns the number of chunks indexed.
func (i *Ingestor) Index(ctx context.Context, doc *model.Document, markdown string) (int, error) {
	texts := i.chunker.Split(markdown)
	logger.Infof("Document %s split into %d chunks", doc.ID, len(texts))

	// Drop any chunks from a previous ingestion of the same document
	if err := i.store.DeleteByDocument(ctx, i.config.Collection, doc.ID); err != nil {
		return 0, fmt.Errorf("%w: failed to clear previous chunks: %v", errs.ErrIndexing, err)
	}

	if len(texts) == 0 {
		return 0, nil
	}

	chunks := make([]*store.Chunk, len(texts))
	section := ""
	for idx, text := range texts {
		if h := lastHeading(text); h != "" {
			section = h
		}
		chunks[idx] = &store.Chunk{
			ID:           uuid.NewString(),
			DocumentID:   doc.ID,
			DocumentName: doc.Name,
			Index:        idx,
			Section:      section,
			Content:      text,
		}
	}

	if err := i.embedChunks(ctx, chunks); err != nil {
		return 0, err
	}

	if err := i.store.Insert(ctx, i.config.Collection, chunks); err != nil {
		return 0, fmt.Errorf("%w: failed to insert chunks: %v", errs.ErrIndexing, err)
	}

	if err := i.store.Flush(ctx, i.config.Collection); err != nil {
		return 0, fmt.Errorf("%w: failed to flush: %v", errs.ErrIndexing, err)
	}

	logger.Infow("document indexed",
		"document_id", doc.ID,
		"document_name", doc.Name,
		"chunks", len(chunks),
	)
	return len(chunks), nil
}

// Remove deletes all indexed chunks of a document.
func (i *Ingestor) Remove(ctx context.Context, documentID string) error {
	if err := i.store.DeleteByDocument(ctx, i.config.Collection, documentID); err != nil {
		return fmt.Errorf("%w: failed to delete chunks: %v", errs.ErrIndexing, err)
	}
	if err := i.store.Flush(ctx, i.config.Collection); err != nil {
		return fmt.Errorf("%w: failed to flush: %v", errs.ErrIndexing, err)
	}
	return nil
}

var headingPattern = regexp.MustCompile(`(?m)^#{1,6}[ \t]+(.+)$`)

// lastHeading returns the last markdown heading in text, or "".
func lastHeading(text string) string {
	matches := headingPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return ""
	}
	return strings.TrimSpace(matches[len(matches)-1][1])
}

// embedChunks fills in embeddings batch by batch.
func (i *Ingestor) embedChunks(ctx context.Context, chunks []*store.Chunk) error {
	for start := 0; start < len(chunks); start += i.config.EmbedBatchSize {
		end := start + i.config.EmbedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for j, chunk := range batch {
			texts[j] = chunk.Content
		}

		embeddings, err := i.embedProvider.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("%w: %v", errs.ErrEmbeddingService, err)
		}
		if len(embeddings) != len(batch) {
			return fmt.Errorf("%w: got %d embeddings for %d chunks",
				errs.ErrEmbeddingService, len(embeddings), len(batch))
		}

		for j, embedding := range embeddings {
			batch[j].Embedding = embedding
		}
	}
	return nil
}
