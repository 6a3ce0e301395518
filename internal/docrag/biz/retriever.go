package biz

import (
	"context"
	"fmt"

	"github.com/kart-io/logger"

	"github.com/nichiki/markitdown-rag-sample/internal/docrag/errs"
	"github.com/nichiki/markitdown-rag-sample/internal/docrag/store"
	"github.com/nichiki/markitdown-rag-sample/pkg/llm"
)

// RetrieverConfig configures similarity search.
type RetrieverConfig struct {
	// TopK is the number of chunks to retrieve.
	TopK int
	// Collection is the vector collection name.
	Collection string
}

// Retriever embeds a question and finds the closest chunks.
type Retriever struct {
	store         store.VectorStore
	embedProvider llm.EmbeddingProvider
	config        *RetrieverConfig
}

// NewRetriever creates a retriever.
func NewRetriever(
	vectorStore store.VectorStore,
	embedProvider llm.EmbeddingProvider,
	config *RetrieverConfig,
) *Retriever {
	return &Retriever{
		store:         vectorStore,
		embedProvider: embedProvider,
		config:        config,
	}
}

// Retrieve returns up to TopK chunks most similar to the question.
// An empty index yields an empty result, not an error.
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]*store.SearchResult, error) {
	embedding, err := r.embedProvider.EmbedSingle(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to embed question: %v", errs.ErrEmbeddingService, err)
	}

	results, err := r.store.Search(ctx, r.config.Collection, embedding, r.config.TopK)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrSearch, err)
	}

	logger.Infof("Retrieved %d chunks for query", len(results))
	return results, nil
}
