// Package store provides the vector store abstraction used by the
// document pipeline.
package store

import (
	"context"
)

// Chunk is a document chunk with its embedding, ready for indexing.
type Chunk struct {
	// ID is the chunk UUID.
	ID string
	// DocumentID is the owning document ID.
	DocumentID string
	// DocumentName is the original file name.
	DocumentName string
	// Index is the position of the chunk within the document.
	Index int
	// Section is the most recent markdown heading at the chunk's
	// position, empty before the first heading.
	Section string
	// Content is the chunk text.
	Content string
	// Embedding is the chunk embedding vector.
	Embedding []float32
}

// SearchResult is a retrieved chunk with its similarity score.
type SearchResult struct {
	// ID is the chunk UUID.
	ID string
	// DocumentID is the owning document ID.
	DocumentID string
	// DocumentName is the original file name.
	DocumentName string
	// Index is the position of the chunk within the document.
	Index int
	// Section is the heading context recorded at indexing time.
	Section string
	// Content is the chunk text.
	Content string
	// Score is the similarity score. Lower is closer for L2 distance.
	Score float32
}

// CollectionConfig describes a vector collection.
type CollectionConfig struct {
	// Name is the collection name.
	Name string
	// Description is a human readable description.
	Description string
	// Dimension is the embedding vector dimension.
	Dimension int
}

// VectorStore is the vector database interface.
type VectorStore interface {
	// EnsureCollection creates the collection if it does not exist.
	EnsureCollection(ctx context.Context, config *CollectionConfig) error

	// Insert indexes document chunks in a single batch.
	Insert(ctx context.Context, collection string, chunks []*Chunk) error

	// Search performs vector similarity search.
	Search(ctx context.Context, collection string, embedding []float32, topK int) ([]*SearchResult, error)

	// DeleteByDocument removes all chunks of a document.
	DeleteByDocument(ctx context.Context, collection string, documentID string) error

	// Flush persists pending writes.
	Flush(ctx context.Context, collection string) error

	// Stats returns the number of indexed chunks.
	Stats(ctx context.Context, collection string) (int64, error)

	// Close closes the connection.
	Close(ctx context.Context) error
}
