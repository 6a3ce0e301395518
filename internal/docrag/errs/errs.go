// Package errs defines the error kinds of the document pipeline.
// Each stage wraps its failures with one of these sentinels so callers
// can map them to HTTP status codes without parsing messages.
package errs

import "errors"

var (
	// ErrUnsupportedFormat means the file extension is not convertible.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrConversion means the converter failed to produce markdown.
	ErrConversion = errors.New("conversion failed")

	// ErrStorage means a filesystem read or write failed.
	ErrStorage = errors.New("storage error")

	// ErrIndexing means the vector index rejected a write.
	ErrIndexing = errors.New("indexing error")

	// ErrSearch means similarity search against the index failed.
	ErrSearch = errors.New("search error")

	// ErrEmbeddingService means the embedding provider failed.
	ErrEmbeddingService = errors.New("embedding service error")

	// ErrGeneration means the chat provider failed to produce an answer.
	ErrGeneration = errors.New("generation error")

	// ErrNotFound means the requested document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrConfiguration means the service is missing required configuration.
	ErrConfiguration = errors.New("configuration error")
)
