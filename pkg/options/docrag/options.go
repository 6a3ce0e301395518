// Package docrag provides configuration options for the document RAG pipeline.
package docrag

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/nichiki/markitdown-rag-sample/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options contains document ingestion and query configuration.
type Options struct {
	// ChunkSize is the target size of text chunks in runes.
	ChunkSize int `json:"chunk-size" mapstructure:"chunk-size"`

	// ChunkOverlap is the overlap between adjacent chunks in runes.
	ChunkOverlap int `json:"chunk-overlap" mapstructure:"chunk-overlap"`

	// TopK is the number of results to return from similarity search.
	TopK int `json:"top-k" mapstructure:"top-k"`

	// Collection is the name of the Milvus collection.
	Collection string `json:"collection" mapstructure:"collection"`

	// EmbeddingDim is the dimension of embedding vectors.
	EmbeddingDim int `json:"embedding-dim" mapstructure:"embedding-dim"`

	// DataDir is the root directory for uploaded and processed documents.
	DataDir string `json:"data-dir" mapstructure:"data-dir"`

	// MaxUploadSize is the maximum accepted upload size in bytes.
	MaxUploadSize int64 `json:"max-upload-size" mapstructure:"max-upload-size"`

	// SystemPrompt is the system prompt used for answer generation.
	SystemPrompt string `json:"system-prompt" mapstructure:"system-prompt"`
}

// DefaultSystemPrompt is the default system prompt for answer generation.
const DefaultSystemPrompt = `You are a helpful assistant that answers questions based on the provided context.
Answer using only the information in the context. If the context does not contain
the answer, say that no relevant information was found.

Context:
{{context}}`

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		ChunkSize:     1000,
		ChunkOverlap:  100,
		TopK:          4,
		Collection:    "documents",
		EmbeddingDim:  1536, // text-embedding-3-small dimension
		DataDir:       "data",
		MaxUploadSize: 200 << 20,
		SystemPrompt:  DefaultSystemPrompt,
	}
}

// AddFlags adds flags for document RAG options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.IntVar(&o.ChunkSize, options.Join(prefixes...)+"docrag.chunk-size", o.ChunkSize, "Target size of text chunks in runes.")
	fs.IntVar(&o.ChunkOverlap, options.Join(prefixes...)+"docrag.chunk-overlap", o.ChunkOverlap, "Overlap between adjacent chunks in runes.")
	fs.IntVar(&o.TopK, options.Join(prefixes...)+"docrag.top-k", o.TopK, "Number of results from similarity search.")
	fs.StringVar(&o.Collection, options.Join(prefixes...)+"docrag.collection", o.Collection, "Milvus collection name.")
	fs.IntVar(&o.EmbeddingDim, options.Join(prefixes...)+"docrag.embedding-dim", o.EmbeddingDim, "Embedding vector dimension.")
	fs.StringVar(&o.DataDir, options.Join(prefixes...)+"docrag.data-dir", o.DataDir, "Root directory for uploaded and processed documents.")
	fs.Int64Var(&o.MaxUploadSize, options.Join(prefixes...)+"docrag.max-upload-size", o.MaxUploadSize, "Maximum accepted upload size in bytes.")
}

// Validate validates the document RAG options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("chunk-size must be positive"))
	}
	if o.ChunkOverlap < 0 {
		errs = append(errs, fmt.Errorf("chunk-overlap must not be negative"))
	}
	if o.ChunkOverlap >= o.ChunkSize {
		errs = append(errs, fmt.Errorf("chunk-overlap must be smaller than chunk-size"))
	}
	if o.TopK <= 0 {
		errs = append(errs, fmt.Errorf("top-k must be positive"))
	}
	if o.Collection == "" {
		errs = append(errs, fmt.Errorf("collection is required"))
	}
	if o.EmbeddingDim <= 0 {
		errs = append(errs, fmt.Errorf("embedding-dim must be positive"))
	}
	if o.DataDir == "" {
		errs = append(errs, fmt.Errorf("data-dir is required"))
	}
	if o.MaxUploadSize <= 0 {
		errs = append(errs, fmt.Errorf("max-upload-size must be positive"))
	}
	return errs
}

// Complete completes the document RAG options with defaults.
func (o *Options) Complete() error {
	if o.SystemPrompt == "" {
		o.SystemPrompt = DefaultSystemPrompt
	}
	return nil
}
