// Package docrag assembles the document knowledge base service.
package docrag

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kart-io/logger"

	"github.com/nichiki/markitdown-rag-sample/internal/docrag/biz"
	"github.com/nichiki/markitdown-rag-sample/internal/docrag/docstore"
	"github.com/nichiki/markitdown-rag-sample/internal/docrag/handler"
	"github.com/nichiki/markitdown-rag-sample/internal/docrag/router"
	"github.com/nichiki/markitdown-rag-sample/internal/docrag/store"
	"github.com/nichiki/markitdown-rag-sample/internal/pkg/convert"
	"github.com/nichiki/markitdown-rag-sample/pkg/component/milvus"
	"github.com/nichiki/markitdown-rag-sample/pkg/llm"
	"github.com/nichiki/markitdown-rag-sample/pkg/llm/resilience"
	docragopts "github.com/nichiki/markitdown-rag-sample/pkg/options/docrag"
	llmopts "github.com/nichiki/markitdown-rag-sample/pkg/options/llm"
	logopts "github.com/nichiki/markitdown-rag-sample/pkg/options/logger"
	milvusopts "github.com/nichiki/markitdown-rag-sample/pkg/options/milvus"
	httpopts "github.com/nichiki/markitdown-rag-sample/pkg/options/server/http"

	// Register LLM providers
	_ "github.com/nichiki/markitdown-rag-sample/pkg/llm/openai"
)

// Config holds the assembled configuration of the service.
type Config struct {
	HTTPOptions      *httpopts.Options
	LogOptions       *logopts.Options
	MilvusOptions    *milvusopts.Options
	EmbeddingOptions *llmopts.ProviderOptions
	ChatOptions      *llmopts.ProviderOptions
	DocRAGOptions    *docragopts.Options
	ShutdownTimeout  time.Duration
}

// Server is the assembled HTTP service.
type Server struct {
	httpServer      *http.Server
	vectorStore     store.VectorStore
	shutdownTimeout time.Duration
}

// NewServer wires every layer of the service from the configuration.
func (cfg *Config) NewServer(ctx context.Context) (*Server, error) {
	// 1. Logger
	if err := cfg.LogOptions.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("Starting document knowledge base service...")

	// 2. Milvus client and vector store
	milvusClient, err := milvus.New(cfg.MilvusOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize milvus: %w", err)
	}
	vectorStore := store.NewMilvusStore(milvusClient)
	logger.Info("Milvus client initialized")

	// 3. LLM providers with retry and circuit breaking
	embedProvider, err := llm.NewEmbeddingProvider(cfg.EmbeddingOptions.Provider, cfg.EmbeddingOptions.ToConfigMap())
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding provider: %w", err)
	}
	chatProvider, err := llm.NewChatProvider(cfg.ChatOptions.Provider, cfg.ChatOptions.ToConfigMap())
	if err != nil {
		return nil, fmt.Errorf("failed to create chat provider: %w", err)
	}

	resilientEmbed := resilience.NewResilientEmbeddingProvider(embedProvider, retryConfig(cfg.EmbeddingOptions), nil)
	resilientChat := resilience.NewResilientChatProvider(chatProvider, retryConfig(cfg.ChatOptions), nil)
	logger.Infow("LLM providers initialized",
		"embedding", resilientEmbed.Name(),
		"chat", resilientChat.Name(),
	)

	// 4. Document store and converter registry
	docs, err := docstore.New(cfg.DocRAGOptions.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize document store: %w", err)
	}
	converter := convert.NewRegistry()
	logger.Infow("document store initialized", "data_dir", cfg.DocRAGOptions.DataDir)

	// 5. Business layer
	chunker := biz.NewChunker(&biz.ChunkerConfig{
		Size:    cfg.DocRAGOptions.ChunkSize,
		Overlap: cfg.DocRAGOptions.ChunkOverlap,
	})
	ingestor := biz.NewIngestor(vectorStore, resilientEmbed, chunker, &biz.IngestorConfig{
		Collection:   cfg.DocRAGOptions.Collection,
		EmbeddingDim: cfg.DocRAGOptions.EmbeddingDim,
	})
	retriever := biz.NewRetriever(vectorStore, resilientEmbed, &biz.RetrieverConfig{
		TopK:       cfg.DocRAGOptions.TopK,
		Collection: cfg.DocRAGOptions.Collection,
	})
	generator := biz.NewGenerator(resilientChat, &biz.GeneratorConfig{
		SystemPrompt: cfg.DocRAGOptions.SystemPrompt,
	})
	service := biz.NewDocService(converter, docs, ingestor, retriever, generator)

	if err := ingestor.EnsureCollection(ctx); err != nil {
		return nil, err
	}
	logger.Info("Collection ready")

	// 6. HTTP layer
	h := handler.New(service, cfg.DocRAGOptions.MaxUploadSize)
	engine := router.New(cfg.HTTPOptions.Mode, h)

	httpServer := &http.Server{
		Addr:         cfg.HTTPOptions.Addr,
		Handler:      engine,
		ReadTimeout:  cfg.HTTPOptions.ReadTimeout,
		WriteTimeout: cfg.HTTPOptions.WriteTimeout,
		IdleTimeout:  cfg.HTTPOptions.IdleTimeout,
	}

	return &Server{
		httpServer:      httpServer,
		vectorStore:     vectorStore,
		shutdownTimeout: cfg.ShutdownTimeout,
	}, nil
}

// Run starts the HTTP server and blocks until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Infow("HTTP server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("http server shutdown failed", "error", err)
	}
	if err := s.vectorStore.Close(shutdownCtx); err != nil {
		logger.Errorw("vector store close failed", "error", err)
	}

	logger.Info("Shutdown complete")
	return nil
}

func retryConfig(opts *llmopts.ProviderOptions) *resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	if opts.MaxRetries > 0 {
		cfg.MaxAttempts = opts.MaxRetries
	}
	cfg.RetryableErrors = resilience.IsRetryableError
	return cfg
}
