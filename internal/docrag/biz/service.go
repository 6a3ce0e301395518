package biz

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kart-io/logger"

	"github.com/nichiki/markitdown-rag-sample/internal/docrag/docstore"
	"github.com/nichiki/markitdown-rag-sample/internal/docrag/errs"
	"github.com/nichiki/markitdown-rag-sample/internal/model"
	"github.com/nichiki/markitdown-rag-sample/internal/pkg/convert"
)

// Service is the document knowledge base interface.
type Service interface {
	// Ingest converts, stores, and indexes an uploaded file.
	Ingest(ctx context.Context, name string, data []byte) (*model.Document, error)
	// ListDocuments returns all stored documents, newest first.
	ListDocuments(ctx context.Context) ([]*model.Document, error)
	// GetMarkdown returns the converted markdown of a document.
	GetMarkdown(ctx context.Context, id string) (string, error)
	// DeleteDocument removes a document's files and indexed chunks.
	DeleteDocument(ctx context.Context, id string) error
	// Query answers a question from the knowledge base.
	Query(ctx context.Context, question string) (*model.QueryResult, error)
	// Stats returns knowledge base statistics.
	Stats(ctx context.Context) (*model.Stats, error)
	// SupportedExtensions lists convertible file extensions.
	SupportedExtensions() []string
}

// DocService combines conversion, storage, indexing, retrieval, and
// generation into the full document pipeline.
type DocService struct {
	converter *convert.Registry
	docs      *docstore.Store
	ingestor  *Ingestor
	retriever *Retriever
	generator *Generator

	// mu serializes writes. Uploads and deletions mutate both the
	// filesystem and the vector index; one writer at a time keeps the
	// two in step. Queries do not take the lock.
	mu sync.Mutex
}

// NewDocService creates the document service.
func NewDocService(
	converter *convert.Registry,
	docs *docstore.Store,
	ingestor *Ingestor,
	retriever *Retriever,
	generator *Generator,
) *DocService {
	return &DocService{
		converter: converter,
		docs:      docs,
		ingestor:  ingestor,
		retriever: retriever,
		generator: generator,
	}
}

// Ingest runs the full pipeline for one uploaded file: convert to
// markdown, persist both forms, then chunk, embed, and index.
//
// An unsupported extension fails before anything is stored. A
// conversion failure cleans up the stored upload. An indexing failure
// keeps the stored files and records the failure in the manifest so
// the document can be inspected or deleted.
func (s *DocService) Ingest(ctx context.Context, name string, data []byte) (*model.Document, error) {
	if !s.converter.Supported(name) {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnsupportedFormat, filepath.Ext(name))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := &model.Document{
		ID:         uuid.NewString(),
		Name:       filepath.Base(name),
		Extension:  filepath.Ext(name),
		Size:       int64(len(data)),
		Status:     model.StatusPending,
		UploadedAt: time.Now().UTC(),
	}

	if err := s.docs.SaveRaw(doc, data); err != nil {
		return nil, err
	}

	markdown, err := s.converter.Convert(ctx, data, doc.Name)
	if err != nil {
		// Nothing useful was produced; drop the stored upload
		if cleanupErr := s.docs.Discard(doc); cleanupErr != nil {
			logger.Warnw("failed to clean up after conversion failure",
				"document_id", doc.ID, "error", cleanupErr)
		}
		return nil, err
	}

	if err := s.docs.SaveMarkdown(doc, markdown); err != nil {
		return nil, err
	}

	chunkCount, err := s.ingestor.Index(ctx, doc, markdown)
	if err != nil {
		doc.Status = model.StatusFailed
		doc.Error = err.Error()
		if saveErr := s.docs.SaveManifest(doc); saveErr != nil {
			logger.Errorw("failed to record indexing failure",
				"document_id", doc.ID, "error", saveErr)
		}
		return nil, err
	}

	doc.ChunkCount = chunkCount
	doc.Status = model.StatusIndexed
	doc.ProcessedAt = time.Now().UTC()
	if err := s.docs.SaveManifest(doc); err != nil {
		return nil, err
	}

	logger.Infow("document ingested",
		"document_id", doc.ID,
		"name", doc.Name,
		"size", doc.Size,
		"chunks", doc.ChunkCount,
	)
	return doc, nil
}

// ListDocuments returns all stored documents.
func (s *DocService) ListDocuments(_ context.Context) ([]*model.Document, error) {
	return s.docs.List()
}

// GetMarkdown returns the converted markdown of a document.
func (s *DocService) GetMarkdown(_ context.Context, id string) (string, error) {
	if _, err := s.docs.Get(id); err != nil {
		return "", err
	}
	return s.docs.LoadMarkdown(id)
}

// DeleteDocument removes the document's files and its indexed chunks.
func (s *DocService) DeleteDocument(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.docs.Get(id); err != nil {
		return err
	}

	// Remove index entries first; file removal is idempotent and can
	// be retried if this fails
	if err := s.ingestor.Remove(ctx, id); err != nil {
		return err
	}

	if err := s.docs.Delete(id); err != nil {
		return err
	}

	logger.Infow("document deleted", "document_id", id)
	return nil
}

// Query retrieves the closest chunks and generates an answer. When
// nothing is retrieved the fixed no-information answer is returned and
// the chat provider is never called.
func (s *DocService) Query(ctx context.Context, question string) (*model.QueryResult, error) {
	results, err := s.retriever.Retrieve(ctx, question)
	if err != nil {
		return nil, err
	}

	answer, err := s.generator.GenerateAnswer(ctx, question, results)
	if err != nil {
		return nil, err
	}

	sources := make([]model.ChunkSource, len(results))
	for i, r := range results {
		sources[i] = model.ChunkSource{
			DocumentID:   r.DocumentID,
			DocumentName: r.DocumentName,
			ChunkID:      r.ID,
			ChunkIndex:   r.Index,
			Section:      r.Section,
			Content:      r.Content,
			Score:        r.Score,
		}
	}

	return &model.QueryResult{
		Question:    question,
		Answer:      answer,
		Sources:     sources,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// Stats returns document and chunk counts.
func (s *DocService) Stats(ctx context.Context) (*model.Stats, error) {
	docs, err := s.docs.List()
	if err != nil {
		return nil, err
	}

	chunkCount, err := s.ingestor.store.Stats(ctx, s.ingestor.config.Collection)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read collection stats: %v", errs.ErrIndexing, err)
	}

	return &model.Stats{
		DocumentCount: len(docs),
		ChunkCount:    chunkCount,
		Collection:    s.ingestor.config.Collection,
	}, nil
}

// SupportedExtensions lists convertible file extensions.
func (s *DocService) SupportedExtensions() []string {
	return s.converter.Extensions()
}

var _ Service = (*DocService)(nil)
