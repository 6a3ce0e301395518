// Package model provides data models for the document knowledge base.
package model

import (
	"time"
)

// DocumentStatus describes the lifecycle state of a document.
type DocumentStatus string

const (
	// StatusPending means the document is stored but not yet indexed.
	StatusPending DocumentStatus = "pending"
	// StatusIndexed means all chunks have been embedded and indexed.
	StatusIndexed DocumentStatus = "indexed"
	// StatusFailed means conversion or indexing failed.
	StatusFailed DocumentStatus = "failed"
)

// Document represents a document in the knowledge base.
type Document struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Extension    string         `json:"extension"`
	Size         int64          `json:"size"`
	ChunkCount   int            `json:"chunk_count"`
	Status       DocumentStatus `json:"status"`
	Error        string         `json:"error,omitempty"`
	UploadedAt   time.Time      `json:"uploaded_at"`
	ProcessedAt  time.Time      `json:"processed_at"`
	MarkdownPath string         `json:"-"`
	RawPath      string         `json:"-"`
}

// QueryResult represents a knowledge base query result.
type QueryResult struct {
	Question    string        `json:"question"`
	Answer      string        `json:"answer"`
	Sources     []ChunkSource `json:"sources"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// ChunkSource represents source information for a retrieved chunk.
type ChunkSource struct {
	DocumentID   string  `json:"document_id"`
	DocumentName string  `json:"document_name"`
	ChunkID      string  `json:"chunk_id"`
	ChunkIndex   int     `json:"chunk_index"`
	Section      string  `json:"section,omitempty"`
	Content      string  `json:"content"`
	Score        float32 `json:"score"`
}

// Stats summarizes the state of the knowledge base.
type Stats struct {
	DocumentCount int    `json:"document_count"`
	ChunkCount    int64  `json:"chunk_count"`
	Collection    string `json:"collection"`
}
