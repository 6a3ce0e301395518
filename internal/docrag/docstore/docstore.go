// Package docstore persists uploaded files, converted markdown, and
// per-document manifests on the local filesystem.
//
// Layout under the data directory:
//
//	uploads/<id><ext>      original file bytes
//	processed/<id>.md      converted markdown
//	manifests/<id>.json    document manifest
package docstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nichiki/markitdown-rag-sample/internal/docrag/errs"
	"github.com/nichiki/markitdown-rag-sample/internal/model"
	"github.com/nichiki/markitdown-rag-sample/pkg/utils/json"
)

// Store manages document files under a single data directory.
type Store struct {
	root string
}

// New creates a store rooted at dir, creating the directory layout if needed.
func New(dir string) (*Store, error) {
	s := &Store{root: dir}
	for _, sub := range []string{s.uploadsDir(), s.processedDir(), s.manifestsDir()} {
		if err := os.MkdirAll(sub, 0o755); err != nil {
			return nil, fmt.Errorf("%w: failed to create %s: %v", errs.ErrStorage, sub, err)
		}
	}
	return s, nil
}

func (s *Store) uploadsDir() string   { return filepath.Join(s.root, "uploads") }
func (s *Store) processedDir() string { return filepath.Join(s.root, "processed") }
func (s *Store) manifestsDir() string { return filepath.Join(s.root, "manifests") }

// RawPath returns the path of the original uploaded file.
func (s *Store) RawPath(doc *model.Document) string {
	return filepath.Join(s.uploadsDir(), doc.ID+doc.Extension)
}

// MarkdownPath returns the path of the converted markdown file.
func (s *Store) MarkdownPath(id string) string {
	return filepath.Join(s.processedDir(), id+".md")
}

func (s *Store) manifestPath(id string) string {
	return filepath.Join(s.manifestsDir(), id+".json")
}

// SaveRaw writes the original file bytes for a document.
func (s *Store) SaveRaw(doc *model.Document, data []byte) error {
	path := s.RawPath(doc)
	if err := writeAtomic(path, data); err != nil {
		return fmt.Errorf("%w: failed to save upload: %v", errs.ErrStorage, err)
	}
	doc.RawPath = path
	return nil
}

// SaveMarkdown writes the converted markdown for a document.
func (s *Store) SaveMarkdown(doc *model.Document, markdown string) error {
	path := s.MarkdownPath(doc.ID)
	if err := writeAtomic(path, []byte(markdown)); err != nil {
		return fmt.Errorf("%w: failed to save markdown: %v", errs.ErrStorage, err)
	}
	doc.MarkdownPath = path
	return nil
}

// LoadMarkdown reads the converted markdown of a document.
func (s *Store) LoadMarkdown(id string) (string, error) {
	data, err := os.ReadFile(s.MarkdownPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", errs.ErrNotFound, id)
		}
		return "", fmt.Errorf("%w: failed to read markdown: %v", errs.ErrStorage, err)
	}
	return string(data), nil
}

// SaveManifest writes the document manifest.
func (s *Store) SaveManifest(doc *model.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to encode manifest: %v", errs.ErrStorage, err)
	}
	if err := writeAtomic(s.manifestPath(doc.ID), data); err != nil {
		return fmt.Errorf("%w: failed to save manifest: %v", errs.ErrStorage, err)
	}
	return nil
}

// Get loads a document manifest by ID.
func (s *Store) Get(id string) (*model.Document, error) {
	data, err := os.ReadFile(s.manifestPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", errs.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: failed to read manifest: %v", errs.ErrStorage, err)
	}

	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: corrupt manifest %s: %v", errs.ErrStorage, id, err)
	}
	doc.RawPath = s.RawPath(&doc)
	doc.MarkdownPath = s.MarkdownPath(doc.ID)
	return &doc, nil
}

// List returns all document manifests ordered by upload time, newest first.
func (s *Store) List() ([]*model.Document, error) {
	entries, err := os.ReadDir(s.manifestsDir())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list manifests: %v", errs.ErrStorage, err)
	}

	docs := make([]*model.Document, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		doc, err := s.Get(id)
		if err != nil {
			// Skip unreadable manifests rather than failing the listing
			continue
		}
		docs = append(docs, doc)
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UploadedAt.After(docs[j].UploadedAt)
	})
	return docs, nil
}

// Delete removes all files of a document. Missing files are ignored so
// deletion is idempotent.
func (s *Store) Delete(id string) error {
	doc, err := s.Get(id)
	if err != nil {
		return err
	}
	return s.Discard(doc)
}

// Discard removes a document's files without requiring a manifest on
// disk. Used to clean up after a failed ingestion.
func (s *Store) Discard(doc *model.Document) error {
	paths := []string{
		s.RawPath(doc),
		s.MarkdownPath(doc.ID),
		s.manifestPath(doc.ID),
	}
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("%w: failed to remove %s: %v", errs.ErrStorage, path, err)
		}
	}
	return nil
}

// writeAtomic writes data to path via a temp file and rename so readers
// never observe a partial file.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
