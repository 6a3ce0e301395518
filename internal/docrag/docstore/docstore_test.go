package docstore_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nichiki/markitdown-rag-sample/internal/docrag/docstore"
	"github.com/nichiki/markitdown-rag-sample/internal/docrag/errs"
	"github.com/nichiki/markitdown-rag-sample/internal/model"
)

func newDoc(id, name string, uploadedAt time.Time) *model.Document {
	return &model.Document{
		ID:         id,
		Name:       name,
		Extension:  filepath.Ext(name),
		Status:     model.StatusPending,
		UploadedAt: uploadedAt,
	}
}

func TestNewCreatesLayout(t *testing.T) {
	dir := t.TempDir()
	_, err := docstore.New(dir)
	require.NoError(t, err)

	for _, sub := range []string{"uploads", "processed", "manifests"} {
		info, err := os.Stat(filepath.Join(dir, sub))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestSaveAndLoadMarkdown(t *testing.T) {
	store, err := docstore.New(t.TempDir())
	require.NoError(t, err)

	doc := newDoc("doc-1", "report.txt", time.Now().UTC())
	require.NoError(t, store.SaveRaw(doc, []byte("raw bytes")))
	require.NoError(t, store.SaveMarkdown(doc, "# Report\n\nBody."))

	md, err := store.LoadMarkdown("doc-1")
	require.NoError(t, err)
	assert.Equal(t, "# Report\n\nBody.", md)

	raw, err := os.ReadFile(store.RawPath(doc))
	require.NoError(t, err)
	assert.Equal(t, []byte("raw bytes"), raw)
}

func TestLoadMarkdownNotFound(t *testing.T) {
	store, err := docstore.New(t.TempDir())
	require.NoError(t, err)

	_, err = store.LoadMarkdown("missing")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestManifestRoundTrip(t *testing.T) {
	store, err := docstore.New(t.TempDir())
	require.NoError(t, err)

	uploaded := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	doc := newDoc("doc-1", "report.pdf", uploaded)
	doc.Size = 2048
	doc.ChunkCount = 7
	doc.Status = model.StatusIndexed

	require.NoError(t, store.SaveManifest(doc))

	got, err := store.Get("doc-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", got.ID)
	assert.Equal(t, "report.pdf", got.Name)
	assert.Equal(t, ".pdf", got.Extension)
	assert.Equal(t, int64(2048), got.Size)
	assert.Equal(t, 7, got.ChunkCount)
	assert.Equal(t, model.StatusIndexed, got.Status)
	assert.True(t, got.UploadedAt.Equal(uploaded))

	// Paths are repopulated, not persisted
	assert.Equal(t, store.RawPath(got), got.RawPath)
	assert.Equal(t, store.MarkdownPath("doc-1"), got.MarkdownPath)
}

func TestGetNotFound(t *testing.T) {
	store, err := docstore.New(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get("missing")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	store, err := docstore.New(t.TempDir())
	require.NoError(t, err)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveManifest(newDoc("old", "old.txt", base)))
	require.NoError(t, store.SaveManifest(newDoc("mid", "mid.txt", base.Add(time.Hour))))
	require.NoError(t, store.SaveManifest(newDoc("new", "new.txt", base.Add(2*time.Hour))))

	docs, err := store.List()
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "new", docs[0].ID)
	assert.Equal(t, "mid", docs[1].ID)
	assert.Equal(t, "old", docs[2].ID)
}

func TestListSkipsCorruptManifest(t *testing.T) {
	dir := t.TempDir()
	store, err := docstore.New(dir)
	require.NoError(t, err)

	require.NoError(t, store.SaveManifest(newDoc("good", "good.txt", time.Now().UTC())))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifests", "bad.json"), []byte("{corrupt"), 0o644))

	docs, err := store.List()
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "good", docs[0].ID)
}

func TestDeleteRemovesAllFiles(t *testing.T) {
	store, err := docstore.New(t.TempDir())
	require.NoError(t, err)

	doc := newDoc("doc-1", "notes.txt", time.Now().UTC())
	require.NoError(t, store.SaveRaw(doc, []byte("content")))
	require.NoError(t, store.SaveMarkdown(doc, "content"))
	require.NoError(t, store.SaveManifest(doc))

	require.NoError(t, store.Delete("doc-1"))

	_, err = store.Get("doc-1")
	assert.ErrorIs(t, err, errs.ErrNotFound)
	_, err = os.Stat(store.RawPath(doc))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(store.MarkdownPath("doc-1"))
	assert.True(t, os.IsNotExist(err))

	// A second delete reports not found
	assert.ErrorIs(t, store.Delete("doc-1"), errs.ErrNotFound)
}

func TestDiscardWithoutManifest(t *testing.T) {
	store, err := docstore.New(t.TempDir())
	require.NoError(t, err)

	// Only the raw upload exists, as after a conversion failure
	doc := newDoc("doc-1", "notes.txt", time.Now().UTC())
	require.NoError(t, store.SaveRaw(doc, []byte("content")))

	require.NoError(t, store.Discard(doc))
	_, err = os.Stat(store.RawPath(doc))
	assert.True(t, os.IsNotExist(err))

	// Discard is idempotent
	assert.NoError(t, store.Discard(doc))
}

func TestSaveRawOverwrite(t *testing.T) {
	store, err := docstore.New(t.TempDir())
	require.NoError(t, err)

	doc := newDoc("doc-1", "notes.txt", time.Now().UTC())
	require.NoError(t, store.SaveRaw(doc, []byte("first")))
	require.NoError(t, store.SaveRaw(doc, []byte("second")))

	data, err := os.ReadFile(store.RawPath(doc))
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), data)

	// No temp files left behind
	entries, err := os.ReadDir(filepath.Join(store.RawPath(doc), ".."))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
