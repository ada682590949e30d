package documents

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go-ausbildung-automation/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDocRepo struct {
	saved map[string]*models.Document
	next  int
}

func newFakeDocRepo() *fakeDocRepo {
	return &fakeDocRepo{saved: make(map[string]*models.Document)}
}

func (f *fakeDocRepo) SaveDocument(ctx context.Context, doc *models.Document) (*models.Document, error) {
	f.next++
	saved := *doc
	saved.ID = fmt.Sprintf("doc-%d", f.next)
	f.saved[saved.ID] = &saved
	return &saved, nil
}

func (f *fakeDocRepo) GetDocument(ctx context.Context, docID, userID string) (*models.Document, error) {
	doc, ok := f.saved[docID]
	if !ok || doc.UserID != userID {
		return nil, fmt.Errorf("document not found")
	}
	return doc, nil
}

func (f *fakeDocRepo) FindDocumentsByUser(ctx context.Context, userID string) ([]*models.Document, error) {
	var docs []*models.Document
	for _, doc := range f.saved {
		if doc.UserID == userID {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (f *fakeDocRepo) DeleteDocument(ctx context.Context, docID, userID string) (*models.Document, error) {
	doc, err := f.GetDocument(ctx, docID, userID)
	if err != nil {
		return nil, err
	}
	delete(f.saved, docID)
	return doc, nil
}

func TestSaveUploadRecordsFileSizeFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zeugnis.pdf")
	content := []byte("%PDF-1.4 some certificate content")
	require.NoError(t, os.WriteFile(path, content, 0644))

	store := NewStore(newFakeDocRepo(), dir)
	doc, err := store.SaveUpload(context.Background(), "user-1", Upload{
		OriginalName: "Zeugnis 2024.pdf",
		Path:         path,
		MimeType:     "application/pdf",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), doc.FileSize)
	assert.Equal(t, "Zeugnis 2024.pdf", doc.OriginalName)
	assert.Equal(t, "zeugnis.pdf", doc.Filename)
}

func TestSaveUploadMissingFileFails(t *testing.T) {
	store := NewStore(newFakeDocRepo(), t.TempDir())
	_, err := store.SaveUpload(context.Background(), "user-1", Upload{
		OriginalName: "cv.pdf",
		Path:         "/nonexistent/cv.pdf",
		MimeType:     "application/pdf",
	})
	assert.Error(t, err)
}

func TestDeleteRemovesRowAndFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "anschreiben.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0644))

	repo := newFakeDocRepo()
	store := NewStore(repo, dir)
	doc, err := store.SaveGenerated(context.Background(), "user-1", Generated{
		Path:        path,
		DisplayName: "Anschreiben.pdf",
	})
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), doc.ID, "user-1"))

	_, err = repo.GetDocument(context.Background(), doc.ID, "user-1")
	assert.Error(t, err)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestDeleteToleratesAlreadyMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weg.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0644))

	repo := newFakeDocRepo()
	store := NewStore(repo, dir)
	doc, err := store.SaveGenerated(context.Background(), "user-1", Generated{Path: path, DisplayName: "Weg.pdf"})
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))
	assert.NoError(t, store.Delete(context.Background(), doc.ID, "user-1"))
}

func TestNewUploadPathIsCollisionFree(t *testing.T) {
	store := NewStore(newFakeDocRepo(), filepath.Join(t.TempDir(), "uploads"))

	first, err := store.NewUploadPath("Lebenslauf.pdf")
	require.NoError(t, err)
	second, err := store.NewUploadPath("Lebenslauf.pdf")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasSuffix(first, "_Lebenslauf.pdf"))
	assert.DirExists(t, store.UploadsDir())
}
