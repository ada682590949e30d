// Package documents manages uploaded and generated attachment files together
// with their database records.
package documents

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"go-ausbildung-automation/internal/models"
	"go-ausbildung-automation/utils"
)

// Repo is the persistence surface for document records.
type Repo interface {
	SaveDocument(ctx context.Context, doc *models.Document) (*models.Document, error)
	GetDocument(ctx context.Context, docID, userID string) (*models.Document, error)
	FindDocumentsByUser(ctx context.Context, userID string) ([]*models.Document, error)
	DeleteDocument(ctx context.Context, docID, userID string) (*models.Document, error)
}

// Upload describes a user-provided file already written to disk.
type Upload struct {
	OriginalName string
	Path         string
	MimeType     string
}

// Generated describes a file produced by the letter pipeline.
type Generated struct {
	Path        string
	DisplayName string
}

type Store struct {
	repo       Repo
	uploadsDir string
}

func NewStore(repo Repo, uploadsDir string) *Store {
	return &Store{repo: repo, uploadsDir: uploadsDir}
}

// UploadsDir returns the directory new uploads should be written to.
func (s *Store) UploadsDir() string { return s.uploadsDir }

// NewUploadPath returns a collision-free storage path for an upload,
// creating the uploads directory if needed.
func (s *Store) NewUploadPath(originalName string) (string, error) {
	if err := utils.EnsureDirectory(s.uploadsDir); err != nil {
		return "", err
	}
	stored := fmt.Sprintf("%s_%s", uuid.NewString(), utils.CleanBaseFilename(originalName))
	return filepath.Join(s.uploadsDir, stored), nil
}

// SaveUpload records an uploaded file. The stored fileSize is read from disk
// at save time so the record always matches the bytes actually written.
func (s *Store) SaveUpload(ctx context.Context, userID string, up Upload) (*models.Document, error) {
	info, err := os.Stat(up.Path)
	if err != nil {
		return nil, fmt.Errorf("uploaded file not readable: %w", err)
	}
	return s.repo.SaveDocument(ctx, &models.Document{
		UserID:       userID,
		Filename:     filepath.Base(up.Path),
		OriginalName: up.OriginalName,
		FilePath:     up.Path,
		MimeType:     up.MimeType,
		FileSize:     info.Size(),
	})
}

// SaveGenerated records a pipeline-produced PDF as a document.
func (s *Store) SaveGenerated(ctx context.Context, userID string, gen Generated) (*models.Document, error) {
	info, err := os.Stat(gen.Path)
	if err != nil {
		return nil, fmt.Errorf("generated file not readable: %w", err)
	}
	return s.repo.SaveDocument(ctx, &models.Document{
		UserID:       userID,
		Filename:     filepath.Base(gen.Path),
		OriginalName: gen.DisplayName,
		FilePath:     gen.Path,
		MimeType:     "application/pdf",
		FileSize:     info.Size(),
	})
}

func (s *Store) Get(ctx context.Context, docID, userID string) (*models.Document, error) {
	return s.repo.GetDocument(ctx, docID, userID)
}

func (s *Store) List(ctx context.Context, userID string) ([]*models.Document, error) {
	return s.repo.FindDocumentsByUser(ctx, userID)
}

// Delete removes the row and the file together. A file already missing from
// disk does not fail the deletion; a dangling row would be worse than a
// missing file.
func (s *Store) Delete(ctx context.Context, docID, userID string) error {
	doc, err := s.repo.DeleteDocument(ctx, docID, userID)
	if err != nil {
		return err
	}
	if err := os.Remove(doc.FilePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("document row removed but file deletion failed: %w", err)
	}
	return nil
}
