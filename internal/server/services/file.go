package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/snapster/internal/common"
	"github.com/dmitrijs2005/snapster/internal/dbx"
	"github.com/dmitrijs2005/snapster/internal/logging"
	"github.com/dmitrijs2005/snapster/internal/server/models"
	"github.com/dmitrijs2005/snapster/internal/server/repositories/repomanager"
)

// BlobStore is the object storage pipeline as seen by the services.
// storage.Service implements it.
type BlobStore interface {
	Ingest(ctx context.Context, ownerID, originalFilename, mediaType string, data []byte) (string, error)
	ResolveURL(ctx context.Context, ownerID, storedName string, ttl time.Duration) (*string, error)
	ResolveURLs(ctx context.Context, ownerID string, storedNames []string, ttl time.Duration) ([]*string, error)
	Delete(ctx context.Context, ownerID, storedName string) error
	Open(ctx context.Context, ownerID, storedName string) (io.ReadCloser, error)
}

// FileView is a file row with its download URL. URL is nil when the object is
// missing from storage.
type FileView struct {
	File *models.File
	URL  *string
}

// FileService manages uploaded photos: metadata rows plus stored objects.
type FileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       BlobStore
	logger      logging.Logger
	urlTTL      time.Duration
}

func NewFileService(db *sql.DB, m repomanager.RepositoryManager, blobs BlobStore, logger logging.Logger, urlTTL time.Duration) *FileService {
	return &FileService{
		db:          db,
		repomanager: m,
		blobs:       blobs,
		logger:      logger.With("module", "files"),
		urlTTL:      urlTTL,
	}
}

// List returns the user's files, newest first, with download URLs.
func (s *FileService) List(ctx context.Context, userID string) ([]FileView, error) {
	files, err := s.repomanager.Files(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.withURLs(ctx, userID, files)
}

func (s *FileService) withURLs(ctx context.Context, userID string, files []*models.File) ([]FileView, error) {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	urls, err := s.blobs.ResolveURLs(ctx, userID, names, s.urlTTL)
	if err != nil {
		return nil, err
	}
	out := make([]FileView, len(files))
	for i, f := range files {
		out[i] = FileView{File: f, URL: urls[i]}
	}
	return out, nil
}

// Get returns one file of the user. Unknown or foreign IDs yield common.ErrorNotFound.
func (s *FileService) Get(ctx context.Context, userID, id string) (*FileView, error) {
	if !validID(id) {
		return nil, common.ErrorNotFound
	}
	f, err := s.repomanager.Files(s.db).GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	u, err := s.blobs.ResolveURL(ctx, userID, f.Name, s.urlTTL)
	if err != nil {
		return nil, err
	}
	return &FileView{File: f, URL: u}, nil
}

// Upload stores data and records it. The row is only written once the object
// is in storage; if the row cannot be written the object is removed again.
func (s *FileService) Upload(ctx context.Context, userID, filename, mediaType string, data []byte) (*FileView, error) {
	name, err := s.blobs.Ingest(ctx, userID, filename, mediaType, data)
	if err != nil {
		return nil, err
	}

	f, err := s.repomanager.Files(s.db).Create(ctx, userID, name)
	if err != nil {
		if delErr := s.blobs.Delete(ctx, userID, name); delErr != nil {
			s.logger.Error(ctx, "orphaned object after failed insert", "user_id", userID, "name", name, "error", delErr)
		}
		return nil, fmt.Errorf("error creating file: %w", err)
	}

	u, err := s.blobs.ResolveURL(ctx, userID, name, s.urlTTL)
	if err != nil {
		s.logger.Warn(ctx, "could not resolve url for new upload", "file_id", f.ID, "error", err)
		u = nil
	}

	s.logger.Info(ctx, "file uploaded", "user_id", userID, "file_id", f.ID, "bytes", len(data))
	return &FileView{File: f, URL: u}, nil
}

// Open streams the stored object of a file. The caller closes the reader.
func (s *FileService) Open(ctx context.Context, userID, id string) (io.ReadCloser, *models.File, error) {
	if !validID(id) {
		return nil, nil, common.ErrorNotFound
	}
	f, err := s.repomanager.Files(s.db).GetByID(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.blobs.Open(ctx, userID, f.Name)
	if err != nil {
		return nil, nil, err
	}
	return rc, f, nil
}

// Delete removes a file. Missing files are not an error.
//
// The row delete and the object removal share one transaction: the row is
// deleted first, then the object, then the transaction commits. If the object
// cannot be removed the transaction rolls back and the row stays.
func (s *FileService) Delete(ctx context.Context, userID, id string) error {
	if !validID(id) {
		return nil
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Files(tx)

		f, err := repo.GetByID(ctx, userID, id)
		if err != nil {
			return err
		}
		if err := repo.Delete(ctx, userID, id); err != nil {
			return err
		}
		return s.blobs.Delete(ctx, userID, f.Name)
	})
	if errors.Is(err, common.ErrorNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "file deleted", "user_id", userID, "file_id", id)
	return nil
}
