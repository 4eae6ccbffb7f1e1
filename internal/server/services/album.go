package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/snapster/internal/common"
	"github.com/dmitrijs2005/snapster/internal/logging"
	"github.com/dmitrijs2005/snapster/internal/server/models"
	"github.com/dmitrijs2005/snapster/internal/server/repositories/repomanager"
)

const (
	albumPreviewSize   = 4
	maxAlbumNameLength = 255
)

// AlbumPreview is an album list entry.
type AlbumPreview struct {
	Album       *models.Album
	TotalImages int
	// PreviewURLs holds URLs of up to four newest files; files missing from
	// storage are left out.
	PreviewURLs []string
}

// AlbumDetail is an album with all of its files.
type AlbumDetail struct {
	Album *models.Album
	Files []FileView
}

type AlbumService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       BlobStore
	logger      logging.Logger
	urlTTL      time.Duration
}

func NewAlbumService(db *sql.DB, m repomanager.RepositoryManager, blobs BlobStore, logger logging.Logger, urlTTL time.Duration) *AlbumService {
	return &AlbumService{
		db:          db,
		repomanager: m,
		blobs:       blobs,
		logger:      logger.With("module", "albums"),
		urlTTL:      urlTTL,
	}
}

func (s *AlbumService) Create(ctx context.Context, userID, name string) (*models.Album, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxAlbumNameLength {
		return nil, fmt.Errorf("%w: album name must be 1-%d characters", common.ErrorValidation, maxAlbumNameLength)
	}
	a, err := s.repomanager.Albums(s.db).Create(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "album created", "user_id", userID, "album_id", a.ID)
	return a, nil
}

// List returns the user's albums, newest first, with preview URLs.
func (s *AlbumService) List(ctx context.Context, userID string) ([]AlbumPreview, error) {
	summaries, err := s.repomanager.Albums(s.db).ListByUser(ctx, userID, albumPreviewSize)
	if err != nil {
		return nil, err
	}

	out := make([]AlbumPreview, 0, len(summaries))
	for _, sum := range summaries {
		urls, err := s.blobs.ResolveURLs(ctx, userID, sum.PreviewNames, s.urlTTL)
		if err != nil {
			return nil, err
		}
		previews := make([]string, 0, len(urls))
		for _, u := range urls {
			if u != nil {
				previews = append(previews, *u)
			}
		}
		album := sum.Album
		out = append(out, AlbumPreview{
			Album:       &album,
			TotalImages: sum.TotalFiles,
			PreviewURLs: previews,
		})
	}
	return out, nil
}

func (s *AlbumService) Get(ctx context.Context, userID, id string) (*AlbumDetail, error) {
	a, err := s.ownedAlbum(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	files, err := s.repomanager.Albums(s.db).ListFiles(ctx, a.ID)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	urls, err := s.blobs.ResolveURLs(ctx, userID, names, s.urlTTL)
	if err != nil {
		return nil, err
	}

	views := make([]FileView, len(files))
	for i, f := range files {
		views[i] = FileView{File: f, URL: urls[i]}
	}
	return &AlbumDetail{Album: a, Files: views}, nil
}

// Delete removes the album. Its files stay.
func (s *AlbumService) Delete(ctx context.Context, userID, id string) error {
	if !validID(id) {
		return common.ErrorNotFound
	}
	return s.repomanager.Albums(s.db).Delete(ctx, userID, id)
}

// AddFile puts one of the user's files into one of the user's albums.
func (s *AlbumService) AddFile(ctx context.Context, userID, albumID, fileID string) error {
	a, err := s.ownedAlbum(ctx, userID, albumID)
	if err != nil {
		return err
	}
	if !validID(fileID) {
		return common.ErrorNotFound
	}
	f, err := s.repomanager.Files(s.db).GetByID(ctx, userID, fileID)
	if err != nil {
		return err
	}
	return s.repomanager.Albums(s.db).AddFile(ctx, a.ID, f.ID)
}

func (s *AlbumService) RemoveFile(ctx context.Context, userID, albumID, fileID string) error {
	a, err := s.ownedAlbum(ctx, userID, albumID)
	if err != nil {
		return err
	}
	if !validID(fileID) {
		return common.ErrorNotFound
	}
	return s.repomanager.Albums(s.db).RemoveFile(ctx, a.ID, fileID)
}

func (s *AlbumService) ownedAlbum(ctx context.Context, userID, id string) (*models.Album, error) {
	if !validID(id) {
		return nil, common.ErrorNotFound
	}
	return s.repomanager.Albums(s.db).GetByID(ctx, userID, id)
}
