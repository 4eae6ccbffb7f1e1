package services

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/snapster/internal/common"
	"github.com/dmitrijs2005/snapster/internal/logging"
	"github.com/dmitrijs2005/snapster/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAlbumService(db *sql.DB, a *fakeAlbumsRepo, f *fakeFilesRepo, b *fakeBlobs) *AlbumService {
	return NewAlbumService(db, &fakeRepoManager{a: a, f: f}, b, logging.Nop{}, time.Hour)
}

func TestAlbumService_Create(t *testing.T) {
	db, _ := newSQLMockDB(t)
	s := newAlbumService(db, &fakeAlbumsRepo{}, newFakeFilesRepo(), newFakeBlobs())

	a, err := s.Create(context.Background(), userID, "  Summer  ")
	require.NoError(t, err)
	assert.Equal(t, "Summer", a.Name)

	_, err = s.Create(context.Background(), userID, "   ")
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = s.Create(context.Background(), userID, strings.Repeat("x", 256))
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestAlbumService_ListDropsMissingPreviews(t *testing.T) {
	db, _ := newSQLMockDB(t)
	blobs := newFakeBlobs()
	blobs.put(userID, "p1.png", []byte("x"))
	blobs.put(userID, "p3.png", []byte("x"))

	repo := &fakeAlbumsRepo{summaries: []*models.AlbumSummary{
		{Album: models.Album{ID: "a2", Name: "Trip"}, TotalFiles: 6, PreviewNames: []string{"p1.png", "p2.png", "p3.png", "p4.png"}},
		{Album: models.Album{ID: "a1", Name: "Empty"}},
	}}
	s := newAlbumService(db, repo, newFakeFilesRepo(), blobs)

	got, err := s.List(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "a2", got[0].Album.ID)
	assert.Equal(t, 6, got[0].TotalImages)
	assert.Equal(t, []string{
		"https://cdn.test/" + userID + "/p1.png",
		"https://cdn.test/" + userID + "/p3.png",
	}, got[0].PreviewURLs)

	assert.Equal(t, 0, got[1].TotalImages)
	assert.NotNil(t, got[1].PreviewURLs)
	assert.Empty(t, got[1].PreviewURLs)
}

func TestAlbumService_ListErrors(t *testing.T) {
	db, _ := newSQLMockDB(t)
	repo := &fakeAlbumsRepo{listErr: errBoom{}}
	s := newAlbumService(db, repo, newFakeFilesRepo(), newFakeBlobs())
	_, err := s.List(context.Background(), userID)
	assert.ErrorIs(t, err, errBoom{})

	blobs := newFakeBlobs()
	blobs.resolveErr = common.ErrStorageReadFailed
	repo = &fakeAlbumsRepo{summaries: []*models.AlbumSummary{{PreviewNames: []string{"a"}}}}
	s = newAlbumService(db, repo, newFakeFilesRepo(), blobs)
	_, err = s.List(context.Background(), userID)
	assert.ErrorIs(t, err, common.ErrStorageReadFailed)
}

func TestAlbumService_Get(t *testing.T) {
	db, _ := newSQLMockDB(t)
	blobs := newFakeBlobs()
	blobs.put(userID, "a.png", []byte("x"))

	repo := &fakeAlbumsRepo{
		album: &models.Album{ID: albumID, UserID: userID, Name: "Trip"},
		files: []*models.File{
			{ID: "f1", UserID: userID, Name: "a.png"},
			{ID: "f2", UserID: userID, Name: "b.png"},
		},
	}
	s := newAlbumService(db, repo, newFakeFilesRepo(), blobs)

	got, err := s.Get(context.Background(), userID, albumID)
	require.NoError(t, err)
	assert.Equal(t, "Trip", got.Album.Name)
	require.Len(t, got.Files, 2)
	assert.NotNil(t, got.Files[0].URL)
	assert.Nil(t, got.Files[1].URL)

	_, err = s.Get(context.Background(), otherID, albumID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = s.Get(context.Background(), userID, "x")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestAlbumService_Delete(t *testing.T) {
	db, _ := newSQLMockDB(t)
	repo := &fakeAlbumsRepo{}
	s := newAlbumService(db, repo, newFakeFilesRepo(), newFakeBlobs())

	require.NoError(t, s.Delete(context.Background(), userID, albumID))
	assert.ErrorIs(t, s.Delete(context.Background(), userID, "bad"), common.ErrorNotFound)

	repo.deleteErr = common.ErrorNotFound
	assert.ErrorIs(t, s.Delete(context.Background(), userID, albumID), common.ErrorNotFound)
}

func TestAlbumService_AddFile(t *testing.T) {
	db, _ := newSQLMockDB(t)
	repo := &fakeAlbumsRepo{album: &models.Album{ID: albumID, UserID: userID}}
	files := newFakeFilesRepo(&models.File{ID: fileID, UserID: userID, Name: "a.png"})
	s := newAlbumService(db, repo, files, newFakeBlobs())

	require.NoError(t, s.AddFile(context.Background(), userID, albumID, fileID))
	assert.Equal(t, [][2]string{{albumID, fileID}}, repo.added)

	// foreign album
	assert.ErrorIs(t, s.AddFile(context.Background(), otherID, albumID, fileID), common.ErrorNotFound)
	// malformed file id
	assert.ErrorIs(t, s.AddFile(context.Background(), userID, albumID, "f"), common.ErrorNotFound)
}

func TestAlbumService_AddForeignFile(t *testing.T) {
	db, _ := newSQLMockDB(t)
	repo := &fakeAlbumsRepo{album: &models.Album{ID: albumID, UserID: userID}}
	files := newFakeFilesRepo(&models.File{ID: fileID, UserID: otherID, Name: "a.png"})
	s := newAlbumService(db, repo, files, newFakeBlobs())

	assert.ErrorIs(t, s.AddFile(context.Background(), userID, albumID, fileID), common.ErrorNotFound)
	assert.Empty(t, repo.added)
}

func TestAlbumService_RemoveFile(t *testing.T) {
	db, _ := newSQLMockDB(t)
	repo := &fakeAlbumsRepo{album: &models.Album{ID: albumID, UserID: userID}}
	s := newAlbumService(db, repo, newFakeFilesRepo(), newFakeBlobs())

	require.NoError(t, s.RemoveFile(context.Background(), userID, albumID, fileID))
	assert.Equal(t, [][2]string{{albumID, fileID}}, repo.removed)

	assert.ErrorIs(t, s.RemoveFile(context.Background(), userID, albumID, "nope"), common.ErrorNotFound)

	repo.removeErr = common.ErrorNotFound
	assert.ErrorIs(t, s.RemoveFile(context.Background(), userID, albumID, fileID), common.ErrorNotFound)
}
