package services

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/snapster/internal/common"
	"github.com/dmitrijs2005/snapster/internal/dbx"
	"github.com/dmitrijs2005/snapster/internal/server/models"
	"github.com/dmitrijs2005/snapster/internal/server/repositories/albums"
	"github.com/dmitrijs2005/snapster/internal/server/repositories/files"
	"github.com/dmitrijs2005/snapster/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/snapster/internal/server/repositories/users"
)

const (
	userID  = "7d3c9b52-4a35-4f0e-9d27-5b8a8d2e6f01"
	otherID = "0b6f1c3a-8e2d-4b7c-a1f9-3c5d7e9f1a23"
	fileID  = "5a1e7c2d-9b3f-4e8a-b6d4-2c7f9e1a3b5d"
	albumID = "c4e2a8f6-1d3b-4a9c-8e7f-6b5d3c1a9e2f"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// --- users ---

type fakeUsersRepo struct {
	users.Repository

	created   *models.User
	createErr error

	getOut *models.User
	getErr error
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	u.ID = userID
	f.created = u
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(context.Context, string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeUsersRepo) GetByID(context.Context, string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

// --- refresh tokens ---

type fakeRefreshRepo struct {
	mu     sync.Mutex
	tokens map[string]*models.RefreshToken

	findErr   error
	delErr    error
	createErr error
	purgeErr  error
	purged    int
}

func newFakeRefreshRepo() *fakeRefreshRepo {
	return &fakeRefreshRepo{tokens: map[string]*models.RefreshToken{}}
}

func (f *fakeRefreshRepo) Create(_ context.Context, uid, token string, expiresAt time.Time) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token] = &models.RefreshToken{UserID: uid, Token: token, ExpiresAt: expiresAt}
	return nil
}

func (f *fakeRefreshRepo) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	rt, ok := f.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return rt, nil
}

func (f *fakeRefreshRepo) Delete(_ context.Context, token string) error {
	if f.delErr != nil {
		return f.delErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, token)
	return nil
}

func (f *fakeRefreshRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	if f.purgeErr != nil {
		return 0, f.purgeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k, v := range f.tokens {
		if v.ExpiresAt.Before(now) {
			delete(f.tokens, k)
			n++
		}
	}
	f.purged++
	return n, nil
}

// --- files ---

type fakeFilesRepo struct {
	mu    sync.Mutex
	files map[string]*models.File
	seq   []string

	createErr error
	listErr   error
	getErr    error
	deleteErr error
}

func newFakeFilesRepo(fs ...*models.File) *fakeFilesRepo {
	r := &fakeFilesRepo{files: map[string]*models.File{}}
	for _, f := range fs {
		r.files[f.ID] = f
		r.seq = append(r.seq, f.ID)
	}
	return r
}

func (r *fakeFilesRepo) Create(_ context.Context, uid, name string) (*models.File, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	f := &models.File{ID: fileID, UserID: uid, Name: name, CreatedAt: time.Now()}
	r.files[f.ID] = f
	r.seq = append(r.seq, f.ID)
	return f, nil
}

func (r *fakeFilesRepo) ListByUser(_ context.Context, uid string) ([]*models.File, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.File
	for _, id := range r.seq {
		if f, ok := r.files[id]; ok && f.UserID == uid {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *fakeFilesRepo) GetByID(_ context.Context, uid, id string) (*models.File, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[id]
	if !ok || f.UserID != uid {
		return nil, common.ErrorNotFound
	}
	return f, nil
}

func (r *fakeFilesRepo) Delete(_ context.Context, uid, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[id]
	if !ok || f.UserID != uid {
		return common.ErrorNotFound
	}
	delete(r.files, id)
	return nil
}

func (r *fakeFilesRepo) has(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.files[id]
	return ok
}

// --- albums ---

type fakeAlbumsRepo struct {
	albums.Repository

	album     *models.Album
	getErr    error
	summaries []*models.AlbumSummary
	listErr   error
	files     []*models.File
	deleteErr error
	removeErr error

	added   [][2]string
	removed [][2]string
}

func (r *fakeAlbumsRepo) Create(_ context.Context, uid, name string) (*models.Album, error) {
	return &models.Album{ID: albumID, UserID: uid, Name: name}, nil
}

func (r *fakeAlbumsRepo) ListByUser(_ context.Context, _ string, limit int) ([]*models.AlbumSummary, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	for _, s := range r.summaries {
		if len(s.PreviewNames) > limit {
			s.PreviewNames = s.PreviewNames[:limit]
		}
	}
	return r.summaries, nil
}

func (r *fakeAlbumsRepo) GetByID(_ context.Context, uid, id string) (*models.Album, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	if r.album == nil || r.album.ID != id || r.album.UserID != uid {
		return nil, common.ErrorNotFound
	}
	return r.album, nil
}

func (r *fakeAlbumsRepo) Delete(context.Context, string, string) error { return r.deleteErr }

func (r *fakeAlbumsRepo) AddFile(_ context.Context, aid, fid string) error {
	r.added = append(r.added, [2]string{aid, fid})
	return nil
}

func (r *fakeAlbumsRepo) RemoveFile(_ context.Context, aid, fid string) error {
	if r.removeErr != nil {
		return r.removeErr
	}
	r.removed = append(r.removed, [2]string{aid, fid})
	return nil
}

func (r *fakeAlbumsRepo) ListFiles(context.Context, string) ([]*models.File, error) {
	return r.files, nil
}

// --- manager ---

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *fakeRefreshRepo
	f *fakeFilesRepo
	a *fakeAlbumsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.u }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.r }
func (m *fakeRepoManager) Files(dbx.DBTX) files.Repository                 { return m.f }
func (m *fakeRepoManager) Albums(dbx.DBTX) albums.Repository               { return m.a }

// --- blobs ---

type fakeBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte

	ingestErr  error
	resolveErr error
	deleteErr  error
	deletes    int
}

func newFakeBlobs() *fakeBlobs { return &fakeBlobs{objects: map[string][]byte{}} }

func (b *fakeBlobs) key(owner, name string) string { return owner + "/" + name }

func (b *fakeBlobs) put(owner, name string, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[b.key(owner, name)] = data
}

func (b *fakeBlobs) has(owner, name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[b.key(owner, name)]
	return ok
}

func (b *fakeBlobs) Ingest(_ context.Context, owner, filename, _ string, data []byte) (string, error) {
	if b.ingestErr != nil {
		return "", b.ingestErr
	}
	name := "stored-" + filename
	b.put(owner, name, data)
	return name, nil
}

func (b *fakeBlobs) ResolveURL(_ context.Context, owner, name string, _ time.Duration) (*string, error) {
	if b.resolveErr != nil {
		return nil, b.resolveErr
	}
	if !b.has(owner, name) {
		return nil, nil
	}
	u := "https://cdn.test/" + b.key(owner, name)
	return &u, nil
}

func (b *fakeBlobs) ResolveURLs(ctx context.Context, owner string, names []string, ttl time.Duration) ([]*string, error) {
	out := make([]*string, len(names))
	for i, n := range names {
		u, err := b.ResolveURL(ctx, owner, n, ttl)
		if err != nil {
			return nil, err
		}
		out[i] = u
	}
	return out, nil
}

func (b *fakeBlobs) Delete(_ context.Context, owner, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deletes++
	if b.deleteErr != nil {
		return b.deleteErr
	}
	delete(b.objects, b.key(owner, name))
	return nil
}

func (b *fakeBlobs) Open(_ context.Context, owner, name string) (io.ReadCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[b.key(owner, name)]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
