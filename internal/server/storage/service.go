package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/snapster/internal/common"
	"github.com/dmitrijs2005/snapster/internal/logging"
)

const defaultResolveConcurrency = 8

// Options tune the Service.
type Options struct {
	// PublicURL, when set, replaces scheme and host of presigned URLs.
	PublicURL string
	// URLExpiry is used when a caller passes a non-positive ttl.
	URLExpiry time.Duration
	// Timeout bounds every object store call. Zero means no extra deadline.
	Timeout time.Duration
	// ResolveConcurrency caps parallel lookups in ResolveURLs.
	ResolveConcurrency int
}

// Service is the ingestion pipeline and the retrieval/deletion facade over an
// ObjectStore. Objects are always addressed by owner and stored name.
type Service struct {
	store      ObjectStore
	normalizer Normalizer
	observer   Observer
	logger     logging.Logger
	opts       Options

	bucketReady atomic.Bool
}

// NewService wires a Service. A nil normalizer stores payloads as given and a
// nil observer disables metrics.
func NewService(store ObjectStore, normalizer Normalizer, observer Observer, logger logging.Logger, opts Options) *Service {
	if normalizer == nil {
		normalizer = NewImageNormalizer(0, 0)
	}
	if observer == nil {
		observer = nopObserver{}
	}
	if logger == nil {
		logger = logging.Nop{}
	}
	if opts.URLExpiry <= 0 {
		opts.URLExpiry = time.Hour
	}
	if opts.ResolveConcurrency <= 0 {
		opts.ResolveConcurrency = defaultResolveConcurrency
	}
	return &Service{
		store:      store,
		normalizer: normalizer,
		observer:   observer,
		logger:     logger.With("module", "storage"),
		opts:       opts,
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.Timeout)
}

// EnsureBucket creates the bucket if it does not exist yet. After the first
// success it is a no-op; concurrent first callers may all reach the store.
func (s *Service) EnsureBucket(ctx context.Context) error {
	if s.bucketReady.Load() {
		return nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	exists, err := s.store.BucketExists(ctx)
	if err != nil {
		return fmt.Errorf("%w: bucket lookup: %w", common.ErrStorageWriteFailed, err)
	}
	if !exists {
		if err := s.store.MakeBucket(ctx); err != nil {
			return fmt.Errorf("%w: create bucket: %w", common.ErrStorageWriteFailed, err)
		}
		s.logger.Info(ctx, "bucket created")
	}
	s.bucketReady.Store(true)
	return nil
}

// Ingest stores data for ownerID and returns the generated stored name.
//
// Oversized images are downsized first; if that fails the original bytes are
// stored instead. The returned name is only valid if err is nil.
func (s *Service) Ingest(ctx context.Context, ownerID, originalFilename, mediaType string, data []byte) (string, error) {
	start := time.Now()

	storedName, err := GenerateStoredName(originalFilename, mediaType)
	if err != nil {
		return "", err
	}

	payload, err := s.normalizer.Normalize(data, mediaType)
	if err != nil {
		s.logger.Warn(ctx, "image normalization failed, storing original",
			"owner", ownerID, "name", storedName, "error", err)
		payload = data
	}

	key := ScopedKey(ownerID, storedName)

	if err := s.EnsureBucket(ctx); err != nil {
		s.observer.RecordUpload(time.Since(start), 0, err)
		return "", err
	}

	putCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	err = s.store.Put(putCtx, key, bytes.NewReader(payload), int64(len(payload)), mediaType)
	s.observer.RecordUpload(time.Since(start), uint64(len(payload)), err)
	if err != nil {
		return "", fmt.Errorf("%w: put %s: %w", common.ErrStorageWriteFailed, key, err)
	}

	s.logger.Debug(ctx, "object stored", "key", key, "bytes", len(payload), "original_bytes", len(data))
	return storedName, nil
}

// ResolveURL returns a presigned download URL for the object, or nil when the
// object does not exist. A non-positive ttl uses the configured expiry.
func (s *Service) ResolveURL(ctx context.Context, ownerID, storedName string, ttl time.Duration) (*string, error) {
	start := time.Now()
	u, err := s.resolve(ctx, ScopedKey(ownerID, storedName), ttl)
	s.observer.RecordResolve(time.Since(start), u != nil, err)
	return u, err
}

func (s *Service) resolve(ctx context.Context, key string, ttl time.Duration) (*string, error) {
	if ttl <= 0 {
		ttl = s.opts.URLExpiry
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	exists, err := s.store.Exists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %w", common.ErrStorageReadFailed, key, err)
	}
	if !exists {
		return nil, nil
	}

	signed, err := s.store.PresignGet(ctx, key, ttl)
	if err != nil {
		return nil, fmt.Errorf("%w: presign %s: %w", common.ErrStorageReadFailed, key, err)
	}

	public, err := s.rewrite(signed)
	if err != nil {
		return nil, fmt.Errorf("%w: rewrite %s: %w", common.ErrStorageReadFailed, key, err)
	}
	return &public, nil
}

// rewrite moves the presigned path and query onto the public base URL.
func (s *Service) rewrite(signed string) (string, error) {
	if s.opts.PublicURL == "" {
		return signed, nil
	}
	u, err := url.Parse(signed)
	if err != nil {
		return "", err
	}
	out := strings.TrimRight(s.opts.PublicURL, "/") + u.EscapedPath()
	if u.RawQuery != "" {
		out += "?" + u.RawQuery
	}
	return out, nil
}

// ResolveURLs resolves storedNames concurrently. The result has the same
// length and order as the input; missing objects yield nil entries.
func (s *Service) ResolveURLs(ctx context.Context, ownerID string, storedNames []string, ttl time.Duration) ([]*string, error) {
	out := make([]*string, len(storedNames))
	if len(storedNames) == 0 {
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.ResolveConcurrency)
	for i, name := range storedNames {
		g.Go(func() error {
			u, err := s.ResolveURL(gctx, ownerID, name, ttl)
			if err != nil {
				return err
			}
			out[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the object. Deleting a missing object succeeds.
func (s *Service) Delete(ctx context.Context, ownerID, storedName string) error {
	start := time.Now()
	key := ScopedKey(ownerID, storedName)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.store.Remove(ctx, key)
	s.observer.RecordDelete(time.Since(start), err)
	if err != nil {
		return fmt.Errorf("%w: remove %s: %w", common.ErrStorageDeleteFailed, key, err)
	}
	return nil
}

// Open streams the object. The caller must close the reader. No timeout is
// applied since the body outlives this call.
func (s *Service) Open(ctx context.Context, ownerID, storedName string) (io.ReadCloser, error) {
	key := ScopedKey(ownerID, storedName)
	rc, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: get %s: %w", common.ErrStorageReadFailed, key, err)
	}
	return rc, nil
}

// PresignUpload returns a URL the client can PUT the object to directly.
func (s *Service) PresignUpload(ctx context.Context, ownerID, storedName string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.opts.URLExpiry
	}
	if err := s.EnsureBucket(ctx); err != nil {
		return "", err
	}
	key := ScopedKey(ownerID, storedName)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	u, err := s.store.PresignPut(ctx, key, ttl)
	if err != nil {
		return "", fmt.Errorf("%w: presign put %s: %w", common.ErrStorageWriteFailed, key, err)
	}
	return s.rewrite(u)
}
