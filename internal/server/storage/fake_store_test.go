package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/dmitrijs2005/snapster/internal/common"
)

type memObject struct {
	data        []byte
	contentType string
}

// memStore is an in-memory ObjectStore.
type memStore struct {
	mu      sync.Mutex
	objects map[string]memObject
	bucket  bool

	bucketChecks int
	bucketMakes  int

	putErr     error
	existsErr  error
	removeErr  error
	presignErr error
	bucketErr  error
}

func newMemStore() *memStore {
	return &memStore{objects: map[string]memObject{}}
}

func (m *memStore) Put(_ context.Context, key string, body io.Reader, size int64, contentType string) error {
	if m.putErr != nil {
		return m.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if size >= 0 && int64(len(data)) != size {
		return fmt.Errorf("size mismatch: %d != %d", len(data), size)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memObject{data: data, contentType: contentType}
	return nil
}

func (m *memStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.objects[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return io.NopCloser(bytes.NewReader(o.data)), nil
}

func (m *memStore) Remove(_ context.Context, key string) error {
	if m.removeErr != nil {
		return m.removeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memStore) Exists(_ context.Context, key string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok, nil
}

func (m *memStore) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	if m.presignErr != nil {
		return "", m.presignErr
	}
	return fmt.Sprintf("http://minio:9000/uploads/%s?X-Amz-Expires=%d&X-Amz-Signature=sig",
		(&url.URL{Path: key}).EscapedPath(), int(ttl.Seconds())), nil
}

func (m *memStore) PresignPut(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return m.PresignGet(ctx, key, ttl)
}

func (m *memStore) BucketExists(context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bucketChecks++
	if m.bucketErr != nil {
		return false, m.bucketErr
	}
	return m.bucket, nil
}

func (m *memStore) MakeBucket(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bucketMakes++
	m.bucket = true
	return nil
}

func (m *memStore) object(key string) (memObject, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.objects[key]
	return o, ok
}

// recordingObserver counts observer callbacks.
type recordingObserver struct {
	mu                       sync.Mutex
	uploads, deletes, misses int
	failures                 int
}

func (r *recordingObserver) RecordUpload(_ time.Duration, _ uint64, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uploads++
	if err != nil {
		r.failures++
	}
}

func (r *recordingObserver) RecordDelete(_ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletes++
	if err != nil {
		r.failures++
	}
}

func (r *recordingObserver) RecordResolve(_ time.Duration, found bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.failures++
	} else if !found {
		r.misses++
	}
}

// failingNormalizer always reports a normalization failure.
type failingNormalizer struct{}

func (failingNormalizer) Normalize([]byte, string) ([]byte, error) {
	return nil, fmt.Errorf("%w: boom", common.ErrNormalizationFailed)
}
