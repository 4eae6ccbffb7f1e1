// Package storage implements the photo ingestion and retrieval pipeline on top
// of an S3-compatible object store: image normalization, owner-scoped object
// naming, uploads, presigned download URLs and blob removal.
package storage

import (
	"context"
	"io"
	"time"
)

// ObjectStore is the subset of an S3-compatible client the pipeline relies on.
// All keys are relative to the store's bucket.
type ObjectStore interface {
	// Put writes body under key. size may be -1 when unknown.
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error

	// Get opens the object for reading. A missing object yields common.ErrorNotFound.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Remove deletes the object. Removing a missing object is not an error.
	Remove(ctx context.Context, key string) error

	// Exists reports whether the object is present.
	Exists(ctx context.Context, key string) (bool, error)

	// PresignGet returns a URL allowing an unauthenticated GET for ttl.
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)

	// PresignPut returns a URL allowing an unauthenticated PUT for ttl.
	PresignPut(ctx context.Context, key string, ttl time.Duration) (string, error)

	BucketExists(ctx context.Context) (bool, error)

	// MakeBucket creates the bucket. Creating a bucket that already exists and
	// is owned by the caller is not an error.
	MakeBucket(ctx context.Context) error
}
