package storage

import (
	"context"
	"io"
)

// ObjectStorage archives original receipt images for audit.
type ObjectStorage interface {
	// Upload stores an object under key
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Download retrieves an object by key
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// GetURL returns the public URL for an object
	GetURL(key string) string

	// Delete removes an object
	Delete(ctx context.Context, key string) error

	// Exists checks whether an object is present
	Exists(ctx context.Context, key string) (bool, error)

	// EnsureBucket creates the backing bucket if it does not exist
	EnsureBucket(ctx context.Context) error
}
