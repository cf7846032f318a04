// Package storage provides the remote object store used to mirror partition
// artifacts when the harvester runs in a networked/cloud mode.
package storage

import (
	"context"
	"io"
)

// ObjectStorage defines the interface for object storage operations
type ObjectStorage interface {
	// EnsureBucket checks that the bucket exists and creates it if it doesn't
	EnsureBucket(ctx context.Context) error

	// Upload uploads an object to storage
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
}
