package partition

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/timmy/papertrawl/internal/logger"
	"github.com/timmy/papertrawl/internal/storage"
)

// Uploader mirrors partition artifacts to a remote object store when the
// process runs in a networked/cloud mode. With no store configured every
// call is a silent no-op, so callers can invoke it unconditionally —
// including on the failure path, to flush whatever artifact exists before
// an error propagates.
type Uploader struct {
	store  storage.ObjectStorage
	prefix string
}

// NewUploader creates an Uploader. A nil store disables uploads.
func NewUploader(store storage.ObjectStorage, prefix string) *Uploader {
	return &Uploader{store: store, prefix: prefix}
}

// UploadIfConfigured pushes one local artifact under <prefix>/<basename>.
func (u *Uploader) UploadIfConfigured(ctx context.Context, localPath string) error {
	if u.store == nil {
		logger.FromContext(ctx).WithField("path", localPath).Debug("No object store configured, skipping upload")
		return nil
	}

	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("opening artifact for upload: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat artifact for upload: %w", err)
	}

	key := path.Join(u.prefix, filepath.Base(localPath))
	if err := u.store.Upload(ctx, key, f, info.Size(), "application/gzip"); err != nil {
		return fmt.Errorf("uploading %s: %w", key, err)
	}

	logger.FromContext(ctx).WithFields(logger.Fields{
		"key":  key,
		"size": info.Size(),
	}).Info("Uploaded partition artifact")
	return nil
}
