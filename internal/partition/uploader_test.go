package partition

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
)

type fakeStore struct {
	ensured bool
	keys    []string
	types   []string
	sizes   []int64
	bodies  [][]byte
	err     error
}

func (f *fakeStore) EnsureBucket(ctx context.Context) error {
	f.ensured = true
	return nil
}

func (f *fakeStore) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if f.err != nil {
		return f.err
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.keys = append(f.keys, key)
	f.types = append(f.types, contentType)
	f.sizes = append(f.sizes, size)
	f.bodies = append(f.bodies, body)
	return nil
}

func TestUploaderNoStoreIsNoOp(t *testing.T) {
	u := NewUploader(nil, "partitions")

	if err := u.UploadIfConfigured(context.Background(), "/nonexistent/papers_2024-01-02.jsonl.gz"); err != nil {
		t.Fatalf("UploadIfConfigured with nil store: %v", err)
	}
}

func TestUploaderPushesArtifact(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "papers_2024-01-02.jsonl.gz")
	content := []byte("gz-bytes")
	if err := os.WriteFile(local, content, 0o644); err != nil {
		t.Fatal(err)
	}

	store := &fakeStore{}
	u := NewUploader(store, "arxiv/partitions")

	if err := u.UploadIfConfigured(context.Background(), local); err != nil {
		t.Fatalf("UploadIfConfigured: %v", err)
	}

	if len(store.keys) != 1 {
		t.Fatalf("expected 1 upload, got %d", len(store.keys))
	}
	if store.keys[0] != "arxiv/partitions/papers_2024-01-02.jsonl.gz" {
		t.Errorf("key = %q, want prefix + basename", store.keys[0])
	}
	if store.types[0] != "application/gzip" {
		t.Errorf("contentType = %q, want application/gzip", store.types[0])
	}
	if store.sizes[0] != int64(len(content)) {
		t.Errorf("size = %d, want %d", store.sizes[0], len(content))
	}
	if !bytes.Equal(store.bodies[0], content) {
		t.Errorf("uploaded body does not match local artifact")
	}
}

func TestUploaderMissingArtifact(t *testing.T) {
	u := NewUploader(&fakeStore{}, "partitions")

	err := u.UploadIfConfigured(context.Background(), filepath.Join(t.TempDir(), "papers_2024-01-02.jsonl.gz"))
	if err == nil {
		t.Fatal("expected error for missing local artifact")
	}
}
