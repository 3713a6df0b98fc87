package chathub

import (
	"context"
	"os"
	"path"
	"path/filepath"
)

// DiskStore is the local-filesystem BlobStore. Files land in Dir and are
// served by the HTTP layer under URLPrefix.
type DiskStore struct {
	Dir       string
	URLPrefix string
}

// NewDiskStore ensures the upload directory exists.
func NewDiskStore(dir, urlPrefix string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{Dir: dir, URLPrefix: urlPrefix}, nil
}

// Put writes the blob, honoring the context deadline. The write itself is
// not cancellable mid-flight, so on timeout the file may still appear; the
// caller treats it as failed either way and never records the message.
func (d *DiskStore) Put(ctx context.Context, filename string, data []byte) (string, error) {
	done := make(chan error, 1)
	go func() {
		done <- os.WriteFile(filepath.Join(d.Dir, filename), data, 0o644)
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case err := <-done:
		if err != nil {
			return "", err
		}
	}
	return path.Join(d.URLPrefix, filename), nil
}
