package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore keeps attachment blobs on the local filesystem. It exists for
// development and tests; production deployments use S3Store.
type DiskStore struct {
	root    string
	baseURL string
}

var _ Store = (*DiskStore)(nil)

func NewDiskStore(root, baseURL string) *DiskStore {
	return &DiskStore{
		root:    root,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (d *DiskStore) Save(_ context.Context, key string, data []byte, _ string) (*SaveResult, error) {
	path := filepath.Join(d.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return &SaveResult{
		Key:  key,
		URL:  fmt.Sprintf("%s/%s", d.baseURL, key),
		Size: int64(len(data)),
	}, nil
}

func (d *DiskStore) Delete(_ context.Context, key string) error {
	path := filepath.Join(d.root, filepath.FromSlash(key))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}
