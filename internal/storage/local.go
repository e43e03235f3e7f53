package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FileStore implements ObjectStore on the local filesystem, for development
// and tests. Objects live under root/bucket/key with a metadata sidecar.
type FileStore struct {
	root string
}

// NewFileStore creates a filesystem-backed store rooted at root
func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store root %s: %w", root, err)
	}
	return &FileStore{root: root}, nil
}

// Get opens the object file for reading
func (fs *FileStore) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	f, err := os.Open(fs.objectPath(bucket, key))
	if err != nil {
		return nil, fmt.Errorf("failed to get %s/%s: %w", bucket, key, err)
	}
	return f, nil
}

// Put writes the object file and a metadata sidecar, overwriting both if they
// already exist, and returns a file:// URI.
func (fs *FileStore) Put(ctx context.Context, bucket, key string, body io.Reader, metadata map[string]string) (string, error) {
	path := fs.objectPath(bucket, key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create object directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s/%s: %w", bucket, key, err)
	}

	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write %s/%s: %w", bucket, key, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s/%s: %w", bucket, key, err)
	}

	if len(metadata) > 0 {
		metaJSON, err := json.MarshalIndent(metadata, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal metadata: %w", err)
		}
		if err := os.WriteFile(path+".meta.json", metaJSON, 0644); err != nil {
			return "", fmt.Errorf("failed to save metadata: %w", err)
		}
	}

	return "file://" + path, nil
}

// Metadata reads back the metadata sidecar for an object
func (fs *FileStore) Metadata(bucket, key string) (map[string]string, error) {
	data, err := os.ReadFile(fs.objectPath(bucket, key) + ".meta.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata for %s/%s: %w", bucket, key, err)
	}

	var metadata map[string]string
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("failed to parse metadata for %s/%s: %w", bucket, key, err)
	}
	return metadata, nil
}

func (fs *FileStore) objectPath(bucket, key string) string {
	return filepath.Join(fs.root, bucket, filepath.FromSlash(key))
}
