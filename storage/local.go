package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// LocalArchive implements Archive on the local filesystem
type LocalArchive struct {
	basePath string
}

// NewLocalArchive creates a new local archive rooted at basePath
func NewLocalArchive(basePath string) (*LocalArchive, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	return &LocalArchive{
		basePath: basePath,
	}, nil
}

// Store writes a snapshot to the local filesystem
func (a *LocalArchive) Store(ctx context.Context, recordID uuid.UUID, payload []byte) (string, error) {
	key := archiveKey(recordID)
	fullPath := filepath.Join(a.basePath, key)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	_, err = io.Copy(file, bytes.NewReader(payload))
	if err != nil {
		os.Remove(fullPath) // Clean up on error
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}

	return key, nil
}

// Fetch retrieves a snapshot from the local filesystem
func (a *LocalArchive) Fetch(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath := filepath.Join(a.basePath, key)

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("snapshot not found: %s", key)
		}
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}

	return file, nil
}

// Delete removes a snapshot from the local filesystem
func (a *LocalArchive) Delete(ctx context.Context, key string) error {
	fullPath := filepath.Join(a.basePath, key)

	err := os.Remove(fullPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	return nil
}
