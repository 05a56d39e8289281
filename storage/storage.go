package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// Archive stores raw decision-record audit snapshots as JSON objects.
// The database row remains authoritative; the archive is the durable
// audit copy.
type Archive interface {
	// Store writes one snapshot and returns its archive key
	Store(ctx context.Context, recordID uuid.UUID, payload []byte) (string, error)

	// Fetch retrieves a snapshot by archive key
	Fetch(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes a snapshot by archive key
	Delete(ctx context.Context, key string) error
}

// ArchiveType represents the archive backend type
type ArchiveType string

const (
	ArchiveTypeLocal ArchiveType = "local"
	ArchiveTypeS3    ArchiveType = "s3"
)

// ArchiveConfig holds configuration for the audit archive
type ArchiveConfig struct {
	Type         ArchiveType
	LocalPath    string // For local archive
	S3Bucket     string // For S3 archive
	S3Region     string // For S3 archive
	AWSAccessKey string
	AWSSecretKey string
}

// NewArchive creates an archive instance based on configuration
func NewArchive(cfg ArchiveConfig) (Archive, error) {
	switch cfg.Type {
	case ArchiveTypeLocal:
		if cfg.LocalPath == "" {
			return nil, errors.New("local archive path is required")
		}
		return NewLocalArchive(cfg.LocalPath)
	case ArchiveTypeS3:
		if cfg.S3Bucket == "" {
			return nil, errors.New("S3 bucket is required for s3 archive")
		}
		return NewS3Archive(cfg)
	default:
		return nil, fmt.Errorf("unknown archive type: %s", cfg.Type)
	}
}

// archiveKey generates the archive key for a decision record. Records are
// sharded by the first two characters of the ID to keep directories small.
func archiveKey(recordID uuid.UUID) string {
	id := recordID.String()
	return fmt.Sprintf("decisions/%s/%s.json", id[:2], id)
}
