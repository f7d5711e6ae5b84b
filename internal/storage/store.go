// Package storage persists image blobs outside the metadata database.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"dentcheck/internal/config"
)

var ErrBlobNotFound = errors.New("blob not found")

// BlobStore stores raw image bytes and hands back a stable reference.
type BlobStore interface {
	Store(ctx context.Context, data []byte, suggestedName string) (string, error)
	// Delete never fails the caller; the outcome is reported in the result.
	Delete(ctx context.Context, reference string) DeleteResult
	Open(ctx context.Context, reference string) (io.ReadCloser, error)
	List(ctx context.Context) ([]BlobInfo, error)
}

type BlobInfo struct {
	Reference string
	Size      int64
	ModTime   time.Time
}

// DeleteResult is the soft-fail outcome of a blob removal.
type DeleteResult struct {
	Reference string
	Err       error
}

func (r DeleteResult) OK() bool { return r.Err == nil }

// New builds the configured backend.
func New(ctx context.Context, cfg config.StorageConfig) (BlobStore, error) {
	switch cfg.Driver {
	case "s3":
		return NewS3Store(ctx, cfg.S3, cfg.PublicPrefix)
	case "local", "":
		return NewLocalStore(cfg.UploadDir, cfg.PublicPrefix)
	default:
		return nil, fmt.Errorf("unsupported storage driver '%s'", cfg.Driver)
	}
}

// blobName combines the upload time with a random id so that concurrent
// uploads in the same millisecond never collide.
func blobName(now time.Time, suggestedName string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(suggestedName))
	if !validExt(ext) {
		ext = mimetype.Detect(data).Extension()
	}
	return fmt.Sprintf("%d-%s%s", now.UnixMilli(), uuid.NewString(), ext)
}

func validExt(ext string) bool {
	if len(ext) < 2 || len(ext) > 6 || ext[0] != '.' {
		return false
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

func normalizePrefix(prefix string) string {
	if prefix == "" {
		prefix = "/uploads/"
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}

// nameFromReference strips the public prefix and any directory parts.
func nameFromReference(prefix, reference string) (string, error) {
	name := strings.TrimPrefix(reference, prefix)
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid blob reference %q", reference)
	}
	return name, nil
}
