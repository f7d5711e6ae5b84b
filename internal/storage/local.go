package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// LocalStore keeps blobs as files in a single directory.
type LocalStore struct {
	dir    string
	prefix string
	now    func() time.Time
}

func NewLocalStore(dir, publicPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, prefix: normalizePrefix(publicPrefix), now: time.Now}, nil
}

func (s *LocalStore) Store(ctx context.Context, data []byte, suggestedName string) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty blob")
	}

	name := blobName(s.now(), suggestedName, data)
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0640)
	if err != nil {
		return "", fmt.Errorf("create blob: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close blob: %w", err)
	}

	return s.prefix + name, nil
}

func (s *LocalStore) Delete(ctx context.Context, reference string) DeleteResult {
	name, err := nameFromReference(s.prefix, reference)
	if err != nil {
		return DeleteResult{Reference: reference, Err: err}
	}
	return DeleteResult{Reference: reference, Err: os.Remove(filepath.Join(s.dir, name))}
}

func (s *LocalStore) Open(ctx context.Context, reference string) (io.ReadCloser, error) {
	name, err := nameFromReference(s.prefix, reference)
	if err != nil {
		return nil, ErrBlobNotFound
	}

	f, err := os.Open(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrBlobNotFound
	}
	return f, err
}

func (s *LocalStore) List(ctx context.Context) ([]BlobInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	out := make([]BlobInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		out = append(out, BlobInfo{
			Reference: s.prefix + entry.Name(),
			Size:      info.Size(),
			ModTime:   info.ModTime(),
		})
	}
	return out, nil
}
