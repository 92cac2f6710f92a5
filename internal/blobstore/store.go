// Package blobstore stores opaque blobs under (bucket, key) pairs.
//
// It stands in for the object store that input PDFs are read from and
// generated artifacts are uploaded to. Keys use forward slashes regardless
// of backend.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = errors.New("blob not found")

// ErrInvalidKey is returned for empty or escaping bucket names and keys.
var ErrInvalidKey = errors.New("invalid bucket or key")

// Store is a bucketed blob store.
type Store interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key string, data []byte) error
	// List returns the keys in bucket starting with prefix, sorted.
	List(ctx context.Context, bucket, prefix string) ([]string, error)
}

func validate(bucket, key string) error {
	if bucket == "" || strings.ContainsAny(bucket, `/\`) || bucket == "." || bucket == ".." {
		return fmt.Errorf("%w: bucket %q", ErrInvalidKey, bucket)
	}
	if key == "" || strings.HasPrefix(key, "/") {
		return fmt.Errorf("%w: key %q", ErrInvalidKey, key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return fmt.Errorf("%w: key %q", ErrInvalidKey, key)
		}
	}
	return nil
}

// Backend names accepted by Open.
const (
	BackendFS     = "fs"
	BackendSQLite = "sqlite"
)

// Open returns the store for backend at path. For the SQLite backend path
// is the database file; callers should Close the store when done.
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendFS, "":
		return NewFSStore(path)
	case BackendSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown blob store backend %q", backend)
	}
}

// Close closes s if it holds resources.
func Close(s Store) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Download copies a blob to a local file.
func Download(ctx context.Context, s Store, bucket, key, path string) error {
	data, err := s.Get(ctx, bucket, key)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Upload copies a local file into the store.
func Upload(ctx context.Context, s Store, bucket, key, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return s.Put(ctx, bucket, key, data)
}
