// Package storage keeps accident attachments outside the database.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/1989Cristianq/modelodatos/internal/config"
)

// ErrObjectNotFound is returned by Open and Delete for unknown keys.
var ErrObjectNotFound = errors.New("storage: object not found")

// Store writes, reads and removes attachment blobs by key.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// SketchKey builds a fresh key for an accident sketch. Keys never repeat,
// so a new upload cannot overwrite the artifact still referenced by the row.
func SketchKey(accidentID uint, ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	return path.Join("sketches", fmt.Sprintf("%d", accidentID), ulid.Make().String()+"."+ext)
}

// New returns the backend selected in cfg.
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case "local":
		return NewLocalStore(cfg.LocalDir)
	case "s3":
		return NewS3Store(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// validKey rejects keys that could escape the store root.
func validKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return fmt.Errorf("storage: invalid key %q", key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." || part == "." || part == "" {
			return fmt.Errorf("storage: invalid key %q", key)
		}
	}
	return nil
}
