// Package storage provides the blob backends behind the CV repository.
// Keys are slash separated ("{cvId}/{fileName}") regardless of backend.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fadilmartias/cv-optimizer/internal/config"
	"github.com/fadilmartias/cv-optimizer/internal/logger"
)

var (
	// ErrNotFound is returned only when the backend reports the key as absent.
	ErrNotFound = errors.New("storage: key not found")

	// ErrInvalidKey covers empty keys, absolute keys and path traversal.
	ErrInvalidKey = errors.New("storage: invalid key")
)

// BlobStore is a flat key/value blob container.
type BlobStore interface {
	// EnsureContainer creates the bucket or base directory if missing.
	EnsureContainer(ctx context.Context) error

	// Put overwrites the blob at key and returns a reference URL for it.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)

	// Get returns ErrNotFound if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// List returns every key starting with prefix, in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete is idempotent.
	Delete(ctx context.Context, key string) error
}

// New builds the backend selected by cfg.Driver.
func New(ctx context.Context, cfg *config.StorageConfig, log logger.Logger) (BlobStore, error) {
	switch cfg.Driver {
	case config.StorageDriverS3:
		return NewS3(ctx, cfg)
	case config.StorageDriverFilesystem, "":
		return NewFilesystem(cfg.BasePath, log)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return ErrInvalidKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return ErrInvalidKey
		}
	}
	return nil
}
