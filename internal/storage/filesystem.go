package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fadilmartias/cv-optimizer/internal/logger"
	"go.uber.org/zap"
)

const tmpSuffix = ".tmp"

// Filesystem stores blobs as files under basePath. It is meant for local
// development and single-node deployments.
type Filesystem struct {
	basePath string
	log      logger.Logger
}

func NewFilesystem(basePath string, log logger.Logger) (*Filesystem, error) {
	if basePath == "" {
		return nil, fmt.Errorf("storage base path required")
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve base path: %w", err)
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Filesystem{basePath: abs, log: log.With(zap.String("storage", "filesystem"))}, nil
}

func (f *Filesystem) EnsureContainer(ctx context.Context) error {
	if err := os.MkdirAll(f.basePath, 0o755); err != nil {
		return fmt.Errorf("create base path: %w", err)
	}
	return nil
}

func (f *Filesystem) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	path, err := f.fullPath(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}

	// unique per writer so concurrent puts of one key never share a temp file
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*"+tmpSuffix)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("rename temp file: %w", err)
	}
	return "file://" + filepath.ToSlash(path), nil
}

func (f *Filesystem) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := f.fullPath(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

func (f *Filesystem) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(f.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || strings.HasSuffix(path, tmpSuffix) {
			return nil
		}
		rel, err := filepath.Rel(f.basePath, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", f.basePath, err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *Filesystem) Delete(ctx context.Context, key string) error {
	path, err := f.fullPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove file: %w", err)
	}

	dir := filepath.Dir(path)
	if dir == f.basePath || !strings.HasPrefix(dir, f.basePath) {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		f.log.Warn("failed to read directory for cleanup", zap.String("dir", dir), zap.Error(err))
		return nil
	}
	if len(entries) == 0 {
		if err := os.Remove(dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
			f.log.Warn("failed to remove empty directory", zap.String("dir", dir), zap.Error(err))
		}
	}
	return nil
}

func (f *Filesystem) fullPath(key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	full := filepath.Join(f.basePath, filepath.FromSlash(key))
	if !strings.HasPrefix(full, f.basePath+string(filepath.Separator)) {
		return "", ErrInvalidKey
	}
	return full, nil
}
