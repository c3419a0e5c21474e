package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/fadilmartias/cv-optimizer/internal/logger"
	"github.com/fadilmartias/cv-optimizer/internal/model"
	"github.com/fadilmartias/cv-optimizer/internal/storage"
	"github.com/fadilmartias/cv-optimizer/internal/util"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const metadataFile = "metadata.json"

var ErrInvalidID = errors.New("invalid cv id")

// CVRepository persists CV blobs and their metadata records under
// "{cvId}/{fileName}" and "{cvId}/metadata.json".
type CVRepository struct {
	store storage.BlobStore
	log   logger.Logger

	ready atomic.Bool
	init  singleflight.Group
}

func NewCVRepository(store storage.BlobStore, log logger.Logger) *CVRepository {
	if log == nil {
		log = logger.NewNop()
	}
	return &CVRepository{store: store, log: log.With(zap.String("component", "cv_repository"))}
}

// ensureContainer creates the container on first use. Concurrent callers
// share one attempt, detached from the cancellation of whichever caller
// started it; a failed attempt is retried by the next caller.
func (r *CVRepository) ensureContainer(ctx context.Context) error {
	if r.ready.Load() {
		return nil
	}
	shared := context.WithoutCancel(ctx)
	_, err, _ := r.init.Do("container", func() (any, error) {
		if r.ready.Load() {
			return nil, nil
		}
		if err := r.store.EnsureContainer(shared); err != nil {
			return nil, err
		}
		r.ready.Store(true)
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("ensure container: %w", err)
	}
	return nil
}

// Ping reports whether the backing container is reachable.
func (r *CVRepository) Ping(ctx context.Context) error {
	return r.ensureContainer(ctx)
}

func (r *CVRepository) Put(ctx context.Context, cvID, fileName string, data []byte) (string, error) {
	key, err := blobKey(cvID, fileName)
	if err != nil {
		return "", err
	}
	if err := r.ensureContainer(ctx); err != nil {
		return "", err
	}
	url, err := r.store.Put(ctx, key, data, util.ContentTypeFor(fileName))
	if err != nil {
		return "", fmt.Errorf("store cv file: %w", err)
	}
	return url, nil
}

func (r *CVRepository) Get(ctx context.Context, cvID, fileName string) ([]byte, error) {
	key, err := blobKey(cvID, fileName)
	if err != nil {
		return nil, err
	}
	if err := r.ensureContainer(ctx); err != nil {
		return nil, err
	}
	return r.store.Get(ctx, key)
}

func (r *CVRepository) PutMetadata(ctx context.Context, rec *model.CVRecord) error {
	if err := validateID(rec.ID); err != nil {
		return err
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	if err := r.ensureContainer(ctx); err != nil {
		return err
	}
	if _, err := r.store.Put(ctx, metadataKey(rec.ID), data, "application/json"); err != nil {
		return fmt.Errorf("store metadata: %w", err)
	}
	return nil
}

// GetMetadata returns (nil, nil) when no record exists. Every other failure,
// including a record that cannot be decoded, is an error.
func (r *CVRepository) GetMetadata(ctx context.Context, cvID string) (*model.CVRecord, error) {
	if err := validateID(cvID); err != nil {
		return nil, nil
	}
	if err := r.ensureContainer(ctx); err != nil {
		return nil, err
	}
	return r.loadMetadata(ctx, metadataKey(cvID))
}

func (r *CVRepository) Exists(ctx context.Context, cvID string) (bool, error) {
	rec, err := r.GetMetadata(ctx, cvID)
	if err != nil {
		return false, err
	}
	return rec != nil, nil
}

// ListByUser scans every metadata record. Records that fail to load are
// logged and skipped. Results are newest first.
func (r *CVRepository) ListByUser(ctx context.Context, userID string) ([]model.CVRecord, error) {
	if err := r.ensureContainer(ctx); err != nil {
		return nil, err
	}
	keys, err := r.store.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list blobs: %w", err)
	}

	records := make([]model.CVRecord, 0)
	for _, key := range keys {
		if !strings.HasSuffix(key, "/"+metadataFile) {
			continue
		}
		rec, err := r.loadMetadata(ctx, key)
		if err != nil {
			r.log.Warn("skipping unreadable cv metadata", zap.String("key", key), zap.Error(err))
			continue
		}
		if rec == nil || rec.UserID != userID {
			continue
		}
		records = append(records, *rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].UploadDate.After(records[j].UploadDate)
	})
	return records, nil
}

// DeleteAll removes every blob under the cv prefix, metadata included.
func (r *CVRepository) DeleteAll(ctx context.Context, cvID string) error {
	if err := validateID(cvID); err != nil {
		return err
	}
	if err := r.ensureContainer(ctx); err != nil {
		return err
	}
	keys, err := r.store.List(ctx, cvID+"/")
	if err != nil {
		return fmt.Errorf("list cv blobs: %w", err)
	}
	for _, key := range keys {
		if err := r.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return nil
}

func (r *CVRepository) loadMetadata(ctx context.Context, key string) (*model.CVRecord, error) {
	data, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	var rec model.CVRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode metadata %s: %w", key, err)
	}
	return &rec, nil
}

func validateID(cvID string) error {
	if cvID == "" || strings.ContainsAny(cvID, `/\`) || cvID == "." || cvID == ".." {
		return ErrInvalidID
	}
	return nil
}

func metadataKey(cvID string) string {
	return cvID + "/" + metadataFile
}

// StoredFileName is the blob name a user file is kept under. A user file
// named like the metadata record is renamed so it cannot replace it.
func StoredFileName(fileName string) string {
	name := path.Base(strings.ReplaceAll(fileName, `\`, "/"))
	if name == "." || name == "/" || name == ".." || name == "" {
		name = "upload"
	}
	if name == metadataFile {
		name = "original-" + name
	}
	return name
}

func blobKey(cvID, fileName string) (string, error) {
	if err := validateID(cvID); err != nil {
		return "", err
	}
	return cvID + "/" + StoredFileName(fileName), nil
}
