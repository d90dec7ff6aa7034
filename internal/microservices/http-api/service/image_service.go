package service

import (
	"context"
	"path"
	"strings"
	"time"

	"cookbook/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DishImagePrefix = "dish_images"
	StepImagePrefix = "step_images"
)

// ImageService stores uploaded images and removes replaced or orphaned
// ones once the database change that released them has committed.
type ImageService struct {
	store      storage.BlobStore
	log        *zap.Logger
	retryDelay time.Duration
}

func NewImageService(store storage.BlobStore, log *zap.Logger, retryDelay time.Duration) *ImageService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ImageService{store: store, log: log.Named("images"), retryDelay: retryDelay}
}

// Store writes the upload under prefix and returns its key.
func (s *ImageService) Store(ctx context.Context, prefix string, u *Upload) (string, error) {
	key := path.Join(prefix, uuid.NewString()+"_"+cleanFilename(u.Filename))
	if err := s.store.Put(ctx, key, u.Data, u.ContentType); err != nil {
		return "", err
	}
	return key, nil
}

// Discard deletes blobs that no record references any more. Missing blobs
// are ignored, a transient failure is retried once, and anything else is
// logged. It never fails the caller.
func (s *ImageService) Discard(ctx context.Context, keys ...string) {
	// the database change is already committed; finish even if the client left
	ctx = context.WithoutCancel(ctx)
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := storage.DeleteWithRetry(ctx, s.store, key, s.retryDelay); err != nil {
			s.log.Warn("failed to delete image", zap.String("key", key), zap.Error(err))
			continue
		}
		s.log.Debug("deleted image", zap.String("key", key))
	}
}

func (s *ImageService) URL(key string) string {
	if key == "" {
		return ""
	}
	return s.store.URL(key)
}

// cleanFilename keeps the base name of an upload with only URL-safe
// characters.
func cleanFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	ext := strings.ToLower(path.Ext(name))
	stem := strings.TrimSuffix(name, path.Ext(name))
	stem = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ' || r == '.':
			return '_'
		}
		return -1
	}, stem)
	if stem == "" {
		stem = "image"
	}
	if len(stem) > 80 {
		stem = stem[:80]
	}
	return stem + ext
}
