// Package storage keeps uploaded dish and step images in a blob store.
package storage

import (
	"context"
	"errors"
	"io/fs"
	"time"
)

// ErrTransient marks a failure that may succeed when retried, such as a
// locked file or a throttled bucket.
var ErrTransient = errors.New("transient storage failure")

// BlobStore stores image bytes by key. Keys are slash separated and
// relative, e.g. "dish_images/<uuid>_photo.jpg".
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// Delete returns an error wrapping fs.ErrNotExist when key is absent.
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	URL(key string) string
}

// DeleteWithRetry deletes key, treating a missing blob as success and
// retrying once after delay when the first attempt fails transiently.
func DeleteWithRetry(ctx context.Context, store BlobStore, key string, delay time.Duration) error {
	err := store.Delete(ctx, key)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if !errors.Is(err, ErrTransient) {
		return err
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	err = store.Delete(ctx, key)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
