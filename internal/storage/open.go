package storage

import (
	"context"

	"cookbook/internal/config"
)

// Open returns the store selected by cfg.StorageBackend.
func Open(ctx context.Context, cfg *config.Config) (BlobStore, error) {
	if cfg.StorageBackend == "s3" {
		return NewS3Store(ctx, S3Config{
			Bucket:       cfg.S3Bucket,
			Endpoint:     cfg.S3Endpoint,
			Region:       cfg.S3Region,
			AccessKeyID:  cfg.S3AccessKeyID,
			AccessSecret: cfg.S3AccessSecret,
			PublicURL:    cfg.S3PublicURL,
		})
	}
	return NewLocalStore(cfg.MediaRoot, cfg.MediaURL)
}
