package blob

import (
	"context"
	"fmt"

	"twarchive/internal/archive"
	"twarchive/internal/config"
)

// NewBlobStoreFromConfig creates a BlobStore implementation based on the
// blob store config type. Type "embedded" returns nil: media bytes then live
// in the database row and no external store is involved.
//
// When cfg.Encrypt is set, the store is wrapped so blobs are encrypted with
// the given encryptor before they reach the backend.
func NewBlobStoreFromConfig(cfg config.BlobStoreConfig, encryptor archive.Encryptor) (archive.BlobStore, error) {
	store, err := newBackend(cfg)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, nil
	}

	if cfg.Encrypt {
		if encryptor == nil || !encryptor.IsConfigured() {
			return nil, fmt.Errorf("blob store encryption enabled but no keys configured (run 'twarchive keys init')")
		}
		return NewEncryptedStore(store, encryptor), nil
	}
	return store, nil
}

func newBackend(cfg config.BlobStoreConfig) (archive.BlobStore, error) {
	switch cfg.Type {
	case "embedded", "":
		return nil, nil
	case "memory":
		return NewMemoryStore(), nil
	case "filesystem":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("filesystem blob store requires fs_root to be set")
		}
		return NewFileSystemStore(cfg.FSRoot)
	case "s3":
		return NewS3Store(context.Background(), S3Options{
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
	default:
		return nil, fmt.Errorf("unknown blob store type: %s", cfg.Type)
	}
}
