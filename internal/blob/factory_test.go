package blob

import (
	"path/filepath"
	"testing"

	"twarchive/internal/config"
	"twarchive/internal/encryption"
)

func TestNewBlobStoreFromConfig(t *testing.T) {
	t.Run("embedded returns nil store", func(t *testing.T) {
		store, err := NewBlobStoreFromConfig(config.BlobStoreConfig{Type: "embedded"}, nil)
		if err != nil {
			t.Fatalf("NewBlobStoreFromConfig() error = %v", err)
		}
		if store != nil {
			t.Errorf("NewBlobStoreFromConfig() = %T, want nil", store)
		}
	})

	t.Run("empty type defaults to embedded", func(t *testing.T) {
		store, err := NewBlobStoreFromConfig(config.BlobStoreConfig{}, nil)
		if err != nil {
			t.Fatalf("NewBlobStoreFromConfig() error = %v", err)
		}
		if store != nil {
			t.Errorf("NewBlobStoreFromConfig() = %T, want nil", store)
		}
	})

	t.Run("memory", func(t *testing.T) {
		store, err := NewBlobStoreFromConfig(config.BlobStoreConfig{Type: "memory"}, nil)
		if err != nil {
			t.Fatalf("NewBlobStoreFromConfig() error = %v", err)
		}
		if _, ok := store.(*MemoryStore); !ok {
			t.Errorf("NewBlobStoreFromConfig() = %T, want *MemoryStore", store)
		}
	})

	t.Run("filesystem", func(t *testing.T) {
		cfg := config.BlobStoreConfig{
			Type:   "filesystem",
			FSRoot: filepath.Join(t.TempDir(), "blobs"),
		}
		store, err := NewBlobStoreFromConfig(cfg, nil)
		if err != nil {
			t.Fatalf("NewBlobStoreFromConfig() error = %v", err)
		}
		if _, ok := store.(*FileSystemStore); !ok {
			t.Errorf("NewBlobStoreFromConfig() = %T, want *FileSystemStore", store)
		}
	})

	t.Run("filesystem requires fs_root", func(t *testing.T) {
		_, err := NewBlobStoreFromConfig(config.BlobStoreConfig{Type: "filesystem"}, nil)
		if err == nil {
			t.Error("NewBlobStoreFromConfig() expected error for missing fs_root")
		}
	})

	t.Run("encrypt wraps the backend", func(t *testing.T) {
		cfg := config.BlobStoreConfig{Type: "memory", Encrypt: true}
		store, err := NewBlobStoreFromConfig(cfg, encryption.NewTestEncryptor())
		if err != nil {
			t.Fatalf("NewBlobStoreFromConfig() error = %v", err)
		}
		if _, ok := store.(*EncryptedStore); !ok {
			t.Errorf("NewBlobStoreFromConfig() = %T, want *EncryptedStore", store)
		}
	})

	t.Run("encrypt without keys fails", func(t *testing.T) {
		cfg := config.BlobStoreConfig{Type: "memory", Encrypt: true}
		_, err := NewBlobStoreFromConfig(cfg, nil)
		if err == nil {
			t.Error("NewBlobStoreFromConfig() expected error without encryptor")
		}
	})

	t.Run("unknown type fails", func(t *testing.T) {
		_, err := NewBlobStoreFromConfig(config.BlobStoreConfig{Type: "carrier-pigeon"}, nil)
		if err == nil {
			t.Error("NewBlobStoreFromConfig() expected error for unknown type")
		}
	})
}
