package database

import (
	"fmt"
	"path/filepath"

	"twarchive/internal/archive"
	"twarchive/internal/config"
	"twarchive/internal/database/migrations"
)

// NewStoreFromConfig creates a Store implementation based on the database
// config type. File-backed stores are migrated to the latest schema before
// use; in-memory stores always start empty so they are migrated as well.
func NewStoreFromConfig(cfg config.DatabaseConfig) (archive.Store, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		dbPath := filepath.Join(cfg.DataDir, "archive.db")
		return newMigratedStore(dbPath)
	case "memory":
		return newMigratedStore(":memory:")
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}

func newMigratedStore(path string) (*SQLiteStore, error) {
	store, err := NewSQLiteStore(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.Up(store.db); err != nil {
		store.Close()
		return nil, fmt.Errorf("migrating %s: %w", path, err)
	}
	return store, nil
}
