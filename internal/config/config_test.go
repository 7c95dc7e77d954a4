package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		Accounts:  []string{"alice", "bob"},
		Workers:   8,
		GroupSize: 2,
		BaseDir:   "/home/user/.local/share/twarchive",
		LogDir:    "/home/user/.local/share/twarchive/log",
		Database:  DatabaseConfig{Type: "sqlite", DataDir: "/home/user/.local/share/twarchive/data"},
		BlobStore: BlobStoreConfig{
			Type:    "filesystem",
			FSRoot:  "/archive/blobs",
			Encrypt: true,
		},
		Encryption: EncryptionConfig{
			PublicKeyPath:  "/home/user/.local/share/twarchive/keys/twarchive.pub",
			PrivateKeyPath: "/home/user/.local/share/twarchive/keys/twarchive.key",
		},
		Fetch: FetchConfig{
			RatePerSec:     2.5,
			Burst:          5,
			TimeoutSeconds: 30,
		},
		Metrics:         MetricsConfig{Addr: ":9090"},
		ProgressSeconds: 10,
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if len(got.Accounts) != 2 || got.Accounts[0] != "alice" {
		t.Errorf("Accounts = %v, want %v", got.Accounts, original.Accounts)
	}
	if got.Workers != 8 {
		t.Errorf("Workers = %d, want 8", got.Workers)
	}
	if got.GroupSize != 2 {
		t.Errorf("GroupSize = %d, want 2", got.GroupSize)
	}
	if got.BaseDir != original.BaseDir {
		t.Errorf("BaseDir = %q, want %q", got.BaseDir, original.BaseDir)
	}
	if got.Database.Type != "sqlite" {
		t.Errorf("Database.Type = %q, want %q", got.Database.Type, "sqlite")
	}
	if got.BlobStore.Type != "filesystem" {
		t.Errorf("BlobStore.Type = %q, want %q", got.BlobStore.Type, "filesystem")
	}
	if got.BlobStore.FSRoot != "/archive/blobs" {
		t.Errorf("BlobStore.FSRoot = %q, want %q", got.BlobStore.FSRoot, "/archive/blobs")
	}
	if !got.BlobStore.Encrypt {
		t.Error("BlobStore.Encrypt = false, want true")
	}
	if got.Encryption.PublicKeyPath != original.Encryption.PublicKeyPath {
		t.Errorf("Encryption.PublicKeyPath = %q, want %q", got.Encryption.PublicKeyPath, original.Encryption.PublicKeyPath)
	}
	if got.Fetch.RatePerSec != 2.5 {
		t.Errorf("Fetch.RatePerSec = %v, want 2.5", got.Fetch.RatePerSec)
	}
	if got.Metrics.Addr != ":9090" {
		t.Errorf("Metrics.Addr = %q, want %q", got.Metrics.Addr, ":9090")
	}
	if got.ProgressSeconds != 10 {
		t.Errorf("ProgressSeconds = %d, want 10", got.ProgressSeconds)
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/twarchive")

	if cfg.BaseDir != "/data/twarchive" {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, "/data/twarchive")
	}
	if cfg.LogDir != "/data/twarchive/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/twarchive/log")
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workers)
	}
	if cfg.Database.Type != "sqlite" {
		t.Errorf("Database.Type = %q, want %q", cfg.Database.Type, "sqlite")
	}
	if cfg.BlobStore.Type != "embedded" {
		t.Errorf("BlobStore.Type = %q, want %q", cfg.BlobStore.Type, "embedded")
	}
	if cfg.Encryption.PublicKeyPath != "/data/twarchive/keys/twarchive.pub" {
		t.Errorf("Encryption.PublicKeyPath = %q, want %q", cfg.Encryption.PublicKeyPath, "/data/twarchive/keys/twarchive.pub")
	}
	if cfg.Encryption.PrivateKeyPath != "/data/twarchive/keys/twarchive.key" {
		t.Errorf("Encryption.PrivateKeyPath = %q, want %q", cfg.Encryption.PrivateKeyPath, "/data/twarchive/keys/twarchive.key")
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "twarchive.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "twarchive.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		err := Init(path, cfg)
		if err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "twarchive.toml")
		cfg := NewConfig(dir)
		cfg.Accounts = []string{"read-test"}
		cfg.Database = DatabaseConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if len(got.Accounts) != 1 || got.Accounts[0] != "read-test" {
			t.Errorf("Accounts = %v, want [read-test]", got.Accounts)
		}
		if got.Database.Type != "memory" {
			t.Errorf("Database.Type = %q, want %q", got.Database.Type, "memory")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/twarchive.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}
