package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for twarchive.
type Config struct {
	Accounts   []string         `toml:"accounts"`
	Workers    int              `toml:"workers"`    // concurrent walkers per account
	GroupSize  int              `toml:"group_size"` // accounts archived in parallel
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	Database   DatabaseConfig   `toml:"database"`
	BlobStore  BlobStoreConfig  `toml:"blob_store"`
	Encryption EncryptionConfig `toml:"encryption"`
	Fetch      FetchConfig      `toml:"fetch"`
	Metrics    MetricsConfig    `toml:"metrics"`

	// ProgressSeconds is the interval between progress log lines during a
	// run. Zero disables progress output.
	ProgressSeconds int `toml:"progress_seconds"`
}

// DatabaseConfig represents configuration for the archive database.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// BlobStoreConfig represents configuration for media byte storage.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type BlobStoreConfig struct {
	Type string `toml:"type"` // "embedded" (default), "memory", "filesystem" or "s3"

	// Encrypt wraps the external backend with at-rest encryption. It has no
	// effect for type=embedded.
	Encrypt bool `toml:"encrypt,omitempty"`

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSRoot string `toml:"fs_root,omitempty"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket          string `toml:"s3_bucket,omitempty"`
	S3Prefix          string `toml:"s3_prefix,omitempty"`
	S3Region          string `toml:"s3_region,omitempty"`
	S3Endpoint        string `toml:"s3_endpoint,omitempty"`
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`
}

// EncryptionConfig holds paths to the age key pair used for blob encryption.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "age" (default) or "test"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// FetchConfig holds settings for the upstream scraper and media downloads.
type FetchConfig struct {
	// ScraperPath is the snscrape binary to execute. Defaults to "snscrape"
	// resolved through PATH.
	ScraperPath string `toml:"scraper_path,omitempty"`

	// FFmpegPath is the ffmpeg binary used to transcode HLS video streams.
	// Defaults to "ffmpeg" resolved through PATH.
	FFmpegPath string `toml:"ffmpeg_path,omitempty"`

	// RatePerSec caps upstream calls per second. Zero disables limiting.
	RatePerSec float64 `toml:"rate_per_sec,omitempty"`
	Burst      int     `toml:"burst,omitempty"`

	// TimeoutSeconds bounds a single media download. Zero means no timeout.
	TimeoutSeconds int `toml:"timeout_seconds,omitempty"`
}

// MetricsConfig holds settings for the metrics endpoint.
type MetricsConfig struct {
	// Addr is the listen address for /metrics, e.g. ":9090".
	// Empty disables the endpoint.
	Addr string `toml:"addr,omitempty"`
}

// NewConfig creates a new Config with the provided values and default paths.
func NewConfig(baseDir string) *Config {
	return &Config{
		Workers:   4,
		GroupSize: 1,
		BaseDir:   baseDir,
		LogDir:    filepath.Join(baseDir, "log"),
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "data"),
		},
		BlobStore: BlobStoreConfig{
			Type: "embedded",
		},
		Encryption: EncryptionConfig{
			PublicKeyPath:  filepath.Join(baseDir, "keys", "twarchive.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "twarchive.key"),
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
// This is an internal helper and should not be exported.
func writeToFile(path string, cfg *Config) error {
	// Ensure the directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
