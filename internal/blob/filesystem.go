package blob

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"twarchive/internal/archive"
)

// FileSystemStore stores blobs as plain files under a root directory,
// named by digest. Blobs are fanned out over 256 subdirectories keyed by
// the first two hex characters of the digest to keep directory sizes sane:
//
//	<root>/
//	  ab/
//	    ab3f09...     (blob file, named by full digest)
type FileSystemStore struct {
	root string
}

// NewFileSystemStore creates a new filesystem blob store rooted at the
// given path.
func NewFileSystemStore(root string) (*FileSystemStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob root: %w", err)
	}
	return &FileSystemStore{root: root}, nil
}

func (s *FileSystemStore) path(digest string) string {
	if len(digest) < 2 {
		return filepath.Join(s.root, digest)
	}
	return filepath.Join(s.root, digest[:2], digest)
}

// Put stores content under its digest.
// The operation is idempotent: storing the same digest multiple times is safe.
func (s *FileSystemStore) Put(digest string, r io.Reader, size int64) error {
	destPath := s.path(digest)

	// If the blob already exists, skip (idempotent)
	if _, err := os.Stat(destPath); err == nil {
		// Consume the reader to maintain expected behavior
		written, err := io.Copy(io.Discard, r)
		if err != nil {
			return fmt.Errorf("failed to read content: %w", err)
		}
		if written != size {
			return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, written)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("failed to create blob directory: %w", err)
	}

	return s.writeFile(destPath, r, size)
}

// Get retrieves content by digest and writes it to w.
func (s *FileSystemStore) Get(digest string, w io.Writer) error {
	f, err := os.Open(s.path(digest))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("blob not found: %s", digest)
		}
		return fmt.Errorf("failed to open blob: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read blob: %w", err)
	}

	return nil
}

// Exists reports whether content with the given digest is stored.
func (s *FileSystemStore) Exists(digest string) (bool, error) {
	_, err := os.Stat(s.path(digest))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("checking blob %s: %w", digest, err)
}

// writeFile writes data from r to the specified path using atomic write (temp file + rename).
func (s *FileSystemStore) writeFile(destPath string, r io.Reader, expectedSize int64) error {
	// Create temp file in the same directory to ensure atomic rename works
	dir := filepath.Dir(destPath)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// Clean up temp file on failure
	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that FileSystemStore implements the BlobStore interface
var _ archive.BlobStore = (*FileSystemStore)(nil)
