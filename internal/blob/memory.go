package blob

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"twarchive/internal/archive"
)

// MemoryStore is an in-memory implementation of the BlobStore interface.
// It keeps all blobs in a map, making it useful for testing.
// This implementation is safe for concurrent use.
type MemoryStore struct {
	blobs map[string][]byte // digest -> content
	mu    sync.RWMutex
}

// NewMemoryStore creates a new in-memory blob store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		blobs: make(map[string][]byte),
	}
}

// Put stores content under its digest.
func (m *MemoryStore) Put(digest string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read content: %w", err)
	}

	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Idempotent: storing the same digest multiple times is safe
	m.blobs[digest] = data
	return nil
}

// Get retrieves content by digest.
func (m *MemoryStore) Get(digest string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[digest]
	if !ok {
		return fmt.Errorf("blob not found: %s", digest)
	}

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write content: %w", err)
	}

	return nil
}

// Exists reports whether content with the given digest is stored.
func (m *MemoryStore) Exists(digest string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.blobs[digest]
	return ok, nil
}

// Compile-time check that MemoryStore implements the BlobStore interface
var _ archive.BlobStore = (*MemoryStore)(nil)
